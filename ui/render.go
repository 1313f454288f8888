// Package ui renders portal state as terminal text.
package ui

import (
	"fmt"
	"strings"
	"time"

	"club-portal/media"
	"club-portal/portal"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	descStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#AAAAAA"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	menuActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFD700"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	confirmStyle = boxStyle.
			BorderForeground(lipgloss.Color("#FFD700"))
)

var messageColors = map[portal.MessageKind]lipgloss.Color{
	portal.MessageSuccess: lipgloss.Color("#4CAF50"),
	portal.MessageError:   lipgloss.Color("#FF6B6B"),
	portal.MessageInfo:    lipgloss.Color("#5B8DEF"),
}

// Message renders a notification box coloured by kind.
func Message(m portal.Message) string {
	color, ok := messageColors[m.Kind]
	if !ok {
		color = messageColors[portal.MessageInfo]
	}
	return boxStyle.BorderForeground(color).Foreground(color).Render(m.Text)
}

// Confirm renders a pending confirmation prompt.
func Confirm(text string) string {
	return confirmStyle.Render(text + "\n" + hintStyle.Render("[y] Confirm   [n] Cancel"))
}

// Header shows who is logged in.
func Header(u portal.User, loggedIn bool) string {
	title := titleStyle.Render("MPS Cyber Club")
	if !loggedIn {
		return title
	}
	return title + hintStyle.Render(fmt.Sprintf("  %s (%s)", u.Name, u.Role))
}

// Menu renders the navigation entries, highlighting the current page.
func Menu(items []portal.MenuItem, current portal.Page) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		label := fmt.Sprintf("%s [%s]", item.Label, item.Key)
		if item.Key == current {
			label = menuActive.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ·  ")
}

// View renders the app's current view.
func View(a *portal.App) string {
	v := a.CurrentView()
	var body string
	switch v {
	case portal.ViewLogin:
		return renderLogin(a.LoginForm())
	case portal.ViewAccessDenied:
		return titleStyle.Render("Access Denied") + "\nOnly admins can view this page."
	case portal.View(portal.PageMembers):
		body = renderMembers(a)
	case portal.View(portal.PageProgress):
		body = renderProgress(a.Users())
	case portal.View(portal.PageWork):
		body = renderWork(a)
	case portal.View(portal.PageEvents):
		body = renderEvents(a.Events())
	case portal.View(portal.PageAchievements):
		body = renderAchievements(a.Achievements())
	case portal.View(portal.PageArticles):
		body = renderArticles(a.Articles())
	case portal.View(portal.PageGallery):
		body = renderGallery(a)
	case portal.View(portal.PagePhotoUpload):
		body = renderPhotoUpload(a)
	default:
		body = renderHome(a)
	}
	head := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(portal.Label(portal.Page(v))),
		descStyle.Render(portal.Description(v)),
	)
	return head + "\n\n" + body
}

func renderLogin(form portal.LoginForm) string {
	lines := []string{
		titleStyle.Render("Login"),
		"Type 'login' to sign in with your user ID and password.",
	}
	if form.Error != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(messageColors[portal.MessageError]).Render(form.Error))
	}
	return strings.Join(lines, "\n")
}

func renderHome(a *portal.App) string {
	var b strings.Builder
	if u, ok := a.CurrentUser(); ok {
		fmt.Fprintf(&b, "Hello, %s!\n", u.Name)
	}
	banner := a.Banner()
	if banner == "" {
		b.WriteString(hintStyle.Render("No home page image set."))
		return b.String()
	}
	b.WriteString("Home page image: " + describeImage(banner))
	return b.String()
}

func renderMembers(a *portal.App) string {
	users := a.Users()
	work := a.WorkItems()
	photos := a.Photos()

	workCount := make(map[string]int)
	for _, w := range work {
		workCount[w.UserID]++
	}
	photoCount := make(map[string]int)
	for _, p := range photos {
		photoCount[p.UserID]++
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			u.ID, u.Name, string(u.Role),
			fmt.Sprintf("%d%%", u.Progress),
			fmt.Sprint(workCount[u.ID]),
			fmt.Sprint(photoCount[u.ID]),
		})
	}
	out := table([]string{"ID", "Name", "Role", "Progress", "Work", "Photos"}, []int{12, 24, 8, 9, 5, 6}, rows)
	if len(photos) > 0 {
		out += "\n\n" + titleStyle.Render("Uploaded Photos") + "\n" + photoTable(a, photos)
	}
	return out
}

func renderProgress(users []portal.User) string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Name, progressBar(u.Progress, 20)})
	}
	return table([]string{"Member", "Progress"}, []int{24, 28}, rows)
}

func progressBar(pct, width int) string {
	pct = min(max(pct, 0), 100)
	filled := pct * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + fmt.Sprintf("] %3d%%", pct)
}

func renderWork(a *portal.App) string {
	items := a.WorkItems()
	if len(items) == 0 {
		return "No work submitted yet."
	}
	rows := make([][]string, 0, len(items))
	for _, w := range items {
		rows = append(rows, []string{fmt.Sprint(w.ID), a.UserName(w.UserID), w.Title, w.Date, w.Description})
	}
	return table([]string{"ID", "By", "Title", "Date", "Description"}, []int{4, 16, 30, 10, 40}, rows)
}

func renderEvents(events []portal.Event) string {
	if len(events) == 0 {
		return "No upcoming events."
	}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{fmt.Sprint(e.ID), e.Date, e.Title, e.Description})
	}
	return table([]string{"ID", "Date", "Title", "Description"}, []int{4, 10, 30, 50}, rows)
}

func renderAchievements(achievements []portal.Achievement) string {
	if len(achievements) == 0 {
		return "No achievements recorded."
	}
	rows := make([][]string, 0, len(achievements))
	for _, ac := range achievements {
		rows = append(rows, []string{fmt.Sprint(ac.ID), fmt.Sprint(ac.Year), ac.Title, ac.Description})
	}
	return table([]string{"ID", "Year", "Title", "Description"}, []int{4, 4, 42, 50}, rows)
}

func renderArticles(articles []portal.Article) string {
	if len(articles) == 0 {
		return "No articles published."
	}
	rows := make([][]string, 0, len(articles))
	for _, ar := range articles {
		rows = append(rows, []string{fmt.Sprint(ar.ID), ar.Date, ar.Title, ar.Author})
	}
	return table([]string{"ID", "Date", "Title", "Author"}, []int{4, 10, 40, 20}, rows) +
		"\n" + hintStyle.Render("Type 'read article' to read one in full.")
}

// Article renders one article in full, wrapped to the terminal width.
func Article(ar portal.Article) string {
	meta := hintStyle.Render(fmt.Sprintf("by %s · %s", ar.Author, ar.Date))
	body := lipgloss.NewStyle().Width(76).Render(ar.Content)
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(ar.Title), meta, "", body)
}

func renderGallery(a *portal.App) string {
	photos := a.Photos()
	if len(photos) == 0 {
		return "No photos uploaded yet."
	}
	return photoTable(a, photos)
}

func photoTable(a *portal.App, photos []portal.Photo) string {
	rows := make([][]string, 0, len(photos))
	for _, p := range photos {
		uploaded := time.UnixMilli(p.Timestamp).Format("2006-01-02 15:04")
		rows = append(rows, []string{fmt.Sprint(p.ID), p.Title, a.UserName(p.UserID), uploaded, describeImage(p.URL)})
	}
	return table([]string{"ID", "Title", "By", "Uploaded", "Image"}, []int{4, 24, 16, 16, 24}, rows)
}

func renderPhotoUpload(a *portal.App) string {
	u, _ := a.CurrentUser()
	mine := 0
	for _, p := range a.Photos() {
		if p.UserID == u.ID {
			mine++
		}
	}
	return fmt.Sprintf("You have uploaded %d photo(s).\n", mine) +
		hintStyle.Render("Type 'upload photo' and give a title and an image file path (max 5MB).")
}

// describeImage summarises a data URI without printing the payload.
func describeImage(uri string) string {
	mime, data, err := media.ParseDataURI(uri)
	if err != nil {
		return truncate(uri, 40)
	}
	return fmt.Sprintf("%s, %s", mime, humanSize(len(data)))
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func table(headers []string, widths []int, rows [][]string) string {
	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i == len(cells)-1 {
				b.WriteString(truncate(cell, widths[i]))
				break
			}
			fmt.Fprintf(&b, "%-*s ", widths[i], truncate(cell, widths[i]))
		}
		b.WriteString("\n")
	}
	writeRow(headers)
	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	b.WriteString(strings.Repeat("-", total) + "\n")
	for _, row := range rows {
		writeRow(row)
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength-3]) + "..."
}
