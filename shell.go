package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"club-portal/portal"
	"club-portal/ui"

	"golang.org/x/term"
)

// shell is the interactive command loop over one App.
type shell struct {
	app          *portal.App
	sc           *bufio.Scanner
	out          io.Writer
	readPassword func(prompt string) (string, error)
	lastSeq      uint64
}

func newShell(app *portal.App, in io.Reader, out io.Writer) *shell {
	s := &shell{app: app, sc: bufio.NewScanner(in), out: out}
	s.sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	s.readPassword = s.readLine

	// Mask passwords when attached to a terminal.
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.readPassword = func(prompt string) (string, error) {
			fmt.Fprint(s.out, prompt)
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(s.out)
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(string(b)), nil
		}
	}
	return s
}

func (s *shell) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.sc.Text()), nil
}

// prompt reads one line, reporting false at end of input.
func (s *shell) prompt(label string) (string, bool) {
	line, err := s.readLine(label)
	return line, err == nil
}

func (s *shell) run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Welcome to the MPS Cyber Club portal!")
	s.printHelp()
	s.render()

	for {
		s.flushMessage()
		fmt.Fprint(s.out, "\n> ")
		if !s.sc.Scan() {
			fmt.Fprintln(s.out)
			return s.sc.Err()
		}
		cmd := strings.ToLower(strings.Join(strings.Fields(s.sc.Text()), " "))
		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}
		s.dispatch(ctx, cmd)
		s.resolvePending()
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (s *shell) dispatch(ctx context.Context, cmd string) {
	if page, ok := strings.CutPrefix(cmd, "go "); ok {
		s.handleGo(page)
		return
	}

	switch cmd {
	case "":
	case "help":
		s.printHelp()
	case "login":
		s.handleLogin()
	case "logout":
		s.handleLogout()
	case "menu":
		s.printMenu()
	case "show":
		s.render()
	case "dismiss":
		s.app.Notifier().Dismiss()
	case "add member":
		s.handleAddMember()
	case "delete member":
		s.handleDeleteMember()
	case "progress":
		s.handleProgress()
	case "add work":
		s.handleAddWork()
	case "edit work":
		s.handleEditWork()
	case "delete work":
		s.handleDelete(portal.CapManageContent, "Work ID: ", s.app.RequestDeleteWork)
	case "add event":
		s.handleAddEvent()
	case "edit event":
		s.handleEditEvent()
	case "delete event":
		s.handleDelete(portal.CapManageContent, "Event ID: ", s.app.RequestDeleteEvent)
	case "add achievement":
		s.handleAddAchievement()
	case "edit achievement":
		s.handleEditAchievement()
	case "delete achievement":
		s.handleDelete(portal.CapManageContent, "Achievement ID: ", s.app.RequestDeleteAchievement)
	case "add article":
		s.handleAddArticle()
	case "edit article":
		s.handleEditArticle()
	case "delete article":
		s.handleDelete(portal.CapManageContent, "Article ID: ", s.app.RequestDeleteArticle)
	case "read article":
		s.handleReadArticle()
	case "upload photo":
		s.handleUploadPhoto(ctx)
	case "delete photo":
		s.handleDelete(portal.CapDeletePhoto, "Photo ID: ", s.app.RequestDeletePhoto)
	case "upload banner":
		s.handleUploadBanner(ctx)
	case "remove banner":
		s.report(s.app.RequestRemoveBanner())
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' to list commands.")
	}
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, "Available commands:")
	fmt.Fprintln(s.out, "  Session: login, logout, menu, go <page>, show, dismiss")
	fmt.Fprintln(s.out, "  Members: add member, delete member, progress")
	fmt.Fprintln(s.out, "  Content: add|edit|delete work, event, achievement, article; read article")
	fmt.Fprintln(s.out, "  Photos: upload photo, delete photo, upload banner, remove banner")
	fmt.Fprintln(s.out, "  System: help, exit")
}

func (s *shell) printMenu() {
	fmt.Fprintln(s.out, ui.Menu(portal.Menu(s.app.IsAdmin()), s.app.Page()))
}

func (s *shell) render() {
	u, ok := s.app.CurrentUser()
	fmt.Fprintln(s.out, ui.Header(u, ok))
	if ok {
		s.printMenu()
	}
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, ui.View(s.app))
}

// flushMessage prints the current notification once.
func (s *shell) flushMessage() {
	msg, ok := s.app.Notifier().Message()
	if !ok || msg.Seq == s.lastSeq {
		return
	}
	s.lastSeq = msg.Seq
	fmt.Fprintln(s.out, ui.Message(msg))
}

// resolvePending asks the user to answer an open confirmation. End of input
// counts as cancel.
func (s *shell) resolvePending() {
	text, ok := s.app.Notifier().Pending()
	if !ok {
		return
	}
	fmt.Fprintln(s.out, ui.Confirm(text))
	answer, _ := s.prompt("Confirm? [y/N]: ")
	answer = strings.ToLower(answer)
	s.app.Notifier().Resolve(answer == "y" || answer == "yes")
}

// report prints err unless the same text is already queued as a
// notification.
func (s *shell) report(err error) {
	if err == nil {
		return
	}
	if msg, ok := s.app.Notifier().Message(); ok && msg.Seq != s.lastSeq && msg.Text == err.Error() {
		return
	}
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

// allowed prints a notice and returns false when the session lacks c.
func (s *shell) allowed(c portal.Capability) bool {
	if s.app.Can(c) {
		return true
	}
	if _, ok := s.app.CurrentUser(); !ok {
		fmt.Fprintln(s.out, "Please log in first.")
	} else {
		fmt.Fprintln(s.out, "Only admins can do that.")
	}
	return false
}

type field struct {
	label string
	dst   *string
}

// fill prompts for each field. A non-empty current value is offered as the
// default and kept on blank input.
func (s *shell) fill(fields ...field) bool {
	for _, f := range fields {
		label := f.label + ": "
		if *f.dst != "" {
			label = fmt.Sprintf("%s [%s]: ", f.label, truncateString(*f.dst, 40))
		}
		line, ok := s.prompt(label)
		if !ok {
			return false
		}
		if line != "" {
			*f.dst = line
		}
	}
	return true
}

func (s *shell) askID(label string) (int, bool) {
	line, ok := s.prompt(label)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(line)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid ID. Please enter a number.")
		return 0, false
	}
	return id, true
}

func (s *shell) handleGo(arg string) {
	page, ok := portal.ParsePage(arg)
	if !ok {
		fmt.Fprintf(s.out, "Unknown page %q. Type 'menu' to list pages.\n", arg)
		return
	}
	s.app.Navigate(page)
	if page != portal.PageLogout {
		s.render()
	}
}

func (s *shell) handleLogin() {
	if _, ok := s.app.CurrentUser(); ok {
		fmt.Fprintln(s.out, "Already logged in. Type 'logout' first.")
		return
	}
	id, ok := s.prompt("User ID: ")
	if !ok {
		return
	}
	password, err := s.readPassword("Password: ")
	if err != nil {
		fmt.Fprintf(s.out, "Failed to read password: %v\n", err)
		return
	}
	if err := s.app.Login(id, password); err != nil {
		s.report(err)
		return
	}
	s.flushMessage()
	s.render()
}

func (s *shell) handleLogout() {
	if _, ok := s.app.CurrentUser(); !ok {
		fmt.Fprintln(s.out, "You are not logged in.")
		return
	}
	s.app.RequestLogout()
}

func (s *shell) handleAddMember() {
	if !s.allowed(portal.CapManageMembers) {
		return
	}
	var d portal.MemberDraft
	role := string(portal.RoleMember)
	if !s.fill(field{"User ID", &d.ID}, field{"Name", &d.Name}, field{"Password", &d.Password}, field{"Role (admin/member)", &role}) {
		return
	}
	d.Role = portal.Role(strings.ToLower(role))
	s.report(s.app.AddMember(d))
}

func (s *shell) handleDeleteMember() {
	id, ok := s.prompt("User ID: ")
	if !ok {
		return
	}
	s.report(s.app.RequestDeleteMember(id))
}

func (s *shell) handleProgress() {
	if !s.allowed(portal.CapEditProgress) {
		return
	}
	id, ok := s.prompt("User ID: ")
	if !ok {
		return
	}
	line, ok := s.prompt("Progress (0-100): ")
	if !ok {
		return
	}
	value, err := strconv.Atoi(line)
	if err != nil {
		value = -1
	}
	s.report(s.app.UpdateProgress(id, value))
}

func (s *shell) handleDelete(c portal.Capability, label string, request func(int) error) {
	if !s.allowed(c) {
		return
	}
	id, ok := s.askID(label)
	if !ok {
		return
	}
	s.report(request(id))
}

func (s *shell) handleAddWork() {
	if !s.allowed(portal.CapManageContent) {
		return
	}
	var d portal.WorkDraft
	if !s.fill(
		field{"User ID (blank for yourself)", &d.UserID},
		field{"Title", &d.Title},
		field{"Description", &d.Description},
		field{"Date (YYYY-MM-DD)", &d.Date},
		field{"Image URL (optional)", &d.ImageURL},
	) {
		return
	}
	s.report(s.app.AddWork(d))
}

func (s *shell) handleEditWork() {
	if !s.allowed(portal.CapManageContent) {
		return
	}
	id, ok := s.askID("Work ID: ")
	if !ok {
		return
	}
	var d portal.WorkDraft
	for _, w := range s.app.WorkItems() {
		if w.ID == id {
			d = portal.WorkDraft{Title: w.Title, Description: w.Description, Date: w.Date, ImageURL: w.ImageURL}
		}
	}
	if d.Title == "" {
		fmt.Fprintln(s.out, "Work entry not found.")
		return
	}
	if !s.fill(field{"Title", &d.Title}, field{"Description", &d.Description}, field{"Date", &d.Date}, field{"Image URL", &d.ImageURL}) {
		return
	}
	s.report(s.app.UpdateWork(id, d))
}

func (s *shell) handleAddEvent() {
	if !s.allowed(portal.CapManageContent) {
		return
	}
	var d portal.EventDraft
	if !s.fill(field{"Title", &d.Title}, field{"Date (YYYY-MM-DD)", &d.Date}, field{"Description", &d.Description}) {
		return
	}
	s.report(s.app.AddEvent(d))
}

func (s *shell) handleEditEvent() {
	if !s.allowed(portal.CapManageContent) {
		return
	}
	id, ok := s.askID("Event ID: ")
	if !ok {
		return
	}
	var d portal.EventDraft
	for _, e := range s.app.Events() {
		if e.ID == id {
			d = portal.EventDraft{Title: e.Title, Date: e.Date, Description: e.Description}
		}
	}
	if d.Title == "" {
		fmt.Fprintln(s.out, "Event not found.")
		return
	}
	if !s.fill(field{"Title", &d.Title}, field{"Date", &d.Date}, field{"Description", &d.Description}) {
		return
	}
	s.report(s.app.UpdateEvent(id, d))
}

// achievementForm prompts for an achievement, parsing the year.
func (s *shell) achievementForm(d *portal.AchievementDraft) bool {
	year := ""
	if d.Year != 0 {
		year = strconv.Itoa(d.Year)
	}
	if !s.fill(field{"Title", &d.Title}, field{"Year", &year}, field{"Description", &d.Description}) {
		return false
	}
	d.Year = 0
	if year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			fmt.Fprintln(s.out, "Year must be a number.")
			return false
		}
		d.Year = y
	}
	return true
}

func (s *shell) handleAddAchievement() {
	if !s.allowed(portal.CapManageContent) {
		return
	}
	var d portal.AchievementDraft
	if !s.achievementForm(&d) {
		return
	}
	s.report(s.app.AddAchievement(d))
}

func (s *shell) handleEditAchievement() {
	if !s.allowed(portal.CapManageContent) {
		return
	}
	id, ok := s.askID("Achievement ID: ")
	if !ok {
		return
	}
	var d portal.AchievementDraft
	for _, ac := range s.app.Achievements() {
		if ac.ID == id {
			d = portal.AchievementDraft{Title: ac.Title, Year: ac.Year, Description: ac.Description}
		}
	}
	if d.Title == "" {
		fmt.Fprintln(s.out, "Achievement not found.")
		return
	}
	if !s.achievementForm(&d) {
		return
	}
	s.report(s.app.UpdateAchievement(id, d))
}

func (s *shell) handleAddArticle() {
	if !s.allowed(portal.CapManageContent) {
		return
	}
	var d portal.ArticleDraft
	if u, ok := s.app.CurrentUser(); ok {
		d.Author = u.Name
	}
	if !s.fill(field{"Title", &d.Title}, field{"Content", &d.Content}, field{"Author", &d.Author}, field{"Date (YYYY-MM-DD)", &d.Date}) {
		return
	}
	s.report(s.app.AddArticle(d))
}

func (s *shell) handleEditArticle() {
	if !s.allowed(portal.CapManageContent) {
		return
	}
	id, ok := s.askID("Article ID: ")
	if !ok {
		return
	}
	var d portal.ArticleDraft
	for _, ar := range s.app.Articles() {
		if ar.ID == id {
			d = portal.ArticleDraft{Title: ar.Title, Content: ar.Content, Author: ar.Author, Date: ar.Date}
		}
	}
	if d.Title == "" {
		fmt.Fprintln(s.out, "Article not found.")
		return
	}
	if !s.fill(field{"Title", &d.Title}, field{"Content", &d.Content}, field{"Author", &d.Author}, field{"Date", &d.Date}) {
		return
	}
	s.report(s.app.UpdateArticle(id, d))
}

func (s *shell) handleReadArticle() {
	if _, ok := s.app.CurrentUser(); !ok {
		fmt.Fprintln(s.out, "Please log in first.")
		return
	}
	id, ok := s.askID("Article ID: ")
	if !ok {
		return
	}
	for _, ar := range s.app.Articles() {
		if ar.ID == id {
			fmt.Fprintln(s.out, ui.Article(ar))
			return
		}
	}
	fmt.Fprintln(s.out, "Article not found.")
}

func (s *shell) handleUploadPhoto(ctx context.Context) {
	if !s.allowed(portal.CapUploadPhoto) {
		return
	}
	var title, path string
	if !s.fill(field{"Title", &title}, field{"Image file path", &path}) {
		return
	}
	up, err := s.app.UploadPhoto(ctx, title, path)
	if err != nil {
		s.report(err)
		return
	}
	s.await(ctx, up)
}

func (s *shell) handleUploadBanner(ctx context.Context) {
	if !s.allowed(portal.CapManageBanner) {
		return
	}
	var path string
	if !s.fill(field{"Image file path", &path}) {
		return
	}
	up, err := s.app.UploadBanner(ctx, path)
	if err != nil {
		s.report(err)
		return
	}
	s.await(ctx, up)
}

// await blocks until the upload completes. Its outcome arrives as a
// notification.
func (s *shell) await(ctx context.Context, up *portal.Upload) {
	fmt.Fprintln(s.out, "Uploading...")
	select {
	case <-up.Done():
	case <-ctx.Done():
	}
}

func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength-3]) + "..."
}
