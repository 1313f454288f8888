package portal

import "strings"

// Page is a navigation key.
type Page string

const (
	PageHome         Page = "home"
	PageMembers      Page = "members"
	PageProgress     Page = "progress"
	PageWork         Page = "work"
	PageEvents       Page = "events"
	PageAchievements Page = "achievements"
	PageArticles     Page = "articles"
	PageGallery      Page = "gallery"
	PagePhotoUpload  Page = "photoUpload"
	PageLogout       Page = "logout"
)

// View is what the screen shows: a page, or one of the gate views.
type View string

const (
	ViewLogin        View = "login"
	ViewAccessDenied View = "accessDenied"
)

type MenuItem struct {
	Key       Page
	Label     string
	AdminOnly bool
}

var menuItems = []MenuItem{
	{Key: PageHome, Label: "Home"},
	{Key: PageMembers, Label: "Member Details", AdminOnly: true},
	{Key: PageProgress, Label: "Progress"},
	{Key: PageWork, Label: "Work Done"},
	{Key: PageEvents, Label: "Events"},
	{Key: PageAchievements, Label: "Achievements"},
	{Key: PageArticles, Label: "Tech Articles"},
	{Key: PageGallery, Label: "Gallery"},
	{Key: PagePhotoUpload, Label: "Photo Upload"},
	{Key: PageLogout, Label: "Logout"},
}

var descriptions = map[View]string{
	View(PageHome):         "Welcome to the MPS Cyber Club! Engage with fellow tech enthusiasts and explore our projects, events, and achievements.",
	View(PageMembers):      "Admin View: Manage club members, their work, and photos.",
	View(PageProgress):     "Track your progress and see others' advancement in the club.",
	View(PageWork):         "List of work and projects submitted by members.",
	View(PageEvents):       "Upcoming events and workshops for MPS Cyber Club members.",
	View(PageAchievements): "Achievements and awards won by club members.",
	View(PageArticles):     "Educational tech articles curated by the MPS Cyber Club.",
	View(PageGallery):      "Photos from club events and meetups.",
	View(PagePhotoUpload):  "Upload your photos here from club activities or projects.",
}

// Menu lists the navigation entries visible to the viewer. Hiding admin
// entries is cosmetic; mutations are still checked by the app.
func Menu(isAdmin bool) []MenuItem {
	items := make([]MenuItem, 0, len(menuItems))
	for _, item := range menuItems {
		if item.AdminOnly && !isAdmin {
			continue
		}
		items = append(items, item)
	}
	return items
}

// Label returns the menu label for a page key.
func Label(p Page) string {
	for _, item := range menuItems {
		if item.Key == p {
			return item.Label
		}
	}
	return string(p)
}

// ParsePage resolves a user-typed key or label, case-insensitively.
func ParsePage(s string) (Page, bool) {
	for _, item := range menuItems {
		if strings.EqualFold(string(item.Key), s) || strings.EqualFold(item.Label, s) {
			return item.Key, true
		}
	}
	return "", false
}

// SelectView picks the view for a page given the session state. Unknown
// keys fall back to home.
func SelectView(page Page, loggedIn, isAdmin bool) View {
	if !loggedIn {
		return ViewLogin
	}
	if page == PageMembers && !isAdmin {
		return ViewAccessDenied
	}
	if _, ok := descriptions[View(page)]; !ok {
		return View(PageHome)
	}
	return View(page)
}

// Description returns the page blurb shown under a view's title.
func Description(v View) string {
	return descriptions[v]
}
