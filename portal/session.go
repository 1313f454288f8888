package portal

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

const msgInvalidCredentials = "Invalid ID or password"

// session is the login state plus the login form. user is nil when logged
// out and otherwise a copy refreshed whenever the stored user changes.
type session struct {
	user *User
	page Page

	loginID       string
	loginPassword string
	loginError    string
}

// LoginForm is the state of the login form between attempts.
type LoginForm struct {
	ID       string
	Password string
	Error    string
}

// Login checks the credentials against the user list. Matching is exact and
// case-sensitive. On failure the form keeps its values and carries the error.
func (a *App) Login(id, password string) error {
	a.mu.Lock()
	if a.session.user != nil {
		a.mu.Unlock()
		return newAuthError("Already logged in. Log out first.")
	}
	a.session.loginID, a.session.loginPassword = id, password

	u, ok := a.users.Find(id)
	if !ok || u.Password != password {
		a.session.loginError = msgInvalidCredentials
		a.mu.Unlock()
		a.log.WithField("user", id).Info("login failed")
		return newAuthError(msgInvalidCredentials)
	}
	a.session = session{user: &u, page: PageHome}
	a.mu.Unlock()

	a.log.WithFields(logrus.Fields{"user": u.ID, "role": u.Role}).Info("login")
	a.notifier.Show(MessageSuccess, fmt.Sprintf("Welcome, %s!", u.Name))
	return nil
}

// RequestLogout asks for confirmation before ending the session. It does
// nothing when nobody is logged in.
func (a *App) RequestLogout() {
	a.mu.Lock()
	loggedIn := a.session.user != nil
	a.mu.Unlock()
	if !loggedIn {
		return
	}

	a.notifier.Confirm("Are you sure you want to log out?", func() {
		a.mu.Lock()
		if a.session.user == nil {
			a.mu.Unlock()
			return
		}
		id := a.session.user.ID
		a.session = session{page: PageHome}
		a.mu.Unlock()

		a.log.WithField("user", id).Info("logout")
		a.notifier.Show(MessageInfo, "You have been logged out.")
	}, nil)
}

// CurrentUser returns the logged-in user.
func (a *App) CurrentUser() (User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session.user == nil {
		return User{}, false
	}
	return *a.session.user, true
}

func (a *App) IsAdmin() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.user != nil && a.session.user.IsAdmin()
}

func (a *App) LoginForm() LoginForm {
	a.mu.Lock()
	defer a.mu.Unlock()
	return LoginForm{ID: a.session.loginID, Password: a.session.loginPassword, Error: a.session.loginError}
}

// Navigate moves to page. The logout entry starts a logout instead.
func (a *App) Navigate(page Page) {
	if page == PageLogout {
		a.RequestLogout()
		return
	}
	a.mu.Lock()
	a.session.page = page
	a.mu.Unlock()
}

func (a *App) Page() Page {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.page
}

// CurrentView is SelectView applied to the current session.
func (a *App) CurrentView() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	u := a.session.user
	return SelectView(a.session.page, u != nil, u != nil && u.IsAdmin())
}

// refreshSession re-reads the logged-in user after it was changed or
// removed. A removed user is logged out. Caller holds a.mu.
func (a *App) refreshSession() {
	if a.session.user == nil {
		return
	}
	u, ok := a.users.Find(a.session.user.ID)
	if !ok {
		a.log.WithField("user", a.session.user.ID).Info("session ended: user deleted")
		a.session = session{page: PageHome}
		return
	}
	a.session.user = &u
}
