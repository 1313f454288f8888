package portal

// Capability is an action class checked by authorize.
type Capability int

const (
	CapManageMembers Capability = iota
	CapManageContent
	CapEditProgress
	CapManageBanner
	CapUploadPhoto
	CapDeletePhoto
)

var denials = map[Capability]string{
	CapManageMembers: "Only admins can manage members.",
	CapManageContent: "Only admins can change club content.",
	CapEditProgress:  "Only admins can update progress.",
	CapManageBanner:  "Only admins can change the home page image.",
	CapUploadPhoto:   "Please log in to upload photos.",
	CapDeletePhoto:   "Only admins can delete photos.",
}

// allowed reports whether the session may perform c. Caller holds a.mu.
func (a *App) allowed(c Capability) bool {
	u := a.session.user
	if u == nil {
		return false
	}
	if c == CapUploadPhoto {
		return true
	}
	return u.IsAdmin()
}

// authorize is the single permission gate for mutations. A denial is shown
// as an error message and returned. Caller holds a.mu.
func (a *App) authorize(c Capability) error {
	if a.allowed(c) {
		return nil
	}
	msg := denials[c]
	if a.session.user == nil && c != CapUploadPhoto {
		msg = "Please log in first."
	}
	a.log.WithField("capability", c).Debug("action denied")
	a.notifier.Show(MessageError, msg)
	return newPermissionError(msg)
}

// Can reports whether the current session may perform c, without side
// effects. Used to decide which actions to offer.
func (a *App) Can(c Capability) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allowed(c)
}
