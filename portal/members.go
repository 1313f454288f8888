package portal

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// AddMember creates a user with progress 0. A blank role means member.
func (a *App) AddMember(d MemberDraft) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authorize(CapManageMembers); err != nil {
		return err
	}
	if d.Role == "" {
		d.Role = RoleMember
	}
	if err := validateDraft(&d, msgAllRequired); err != nil {
		return err
	}
	if a.users.Has(d.ID) {
		return newValidationError(fmt.Sprintf("User ID %q already exists.", d.ID))
	}

	a.users.append(User{ID: d.ID, Password: d.Password, Name: d.Name, Role: d.Role})
	a.log.WithFields(logrus.Fields{"user": d.ID, "role": d.Role}).Info("member added")
	a.notifier.Show(MessageSuccess, fmt.Sprintf("New member %q (%s) added successfully!", d.Name, d.ID))
	return nil
}

// RequestDeleteMember asks to delete a user together with their work items
// and photos. The built-in admin can never be deleted.
func (a *App) RequestDeleteMember(id string) error {
	if id == AdminID {
		const msg = "Cannot delete the default admin user!"
		a.notifier.Show(MessageError, msg)
		return newPermissionError(msg)
	}
	prompt := fmt.Sprintf("Are you sure you want to delete user %q and all their associated data (work, photos)?", id)
	return a.requestDestructive(CapManageMembers, prompt, func() string {
		if a.users.removeWhere(func(u User) bool { return u.ID == id }) == 0 {
			return ""
		}
		work := a.work.removeWhere(func(w WorkItem) bool { return w.UserID == id })
		photos := a.photos.removeWhere(func(p Photo) bool { return p.UserID == id })
		a.refreshSession()
		a.log.WithFields(logrus.Fields{"user": id, "work": work, "photos": photos}).Info("member deleted")
		return fmt.Sprintf("User %q and their data deleted.", id)
	})
}

// UpdateProgress sets a member's progress. Unknown ids are ignored.
func (a *App) UpdateProgress(userID string, progress int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authorize(CapEditProgress); err != nil {
		return err
	}
	if progress < 0 || progress > 100 {
		const msg = "Progress must be a number between 0 and 100."
		a.notifier.Show(MessageError, msg)
		return newValidationError(msg)
	}

	var name string
	found := a.users.replace(userID, func(u User) User {
		u.Progress = progress
		name = u.Name
		return u
	})
	if !found {
		return nil
	}
	a.refreshSession()
	a.notifier.Show(MessageSuccess, fmt.Sprintf("Progress for %s updated.", name))
	return nil
}
