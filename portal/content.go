package portal

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// placeholderImage is used for work items submitted without an image.
const placeholderImage = "https://placehold.co/300x200/CCCCCC/000000?text=No+Image"

// AddWork records a work item. A blank UserID means the current user; any
// other value must name an existing user.
func (a *App) AddWork(d WorkDraft) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authorize(CapManageContent); err != nil {
		return err
	}
	if err := validateDraft(&d, "All fields (Title, Description, Date, User) are required."); err != nil {
		return err
	}
	if d.UserID == "" {
		d.UserID = a.session.user.ID
	}
	if !a.users.Has(d.UserID) {
		return newValidationError("Invalid User ID. Please select an existing member.")
	}
	if d.ImageURL == "" {
		d.ImageURL = placeholderImage
	}

	item := WorkItem{
		ID:          nextID(a.work),
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date,
		ImageURL:    d.ImageURL,
	}
	a.work.append(item)
	a.log.WithFields(logrus.Fields{"work": item.ID, "user": item.UserID}).Info("work added")
	a.notifier.Show(MessageSuccess, fmt.Sprintf("Work %q added successfully!", item.Title))
	return nil
}

// UpdateWork replaces a work item's editable fields. The owner is kept.
func (a *App) UpdateWork(id int, d WorkDraft) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authorize(CapManageContent); err != nil {
		return err
	}
	if err := validateDraft(&d, msgAllRequired); err != nil {
		return err
	}
	ok := a.work.replace(id, func(w WorkItem) WorkItem {
		w.Title, w.Description, w.Date = d.Title, d.Description, d.Date
		if d.ImageURL != "" {
			w.ImageURL = d.ImageURL
		}
		return w
	})
	if ok {
		a.notifier.Show(MessageSuccess, "Work updated successfully!")
	}
	return nil
}

func (a *App) RequestDeleteWork(id int) error {
	return a.requestDestructive(CapManageContent, "Are you sure you want to delete this work entry?", func() string {
		if a.work.removeWhere(func(w WorkItem) bool { return w.ID == id }) == 0 {
			return ""
		}
		return "Work entry deleted."
	})
}

func (a *App) AddEvent(d EventDraft) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authorize(CapManageContent); err != nil {
		return err
	}
	if err := validateDraft(&d, msgAllRequired); err != nil {
		return err
	}
	a.events.append(Event{ID: nextID(a.events), Title: d.Title, Date: d.Date, Description: d.Description})
	a.notifier.Show(MessageSuccess, fmt.Sprintf("Event %q added successfully!", d.Title))
	return nil
}

func (a *App) UpdateEvent(id int, d EventDraft) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authorize(CapManageContent); err != nil {
		return err
	}
	if err := validateDraft(&d, msgAllRequired); err != nil {
		return err
	}
	ok := a.events.replace(id, func(e Event) Event {
		e.Title, e.Date, e.Description = d.Title, d.Date, d.Description
		return e
	})
	if ok {
		a.notifier.Show(MessageSuccess, "Event updated successfully!")
	}
	return nil
}

func (a *App) RequestDeleteEvent(id int) error {
	return a.requestDestructive(CapManageContent, "Are you sure you want to delete this event?", func() string {
		if a.events.removeWhere(func(e Event) bool { return e.ID == id }) == 0 {
			return ""
		}
		return "Event deleted."
	})
}

func (a *App) AddAchievement(d AchievementDraft) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authorize(CapManageContent); err != nil {
		return err
	}
	if err := validateDraft(&d, msgAllRequired); err != nil {
		return err
	}
	a.achievements.append(Achievement{ID: nextID(a.achievements), Title: d.Title, Year: d.Year, Description: d.Description})
	a.notifier.Show(MessageSuccess, fmt.Sprintf("Achievement %q added successfully!", d.Title))
	return nil
}

func (a *App) UpdateAchievement(id int, d AchievementDraft) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authorize(CapManageContent); err != nil {
		return err
	}
	if err := validateDraft(&d, msgAllRequired); err != nil {
		return err
	}
	ok := a.achievements.replace(id, func(ac Achievement) Achievement {
		ac.Title, ac.Year, ac.Description = d.Title, d.Year, d.Description
		return ac
	})
	if ok {
		a.notifier.Show(MessageSuccess, "Achievement updated successfully!")
	}
	return nil
}

func (a *App) RequestDeleteAchievement(id int) error {
	return a.requestDestructive(CapManageContent, "Are you sure you want to delete this achievement?", func() string {
		if a.achievements.removeWhere(func(ac Achievement) bool { return ac.ID == id }) == 0 {
			return ""
		}
		return "Achievement deleted."
	})
}

// AddArticle publishes an article. A blank author means the current user's
// display name.
func (a *App) AddArticle(d ArticleDraft) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authorize(CapManageContent); err != nil {
		return err
	}
	if isBlank(d.Author) {
		d.Author = a.session.user.Name
	}
	if err := validateDraft(&d, msgAllRequired); err != nil {
		return err
	}
	a.articles.append(Article{ID: nextID(a.articles), Title: d.Title, Content: d.Content, Author: d.Author, Date: d.Date})
	a.notifier.Show(MessageSuccess, fmt.Sprintf("Article %q added successfully!", d.Title))
	return nil
}

// UpdateArticle replaces an article's fields. A blank author means the
// current user's display name, as in AddArticle.
func (a *App) UpdateArticle(id int, d ArticleDraft) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authorize(CapManageContent); err != nil {
		return err
	}
	if isBlank(d.Author) {
		d.Author = a.session.user.Name
	}
	if err := validateDraft(&d, msgAllRequired); err != nil {
		return err
	}
	ok := a.articles.replace(id, func(ar Article) Article {
		ar.Title, ar.Content, ar.Author, ar.Date = d.Title, d.Content, d.Author, d.Date
		return ar
	})
	if ok {
		a.notifier.Show(MessageSuccess, "Article updated successfully!")
	}
	return nil
}

func (a *App) RequestDeleteArticle(id int) error {
	return a.requestDestructive(CapManageContent, "Are you sure you want to delete this article?", func() string {
		if a.articles.removeWhere(func(ar Article) bool { return ar.ID == id }) == 0 {
			return ""
		}
		return "Article deleted."
	})
}
