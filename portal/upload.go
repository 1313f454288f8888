package portal

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"club-portal/media"
	"club-portal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type uploadTarget string

const (
	targetPhoto  uploadTarget = "photo"
	targetBanner uploadTarget = "banner"
)

// Upload tracks one asynchronous file read. Only the most recent upload per
// target is applied; older ones finish with ErrStaleUpload.
type Upload struct {
	Token string
	done  chan struct{}
	err   error
}

func newUpload() *Upload {
	return &Upload{Token: uuid.NewString(), done: make(chan struct{})}
}

// Done is closed once the read has completed and its result was applied or
// discarded.
func (u *Upload) Done() <-chan struct{} { return u.done }

// Err is the outcome. Only valid after Done is closed.
func (u *Upload) Err() error { return u.err }

// Wait blocks until the upload finishes and returns its outcome.
func (u *Upload) Wait() error {
	<-u.done
	return u.err
}

func (u *Upload) finish(err error) {
	u.err = err
	close(u.done)
}

// startUpload registers up as the current request for target and starts the
// read. apply runs under the app lock only if up is still current when the
// read completes. An error from apply discards the result. Caller holds a.mu.
func (a *App) startUpload(ctx context.Context, target uploadTarget, path string, apply func(uri string) (string, error)) *Upload {
	up := newUpload()
	a.uploads[target] = up.Token
	log := a.log.WithFields(logrus.Fields{"target": target, "token": up.Token})
	log.Debug("upload started")

	media.ReadAsync(ctx, a.reader, path, func(uri string, err error) {
		a.mu.Lock()
		if a.uploads[target] != up.Token {
			a.mu.Unlock()
			log.Info("stale upload discarded")
			up.finish(ErrStaleUpload)
			return
		}
		delete(a.uploads, target)
		if err != nil {
			a.mu.Unlock()
			log.WithError(err).Warn("upload read failed")
			a.notifier.Show(MessageError, readFailure(err))
			up.finish(err)
			return
		}
		msg, err := apply(uri)
		a.mu.Unlock()
		if err != nil {
			log.WithError(err).Info("upload discarded")
			up.finish(err)
			return
		}

		log.Info("upload applied")
		a.notifier.Show(MessageSuccess, msg)
		up.finish(nil)
	})
	return up
}

func readFailure(err error) string {
	switch {
	case errors.Is(err, media.ErrTooLarge):
		return "File size exceeds the upload limit."
	case errors.Is(err, media.ErrNotImage):
		return "Please select an image file."
	case errors.Is(err, media.ErrEmptyFile):
		return "The selected file is empty."
	default:
		return "Failed to read file."
	}
}

// UploadPhoto reads the image at path and adds it to the gallery for the
// current user. A blank title defaults to the file name without its
// extension. The photo id and timestamp are assigned when the read
// completes, and the photo is dropped if its uploader has since been
// deleted or logged out.
func (a *App) UploadPhoto(ctx context.Context, title, path string) (*Upload, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authorize(CapUploadPhoto); err != nil {
		return nil, err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		const msg = "Please select an image file."
		a.notifier.Show(MessageError, msg)
		return nil, newValidationError(msg)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		name := filepath.Base(path)
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}
	userID := a.session.user.ID
	return a.startUpload(ctx, targetPhoto, path, func(uri string) (string, error) {
		if !a.users.Has(userID) || a.session.user == nil || a.session.user.ID != userID {
			return "", ErrStaleUpload
		}
		a.photos.append(Photo{
			ID:        nextID(a.photos),
			UserID:    userID,
			Title:     title,
			URL:       uri,
			Timestamp: a.clock.Now().UnixMilli(),
		})
		return "Photo uploaded successfully!", nil
	}), nil
}

func (a *App) RequestDeletePhoto(id int) error {
	return a.requestDestructive(CapDeletePhoto, "Are you sure you want to delete this photo?", func() string {
		if a.photos.removeWhere(func(p Photo) bool { return p.ID == id }) == 0 {
			return ""
		}
		return "Photo deleted."
	})
}

// UploadBanner reads the image at path and makes it the home page image.
func (a *App) UploadBanner(ctx context.Context, path string) (*Upload, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authorize(CapManageBanner); err != nil {
		return nil, err
	}
	if isBlank(path) {
		const msg = "Please select an image to upload."
		a.notifier.Show(MessageError, msg)
		return nil, newValidationError(msg)
	}
	return a.startUpload(ctx, targetBanner, path, func(uri string) (string, error) {
		if !a.allowed(CapManageBanner) {
			return "", ErrStaleUpload
		}
		a.setBanner(uri)
		return "Home page image uploaded successfully!", nil
	}), nil
}

// RequestRemoveBanner asks before clearing the home page image.
func (a *App) RequestRemoveBanner() error {
	return a.requestDestructive(CapManageBanner, "Are you sure you want to remove the home page image?", func() string {
		a.setBanner("")
		return "Home page image removed."
	})
}

// setBanner stores uri, or removes the slot when uri is empty. Caller holds
// a.mu.
func (a *App) setBanner(uri string) {
	a.banner = uri
	if uri == "" {
		a.store.Remove(SlotHomePageImage)
		return
	}
	storage.Save(a.store, SlotHomePageImage, uri)
}
