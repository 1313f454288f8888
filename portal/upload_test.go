package portal

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"club-portal/media"
	"club-portal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pixel = "data:image/png;base64,iVBORw0KGgo="

func TestUploadPhoto(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student2", "pass2")

	up, err := env.app.UploadPhoto(context.Background(), " Team photo ", "team.png")
	require.NoError(t, err)
	assert.Empty(t, env.app.Photos(), "nothing added before the read completes")

	env.reader.release("team.png", pixel, nil)
	require.NoError(t, waitUpload(t, up))

	photos := env.app.Photos()
	require.Len(t, photos, 1)
	assert.Equal(t, Photo{
		ID:        1,
		UserID:    "student2",
		Title:     "Team photo",
		URL:       pixel,
		Timestamp: env.clock.Now().UnixMilli(),
	}, photos[0])
	assert.Equal(t, "Photo uploaded successfully!", env.message(t).Text)
	assert.Equal(t, photos, storage.Load(env.store, SlotPhotos, []Photo(nil)))
}

func TestUploadPhotoValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.app.UploadPhoto(context.Background(), "t", "a.png")
	assert.True(t, IsPermission(err))
	assert.Equal(t, "Please log in to upload photos.", err.Error())

	env.login(t, "student1", "pass1")
	for _, path := range []string{"", " "} {
		_, err := env.app.UploadPhoto(context.Background(), "title", path)
		assert.True(t, IsValidation(err))
		assert.Equal(t, "Please select an image file.", err.Error())
	}
}

func TestUploadPhotoTitleDefaultsToFileName(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student1", "pass1")

	up, err := env.app.UploadPhoto(context.Background(), "  ", "trips/robotics.fair.png")
	require.NoError(t, err)
	env.reader.release("trips/robotics.fair.png", pixel, nil)
	require.NoError(t, waitUpload(t, up))

	photos := env.app.Photos()
	require.Len(t, photos, 1)
	assert.Equal(t, "robotics.fair", photos[0].Title)
}

func TestUploadDroppedWhenUploaderDeleted(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student1", "pass1")

	up, err := env.app.UploadPhoto(context.Background(), "late", "late.png")
	require.NoError(t, err)

	env.app.RequestLogout()
	env.accept(t)
	env.login(t, "admin", "admin123")
	require.NoError(t, env.app.RequestDeleteMember("student1"))
	env.accept(t)

	env.reader.release("late.png", pixel, nil)
	assert.ErrorIs(t, waitUpload(t, up), ErrStaleUpload)
	assert.Empty(t, env.app.Photos())
	_, ok, err := env.store.Raw(SlotPhotos)
	require.NoError(t, err)
	assert.False(t, ok, "photos slot never written")
}

func TestUploadDroppedAfterLogout(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student2", "pass2")

	up, err := env.app.UploadPhoto(context.Background(), "late", "late.png")
	require.NoError(t, err)
	env.app.RequestLogout()
	env.accept(t)

	env.reader.release("late.png", pixel, nil)
	assert.ErrorIs(t, waitUpload(t, up), ErrStaleUpload)
	assert.Empty(t, env.app.Photos())
}

func TestBannerDroppedAfterLogout(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "admin", "admin123")

	up, err := env.app.UploadBanner(context.Background(), "late.png")
	require.NoError(t, err)
	env.app.RequestLogout()
	env.accept(t)

	env.reader.release("late.png", pixel, nil)
	assert.ErrorIs(t, waitUpload(t, up), ErrStaleUpload)
	assert.Empty(t, env.app.Banner())
}

func TestStaleUploadIsDiscarded(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student1", "pass1")
	ctx := context.Background()

	first, err := env.app.UploadPhoto(ctx, "old", "old.png")
	require.NoError(t, err)
	second, err := env.app.UploadPhoto(ctx, "new", "new.png")
	require.NoError(t, err)

	// The newer selection finishes first, then the older read lands.
	env.reader.release("new.png", pixel, nil)
	require.NoError(t, waitUpload(t, second))
	env.reader.release("old.png", "data:image/png;base64,b2xk", nil)
	assert.ErrorIs(t, waitUpload(t, first), ErrStaleUpload)

	photos := env.app.Photos()
	require.Len(t, photos, 1)
	assert.Equal(t, "new", photos[0].Title)
}

func TestStaleUploadFinishingFirstIsDiscarded(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "admin", "admin123")
	ctx := context.Background()

	first, err := env.app.UploadBanner(ctx, "a.png")
	require.NoError(t, err)
	second, err := env.app.UploadBanner(ctx, "b.png")
	require.NoError(t, err)

	env.reader.release("a.png", "data:image/png;base64,YQ==", nil)
	assert.ErrorIs(t, waitUpload(t, first), ErrStaleUpload)
	assert.Empty(t, env.app.Banner())

	env.reader.release("b.png", pixel, nil)
	require.NoError(t, waitUpload(t, second))
	assert.Equal(t, pixel, env.app.Banner())
}

func TestUploadReadFailure(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student1", "pass1")

	up, err := env.app.UploadPhoto(context.Background(), "big", "big.png")
	require.NoError(t, err)
	env.reader.release("big.png", "", fmt.Errorf("%w: 6000000 bytes", media.ErrTooLarge))

	err = waitUpload(t, up)
	assert.True(t, errors.Is(err, media.ErrTooLarge))
	assert.Empty(t, env.app.Photos())
	msg := env.message(t)
	assert.Equal(t, MessageError, msg.Kind)
	assert.Equal(t, "File size exceeds the upload limit.", msg.Text)
}

func TestBannerUploadAndRemove(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "admin", "admin123")

	up, err := env.app.UploadBanner(context.Background(), "school.png")
	require.NoError(t, err)
	env.reader.release("school.png", pixel, nil)
	require.NoError(t, waitUpload(t, up))
	assert.Equal(t, pixel, env.app.Banner())
	assert.Equal(t, pixel, storage.Load(env.store, SlotHomePageImage, ""))

	require.NoError(t, env.app.RequestRemoveBanner())
	text, _ := env.app.Notifier().Pending()
	assert.Equal(t, "Are you sure you want to remove the home page image?", text)
	env.accept(t)

	assert.Empty(t, env.app.Banner())
	_, ok, err := env.store.Raw(SlotHomePageImage)
	require.NoError(t, err)
	assert.False(t, ok, "slot removed")
	assert.Equal(t, "Home page image removed.", env.message(t).Text)
}

func TestMemberCannotUploadBanner(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student1", "pass1")
	_, err := env.app.UploadBanner(context.Background(), "x.png")
	assert.True(t, IsPermission(err))
}

func TestAdminDeletesPhoto(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "admin", "admin123")
	env.app.photos.set([]Photo{{ID: 1, UserID: "student1", Title: "a", URL: pixel}, {ID: 2, UserID: "student1", Title: "b", URL: pixel}})

	require.NoError(t, env.app.RequestDeletePhoto(1))
	env.accept(t)
	assert.Equal(t, []Photo{{ID: 2, UserID: "student1", Title: "b", URL: pixel}}, env.app.Photos())
	assert.Equal(t, "Photo deleted.", env.message(t).Text)
}
