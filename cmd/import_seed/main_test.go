package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"club-portal/portal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 3))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestImportPhotos(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a_team.png"))
	writePNG(t, filepath.Join(dir, "b_lab.day.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image at all"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	seed := portal.DefaultSeed()
	seed.Photos = []portal.Photo{{ID: 7, UserID: portal.AdminID, Title: "existing", URL: "data:image/png;base64,AAAA"}}

	imported, failed := importPhotos(seed, dir, "student1")
	assert.Equal(t, 2, imported)
	assert.Equal(t, 1, failed)

	require.Len(t, seed.Photos, 3)
	added := seed.Photos[1:]
	assert.Equal(t, 8, added[0].ID)
	assert.Equal(t, "a_team", added[0].Title)
	assert.Equal(t, 9, added[1].ID)
	assert.Equal(t, "b_lab.day", added[1].Title)
	for _, p := range added {
		assert.Equal(t, "student1", p.UserID)
		assert.Contains(t, p.URL, "data:image/png;base64,")
		assert.NotZero(t, p.Timestamp)
	}
}

func TestImportPhotosUnknownOwner(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "team.png"))
	seed := portal.DefaultSeed()

	imported, failed := importPhotos(seed, dir, "ghost")
	assert.Zero(t, imported)
	assert.Zero(t, failed)
	assert.Empty(t, seed.Photos)
}

func TestImportPhotosMissingDir(t *testing.T) {
	seed := portal.DefaultSeed()
	imported, failed := importPhotos(seed, filepath.Join(t.TempDir(), "missing"), portal.AdminID)
	assert.Zero(t, imported)
	assert.Equal(t, 1, failed)
	assert.Empty(t, seed.Photos)
}
