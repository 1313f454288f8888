// Package media turns image files into inline data URIs.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMaxBytes is the upload cap used when none is configured.
const DefaultMaxBytes = 5 * 1024 * 1024

var (
	ErrEmptyFile  = errors.New("file is empty")
	ErrTooLarge   = errors.New("file too large")
	ErrNotImage   = errors.New("file is not a supported image")
	ErrBadDataURI = errors.New("malformed data URI")
)

// Reader converts image files to base64 data URIs.
type Reader struct {
	// MaxBytes caps the size of the source file.
	MaxBytes int64
	// MaxDimension, when positive, downscales images whose width or height
	// exceeds it.
	MaxDimension int
}

func NewReader(maxBytes int64, maxDimension int) *Reader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Reader{MaxBytes: maxBytes, MaxDimension: maxDimension}
}

// ReadDataURI reads the image at path and returns it as a data URI.
func (r *Reader) ReadDataURI(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.Size() == 0 {
		return "", ErrEmptyFile
	}
	if info.Size() > r.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, info.Size(), r.MaxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(f, r.MaxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > r.MaxBytes {
		return "", fmt.Errorf("%w: file grew while reading", ErrTooLarge)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return r.Encode(data)
}

// Encode validates data as an image and wraps it in a data URI.
func (r *Reader) Encode(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	mime, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mime)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	if r.MaxDimension > 0 && (cfg.Width > r.MaxDimension || cfg.Height > r.MaxDimension) {
		data, mime, err = downscale(data, format, r.MaxDimension)
		if err != nil {
			return "", err
		}
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// downscale fits the image inside a limit x limit box. JPEG sources stay JPEG;
// everything else is re-encoded as PNG.
func downscale(data []byte, format string, limit int) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	resized := imaging.Fit(img, limit, limit, imaging.Lanczos)

	var buf bytes.Buffer
	if format == "jpeg" {
		err = imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85))
		return buf.Bytes(), "image/jpeg", err
	}
	err = imaging.Encode(&buf, resized, imaging.PNG)
	return buf.Bytes(), "image/png", err
}

// ParseDataURI splits a base64 data URI into its media type and payload.
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrBadDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrBadDataURI
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrBadDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	return mime, data, nil
}
