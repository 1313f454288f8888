package media

import "context"

// DataURIReader is the file-read capability used for uploads.
type DataURIReader interface {
	ReadDataURI(ctx context.Context, path string) (string, error)
}

// ReadAsync starts a single-shot read of path on its own goroutine. done is
// called exactly once with either the data URI or the failure. There is no
// cancellation beyond ctx; callers that may start overlapping reads must
// decide themselves which completion to honour.
func ReadAsync(ctx context.Context, r DataURIReader, path string, done func(uri string, err error)) {
	go func() {
		uri, err := r.ReadDataURI(ctx, path)
		done(uri, err)
	}()
}
