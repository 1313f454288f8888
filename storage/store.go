package storage

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const opTimeout = 5 * time.Second

// Store serializes values to JSON slots on a Backend. Load and Save never
// return errors: failures are logged and the caller keeps working with its
// fallback value. There are no transactions across slots.
type Store struct {
	backend Backend
	log     logrus.FieldLogger
}

// NewStore wraps backend. A nil logger discards failures silently.
func NewStore(backend Backend, logger logrus.FieldLogger) *Store {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Store{backend: backend, log: logger}
}

// Backend exposes the underlying slot capability.
func (s *Store) Backend() Backend { return s.backend }

// Close closes the backend.
func (s *Store) Close() error { return s.backend.Close() }

// Load decodes the slot at key into a T. It returns def when the slot is
// absent, blank, JSON null, unreadable or undecodable.
func Load[T any](s *Store, key string, def T) T {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.fail(&Error{Op: "load", Key: key, Err: err})
		return def
	}
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" || raw == "null" {
		return def
	}

	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.fail(&Error{Op: "decode", Key: key, Err: err})
		return def
	}
	return out
}

// Save encodes value and overwrites the slot at key.
func Save(s *Store, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.fail(&Error{Op: "encode", Key: key, Err: err})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.backend.Set(ctx, key, string(data)); err != nil {
		s.fail(&Error{Op: "save", Key: key, Err: err})
		return
	}
	s.log.WithFields(logrus.Fields{"slot": key, "bytes": len(data)}).Debug("slot saved")
}

// Remove deletes the slot at key.
func (s *Store) Remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.backend.Remove(ctx, key); err != nil {
		s.fail(&Error{Op: "remove", Key: key, Err: err})
	}
}

// Raw returns the undecoded slot contents, for export tooling.
func (s *Store) Raw(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.backend.Get(ctx, key)
}

// Keys lists the stored slot names.
func (s *Store) Keys() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.backend.Keys(ctx)
}

func (s *Store) fail(err *Error) {
	s.log.WithFields(logrus.Fields{"slot": err.Key, "op": err.Op}).WithError(err.Err).Error("storage failure, using fallback")
}
