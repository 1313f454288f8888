package storage

import (
	"context"
	"errors"
	"fmt"

	"club-portal/config"

	"github.com/sirupsen/logrus"
)

// Backend is a synchronous key-value slot capability. Each slot holds one
// string; a missing slot is reported with ok=false, not an error.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// ErrChecksumMismatch is returned by backends that detect a slot whose stored
// value no longer matches its recorded digest.
var ErrChecksumMismatch = errors.New("slot checksum mismatch")

// Error describes a failed read, write or decode against a slot.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger logrus.FieldLogger) (Backend, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return NewSQLite(cfg.Path, logger)
	case config.DriverRedis:
		return NewRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
	case config.DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
