package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLite keeps every slot as one row of the slots table, alongside a BLAKE2b
// digest of its value.
type SQLite struct {
	db *sql.DB

	getStmt    *sql.Stmt
	setStmt    *sql.Stmt
	removeStmt *sql.Stmt
}

// NewSQLite opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares the slot statements.
func NewSQLite(dbPath string, logger logrus.FieldLogger) (*SQLite, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; slots are rewritten whole on every mutation.
	db.SetMaxOpenConns(1)

	if err := migrate(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db}
	if err := s.prepareStatements(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases prepared statements and closes the DB.
func (s *SQLite) Close() error {
	for _, stmt := range []*sql.Stmt{s.getStmt, s.setStmt, s.removeStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

func migrate(db *sql.DB, logger logrus.FieldLogger) error {
	goose.SetBaseFS(migrations)
	if logger != nil {
		goose.SetLogger(logger)
	}
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *SQLite) prepareStatements() error {
	var err error
	if s.getStmt, err = s.db.Prepare(`SELECT value, checksum FROM slots WHERE key=?`); err != nil {
		return err
	}
	if s.setStmt, err = s.db.Prepare(`INSERT INTO slots(key,value,checksum,updated_at) VALUES(?,?,?,?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value, checksum=excluded.checksum, updated_at=excluded.updated_at`); err != nil {
		return err
	}
	if s.removeStmt, err = s.db.Prepare(`DELETE FROM slots WHERE key=?`); err != nil {
		return err
	}
	return nil
}

// Get returns the slot value, verifying it against the stored digest.
func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value, sum string
	err := s.getStmt.QueryRowContext(ctx, key).Scan(&value, &sum)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if checksum(value) != sum {
		return "", false, ErrChecksumMismatch
	}
	return value, true, nil
}

// Set writes the whole slot in one statement.
func (s *SQLite) Set(ctx context.Context, key, value string) error {
	_, err := s.setStmt.ExecContext(ctx, key, value, checksum(value), time.Now().UTC())
	return err
}

// Remove deletes the slot. Removing an absent slot is not an error.
func (s *SQLite) Remove(ctx context.Context, key string) error {
	_, err := s.removeStmt.ExecContext(ctx, key)
	return err
}

// Keys lists stored slot names in order.
func (s *SQLite) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM slots ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func checksum(value string) string {
	sum := blake2b.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
