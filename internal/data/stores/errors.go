// Package stores implements the development server's persistence on top of
// the SQLite database in package db.
package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/hay-kot/taskdeck/internal/data/db"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken is returned when a username is already registered.
	ErrUsernameTaken = errors.New("username is already taken")
	// ErrEmailTaken is returned when an email is already registered.
	ErrEmailTaken = errors.New("email is already in use")
)

func sqliteCode(err error) (int, bool) {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return 0, false
	}
	return se.Code(), true
}

// IsNotFoundError reports whether err means the row does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrNotFound)
}

// IsCorruptionError reports whether the database file cannot be used.
func IsCorruptionError(err error) bool {
	if code, ok := sqliteCode(err); ok {
		switch code {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "database disk image is malformed") ||
		strings.Contains(msg, "file is not a database")
}

// uniqueViolation translates a UNIQUE constraint failure on the users table
// into ErrUsernameTaken or ErrEmailTaken. Other errors are returned as is.
// The pre-insert checks catch almost every duplicate; this covers two
// registrations racing for the same name.
func uniqueViolation(err error) error {
	code, ok := sqliteCode(err)
	if !ok || code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return err
	}
	switch msg := err.Error(); {
	case strings.Contains(msg, "users.username"):
		return ErrUsernameTaken
	case strings.Contains(msg, "users.email"):
		return ErrEmailTaken
	}
	return err
}

// QuarantineCorrupt moves the database in dataDir and its WAL and SHM
// companions aside so Open can start from an empty file. It returns the path
// of the quarantined database.
func QuarantineCorrupt(dataDir string) (string, error) {
	dbPath := filepath.Join(dataDir, db.FileName)
	aside := fmt.Sprintf("%s.corrupt.%s", dbPath, time.Now().Format("20060102-150405"))

	// Leftover WAL or SHM files would be replayed into the new database.
	for _, suffix := range []string{"", "-wal", "-shm"} {
		err := os.Rename(dbPath+suffix, aside+suffix)
		switch {
		case err == nil, errors.Is(err, os.ErrNotExist):
		case suffix != "" && os.Remove(dbPath+suffix) == nil:
		default:
			return "", fmt.Errorf("move %s aside: %w", filepath.Base(dbPath+suffix), err)
		}
	}
	return aside, nil
}
