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

	"github.com/colonyops/runway/internal/data/db"
)

var corruptMessages = []string{
	"database disk image is malformed",
	"file is not a database",
	"database corruption",
}

// IsCorruptionError reports whether err means the database file is unusable.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CANTOPEN:
			return true
		}
	}

	msg := err.Error()
	for _, m := range corruptMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsNotFoundError reports whether err is a missing row.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// RecoverFromCorruption moves the database and its WAL and SHM files aside as
// <name>.corrupt.<timestamp> so the next open starts from an empty database.
// Leftover WAL or SHM files would be replayed into the new database, so they
// are deleted when they cannot be moved.
func RecoverFromCorruption(dataDir string) error {
	dbPath := filepath.Join(dataDir, db.FileName)
	backup := fmt.Sprintf("%s.corrupt.%s", dbPath, time.Now().Format("20060102-150405"))

	for _, suffix := range []string{"", "-wal", "-shm"} {
		src := dbPath + suffix
		err := os.Rename(src, backup+suffix)
		switch {
		case err == nil, os.IsNotExist(err):
			continue
		case suffix == "":
			return fmt.Errorf("failed to back up corrupted database: %w", err)
		}

		if rmErr := os.Remove(src); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("failed to move or remove %s: %w", filepath.Base(src), err)
		}
	}

	return nil
}
