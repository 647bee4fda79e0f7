package scan

import (
	"database/sql"
	"fmt"
	"strings"
)

// Store provides CRUD operations on the scan index database.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpsertEntry inserts or updates an entry keyed by its relative path.
func (s *Store) UpsertEntry(e Entry) error {
	l := sub("store")
	l.Debug("UpsertEntry", "path", e.Path, "type", e.Type, "isDir", e.IsDir)
	_, err := s.db.Exec(`
		INSERT INTO files (path, name, type, size, mtime, is_dir, seen)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name   = excluded.name,
			type   = excluded.type,
			size   = excluded.size,
			mtime  = excluded.mtime,
			is_dir = excluded.is_dir,
			seen   = excluded.seen
	`, e.Path, e.Name, e.Type, e.Size, e.Mtime, boolToInt(e.IsDir), e.Seen)
	if err != nil {
		l.Error("UpsertEntry failed", "path", e.Path, "err", err)
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

// GetEntry returns the entry for the given relative path, or (nil, nil)
// when the path is not indexed.
func (s *Store) GetEntry(path string) (*Entry, error) {
	row := s.db.QueryRow(`
		SELECT path, name, type, size, mtime, is_dir, seen FROM files WHERE path = ?
	`, path)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// DeleteEntry removes the entry for the given relative path. Removing a
// path that is not indexed is a no-op.
func (s *Store) DeleteEntry(path string) error {
	sub("store").Debug("DeleteEntry", "path", path)
	_, err := s.db.Exec(`DELETE FROM files WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// DeleteTree removes the entry at path and every entry nested beneath it.
// Used when a directory disappears or becomes ignored.
func (s *Store) DeleteTree(path string) error {
	sub("store").Debug("DeleteTree", "path", path)
	_, err := s.db.Exec(`DELETE FROM files WHERE path = ? OR path LIKE ? ESCAPE '\'`,
		path, escapeLike(path)+"/%")
	if err != nil {
		return fmt.Errorf("delete tree: %w", err)
	}
	return nil
}

// escapeLike escapes LIKE metacharacters so a path containing _ or %
// matches literally in prefix queries.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// DeleteNotSeenSince removes entries whose seen stamp is older than the
// given cutoff. The seed scan uses this to drop paths that vanished (or
// became ignored) while the daemon was down.
func (s *Store) DeleteNotSeenSince(cutoff int64) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM files WHERE seen < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		sub("store").Info("stale entries removed", "count", n)
	}
	return n, nil
}

// ListAll returns every indexed entry ordered by path.
func (s *Store) ListAll() ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT path, name, type, size, mtime, is_dir, seen FROM files ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list entries: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Count returns the number of indexed entries.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var isDir int
	if err := row.Scan(&e.Path, &e.Name, &e.Type, &e.Size, &e.Mtime, &isDir, &e.Seen); err != nil {
		return nil, err
	}
	e.IsDir = isDir != 0
	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
