// Package trace persists dispatch-profiler snapshots to a SQLite file
// for offline analysis. It is an observability sink: nothing in the
// runtime reads it back, and it stores counters, not objects.
package trace

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/chazu/trellis/dispatch"
)

// Store writes dispatch statistics to a SQLite database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Open opens (or creates) the statistics database at the given path.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS dispatch_stats (
		generic   TEXT NOT NULL,
		signature TEXT NOT NULL,
		count     INTEGER NOT NULL,
		PRIMARY KEY (generic, signature)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Flush writes a profiler snapshot. Counts are cumulative since the
// profiler's last reset, so an existing row is overwritten, not summed.
func (s *Store) Flush(stats []dispatch.DispatchStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO dispatch_stats (generic, signature, count)
		VALUES (?, ?, ?)
		ON CONFLICT (generic, signature) DO UPDATE SET count = excluded.count`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, st := range stats {
		if _, err := stmt.Exec(st.Generic, dispatch.SignatureString(st.Signature), st.Count); err != nil {
			tx.Rollback()
			return fmt.Errorf("writing stat for %s: %w", st.Generic, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// Stat is one persisted counter row.
type Stat struct {
	Generic   string
	Signature string
	Count     uint64
}

// Top returns the n highest-count rows, most dispatched first.
func (s *Store) Top(n int) ([]Stat, error) {
	rows, err := s.db.Query(
		`SELECT generic, signature, count FROM dispatch_stats
		 ORDER BY count DESC, generic, signature LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	defer rows.Close()

	var out []Stat
	for rows.Next() {
		var st Stat
		if err := rows.Scan(&st.Generic, &st.Signature, &st.Count); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// ForGeneric returns every persisted row for one generic.
func (s *Store) ForGeneric(generic string) ([]Stat, error) {
	rows, err := s.db.Query(
		`SELECT generic, signature, count FROM dispatch_stats
		 WHERE generic = ? ORDER BY signature`, generic)
	if err != nil {
		return nil, fmt.Errorf("querying stats for %s: %w", generic, err)
	}
	defer rows.Close()

	var out []Stat
	for rows.Next() {
		var st Stat
		if err := rows.Scan(&st.Generic, &st.Signature, &st.Count); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// String implements the Stringer interface.
func (st Stat) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s: %d", st.Generic, st.Signature, st.Count)
	return b.String()
}
