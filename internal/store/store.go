// Package store persists the daemon's latest scan generations to sqlite so
// spec status survives restarts. One-shot commands never open the store.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spectrace/spectrace/internal/coverage"
	"github.com/spectrace/spectrace/internal/scanner"
)

type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, err
		}
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(GetSchema()); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	_, _ = s.db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, GetSchemaVersion())
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveGeneration replaces the stored snapshot and reference set of one
// spec with the given generation.
func (s *Store) SaveGeneration(spec string, generation uint64, report *coverage.Report, refs []scanner.Reference, builtAt time.Time, duration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO snapshots (spec, generation, total_rules, covered_rules, orphaned_rules, invalid_refs, coverage_percent, reference_count, built_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(spec) DO UPDATE SET
			generation = excluded.generation,
			total_rules = excluded.total_rules,
			covered_rules = excluded.covered_rules,
			orphaned_rules = excluded.orphaned_rules,
			invalid_refs = excluded.invalid_refs,
			coverage_percent = excluded.coverage_percent,
			reference_count = excluded.reference_count,
			built_at = excluded.built_at,
			duration_ms = excluded.duration_ms
	`, spec, generation, report.TotalRules, len(report.Covered), len(report.Orphaned),
		len(report.Invalid), report.Percent(), len(refs), builtAt.UTC(), duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM refs WHERE spec = ?", spec); err != nil {
		return fmt.Errorf("clear refs: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO refs (spec, rule_id, verb, file, line, col, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, ref := range refs {
		if _, err := stmt.Exec(spec, ref.RuleID, string(ref.Verb), ref.File, ref.Line, ref.Column, ref.Raw); err != nil {
			return fmt.Errorf("insert ref %s: %w", ref.RuleID, err)
		}
	}

	return tx.Commit()
}

// Snapshot is the persisted summary of one spec's latest generation.
type Snapshot struct {
	Spec            string    `json:"spec"`
	Generation      uint64    `json:"generation"`
	TotalRules      int       `json:"total_rules"`
	CoveredRules    int       `json:"covered_rules"`
	OrphanedRules   int       `json:"orphaned_rules"`
	InvalidRefs     int       `json:"invalid_refs"`
	CoveragePercent float64   `json:"coverage_percent"`
	ReferenceCount  int       `json:"reference_count"`
	BuiltAt         time.Time `json:"built_at"`
	DurationMS      int64     `json:"duration_ms"`
}

// GetSnapshot returns the stored summary for a spec, or nil when the spec
// has never been saved.
func (s *Store) GetSnapshot(spec string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{}
	err := s.db.QueryRow(`
		SELECT spec, generation, total_rules, covered_rules, orphaned_rules, invalid_refs, coverage_percent, reference_count, built_at, duration_ms
		FROM snapshots WHERE spec = ?
	`, spec).Scan(
		&snap.Spec, &snap.Generation, &snap.TotalRules, &snap.CoveredRules, &snap.OrphanedRules,
		&snap.InvalidRefs, &snap.CoveragePercent, &snap.ReferenceCount, &snap.BuiltAt, &snap.DurationMS,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns every stored spec summary, sorted by spec name.
func (s *Store) ListSnapshots() ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT spec, generation, total_rules, covered_rules, orphaned_rules, invalid_refs, coverage_percent, reference_count, built_at, duration_ms
		FROM snapshots ORDER BY spec ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*Snapshot
	for rows.Next() {
		snap := &Snapshot{}
		if err := rows.Scan(
			&snap.Spec, &snap.Generation, &snap.TotalRules, &snap.CoveredRules, &snap.OrphanedRules,
			&snap.InvalidRefs, &snap.CoveragePercent, &snap.ReferenceCount, &snap.BuiltAt, &snap.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// GetReferences returns the stored references of one spec, optionally
// restricted to one rule, in (file, line, column) order.
func (s *Store) GetReferences(spec, ruleID string) ([]scanner.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT rule_id, verb, file, line, col, raw
		FROM refs WHERE spec = ?`
	args := []any{spec}
	if ruleID != "" {
		query += " AND rule_id = ?"
		args = append(args, ruleID)
	}
	query += " ORDER BY file ASC, line ASC, col ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get references: %w", err)
	}
	defer rows.Close()

	var refs []scanner.Reference
	for rows.Next() {
		var ref scanner.Reference
		var verb string
		var column sql.NullInt64
		var raw sql.NullString

		if err := rows.Scan(&ref.RuleID, &verb, &ref.File, &ref.Line, &column, &raw); err != nil {
			return nil, fmt.Errorf("scan reference: %w", err)
		}
		ref.Verb = scanner.Verb(verb)
		if column.Valid {
			ref.Column = int(column.Int64)
		}
		if raw.Valid {
			ref.Raw = raw.String
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
