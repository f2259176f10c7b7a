// Package store keeps the in-memory SQLite journal of analysis runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/verte-zerg/subcrack/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run data. The database lives in memory
// and disappears when the store is closed.
type Store struct {
	db *sql.DB
}

// Open creates a named in-memory database and applies migrations.
func Open(name string) (*Store, error) {
	if name == "" {
		name = "subcrack"
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(name))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// The memory database is dropped with its last connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			at TEXT NOT NULL,
			input_runes INTEGER NOT NULL,
			letters INTEGER NOT NULL,
			rule_count INTEGER NOT NULL,
			rules TEXT NOT NULL,
			substituted TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_letters (
			run_id INTEGER NOT NULL,
			letter TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (run_id, letter)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_run_letters_letter ON run_letters(letter);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores an analysis run and its letter counts.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord, ruleCount int, letters []model.LetterCount) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (at, input_runes, letters, rule_count, rules, substituted)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.At.Format(time.RFC3339Nano),
		run.InputRunes,
		run.Letters,
		ruleCount,
		run.Rules,
		run.Substituted,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(letters) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_letters (run_id, letter, count) VALUES (?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, lc := range letters {
			if _, err := stmt.ExecContext(ctx, id, lc.Letter, lc.Count); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first. A limit of 0 or
// less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	query := `SELECT id, at, input_runes, letters, rule_count, rules, substituted
		FROM runs
		ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunSummary
	for rows.Next() {
		var run model.RunSummary
		var at string
		if err := rows.Scan(&run.RunID, &at, &run.InputRunes, &run.Letters, &run.RuleCount, &run.Rules, &run.Substituted); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, err
		}
		run.At = parsed
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// RunLetters returns the letter counts of one run ordered by letter.
func (s *Store) RunLetters(ctx context.Context, runID int64) ([]model.LetterCount, error) {
	return s.queryLetters(ctx,
		`SELECT letter, count FROM run_letters WHERE run_id = ? ORDER BY letter`, runID)
}

// LetterTotals aggregates letter counts across every run of the session.
func (s *Store) LetterTotals(ctx context.Context) ([]model.LetterCount, error) {
	return s.queryLetters(ctx,
		`SELECT letter, SUM(count) AS count FROM run_letters GROUP BY letter ORDER BY letter`)
}

func (s *Store) queryLetters(ctx context.Context, query string, args ...any) ([]model.LetterCount, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LetterCount
	for rows.Next() {
		var lc model.LetterCount
		if err := rows.Scan(&lc.Letter, &lc.Count); err != nil {
			return nil, err
		}
		result = append(result, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
