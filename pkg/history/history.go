// Package history stores case results across runs to spot regressions and flaky cases.
// a plain path opens a sqlite file, a mysql:// prefix selects MySQL.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	_ "modernc.org/sqlite"             // sqlite driver

	"github.com/umputun/logincheck/pkg/login"
	"github.com/umputun/logincheck/pkg/runner"
)

// ErrNotFound is returned when a case has no recorded result.
var ErrNotFound = errors.New("no recorded result")

const mysqlPrefix = "mysql://"

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	case_name TEXT NOT NULL,
	attempt INTEGER NOT NULL,
	expected TEXT NOT NULL,
	observed TEXT NOT NULL,
	status TEXT NOT NULL,
	detail TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	started_at INTEGER NOT NULL,
	verdict INTEGER NOT NULL DEFAULT 0
)`,
	`CREATE INDEX IF NOT EXISTS idx_results_case ON results (case_name, started_at)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS results (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	run_id VARCHAR(64) NOT NULL,
	case_name VARCHAR(255) NOT NULL,
	attempt INT NOT NULL,
	expected VARCHAR(32) NOT NULL,
	observed VARCHAR(32) NOT NULL,
	status VARCHAR(16) NOT NULL,
	detail TEXT NOT NULL,
	duration_ms BIGINT NOT NULL,
	started_at BIGINT NOT NULL,
	verdict TINYINT NOT NULL DEFAULT 0,
	INDEX idx_results_case (case_name, started_at)
)`,
}

// Entry is one recorded attempt. every case stores all its attempts, and the one
// that carries the case verdict (runner.CaseResult.Result) is flagged, so runs
// with --repeat compare verdict to verdict.
type Entry struct {
	RunID    string
	Case     string
	Attempt  int
	Expected login.Outcome
	Observed login.Outcome
	Status   login.Status
	Detail   string
	Duration time.Duration
	Started  time.Time
}

// Change describes a case whose result differs from its previous run.
type Change struct {
	Case   string
	Before Entry
	After  login.Result
}

// String formats the change for logs and notifications.
func (c Change) String() string {
	return fmt.Sprintf("%s: %s (%s) -> %s (%s)", c.Case, c.Before.Observed, c.Before.Status, c.After.Observed, c.After.Status)
}

// Store persists results in a sql database.
type Store struct {
	db *sql.DB
}

// Open connects to dsn and creates the schema if needed.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("empty history dsn")
	}

	driver, schema := "sqlite", sqliteSchema
	if strings.HasPrefix(dsn, mysqlPrefix) {
		driver, schema, dsn = "mysql", mysqlSchema, strings.TrimPrefix(dsn, mysqlPrefix)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1) // single writer, avoids SQLITE_BUSY
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores every attempt of the summary in one transaction.
func (s *Store) Record(ctx context.Context, sum runner.Summary) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO results
		(run_id, case_name, attempt, expected, observed, status, detail, duration_ms, started_at, verdict)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range sum.Cases {
		verdict := verdictAttempt(c)
		for i, a := range c.Attempts {
			detail, flag := "", 0
			if a.Err != nil {
				detail = a.Err.Error()
			}
			if i == verdict {
				flag = 1
			}
			if _, err = stmt.ExecContext(ctx, sum.RunID, c.Case.Name, i+1, c.Case.Expect.String(), a.Observed.String(),
				string(a.Status), detail, a.Duration.Milliseconds(), sum.Started.UnixMilli(), flag); err != nil {
				return fmt.Errorf("insert %s: %w", c.Case.Name, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// verdictAttempt is the index of the attempt runner.CaseResult.Result picks.
func verdictAttempt(c runner.CaseResult) int {
	st := c.Status()
	for i, a := range c.Attempts {
		if a.Status == st {
			return i
		}
	}
	return -1
}

// Previous returns the verdict attempt of caseName from its latest run other
// than skipRun, ErrNotFound if there is none. an empty skipRun skips nothing.
func (s *Store) Previous(ctx context.Context, caseName, skipRun string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id, case_name, attempt, expected, observed, status, detail, duration_ms, started_at
		FROM results WHERE case_name = ? AND run_id <> ? AND verdict = 1
		ORDER BY started_at DESC, id DESC LIMIT 1`, caseName, skipRun)

	var (
		e                  Entry
		expected, observed string
		status             string
		durationMs, tsMs   int64
	)
	err := row.Scan(&e.RunID, &e.Case, &e.Attempt, &expected, &observed, &status, &e.Detail, &durationMs, &tsMs)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("query %s: %w", caseName, err)
	}
	e.Expected = outcome(expected)
	e.Observed = outcome(observed)
	e.Status = login.Status(status)
	e.Duration = time.Duration(durationMs) * time.Millisecond
	e.Started = time.UnixMilli(tsMs)
	return e, nil
}

// Changed lists cases whose verdict differs from the latest run recorded before sum.
// a case is changed when its status or its observed outcome differs. cases never
// recorded before are skipped.
func (s *Store) Changed(ctx context.Context, sum runner.Summary) ([]Change, error) {
	var res []Change
	for _, c := range sum.Cases {
		prev, err := s.Previous(ctx, c.Case.Name, sum.RunID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cur := c.Result()
		if prev.Status != cur.Status || prev.Observed != cur.Observed {
			res = append(res, Change{Case: c.Case.Name, Before: prev, After: cur})
		}
	}
	return res, nil
}

// outcome maps a stored value back, "unknown" is not a valid expectation but a valid observation.
func outcome(s string) login.Outcome {
	o, err := login.ParseOutcome(s)
	if err != nil {
		return login.OutcomeUnknown
	}
	return o
}
