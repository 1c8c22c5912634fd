// Package store persists the report selection and the last company/year
// between CLI runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/csrlens/internal/model"
)

const (
	keyCompany = "company"
	keyYear    = "year"
)

// Store implements selection persistence using modernc.org/sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, eris.Wrapf(err, "store: create dir for %s", path)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	// a single connection keeps ":memory:" consistent across queries
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS selected_reports (
	id             TEXT PRIMARY KEY,
	security       TEXT NOT NULL,
	report_year    INTEGER NOT NULL,
	indicator_name TEXT NOT NULL,
	report_url     TEXT NOT NULL DEFAULT '',
	added_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS session (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_selected_reports_security ON selected_reports(security, report_year);
`

// Migrate creates the schema
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// AddReport adds r to the selection. Adding an already selected report
// refreshes its URL.
func (s *Store) AddReport(ctx context.Context, r model.Report) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO selected_reports (id, security, report_year, indicator_name, report_url, added_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET report_url = excluded.report_url`,
		r.ID(), r.Security, r.ReportYear, r.IndicatorName, r.ReportURL, time.Now().UTC(),
	)
	return eris.Wrapf(err, "store: add report %s", r.ID())
}

// RemoveReport drops r from the selection and reports whether it was there
func (s *Store) RemoveReport(ctx context.Context, r model.Report) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM selected_reports WHERE id = ?`, r.ID())
	if err != nil {
		return false, eris.Wrapf(err, "store: remove report %s", r.ID())
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "store: rows affected")
	}
	return n > 0, nil
}

// ListReports returns the selection ordered by security, year and indicator
func (s *Store) ListReports(ctx context.Context) ([]model.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT security, report_year, indicator_name, report_url
		 FROM selected_reports
		 ORDER BY security, report_year, indicator_name`)
	if err != nil {
		return nil, eris.Wrap(err, "store: list reports")
	}
	defer rows.Close()

	var out []model.Report
	for rows.Next() {
		var r model.Report
		if err := rows.Scan(&r.Security, &r.ReportYear, &r.IndicatorName, &r.ReportURL); err != nil {
			return nil, eris.Wrap(err, "store: scan report")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate reports")
}

// ClearReports empties the selection and returns how many were removed
func (s *Store) ClearReports(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM selected_reports`)
	if err != nil {
		return 0, eris.Wrap(err, "store: clear reports")
	}
	n, err := res.RowsAffected()
	return n, eris.Wrap(err, "store: rows affected")
}

// SaveLast remembers the company and year of the last search.
// Changing company or year clears the selection, matching the dashboard.
func (s *Store) SaveLast(ctx context.Context, company string, year int) error {
	prev, prevYear, err := s.LoadLast(ctx)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if prev != "" && (prev != company || prevYear != year) {
		if _, err := tx.ExecContext(ctx, `DELETE FROM selected_reports`); err != nil {
			return eris.Wrap(err, "store: clear on selection change")
		}
	}
	for k, v := range map[string]string{keyCompany: company, keyYear: strconv.Itoa(year)} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return eris.Wrapf(err, "store: save %s", k)
		}
	}
	return eris.Wrap(tx.Commit(), "store: commit")
}

// LoadLast returns the remembered company and year, empty when unset
func (s *Store) LoadLast(ctx context.Context) (string, int, error) {
	company, err := s.get(ctx, keyCompany)
	if err != nil {
		return "", 0, err
	}
	yearStr, err := s.get(ctx, keyYear)
	if err != nil {
		return "", 0, err
	}
	year, _ := strconv.Atoi(yearStr)
	return company, year, nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, eris.Wrapf(err, "store: get %s", key)
}
