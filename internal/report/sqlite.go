package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
create table if not exists runs (
	id         text not null primary key,
	package    text not null,
	started_at text not null,
	failed     integer not null,
	fatal      text
);
create table if not exists diagnostics (
	run_id   text not null references runs(id),
	code     text not null,
	severity text not null,
	file     text,
	line     integer,
	col      integer,
	module   text,
	message  text not null
);
create index if not exists diagnostics_run on diagnostics(run_id);
`

// SQLiteSink records every run and its diagnostics in a SQLite database.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (creating when needed) the history database at path.
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening report database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating report schema in %s: %w", path, err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Close() error { return s.db.Close() }

// Record stores doc in a single transaction.
func (s *SQLiteSink) Record(ctx context.Context, doc *Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", doc.RunID, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`insert into runs (id, package, started_at, failed, fatal) values (?, ?, ?, ?, ?)`,
		doc.RunID, doc.Package, doc.StartedAt.Format(time.RFC3339Nano), doc.Failed, nullString(doc.Fatal))
	if err != nil {
		return fmt.Errorf("recording run %s: %w", doc.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`insert into diagnostics (run_id, code, severity, file, line, col, module, message) values (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", doc.RunID, err)
	}
	defer stmt.Close()
	for _, list := range [][]Entry{doc.Errors, doc.Warnings} {
		for _, e := range list {
			if _, err := stmt.ExecContext(ctx, doc.RunID, e.Code, e.Severity, e.File, e.Line, e.Column, e.Module, e.Message); err != nil {
				return fmt.Errorf("recording run %s: %w", doc.RunID, err)
			}
		}
	}
	return tx.Commit()
}

// Entries returns the diagnostics stored for a run, errors first.
func (s *SQLiteSink) Entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`select code, severity, file, line, col, module, message from diagnostics
		 where run_id = ? order by severity = 'warning', rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var file, module sql.NullString
		if err := rows.Scan(&e.Code, &e.Severity, &file, &e.Line, &e.Column, &module, &e.Message); err != nil {
			return nil, fmt.Errorf("reading run %s: %w", runID, err)
		}
		e.File = file.String
		e.Module = module.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// RunCount returns the number of recorded runs of pkg.
func (s *SQLiteSink) RunCount(ctx context.Context, pkg string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `select count(*) from runs where package = ?`, pkg).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting runs of %s: %w", pkg, err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
