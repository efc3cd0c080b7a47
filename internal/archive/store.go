// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive records completed runs in a SQLite database so earlier
// results can be listed and re-emitted without querying PubMed again. The
// pipeline only writes to it; it is a history, not a cache.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-fetcher/pkg/types"
)

const defaultListLimit = 20

// timeLayout is fixed width so started_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no run matches an ID.
var ErrNotFound = errors.New("run not found")

// Run describes one archived pipeline run.
type Run struct {
	ID           string    `json:"id" yaml:"id"`
	Query        string    `json:"query" yaml:"query"`
	RefinedQuery string    `json:"refined_query" yaml:"refined_query"`
	StartedAt    time.Time `json:"started_at" yaml:"started_at"`
	PaperCount   int       `json:"paper_count" yaml:"paper_count"`
}

// Store manages the archive database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			refined_query TEXT,
			started_at TEXT NOT NULL,
			paper_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS papers (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			pubmed_id TEXT,
			title TEXT,
			publication_date TEXT,
			non_academic_authors TEXT,
			company_affiliations TEXT,
			email TEXT,
			summary TEXT,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_pubmed_id ON papers(pubmed_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run and its papers in one transaction and returns the run
// ID. A run without an ID gets a fresh UUID; a zero StartedAt becomes now.
func (s *Store) Record(ctx context.Context, run Run, papers []types.PaperResult) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.PaperCount = len(papers)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, query, refined_query, started_at, paper_count) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Query, run.RefinedQuery, run.StartedAt.UTC().Format(timeLayout), run.PaperCount,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (run_id, position, pubmed_id, title, publication_date,
			non_academic_authors, company_affiliations, email, summary)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range papers {
		authorsJSON, err := json.Marshal(p.NonAcademicAuthors)
		if err != nil {
			return "", fmt.Errorf("marshaling authors of %s: %w", p.PubmedID, err)
		}
		companiesJSON, err := json.Marshal(p.CompanyAffiliations)
		if err != nil {
			return "", fmt.Errorf("marshaling affiliations of %s: %w", p.PubmedID, err)
		}
		_, err = stmt.ExecContext(ctx,
			run.ID, i, p.PubmedID, p.Title, p.PublicationDate,
			string(authorsJSON), string(companiesJSON), p.CorrespondingEmail, p.Summary,
		)
		if err != nil {
			return "", fmt.Errorf("inserting paper %s: %w", p.PubmedID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return run.ID, nil
}

// Runs lists archived runs, newest first. limit <= 0 uses a default of 20.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, refined_query, started_at, paper_count
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Find returns the run whose ID is or starts with idPrefix. An ambiguous
// prefix is an error.
func (s *Store) Find(ctx context.Context, idPrefix string) (Run, error) {
	if idPrefix == "" {
		return Run{}, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, refined_query, started_at, paper_count
		 FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(idPrefix), idPrefix)
	if err != nil {
		return Run{}, fmt.Errorf("querying run %s: %w", idPrefix, err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		matches = append(matches, r)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}

	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, idPrefix)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("run ID prefix %q is ambiguous", idPrefix)
	}
}

// Papers returns the papers of runID in their original order.
func (s *Store) Papers(ctx context.Context, runID string) ([]types.PaperResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pubmed_id, title, publication_date, non_academic_authors,
			company_affiliations, email, summary
		 FROM papers WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying papers for run %s: %w", runID, err)
	}
	defer rows.Close()

	papers := []types.PaperResult{}
	for rows.Next() {
		var p types.PaperResult
		var authorsJSON, companiesJSON string
		if err := rows.Scan(&p.PubmedID, &p.Title, &p.PublicationDate,
			&authorsJSON, &companiesJSON, &p.CorrespondingEmail, &p.Summary); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		if err := json.Unmarshal([]byte(authorsJSON), &p.NonAcademicAuthors); err != nil {
			return nil, fmt.Errorf("decoding authors of %s: %w", p.PubmedID, err)
		}
		if err := json.Unmarshal([]byte(companiesJSON), &p.CompanyAffiliations); err != nil {
			return nil, fmt.Errorf("decoding affiliations of %s: %w", p.PubmedID, err)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var refined sql.NullString
	var startedAt string
	if err := sc.Scan(&r.ID, &r.Query, &refined, &startedAt, &r.PaperCount); err != nil {
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	r.RefinedQuery = refined.String

	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parsing started_at of run %s: %w", r.ID, err)
	}
	r.StartedAt = t
	return r, nil
}
