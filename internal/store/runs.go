package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nixscan/internal/analysis"
	"nixscan/internal/project"
)

// Run is one recorded analysis.
type Run struct {
	ID          int64
	Root        string
	StartedAt   time.Time
	Files       int
	Failed      int
	WithErrors  int
	Findings    int
	GraphDigest string
	DurationMS  float64
}

// FileRecord is one file of a run.
type FileRecord struct {
	Path      string
	Kind      string
	Hash      string
	HasErrors bool
}

// FileRecords converts graph file nodes.
func FileRecords(nodes []project.FileNode) []FileRecord {
	out := make([]FileRecord, len(nodes))
	for i, n := range nodes {
		out[i] = FileRecord{Path: n.Path, Kind: n.Kind.String(), Hash: n.Digest.String(), HasErrors: n.HasErrors}
	}
	return out
}

// RecordRun stores run with its files and findings in one transaction and
// sets run.ID.
func (s *Store) RecordRun(ctx context.Context, run *Run, files []FileRecord, findings []analysis.Finding) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	run.Findings = len(findings)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (root, started_at, files, failed, with_errors, findings, graph_digest, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Root, run.StartedAt, run.Files, run.Failed, run.WithErrors, run.Findings, run.GraphDigest, run.DurationMS,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	fileStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO files (run_id, path, kind, hash, has_errors) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare files: %w", err)
	}
	defer fileStmt.Close()
	for _, f := range files {
		if _, err := fileStmt.ExecContext(ctx, id, f.Path, f.Kind, f.Hash, f.HasErrors); err != nil {
			return 0, fmt.Errorf("insert file %s: %w", f.Path, err)
		}
	}

	findingStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO findings (run_id, analyzer, kind, severity, description, file, line, suggestion)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare findings: %w", err)
	}
	defer findingStmt.Close()
	for _, f := range findings {
		if _, err := findingStmt.ExecContext(ctx, id, f.Analyzer, f.Kind, int(f.Severity), f.Description, f.File, f.Line, f.Suggestion); err != nil {
			return 0, fmt.Errorf("insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	run.ID = id
	return id, nil
}

const runColumns = "id, root, started_at, files, failed, with_errors, findings, graph_digest, duration_ms"

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	r := &Run{}
	var digest sql.NullString
	var dur sql.NullFloat64
	if err := row.Scan(&r.ID, &r.Root, &r.StartedAt, &r.Files, &r.Failed, &r.WithErrors, &r.Findings, &digest, &dur); err != nil {
		return nil, err
	}
	r.GraphDigest, r.DurationMS = digest.String, dur.Float64
	return r, nil
}

// Runs returns up to limit runs of root, newest first. limit <= 0 means all.
func (s *Store) Runs(ctx context.Context, root string, limit int) ([]*Run, error) {
	q := "SELECT " + runColumns + " FROM runs WHERE root = ? ORDER BY started_at DESC, id DESC"
	args := []any{root}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("runs: %w", err)
	}
	defer rows.Close()
	var out []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestRun returns the newest run of root, or nil when there is none.
func (s *Store) LatestRun(ctx context.Context, root string) (*Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE root = ? ORDER BY started_at DESC, id DESC LIMIT 1", root))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return r, nil
}

// Files returns the file records of a run sorted by path.
func (s *Store) Files(ctx context.Context, runID int64) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT path, kind, hash, has_errors FROM files WHERE run_id = ? ORDER BY path", runID)
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	defer rows.Close()
	var out []FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.Path, &f.Kind, &f.Hash, &f.HasErrors); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Findings returns the findings of a run in SortFindings order.
func (s *Store) Findings(ctx context.Context, runID int64) ([]analysis.Finding, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT analyzer, kind, severity, description, file, line, suggestion FROM findings WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("findings: %w", err)
	}
	defer rows.Close()
	var out []analysis.Finding
	for rows.Next() {
		var f analysis.Finding
		var sev int
		var file, suggestion sql.NullString
		var line sql.NullInt64
		if err := rows.Scan(&f.Analyzer, &f.Kind, &sev, &f.Description, &file, &line, &suggestion); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		if sev < 0 || sev > int(analysis.SevCritical) {
			return nil, fmt.Errorf("finding has severity %d", sev)
		}
		f.Severity = analysis.Severity(sev)
		f.File, f.Line, f.Suggestion = file.String, int(line.Int64), suggestion.String
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	analysis.SortFindings(out)
	return out, nil
}

// DeleteRun removes a run with its files and findings.
func (s *Store) DeleteRun(ctx context.Context, runID int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", runID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

type findingKey struct {
	analyzer, kind, file, description string
}

func keyOf(f analysis.Finding) findingKey {
	return findingKey{f.Analyzer, f.Kind, f.File, f.Description}
}

// Diff compares two finding sets. Line numbers are ignored so that edits
// above a finding do not make it look new.
func Diff(before, after []analysis.Finding) (added, resolved []analysis.Finding) {
	count := func(fs []analysis.Finding) map[findingKey]int {
		m := make(map[findingKey]int, len(fs))
		for _, f := range fs {
			m[keyOf(f)]++
		}
		return m
	}
	prev, next := count(before), count(after)
	for _, f := range after {
		k := keyOf(f)
		if prev[k] > 0 {
			prev[k]--
			continue
		}
		added = append(added, f)
	}
	for _, f := range before {
		k := keyOf(f)
		if next[k] > 0 {
			next[k]--
			continue
		}
		resolved = append(resolved, f)
	}
	return added, resolved
}

