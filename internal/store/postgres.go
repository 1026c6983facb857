package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Store using PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Store backed by the given pool. Caller owns the pool
// and must close it when done.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// UpsertRepository inserts or refreshes a repository keyed on external_id.
// Only the display name is refreshed on conflict; the first-seen full_name and
// html_url are authoritative.
func (p *Postgres) UpsertRepository(ctx context.Context, repo *RepositoryRow) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx, `
		INSERT INTO repositories (external_id, name, full_name, html_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, repo.ExternalID, repo.Name, repo.FullName, repo.HTMLURL).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert repository: %w", err)
	}
	return id, nil
}

// InsertCommit inserts a commit. Returns (true, nil) if inserted, (false, nil)
// when (repository_id, hash) already exists.
func (p *Postgres) InsertCommit(ctx context.Context, commit *CommitRow) (bool, error) {
	cmd, err := p.pool.Exec(ctx, `
		INSERT INTO commits (repository_id, hash, message, author_name, author_email, ingested_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (repository_id, hash) DO NOTHING
	`, commit.RepositoryID, commit.Hash, commit.Message, commit.AuthorName, commit.AuthorEmail, commit.IngestedAt)
	if err != nil {
		return false, fmt.Errorf("insert commit: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// InsertScanResult writes the scan row and its findings in one transaction.
func (p *Postgres) InsertScanResult(ctx context.Context, scan *ScanResultRow) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin scan tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO scans (id, commit_id, risk_score, summary, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, scan.ID, scan.CommitID, scan.RiskScore, scan.Summary, scan.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	for _, f := range scan.Findings {
		_, err = tx.Exec(ctx, `
			INSERT INTO scan_findings (scan_id, type, severity, description, location, remediation)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, scan.ID, f.Type, f.Severity, f.Description, f.Location, f.Remediation)
		if err != nil {
			return fmt.Errorf("insert finding: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// GetCommitByHash returns the commit with its repository, or ErrCommitNotFound.
func (p *Postgres) GetCommitByHash(ctx context.Context, hash string) (*CommitDetail, error) {
	var d CommitDetail
	err := p.pool.QueryRow(ctx, `
		SELECT c.id, c.repository_id, c.hash, c.message, c.author_name, c.author_email, c.ingested_at,
		       r.full_name, r.html_url
		FROM commits c
		JOIN repositories r ON r.id = c.repository_id
		WHERE c.hash = $1
		ORDER BY c.ingested_at DESC
		LIMIT 1
	`, hash).Scan(&d.ID, &d.RepositoryID, &d.Hash, &d.Message, &d.AuthorName, &d.AuthorEmail, &d.IngestedAt,
		&d.RepoFullName, &d.RepoHTMLURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCommitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get commit by hash: %w", err)
	}
	return &d, nil
}

// ListRepositories returns all repositories ordered by full name.
func (p *Postgres) ListRepositories(ctx context.Context) ([]RepositoryRow, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, external_id, name, full_name, html_url
		FROM repositories
		ORDER BY full_name
	`)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	var out []RepositoryRow
	for rows.Next() {
		var r RepositoryRow
		if err := rows.Scan(&r.ID, &r.ExternalID, &r.Name, &r.FullName, &r.HTMLURL); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListCommits returns the commits of a repository, newest first.
func (p *Postgres) ListCommits(ctx context.Context, repositoryID int64) ([]CommitRow, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, repository_id, hash, message, author_name, author_email, ingested_at
		FROM commits
		WHERE repository_id = $1
		ORDER BY ingested_at DESC
	`, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	defer rows.Close()

	var out []CommitRow
	for rows.Next() {
		var c CommitRow
		if err := rows.Scan(&c.ID, &c.RepositoryID, &c.Hash, &c.Message, &c.AuthorName, &c.AuthorEmail, &c.IngestedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListScanResults returns the scans of a commit with their findings, newest first.
func (p *Postgres) ListScanResults(ctx context.Context, commitID int64) ([]ScanResultRow, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, commit_id, risk_score, summary, created_at
		FROM scans
		WHERE commit_id = $1
		ORDER BY created_at DESC
	`, commitID)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var out []ScanResultRow
	for rows.Next() {
		var s ScanResultRow
		if err := rows.Scan(&s.ID, &s.CommitID, &s.RiskScore, &s.Summary, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		findings, err := p.listFindings(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Findings = findings
	}
	return out, nil
}

func (p *Postgres) listFindings(ctx context.Context, scanID string) ([]FindingRow, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT type, severity, description, location, remediation
		FROM scan_findings
		WHERE scan_id = $1
		ORDER BY id
	`, scanID)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer rows.Close()

	var out []FindingRow
	for rows.Next() {
		var f FindingRow
		if err := rows.Scan(&f.Type, &f.Severity, &f.Description, &f.Location, &f.Remediation); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// DashboardSummary returns the aggregates backing the dashboard.
func (p *Postgres) DashboardSummary(ctx context.Context) (*Summary, error) {
	var s Summary
	err := p.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM scans),
			(SELECT COALESCE(AVG(risk_score), 0) FROM scans),
			(SELECT COUNT(*) FROM scan_findings WHERE severity = 'CRITICAL'),
			(SELECT COUNT(*) FROM repositories)
	`).Scan(&s.TotalScans, &s.AverageRiskScore, &s.CriticalFindings, &s.ActiveRepos)
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	return &s, nil
}

// Ping checks the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
