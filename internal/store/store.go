package store

//go:generate go run go.uber.org/mock/mockgen -destination store_mock.gen.go -package store . Store

import (
	"context"
	"errors"
	"time"
)

// ErrCommitNotFound is returned by GetCommitByHash for unknown hashes.
var ErrCommitNotFound = errors.New("commit not found")

// Store is the persistence interface. The ingestion handler, worker pool, and
// read projections depend only on this interface; only main and this package
// touch *pgxpool.Pool.
type Store interface {
	// UpsertRepository inserts the repository or, on external-id conflict,
	// refreshes the display name only. Returns the row id either way.
	UpsertRepository(ctx context.Context, repo *RepositoryRow) (int64, error)
	// InsertCommit inserts a commit. Returns (false, nil) when the
	// (repository_id, hash) pair already exists.
	InsertCommit(ctx context.Context, commit *CommitRow) (inserted bool, err error)
	// InsertScanResult persists a scan and its findings atomically.
	InsertScanResult(ctx context.Context, scan *ScanResultRow) error
	GetCommitByHash(ctx context.Context, hash string) (*CommitDetail, error)
	ListRepositories(ctx context.Context) ([]RepositoryRow, error)
	ListCommits(ctx context.Context, repositoryID int64) ([]CommitRow, error)
	ListScanResults(ctx context.Context, commitID int64) ([]ScanResultRow, error)
	DashboardSummary(ctx context.Context) (*Summary, error)
	Ping(ctx context.Context) error
}

// RepositoryRow is the row shape for repositories.
type RepositoryRow struct {
	ID         int64
	ExternalID int64
	Name       string
	FullName   string
	HTMLURL    string
}

// CommitRow is the row shape for commits.
type CommitRow struct {
	ID           int64
	RepositoryID int64
	Hash         string
	Message      string
	AuthorName   string
	AuthorEmail  string
	IngestedAt   time.Time
}

// CommitDetail is a commit joined with its repository, as the worker pool and
// the manual rescan endpoint need both.
type CommitDetail struct {
	CommitRow
	RepoFullName string
	RepoHTMLURL  string
}

// ScanResultRow is the row shape for scans plus its findings.
type ScanResultRow struct {
	ID        string
	CommitID  int64
	RiskScore int
	Summary   string
	CreatedAt time.Time
	Findings  []FindingRow
}

// FindingRow is the row shape for scan_findings.
type FindingRow struct {
	Type        string
	Severity    string
	Description string
	Location    string
	Remediation string
}

// Summary holds the dashboard aggregates.
type Summary struct {
	TotalScans       int64
	AverageRiskScore float64
	CriticalFindings int64
	ActiveRepos      int64
}
