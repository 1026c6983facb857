package analysis

//go:generate go run go.uber.org/mock/mockgen -destination analyzer_mock.gen.go -package analysis . Analyzer

import (
	"context"
	"errors"
)

// ErrUnavailable means the analysis engine could not be reached or timed out.
// Workers treat it as transient and retry.
var ErrUnavailable = errors.New("analysis engine unavailable")

// Severity levels, ordered LOW < MEDIUM < HIGH < CRITICAL.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Valid reports whether s is one of the known severity levels.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// AtLeast reports whether s is at least as severe as min.
func (s Severity) AtLeast(min Severity) bool {
	return severityRank[s] >= severityRank[min]
}

// Request is the input to one analysis call.
type Request struct {
	Code       string `json:"code"`
	Repo       string `json:"repo"`
	CommitHash string `json:"commit_hash"`
}

// Vulnerability is a single finding reported by the engine.
type Vulnerability struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Remediation string   `json:"remediation"`
}

// Result is the structured outcome of one analysis call.
type Result struct {
	RiskScore       int             `json:"risk_score"`
	Summary         string          `json:"summary"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
}

// Analyzer turns a code diff into structured findings. Implementations must
// fail, not hang: calls are bounded by the context deadline.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
}
