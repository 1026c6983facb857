package pubsub

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/sentinel-sec/sentinel/internal/analysis"
	"github.com/sentinel-sec/sentinel/internal/github"
	"github.com/sentinel-sec/sentinel/internal/store"
)

func testOptions() Options {
	return Options{
		Workers:         1,
		MaxAttempts:     3,
		CallTimeout:     time.Second,
		RateLimitMax:    100,
		RateLimitWindow: time.Second,
		InitialBackoff:  time.Millisecond,
	}
}

func commitDetail(id int64, hash string) *store.CommitDetail {
	return &store.CommitDetail{
		CommitRow:    store.CommitRow{ID: id, RepositoryID: 1, Hash: hash},
		RepoFullName: "owner/repo",
		RepoHTMLURL:  "https://github.com/owner/repo",
	}
}

func TestConsumer_ProcessJob_PersistsScanResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := store.NewMockStore(ctrl)
	an := analysis.NewMockAnalyzer(ctrl)
	df := github.NewMockDiffFetcher(ctrl)

	st.EXPECT().GetCommitByHash(gomock.Any(), "abc123").Return(commitDetail(7, "abc123"), nil)
	df.EXPECT().FetchCommitDiff(gomock.Any(), "https://github.com/owner/repo", "abc123").Return("+ leaked = true", nil)
	an.EXPECT().Analyze(gomock.Any(), analysis.Request{
		Code:       "+ leaked = true",
		Repo:       "owner/repo",
		CommitHash: "abc123",
	}).Return(&analysis.Result{
		RiskScore: 85,
		Summary:   "credentials logged",
		Vulnerabilities: []analysis.Vulnerability{
			{Type: "Sensitive Data Exposure", Severity: analysis.SeverityHigh, Description: "d", Location: "login.go:3", Remediation: "r"},
		},
	}, nil)
	var captured *store.ScanResultRow
	st.EXPECT().InsertScanResult(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *store.ScanResultRow) error {
		captured = s
		return nil
	})

	jobs := make(chan Job, 1)
	jobs <- Job{ID: "j1", CommitHash: "abc123", RepoURL: "https://github.com/owner/repo"}
	close(jobs)

	cons := NewConsumer(st, an, df, jobs, testOptions())
	if err := cons.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if captured == nil {
		t.Fatal("InsertScanResult was not called")
	}
	if captured.CommitID != 7 || captured.RiskScore != 85 || captured.Summary != "credentials logged" {
		t.Errorf("scan want commit=7 score=85 got commit=%d score=%d summary=%q", captured.CommitID, captured.RiskScore, captured.Summary)
	}
	if captured.ID == "" {
		t.Error("scan id must be generated")
	}
	if len(captured.Findings) != 1 || captured.Findings[0].Severity != "HIGH" {
		t.Errorf("findings want one HIGH got %+v", captured.Findings)
	}
	if len(cons.DeadLetters()) != 0 {
		t.Errorf("dead letters want 0 got %d", len(cons.DeadLetters()))
	}
}

func TestConsumer_TransientFailureRetriesThenSucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := store.NewMockStore(ctrl)
	an := analysis.NewMockAnalyzer(ctrl)
	df := github.NewMockDiffFetcher(ctrl)

	st.EXPECT().GetCommitByHash(gomock.Any(), "abc").Return(commitDetail(1, "abc"), nil).Times(3)
	df.EXPECT().FetchCommitDiff(gomock.Any(), gomock.Any(), "abc").Return("diff", nil).Times(3)
	gomock.InOrder(
		an.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(nil, analysis.ErrUnavailable),
		an.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(nil, analysis.ErrUnavailable),
		an.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(&analysis.Result{RiskScore: 10, Summary: "ok"}, nil),
	)
	st.EXPECT().InsertScanResult(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	jobs := make(chan Job, 1)
	jobs <- Job{ID: "j1", CommitHash: "abc", RepoURL: "https://github.com/o/r"}
	close(jobs)

	cons := NewConsumer(st, an, df, jobs, testOptions())
	if err := cons.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(cons.DeadLetters()) != 0 {
		t.Errorf("dead letters want 0 got %d", len(cons.DeadLetters()))
	}
}

func TestConsumer_ExhaustedRetriesDeadLetters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := store.NewMockStore(ctrl)
	an := analysis.NewMockAnalyzer(ctrl)
	df := github.NewMockDiffFetcher(ctrl)

	st.EXPECT().GetCommitByHash(gomock.Any(), "abc").Return(commitDetail(1, "abc"), nil).Times(3)
	df.EXPECT().FetchCommitDiff(gomock.Any(), gomock.Any(), "abc").Return("diff", nil).Times(3)
	an.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(nil, analysis.ErrUnavailable).Times(3)
	// InsertScanResult must not be called

	jobs := make(chan Job, 1)
	jobs <- Job{ID: "j1", CommitHash: "abc", RepoURL: "https://github.com/o/r"}
	close(jobs)

	cons := NewConsumer(st, an, df, jobs, testOptions())
	if err := cons.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	dead := cons.DeadLetters()
	if len(dead) != 1 {
		t.Fatalf("dead letters want 1 got %d", len(dead))
	}
	if dead[0].Job.ID != "j1" || dead[0].Attempts != 3 {
		t.Errorf("dead letter want job=j1 attempts=3 got job=%s attempts=%d", dead[0].Job.ID, dead[0].Attempts)
	}
}

func TestConsumer_MissingCommitIsNotRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := store.NewMockStore(ctrl)
	an := analysis.NewMockAnalyzer(ctrl)
	df := github.NewMockDiffFetcher(ctrl)

	st.EXPECT().GetCommitByHash(gomock.Any(), "ghost").Return(nil, store.ErrCommitNotFound).Times(1)
	// No diff fetch, no analysis, no persistence.

	jobs := make(chan Job, 1)
	jobs <- Job{ID: "j1", CommitHash: "ghost", RepoURL: "https://github.com/o/r"}
	close(jobs)

	cons := NewConsumer(st, an, df, jobs, testOptions())
	if err := cons.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	dead := cons.DeadLetters()
	if len(dead) != 1 || dead[0].Attempts != 1 {
		t.Fatalf("want one dead letter after a single attempt, got %+v", dead)
	}
}

func TestConsumer_PoolSizeBoundsConcurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := store.NewMockStore(ctrl)
	an := analysis.NewMockAnalyzer(ctrl)
	df := github.NewMockDiffFetcher(ctrl)

	const jobCount = 6
	var inFlight, peak atomic.Int32

	st.EXPECT().GetCommitByHash(gomock.Any(), gomock.Any()).Return(commitDetail(1, "h"), nil).Times(jobCount)
	df.EXPECT().FetchCommitDiff(gomock.Any(), gomock.Any(), gomock.Any()).Return("diff", nil).Times(jobCount)
	an.EXPECT().Analyze(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, analysis.Request) (*analysis.Result, error) {
		now := inFlight.Add(1)
		for {
			p := peak.Load()
			if now <= p || peak.CompareAndSwap(p, now) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return &analysis.Result{RiskScore: 1, Summary: "ok"}, nil
	}).Times(jobCount)
	st.EXPECT().InsertScanResult(gomock.Any(), gomock.Any()).Return(nil).Times(jobCount)

	jobs := make(chan Job, jobCount)
	for i := 0; i < jobCount; i++ {
		jobs <- Job{ID: "j", CommitHash: "h", RepoURL: "https://github.com/o/r"}
	}
	close(jobs)

	opts := testOptions()
	opts.Workers = 2
	cons := NewConsumer(st, an, df, jobs, opts)
	if err := cons.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("concurrent analysis calls want <= 2 got %d", p)
	}
}

func TestConsumer_RateLimiterThrottlesAnalysisCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := store.NewMockStore(ctrl)
	an := analysis.NewMockAnalyzer(ctrl)
	df := github.NewMockDiffFetcher(ctrl)

	const jobCount = 4
	st.EXPECT().GetCommitByHash(gomock.Any(), gomock.Any()).Return(commitDetail(1, "h"), nil).Times(jobCount)
	df.EXPECT().FetchCommitDiff(gomock.Any(), gomock.Any(), gomock.Any()).Return("diff", nil).Times(jobCount)
	an.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(&analysis.Result{RiskScore: 1, Summary: "ok"}, nil).Times(jobCount)
	st.EXPECT().InsertScanResult(gomock.Any(), gomock.Any()).Return(nil).Times(jobCount)

	jobs := make(chan Job, jobCount)
	for i := 0; i < jobCount; i++ {
		jobs <- Job{ID: "j", CommitHash: "h", RepoURL: "https://github.com/o/r"}
	}
	close(jobs)

	// Burst of 2, refill every 50ms: four calls need at least ~100ms even
	// though four workers are available.
	opts := testOptions()
	opts.Workers = 4
	opts.RateLimitMax = 2
	opts.RateLimitWindow = 100 * time.Millisecond

	start := time.Now()
	cons := NewConsumer(st, an, df, jobs, opts)
	if err := cons.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("rate limiter did not throttle: %d calls finished in %s", jobCount, elapsed)
	}
}
