package pubsub

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sentinel-sec/sentinel/internal/analysis"
	"github.com/sentinel-sec/sentinel/internal/github"
	"github.com/sentinel-sec/sentinel/internal/store"
)

// Options configures the worker pool.
type Options struct {
	// Workers is the number of jobs processed concurrently.
	Workers int
	// MaxAttempts bounds retries per job; after exhaustion the job is dead-lettered.
	MaxAttempts int
	// CallTimeout bounds each analysis engine call.
	CallTimeout time.Duration
	// RateLimitMax analysis calls are permitted per RateLimitWindow, shared
	// across all workers. Pool size and rate limit are enforced independently.
	RateLimitMax    int
	RateLimitWindow time.Duration
	// InitialBackoff overrides the first retry delay (tests). Zero means default.
	InitialBackoff time.Duration
}

// DeadLetter is a job that exhausted its retry budget, kept for inspection.
type DeadLetter struct {
	Job      Job
	Attempts int
	Err      string
	FailedAt time.Time
}

// Consumer is the worker pool: it drains the job channel, drives each job to a
// persisted scan result or a dead-letter, and retries transient failures with
// exponential backoff.
type Consumer struct {
	store    store.Store
	analyzer analysis.Analyzer
	diffs    github.DiffFetcher
	jobs     <-chan Job
	limiter  *rate.Limiter
	opts     Options
	log      *slog.Logger

	mu   sync.Mutex
	dead []DeadLetter
}

// NewConsumer returns a worker pool reading jobs from the given channel.
func NewConsumer(s store.Store, a analysis.Analyzer, d github.DiffFetcher, jobs <-chan Job, opts Options) *Consumer {
	perSecond := float64(opts.RateLimitMax) / opts.RateLimitWindow.Seconds()
	return &Consumer{
		store:    s,
		analyzer: a,
		diffs:    d,
		jobs:     jobs,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), opts.RateLimitMax),
		opts:     opts,
		log:      slog.Default(),
	}
}

// Run starts Workers goroutines and blocks until the context is cancelled or
// the jobs channel is closed and drained.
func (c *Consumer) Run(ctx context.Context) error {
	g := new(errgroup.Group)
	for i := 0; i < c.opts.Workers; i++ {
		g.Go(func() error {
			c.runWorker(ctx)
			return nil
		})
	}
	return g.Wait()
}

func (c *Consumer) runWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.log.Debug("worker stopping")
			return
		case job, ok := <-c.jobs:
			if !ok {
				c.log.Debug("jobs channel closed")
				return
			}
			c.process(ctx, job)
		}
	}
}

// process retries transient failures in place with exponential backoff. A job
// holds its worker slot while backing off, which keeps in-flight work bounded
// by the pool size.
func (c *Consumer) process(ctx context.Context, job Job) {
	attempts := 0
	op := func() error {
		attempts++
		err := c.processOnce(ctx, job)
		if err != nil && attempts < c.opts.MaxAttempts && retryable(err) {
			c.log.Warn("scan attempt failed, will retry", "job_id", job.ID, "hash", job.CommitHash, "attempt", attempts, "err", err)
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	if c.opts.InitialBackoff > 0 {
		b.InitialInterval = c.opts.InitialBackoff
	}
	b.MaxElapsedTime = 0
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		c.deadLetter(job, attempts, err)
		return
	}
	c.log.Info("scan complete", "job_id", job.ID, "hash", job.CommitHash, "attempts", attempts)
}

func (c *Consumer) processOnce(ctx context.Context, job Job) error {
	commit, err := c.store.GetCommitByHash(ctx, job.CommitHash)
	if err != nil {
		if errors.Is(err, store.ErrCommitNotFound) {
			return permanent(err)
		}
		return err
	}

	diff, err := c.diffs.FetchCommitDiff(ctx, job.RepoURL, job.CommitHash)
	if err != nil {
		if errors.Is(err, github.ErrNotFound) {
			return permanent(err)
		}
		return err
	}

	// Global throttle on the external engine, independent of pool size.
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	callCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	defer cancel()
	result, err := c.analyzer.Analyze(callCtx, analysis.Request{
		Code:       diff,
		Repo:       commit.RepoFullName,
		CommitHash: job.CommitHash,
	})
	if err != nil {
		return err
	}

	findings := make([]store.FindingRow, 0, len(result.Vulnerabilities))
	for _, v := range result.Vulnerabilities {
		findings = append(findings, store.FindingRow{
			Type:        v.Type,
			Severity:    string(v.Severity),
			Description: v.Description,
			Location:    v.Location,
			Remediation: v.Remediation,
		})
	}
	return c.store.InsertScanResult(ctx, &store.ScanResultRow{
		ID:        uuid.NewString(),
		CommitID:  commit.ID,
		RiskScore: result.RiskScore,
		Summary:   result.Summary,
		CreatedAt: time.Now().UTC(),
		Findings:  findings,
	})
}

func (c *Consumer) deadLetter(job Job, attempts int, err error) {
	c.log.Error("scan dead-lettered", "job_id", job.ID, "hash", job.CommitHash, "attempts", attempts, "err", err)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dead = append(c.dead, DeadLetter{Job: job, Attempts: attempts, Err: err.Error(), FailedAt: time.Now().UTC()})
}

// DeadLetters returns a copy of the jobs that exhausted their retry budget.
func (c *Consumer) DeadLetters() []DeadLetter {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]DeadLetter, len(c.dead))
	copy(out, c.dead)
	return out
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return permanentError{err: err} }

// retryable reports whether an attempt error is worth retrying. Commit or
// diff disappearance cannot heal; everything else (engine unavailable,
// timeouts, store faults) is transient.
func retryable(err error) bool {
	var perm permanentError
	return !errors.As(err, &perm)
}
