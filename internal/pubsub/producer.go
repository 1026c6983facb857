package pubsub

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// ErrQueueFull means the scan queue has no capacity. The commit is already
// persisted when this happens; recovery goes through the manual rescan route.
var ErrQueueFull = errors.New("scan queue full")

// Enqueuer schedules a scan for a persisted commit. Implemented by Producer.
type Enqueuer interface {
	Enqueue(ctx context.Context, commitHash, repoURL, pusherEmail string) (jobID string, err error)
}

// Producer enqueues scan jobs onto the bounded queue channel.
type Producer struct {
	jobs chan<- Job
	log  *slog.Logger
}

// NewProducer returns a producer that sends jobs to the given channel.
func NewProducer(jobs chan<- Job) *Producer {
	return &Producer{jobs: jobs, log: slog.Default()}
}

// Enqueue creates a job for the commit and places it on the queue without
// blocking: the webhook request path must stay short, so a full queue is an
// immediate ErrQueueFull rather than a wait.
func (p *Producer) Enqueue(ctx context.Context, commitHash, repoURL, pusherEmail string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	job := Job{ID: uuid.NewString(), CommitHash: commitHash, RepoURL: repoURL, PusherEmail: pusherEmail}
	select {
	case p.jobs <- job:
		p.log.Debug("scan job enqueued", "job_id", job.ID, "hash", commitHash)
		return job.ID, nil
	default:
		return "", ErrQueueFull
	}
}
