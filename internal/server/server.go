package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sentinel-sec/sentinel/internal/pubsub"
	"github.com/sentinel-sec/sentinel/internal/store"
	"github.com/sentinel-sec/sentinel/internal/webhook"
)

const maxWebhookBody = 1 << 20 // 1 MB

// Options configures the HTTP server.
type Options struct {
	Addr          string
	WebhookSecret string
	// InsecureDevMode disables signature verification. Refused at config load
	// unless explicitly opted into; never a silent default.
	InsecureDevMode bool
	MainBranchRef   string
}

// Server is the synchronous entry point: webhook ingestion plus read-only
// projections over the store. Depends only on the Store and Enqueuer interfaces.
type Server struct {
	store    store.Store
	producer pubsub.Enqueuer
	opts     Options
	http     *http.Server
	log      *slog.Logger
}

// NewServer returns the HTTP server with all routes mounted.
func NewServer(s store.Store, p pubsub.Enqueuer, opts Options) *Server {
	srv := &Server{store: s, producer: p, opts: opts, log: slog.Default()}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", srv.handleHealth)
	r.Post("/webhooks/github", srv.handleWebhook)
	r.Get("/repositories", srv.handleListRepositories)
	r.Get("/repositories/{id}/commits", srv.handleListCommits)
	r.Get("/dashboard-summary", srv.handleDashboardSummary)
	r.Post("/scans/{commitHash}", srv.handleRescan)
	r.Get("/scans/{commitHash}", srv.handleListScans)

	srv.http = &http.Server{Addr: opts.Addr, Handler: r}
	return srv
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// handleWebhook ingests GitHub events: verify signature, validate payload,
// persist repository and commit, enqueue the scan, acknowledge. Persistence
// strictly precedes enqueueing so a worker never races ahead of the store.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody+1))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read body")
		return
	}
	if len(body) > maxWebhookBody {
		respondError(w, http.StatusBadRequest, "body too large")
		return
	}

	if s.opts.InsecureDevMode {
		s.log.Warn("signature verification disabled (insecure dev mode)")
	} else if err := webhook.VerifySignature(body, r.Header.Get(webhook.SignatureHeader), s.opts.WebhookSecret); err != nil {
		// The signature value itself is never logged.
		s.log.Warn("webhook rejected", "reason", err, "remote", r.RemoteAddr)
		switch {
		case errors.Is(err, webhook.ErrMalformedSignature):
			respondError(w, http.StatusBadRequest, "malformed signature header")
		default:
			respondError(w, http.StatusUnauthorized, "signature verification failed")
		}
		return
	}

	switch event := r.Header.Get("X-GitHub-Event"); event {
	case "ping":
		respondJSON(w, http.StatusOK, map[string]string{"message": "pong"})
		return
	case "push":
		s.handlePush(w, r, body)
		return
	default:
		respondJSON(w, http.StatusOK, map[string]string{"message": "ignored", "event": event})
		return
	}
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request, body []byte) {
	ev, err := webhook.ParsePushEvent(body)
	if err != nil {
		var fe *webhook.FieldErrors
		if errors.As(err, &fe) {
			s.log.Info("invalid push payload", "fields", fe.Fields)
			respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload structure", "fields": fe.Fields})
			return
		}
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if ev.Ref != s.opts.MainBranchRef {
		respondJSON(w, http.StatusOK, map[string]string{"message": "ignored", "ref": ev.Ref})
		return
	}

	ctx := r.Context()
	repoID, err := s.store.UpsertRepository(ctx, &store.RepositoryRow{
		ExternalID: ev.Repository.ID,
		Name:       ev.Repository.Name,
		FullName:   ev.Repository.FullName,
		HTMLURL:    ev.Repository.HTMLURL,
	})
	if err != nil {
		s.log.Error("upsert repository", "external_id", ev.Repository.ID, "err", err)
		respondError(w, http.StatusInternalServerError, "internal processing error")
		return
	}

	inserted, err := s.store.InsertCommit(ctx, &store.CommitRow{
		RepositoryID: repoID,
		Hash:         ev.HeadCommit.ID,
		Message:      ev.HeadCommit.Message,
		AuthorName:   ev.HeadCommit.Author.Name,
		AuthorEmail:  ev.HeadCommit.Author.Email,
		IngestedAt:   time.Now().UTC(),
	})
	if err != nil {
		s.log.Error("insert commit", "hash", ev.HeadCommit.ID, "err", err)
		respondError(w, http.StatusInternalServerError, "internal processing error")
		return
	}
	if !inserted {
		// Webhook redelivery: the first delivery already queued the scan.
		respondJSON(w, http.StatusOK, map[string]string{"message": "duplicate delivery", "hash": ev.HeadCommit.ID})
		return
	}

	jobID, err := s.producer.Enqueue(ctx, ev.HeadCommit.ID, ev.Repository.HTMLURL, ev.HeadCommit.Author.Email)
	if err != nil {
		// The commit is persisted; a missed scan is recoverable via POST /scans/{hash}.
		s.log.Error("scan scheduling failed", "hash", ev.HeadCommit.ID, "err", err)
		respondJSON(w, http.StatusAccepted, map[string]string{"message": "commit recorded, scan scheduling failed", "hash": ev.HeadCommit.ID})
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"message": "scan queued", "job_id": jobID})
}

// handleRescan re-triggers a scan for an already-ingested commit. Recovery
// path for enqueue failures after persistence.
func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "commitHash")
	commit, err := s.store.GetCommitByHash(r.Context(), hash)
	if err != nil {
		if errors.Is(err, store.ErrCommitNotFound) {
			respondError(w, http.StatusNotFound, "unknown commit hash")
			return
		}
		s.log.Error("rescan lookup", "hash", hash, "err", err)
		respondError(w, http.StatusInternalServerError, "internal processing error")
		return
	}
	jobID, err := s.producer.Enqueue(r.Context(), commit.Hash, commit.RepoHTMLURL, commit.AuthorEmail)
	if err != nil {
		s.log.Error("rescan scheduling failed", "hash", hash, "err", err)
		respondError(w, http.StatusServiceUnavailable, "scan queue unavailable")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"message": "scan queued", "job_id": jobID})
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "commitHash")
	commit, err := s.store.GetCommitByHash(r.Context(), hash)
	if err != nil {
		if errors.Is(err, store.ErrCommitNotFound) {
			respondError(w, http.StatusNotFound, "unknown commit hash")
			return
		}
		s.log.Error("scan lookup", "hash", hash, "err", err)
		respondError(w, http.StatusInternalServerError, "internal processing error")
		return
	}
	scans, err := s.store.ListScanResults(r.Context(), commit.ID)
	if err != nil {
		s.log.Error("list scans", "hash", hash, "err", err)
		respondError(w, http.StatusInternalServerError, "internal processing error")
		return
	}
	respondJSON(w, http.StatusOK, scansResponse(hash, scans))
}

func (s *Server) handleListRepositories(w http.ResponseWriter, r *http.Request) {
	repos, err := s.store.ListRepositories(r.Context())
	if err != nil {
		s.log.Error("list repositories", "err", err)
		respondError(w, http.StatusInternalServerError, "internal processing error")
		return
	}
	out := make([]map[string]any, 0, len(repos))
	for _, repo := range repos {
		out = append(out, map[string]any{
			"id":        repo.ID,
			"name":      repo.Name,
			"full_name": repo.FullName,
			"html_url":  repo.HTMLURL,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleListCommits(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid repository id")
		return
	}
	commits, err := s.store.ListCommits(r.Context(), id)
	if err != nil {
		s.log.Error("list commits", "repository_id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "internal processing error")
		return
	}
	out := make([]map[string]any, 0, len(commits))
	for _, c := range commits {
		out = append(out, map[string]any{
			"hash":         c.Hash,
			"message":      c.Message,
			"author_name":  c.AuthorName,
			"author_email": c.AuthorEmail,
			"ingested_at":  c.IngestedAt,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.store.DashboardSummary(r.Context())
	if err != nil {
		s.log.Error("dashboard summary", "err", err)
		respondError(w, http.StatusInternalServerError, "internal processing error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total_scans":              sum.TotalScans,
		"average_risk_score":       sum.AverageRiskScore,
		"critical_vulnerabilities": sum.CriticalFindings,
		"active_repos":             sum.ActiveRepos,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Warn("health check failed", "err", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func scansResponse(hash string, scans []store.ScanResultRow) map[string]any {
	out := make([]map[string]any, 0, len(scans))
	for _, sc := range scans {
		findings := make([]map[string]string, 0, len(sc.Findings))
		for _, f := range sc.Findings {
			findings = append(findings, map[string]string{
				"type":        f.Type,
				"severity":    f.Severity,
				"description": f.Description,
				"location":    f.Location,
				"remediation": f.Remediation,
			})
		}
		out = append(out, map[string]any{
			"scan_id":         sc.ID,
			"risk_score":      sc.RiskScore,
			"summary":         sc.Summary,
			"created_at":      sc.CreatedAt,
			"vulnerabilities": findings,
		})
	}
	return map[string]any{"commit_hash": hash, "scans": out}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
