package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_FetchCommitDiff(t *testing.T) {
	const diff = "diff --git a/login.go b/login.go\n+ log.Println(user, pass)\n"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/commits/abc123" {
			t.Errorf("path want /repos/owner/repo/commits/abc123 got %s", r.URL.Path)
		}
		if accept := r.Header.Get("Accept"); accept != "application/vnd.github.diff" {
			t.Errorf("accept want application/vnd.github.diff got %s", accept)
		}
		_, _ = w.Write([]byte(diff))
	}))
	defer ts.Close()

	c := NewClient("")
	c.BaseURL = ts.URL
	got, err := c.FetchCommitDiff(context.Background(), "https://github.com/owner/repo", "abc123")
	if err != nil {
		t.Fatal(err)
	}
	if got != diff {
		t.Errorf("diff want %q got %q", diff, got)
	}
}

func TestClient_FetchCommitDiff_SendsToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "token pat123" {
			t.Errorf("authorization want token pat123 got %s", auth)
		}
		_, _ = w.Write([]byte("diff"))
	}))
	defer ts.Close()

	c := NewClient("pat123")
	c.BaseURL = ts.URL
	if _, err := c.FetchCommitDiff(context.Background(), "https://github.com/o/r", "sha"); err != nil {
		t.Fatal(err)
	}
}

func TestClient_FetchCommitDiff_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient("")
	c.BaseURL = ts.URL
	_, err := c.FetchCommitDiff(context.Background(), "https://github.com/o/r", "gone")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound got %v", err)
	}
}

func TestClient_FetchCommitDiff_RateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	c := NewClient("")
	c.BaseURL = ts.URL
	_, err := c.FetchCommitDiff(context.Background(), "https://github.com/o/r", "sha")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("want ErrRateLimited got %v", err)
	}
}

func TestClient_FetchCommitDiff_BadRepoURL(t *testing.T) {
	c := NewClient("")
	if _, err := c.FetchCommitDiff(context.Background(), "https://github.com/no-owner-segment", "sha"); err == nil {
		t.Error("want error for URL without owner/repo path")
	}
}
