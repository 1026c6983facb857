package webhook

import (
	"errors"
	"testing"
)

const validPush = `{
	"ref": "refs/heads/main",
	"repository": {"id": 42, "name": "repo", "full_name": "owner/repo", "html_url": "https://github.com/owner/repo"},
	"head_commit": {"id": "abc123", "message": "fix login", "author": {"name": "Dev", "email": "dev@example.com"}}
}`

func TestParsePushEvent_Valid(t *testing.T) {
	ev, err := ParsePushEvent([]byte(validPush))
	if err != nil {
		t.Fatalf("want valid payload, got %v", err)
	}
	if ev.Ref != "refs/heads/main" {
		t.Errorf("ref want refs/heads/main got %s", ev.Ref)
	}
	if ev.Repository.ID != 42 || ev.Repository.HTMLURL != "https://github.com/owner/repo" {
		t.Errorf("repository want id=42 url=https://github.com/owner/repo got id=%d url=%s", ev.Repository.ID, ev.Repository.HTMLURL)
	}
	if ev.HeadCommit.ID != "abc123" || ev.HeadCommit.Author.Email != "dev@example.com" {
		t.Errorf("head_commit want id=abc123 email=dev@example.com got id=%s email=%s", ev.HeadCommit.ID, ev.HeadCommit.Author.Email)
	}
}

func TestParsePushEvent_UnknownFieldsIgnored(t *testing.T) {
	payload := `{
		"ref": "refs/heads/main",
		"forced": true,
		"repository": {"id": 1, "name": "r", "html_url": "https://github.com/o/r", "stargazers_count": 9},
		"head_commit": {"id": "h", "message": "m", "author": {"name": "n", "email": "n@example.com"}, "added": ["f.go"]}
	}`
	if _, err := ParsePushEvent([]byte(payload)); err != nil {
		t.Errorf("unknown fields must be ignored, got %v", err)
	}
}

func TestParsePushEvent_MissingHeadCommitID(t *testing.T) {
	payload := `{
		"ref": "refs/heads/main",
		"repository": {"id": 1, "name": "r", "html_url": "https://github.com/o/r"},
		"head_commit": {"message": "m", "author": {"name": "n", "email": "n@example.com"}}
	}`
	_, err := ParsePushEvent([]byte(payload))
	var fe *FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("want *FieldErrors, got %v", err)
	}
	if len(fe.Fields) != 1 || fe.Fields[0] != "head_commit.id: required" {
		t.Errorf("fields want [head_commit.id: required] got %v", fe.Fields)
	}
}

func TestParsePushEvent_AggregatesAllViolations(t *testing.T) {
	payload := `{"repository": {"html_url": "not a url"}, "head_commit": {"author": {"email": "not-an-email"}}}`
	_, err := ParsePushEvent([]byte(payload))
	var fe *FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("want *FieldErrors, got %v", err)
	}
	want := map[string]bool{
		"ref: required":                                     true,
		"repository.id: required":                           true,
		"repository.name: required":                         true,
		"repository.html_url: not a valid URL":              true,
		"head_commit.id: required":                          true,
		"head_commit.message: required":                     true,
		"head_commit.author.name: required":                 true,
		"head_commit.author.email: not a valid email address": true,
	}
	if len(fe.Fields) != len(want) {
		t.Fatalf("want %d violations got %d: %v", len(want), len(fe.Fields), fe.Fields)
	}
	for _, f := range fe.Fields {
		if !want[f] {
			t.Errorf("unexpected violation %q", f)
		}
	}
}

func TestParsePushEvent_NotJSON(t *testing.T) {
	_, err := ParsePushEvent([]byte("not json"))
	var fe *FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("want *FieldErrors, got %v", err)
	}
}
