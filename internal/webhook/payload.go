package webhook

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
)

// PushEvent is the decoded shape of a GitHub push webhook.
// Unknown extra fields in the payload are ignored.
type PushEvent struct {
	Ref        string     `json:"ref"`
	Repository Repository `json:"repository"`
	HeadCommit HeadCommit `json:"head_commit"`
}

// Repository identifies the pushed-to repository.
type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
}

// HeadCommit is the tip commit of the push.
type HeadCommit struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Author  Author `json:"author"`
}

// Author is the commit author.
type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FieldErrors aggregates every structural violation found in a payload.
type FieldErrors struct {
	Fields []string
}

func (e *FieldErrors) Error() string {
	return fmt.Sprintf("invalid payload: %s", strings.Join(e.Fields, ", "))
}

// ParsePushEvent decodes and structurally validates a push payload. All
// violations are collected into a single *FieldErrors so the sender sees
// every offending field at once.
func ParsePushEvent(body []byte) (*PushEvent, error) {
	var ev PushEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, &FieldErrors{Fields: []string{"body: not valid JSON"}}
	}

	var fields []string
	if ev.Ref == "" {
		fields = append(fields, "ref: required")
	}
	if ev.Repository.ID == 0 {
		fields = append(fields, "repository.id: required")
	}
	if ev.Repository.Name == "" {
		fields = append(fields, "repository.name: required")
	}
	if ev.Repository.HTMLURL == "" {
		fields = append(fields, "repository.html_url: required")
	} else if u, err := url.Parse(ev.Repository.HTMLURL); err != nil || u.Scheme == "" || u.Host == "" {
		fields = append(fields, "repository.html_url: not a valid URL")
	}
	if ev.HeadCommit.ID == "" {
		fields = append(fields, "head_commit.id: required")
	}
	if ev.HeadCommit.Message == "" {
		fields = append(fields, "head_commit.message: required")
	}
	if ev.HeadCommit.Author.Name == "" {
		fields = append(fields, "head_commit.author.name: required")
	}
	if ev.HeadCommit.Author.Email == "" {
		fields = append(fields, "head_commit.author.email: required")
	} else if _, err := mail.ParseAddress(ev.HeadCommit.Author.Email); err != nil {
		fields = append(fields, "head_commit.author.email: not a valid email address")
	}

	if len(fields) > 0 {
		return nil, &FieldErrors{Fields: fields}
	}
	return &ev, nil
}
