package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// SignatureHeader is the header GitHub uses for HMAC-SHA256 signatures.
const SignatureHeader = "X-Hub-Signature-256"

var (
	// ErrMissingSignature means the signature header was absent.
	ErrMissingSignature = errors.New("missing signature")
	// ErrInvalidSignature means the signature did not match the body.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrMalformedSignature means the header was not "sha256=<hex>".
	ErrMalformedSignature = errors.New("malformed signature header")
)

// VerifySignature checks that signature is a valid "sha256=<hex>" HMAC-SHA256
// of body under secret. The comparison is constant-time; a length mismatch is
// an ordinary ErrInvalidSignature, never a skipped check.
func VerifySignature(body []byte, signature, secret string) error {
	if signature == "" {
		return ErrMissingSignature
	}
	if !strings.HasPrefix(signature, "sha256=") {
		return ErrMalformedSignature
	}
	claimed, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil {
		return ErrMalformedSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(claimed, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign computes the "sha256=<hex>" signature for body under secret.
// Used by tests and local tooling.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
