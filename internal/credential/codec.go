// Package credential reads the claims out of a bearer token issued by the
// PMS auth endpoint.
//
// Nothing here verifies a signature. The claims are routing hints for the
// dashboard (which landing page, which menu); the PMS API re-authorizes the
// token on every request.
package credential

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded payload segment. Only the fields the dashboard
// routes on are lifted out; Raw keeps the whole payload.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt *jwt.NumericDate
	Raw       jwt.MapClaims
}

// Expired reports whether the token carries an exp claim that lies before now.
// Tokens without exp never expire as far as the dashboard is concerned.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}

	return !now.Before(c.ExpiresAt.Time)
}

// MalformedTokenError is returned for anything Decode cannot read.
type MalformedTokenError struct {
	Reason string
	Err    error
}

func (e *MalformedTokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed token: %s: %v", e.Reason, e.Err)
	}

	return "malformed token: " + e.Reason
}

func (e *MalformedTokenError) Unwrap() error { return e.Err }

var parser = jwt.NewParser()

// Decode splits a compact token and parses its payload segment as JSON.
func Decode(token string) (Claims, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return Claims{}, &MalformedTokenError{
			Reason: fmt.Sprintf("expected 3 segments, got %d", len(parts)),
		}
	}

	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return Claims{}, &MalformedTokenError{Reason: "payload is not base64url", Err: err}
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return Claims{}, &MalformedTokenError{Reason: "payload is not JSON", Err: err}
	}
	if dec.More() {
		return Claims{}, &MalformedTokenError{Reason: "payload has trailing data"}
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return Claims{}, &MalformedTokenError{Reason: fmt.Sprintf("payload is a JSON %T, not an object", v)}
	}

	return Claims{
		Subject:   text(raw["sub"]),
		Role:      text(raw["role"]),
		ExpiresAt: numericDate(raw["exp"]),
		Raw:       jwt.MapClaims(raw),
	}, nil
}

// text renders a string or numeric claim; anything else reads as empty.
func text(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}

	return ""
}

// numericDate accepts seconds since the epoch, as a number or a numeric
// string, and RFC 3339 timestamps. Unreadable values count as absent.
func numericDate(v any) *jwt.NumericDate {
	var s string
	switch v := v.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	default:
		return nil
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return jwt.NewNumericDate(time.Unix(secs, 0))
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		secs, frac := math.Modf(f)
		return jwt.NewNumericDate(time.Unix(int64(secs), int64(frac*1e9)))
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return jwt.NewNumericDate(t)
		}
	}

	return nil
}
