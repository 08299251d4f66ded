// Package invite implements the signed invitation token scheme used to
// invite non-members to a team by email. A token carries everything needed
// to verify it (random raw token, recipient email, expiry, HMAC signature),
// so verification needs no store access.
package invite

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTTL is how long an issued invitation token stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// rawTokenBytes gives 128 bits of entropy before hex encoding.
const rawTokenBytes = 16

var (
	// ErrNoSecret means the codec was constructed without a signing secret.
	// There is deliberately no fallback secret; issuance must abort.
	ErrNoSecret = errors.New("invite: signing secret is required")

	// ErrNoEmail means Issue was called with an empty recipient.
	ErrNoEmail = errors.New("invite: recipient email is required")

	// ErrMalformed means the token did not decode into the expected shape.
	ErrMalformed = errors.New("invite: malformed token")

	// ErrSignature means the token decoded cleanly but its signature does
	// not match, i.e. it was tampered with or signed by someone else.
	ErrSignature = errors.New("invite: signature mismatch")
)

// Verification is the one-shot classification of a presented token.
// Expired results still carry the decoded raw token and email so callers can
// offer "request a new invite" messaging; the raw token is for display and
// matching only, never a lookup key.
type Verification struct {
	Valid     bool
	Expired   bool
	RawToken  string
	Email     string
	ExpiresAt time.Time
}

// Codec issues and verifies invitation tokens. The secret and TTL are
// injected at construction so nothing depends on ambient process state.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customises a Codec.
type Option func(*Codec)

// WithTTL overrides the default 7-day token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) { c.ttl = ttl }
}

// WithClock injects a clock. Tests use this to sit exactly on the expiry
// boundary.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec returns a codec signing with secret. An empty secret is a fatal
// configuration error, not something to paper over with a default.
func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	c := &Codec{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Now returns the codec's current time. Expiry decisions made outside the
// codec must use the same clock that stamps tokens.
func (c *Codec) Now() time.Time { return c.now() }

// Issue creates a signed token for email and reports when it expires. The
// caller is responsible for persisting the returned encoded token alongside
// the invitation record; the codec stores nothing.
func (c *Codec) Issue(email string) (string, time.Time, error) {
	if email == "" {
		return "", time.Time{}, ErrNoEmail
	}

	buf := make([]byte, rawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("invite: generating raw token: %w", err)
	}
	raw := hex.EncodeToString(buf)

	expiresAt := c.now().Add(c.ttl)
	ms := strconv.FormatInt(expiresAt.UnixMilli(), 10)
	sig := c.sign(raw, email, ms)

	payload := strings.Join([]string{raw, email, ms, sig}, ":")
	return base64.RawURLEncoding.EncodeToString([]byte(payload)), expiresAt, nil
}

// Verify classifies a presented token. The caller should pass the token
// exactly as received; tokens that went through a URL an extra time are
// tolerated by attempting percent-decoding first.
//
// Expiry is checked before the signature, so an expired result says nothing
// about authenticity. A nil error with Valid=false therefore only ever means
// Expired=true.
func (c *Codec) Verify(token string) (Verification, error) {
	candidate := token
	if unescaped, err := url.QueryUnescape(token); err == nil && unescaped != "" {
		candidate = unescaped
	}

	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(candidate, "="))
	if err != nil || !utf8.Valid(decoded) {
		return Verification{}, ErrMalformed
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) != 4 {
		return Verification{}, ErrMalformed
	}
	for _, p := range parts {
		if p == "" {
			return Verification{}, ErrMalformed
		}
	}

	ms, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Verification{}, ErrMalformed
	}

	res := Verification{
		RawToken:  parts[0],
		Email:     parts[1],
		ExpiresAt: time.UnixMilli(ms),
	}

	if c.now().UnixMilli() > ms {
		res.Expired = true
		return res, nil
	}

	expected := c.sign(parts[0], parts[1], parts[2])
	if !hmac.Equal([]byte(expected), []byte(parts[3])) {
		return Verification{}, ErrSignature
	}

	res.Valid = true
	return res, nil
}

func (c *Codec) sign(raw, email, expiresMillis string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(raw + ":" + email + ":" + expiresMillis))
	return hex.EncodeToString(mac.Sum(nil))
}
