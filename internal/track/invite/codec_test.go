package invite

import (
	"encoding/base64"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func mustCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret, opts...)
	require.NoError(t, err)
	return c
}

func TestNewCodecRequiresSecret(t *testing.T) {
	_, err := NewCodec("")
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := mustCodec(t)

	token, expiresAt, err := c.Issue("alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(DefaultTTL), expiresAt, 5*time.Second)

	v, err := c.Verify(token)
	require.NoError(t, err)
	require.True(t, v.Valid)
	require.False(t, v.Expired)
	require.Equal(t, "alice@example.com", v.Email)
	require.Len(t, v.RawToken, 32, "raw token should be 128 bits hex-encoded")
}

func TestIssueRequiresEmail(t *testing.T) {
	c := mustCodec(t)
	_, _, err := c.Issue("")
	require.ErrorIs(t, err, ErrNoEmail)
}

func TestVerifyToleratesURLEncoding(t *testing.T) {
	c := mustCodec(t)

	token, _, err := c.Issue("alice@example.com")
	require.NoError(t, err)

	v, err := c.Verify(url.QueryEscape(token))
	require.NoError(t, err)
	require.True(t, v.Valid)
	require.Equal(t, "alice@example.com", v.Email)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	now := time.Now()

	t.Run("just expired", func(t *testing.T) {
		clock := now
		c := mustCodec(t, WithClock(func() time.Time { return clock }))

		token, expiresAt, err := c.Issue("bob@example.com")
		require.NoError(t, err)

		clock = expiresAt.Add(time.Millisecond)
		v, err := c.Verify(token)
		require.NoError(t, err)
		require.False(t, v.Valid)
		require.True(t, v.Expired)
		// Expired results still surface the decoded fields.
		require.Equal(t, "bob@example.com", v.Email)
		require.NotEmpty(t, v.RawToken)
	})

	t.Run("not yet expired", func(t *testing.T) {
		clock := now
		c := mustCodec(t, WithClock(func() time.Time { return clock }))

		token, expiresAt, err := c.Issue("bob@example.com")
		require.NoError(t, err)

		clock = expiresAt.Add(-time.Millisecond)
		v, err := c.Verify(token)
		require.NoError(t, err)
		require.True(t, v.Valid)
		require.False(t, v.Expired)
	})
}

func TestVerifyDetectsTampering(t *testing.T) {
	c := mustCodec(t)

	token, _, err := c.Issue("alice@example.com")
	require.NoError(t, err)

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	parts := strings.Split(string(decoded), ":")
	require.Len(t, parts, 4)

	t.Run("flipped signature characters", func(t *testing.T) {
		sig := parts[3]
		for i := 0; i < len(sig); i += 7 {
			flipped := []byte(sig)
			if flipped[i] == 'a' {
				flipped[i] = 'b'
			} else {
				flipped[i] = 'a'
			}
			tampered := base64.RawURLEncoding.EncodeToString(
				[]byte(strings.Join([]string{parts[0], parts[1], parts[2], string(flipped)}, ":")))

			v, err := c.Verify(tampered)
			require.ErrorIs(t, err, ErrSignature)
			require.False(t, v.Valid)
		}
	})

	t.Run("substituted email fails signature", func(t *testing.T) {
		tampered := base64.RawURLEncoding.EncodeToString(
			[]byte(strings.Join([]string{parts[0], "mallory@example.com", parts[2], parts[3]}, ":")))

		v, err := c.Verify(tampered)
		require.ErrorIs(t, err, ErrSignature)
		require.False(t, v.Valid)
	})

	t.Run("foreign secret fails signature", func(t *testing.T) {
		other, err := NewCodec("a-different-secret")
		require.NoError(t, err)
		foreign, _, err := other.Issue("alice@example.com")
		require.NoError(t, err)

		_, err = c.Verify(foreign)
		require.ErrorIs(t, err, ErrSignature)
	})
}

func TestVerifyMalformed(t *testing.T) {
	c := mustCodec(t)

	encode := func(payload string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(payload))
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "!!!not-base64!!!"},
		{"too few parts", encode("raw:email@example.com:123")},
		{"too many parts", encode("raw:email@example.com:123:sig:extra")},
		{"empty part", encode("raw::123:sig")},
		{"non-numeric expiry", encode("raw:email@example.com:soon:sig")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := c.Verify(tt.token)
			require.ErrorIs(t, err, ErrMalformed)
			require.False(t, v.Valid)
		})
	}
}
