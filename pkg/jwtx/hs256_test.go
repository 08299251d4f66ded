package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("unit-test-secret")

func TestHS256RoundTrip(t *testing.T) {
	claims := NewClaims("user-1", "x@example.com", "User X", "idp.example", time.Hour, time.Now())
	token, err := SignHS256(claims, testSecret)
	require.NoError(t, err)

	v := NewHS256Verifier(testSecret, "idp.example")
	got, err := v.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "x@example.com", got.Email)
	require.Equal(t, "User X", got.Name)
}

func TestHS256RejectsWrongSecret(t *testing.T) {
	claims := NewClaims("user-1", "x@example.com", "", "idp.example", time.Hour, time.Now())
	token, err := SignHS256(claims, []byte("other-secret"))
	require.NoError(t, err)

	v := NewHS256Verifier(testSecret, "idp.example")
	_, err = v.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestHS256RejectsExpired(t *testing.T) {
	claims := NewClaims("user-1", "x@example.com", "", "idp.example", time.Hour, time.Now().Add(-2*time.Hour))
	token, err := SignHS256(claims, testSecret)
	require.NoError(t, err)

	v := NewHS256Verifier(testSecret, "idp.example")
	_, err = v.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestHS256RejectsWrongIssuer(t *testing.T) {
	claims := NewClaims("user-1", "x@example.com", "", "someone-else", time.Hour, time.Now())
	token, err := SignHS256(claims, testSecret)
	require.NoError(t, err)

	v := NewHS256Verifier(testSecret, "idp.example")
	_, err = v.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestHS256RejectsGarbage(t *testing.T) {
	v := NewHS256Verifier(testSecret, "")

	_, err := v.Verify("not.a.jwt")
	require.ErrorIs(t, err, ErrMalformed)

	// A structurally valid token with a truncated signature must fail closed.
	claims := NewClaims("user-1", "", "", "", time.Hour, time.Now())
	token, err := SignHS256(claims, testSecret)
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	_, err = v.Verify(parts[0] + "." + parts[1] + "." + parts[2][:len(parts[2])-4])
	require.Error(t, err)
}
