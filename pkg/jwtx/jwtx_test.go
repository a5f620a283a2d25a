package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMintAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec([]byte("test-secret"), "nichenest", time.Hour)
	require.NoError(t, err)

	token, err := codec.Mint("user-1", "alice")
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "alice", claims.Username)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	minter, err := NewCodec([]byte("secret-a"), "nichenest", time.Hour)
	require.NoError(t, err)
	verifier, err := NewCodec([]byte("secret-b"), "nichenest", time.Hour)
	require.NoError(t, err)

	token, err := minter.Mint("user-1", "alice")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	minter, err := NewCodec([]byte("shared"), "someone-else", time.Hour)
	require.NoError(t, err)
	verifier, err := NewCodec([]byte("shared"), "nichenest", time.Hour)
	require.NoError(t, err)

	token, err := minter.Mint("user-1", "alice")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec([]byte("shared"), "nichenest", -time.Minute)
	require.NoError(t, err)

	// NewCodec clamps non-positive TTLs to the default, so build one directly.
	codec.ttl = -time.Minute

	token, err := codec.Mint("user-1", "alice")
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewCodecRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewCodec(nil, "nichenest", time.Hour)
	require.Error(t, err)
}
