package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLSignerRoundTrip(t *testing.T) {
	signer := NewURLSigner("test-secret")

	token, err := signer.Sign("ticket-1/report.pdf", time.Minute)
	require.NoError(t, err)

	path, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ticket-1/report.pdf", path)
}

func TestURLSignerExpired(t *testing.T) {
	signer := NewURLSigner("test-secret")

	token, err := signer.Sign("ticket-1/report.pdf", -time.Minute)
	require.NoError(t, err)

	_, err = signer.Verify(token)
	assert.Error(t, err)
}

func TestURLSignerWrongSecret(t *testing.T) {
	token, err := NewURLSigner("secret-a").Sign("p", time.Minute)
	require.NoError(t, err)

	_, err = NewURLSigner("secret-b").Verify(token)
	assert.Error(t, err)
}
