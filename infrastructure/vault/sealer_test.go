package vault

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal("EAAB-page-token")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, "sb1:"))
	assert.NotContains(t, sealed, "EAAB-page-token")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "EAAB-page-token", plain)
}

func TestSealer_EmptyAndTampered(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal("")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	good, err := s.Seal("secret")
	require.NoError(t, err)
	mid := len(good) / 2
	replacement := "A"
	if good[mid] == 'A' {
		replacement = "B"
	}
	tampered := good[:mid] + replacement + good[mid+1:]
	_, err = s.Open(tampered)
	assert.ErrorIs(t, err, ErrOpen)

	_, err = s.Open("plaintext-token")
	assert.ErrorIs(t, err, ErrOpen)
}

func TestNewSealer_BadKey(t *testing.T) {
	_, err := NewSealer("abcd")
	assert.Error(t, err)
	_, err = NewSealer("zz")
	assert.Error(t, err)
}
