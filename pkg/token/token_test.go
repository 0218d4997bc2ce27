package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewSigner_ShortSecret(t *testing.T) {
	_, err := NewSigner("short")
	assert.Error(t, err)
}

func TestSignParse_RoundTrip(t *testing.T) {
	s, err := NewSigner(testSecret)
	require.NoError(t, err)

	id := uuid.New()
	now := time.Now()
	tok, err := s.Sign(id, now, now.Add(time.Hour))
	require.NoError(t, err)

	got, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_Expired(t *testing.T) {
	s, err := NewSigner(testSecret)
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	tok, err := s.Sign(uuid.New(), past, past.Add(time.Hour))
	require.NoError(t, err)

	_, err = s.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_WrongSecret(t *testing.T) {
	a, _ := NewSigner(testSecret)
	b, _ := NewSigner("another-secret-of-enough-length")

	now := time.Now()
	tok, err := a.Sign(uuid.New(), now, now.Add(time.Hour))
	require.NoError(t, err)

	_, err = b.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsNoneAlgorithm(t *testing.T) {
	s, _ := NewSigner(testSecret)

	claims := Claims{
		SessionID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	s, _ := NewSigner(testSecret)
	_, err := s.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
