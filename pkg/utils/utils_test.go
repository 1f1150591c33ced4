package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	id := uuid.New()

	token, err := m.GenerateAccessToken(id, "agent@example.com", "agent")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "agent", claims.Role)
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.GenerateAccessToken(uuid.New(), "a@b.c", "admin")
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)

	other := NewJWTManager("other-secret", time.Hour)
	token, err = other.GenerateAccessToken(uuid.New(), "a@b.c", "admin")
	require.NoError(t, err)
	_, err = NewJWTManager("secret", time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestQuoteReference(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "DV-2026-000042", QuoteReference(date, 42))
}
