package token_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-recorder/pkg/token"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	m := token.NewManager("secret", time.Hour)
	userID := uuid.New()

	signed, err := m.Generate(userID, "a@x.com")
	require.NoError(t, err)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)

	parsed, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)

	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.WithinDuration(t, claims.IssuedAt.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := token.NewManager("secret", -time.Minute)

	signed, err := m.Generate(uuid.New(), "a@x.com")
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signed, err := token.NewManager("secret-one", time.Hour).Generate(uuid.New(), "a@x.com")
	require.NoError(t, err)

	_, err = token.NewManager("secret-two", time.Hour).Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := token.NewManager("secret", time.Hour)

	_, err := m.Verify("not-a-token")
	assert.Error(t, err)
}

func TestZeroDurationDefaultsToOneHour(t *testing.T) {
	m := token.NewManager("secret", 0)
	signed, err := m.Generate(uuid.New(), "a@x.com")
	require.NoError(t, err)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	assert.WithinDuration(t, claims.IssuedAt.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}
