package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plaxtilineas/catalog_api/internal/models"
	"github.com/plaxtilineas/catalog_api/internal/utils"
)

var testClaims = models.UserClaims{ID: 7, Email: "ana@plaxtilineas.com", Username: "ana", Role: "admin"}

func clockAt(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestTokenManager_ValidityWindow(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewTokenManager("test-secret", 24*time.Hour)
	m.timeFunc = clockAt(issuedAt)

	token, err := m.Issue(testClaims)
	require.NoError(t, err)

	m.timeFunc = clockAt(issuedAt.Add(23*time.Hour + 59*time.Minute))
	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, testClaims, *claims)

	m.timeFunc = clockAt(issuedAt.Add(24*time.Hour + time.Minute))
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	token, err := NewTokenManager("one-secret", time.Hour).Issue(testClaims)
	require.NoError(t, err)

	_, err = NewTokenManager("other-secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", time.Hour).Verify("not.a.token")
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestTokenManager_ExpiresIn(t *testing.T) {
	assert.Equal(t, "24h", NewTokenManager("s", 0).ExpiresIn())
	assert.Equal(t, "1h30m0s", NewTokenManager("s", 90*time.Minute).ExpiresIn())
}
