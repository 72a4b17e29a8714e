package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kekishida/ai-chat/internal/models"
)

func newSessionTestService(t *testing.T, cfg SessionConfig) *SessionService {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Session{}))

	jwtSvc, err := NewJWTService(JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Minute})
	require.NoError(t, err)

	svc, err := NewSessionService(db, jwtSvc, cfg)
	require.NoError(t, err)
	return svc
}

func TestSessionServiceCreateAndRefresh(t *testing.T) {
	svc := newSessionTestService(t, SessionConfig{})

	pair, session, err := svc.CreateSession("user-1", SessionMetadata{IPAddress: "127.0.0.1"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "user-1", session.UserID)

	rotated, refreshed, err := svc.RefreshSession(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, session.ID, refreshed.ID)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old refresh token no longer resolves.
	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionServiceRevoke(t *testing.T) {
	svc := newSessionTestService(t, SessionConfig{})

	pair, session, err := svc.CreateSession("user-1", SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeSession(session.ID))

	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionRevoked)

	// Revoking twice reports not found.
	require.ErrorIs(t, svc.RevokeSession(session.ID), ErrSessionNotFound)
}

func TestSessionServiceExpiry(t *testing.T) {
	now := time.Now()
	clock := now

	svc := newSessionTestService(t, SessionConfig{
		RefreshTokenTTL: time.Hour,
		Clock:           func() time.Time { return clock },
	})

	pair, _, err := svc.CreateSession("user-1", SessionMetadata{})
	require.NoError(t, err)

	clock = now.Add(2 * time.Hour)

	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionServiceCleanupExpired(t *testing.T) {
	now := time.Now()
	clock := now

	svc := newSessionTestService(t, SessionConfig{
		RefreshTokenTTL: time.Hour,
		Clock:           func() time.Time { return clock },
	})

	_, _, err := svc.CreateSession("user-1", SessionMetadata{})
	require.NoError(t, err)

	_, revoked, err := svc.CreateSession("user-2", SessionMetadata{})
	require.NoError(t, err)
	require.NoError(t, svc.RevokeSession(revoked.ID))

	clock = now.Add(2 * time.Hour)

	_, live, err := svc.CreateSession("user-3", SessionMetadata{})
	require.NoError(t, err)

	removed, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	var remaining []models.Session
	require.NoError(t, svc.db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, live.ID, remaining[0].ID)
}
