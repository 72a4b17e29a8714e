package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	iauth "github.com/kekishida/ai-chat/internal/auth"
	"github.com/kekishida/ai-chat/internal/models"
	"github.com/kekishida/ai-chat/internal/services"
)

func openMaintenanceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:maintenance_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Session{}, &models.InviteCode{}))

	t.Cleanup(func() {
		db.Where("1 = 1").Delete(&models.Session{})
		db.Where("1 = 1").Delete(&models.InviteCode{})
	})

	return db
}

func TestCleanerRunOnce(t *testing.T) {
	db := openMaintenanceTestDB(t)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)

	now := time.Now()
	clock := now
	sessionSvc, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{
		RefreshTokenTTL: time.Hour,
		Clock:           func() time.Time { return clock },
	})
	require.NoError(t, err)

	inviteSvc, err := services.NewInviteService(db, services.InviteServiceConfig{})
	require.NoError(t, err)

	ctx := context.Background()

	_, _, err = sessionSvc.CreateSession("user-1", iauth.SessionMetadata{})
	require.NoError(t, err)

	invite, err := inviteSvc.Generate(ctx, "creator", 1)
	require.NoError(t, err)
	keeper, err := inviteSvc.Generate(ctx, "creator", 0)
	require.NoError(t, err)

	// Push the session and the dated invite past their lifetimes.
	clock = now.Add(2 * time.Hour)
	expiredAt := now.Add(-time.Minute)
	require.NoError(t, db.Model(&models.InviteCode{}).
		Where("id = ?", invite.ID).
		Update("expires_at", expiredAt).Error)

	cleaner := NewCleaner(sessionSvc, inviteSvc, WithNow(func() time.Time { return clock }))
	require.NoError(t, cleaner.RunOnce(ctx))

	var sessions int64
	require.NoError(t, db.Model(&models.Session{}).Count(&sessions).Error)
	require.Zero(t, sessions)

	var invites []models.InviteCode
	require.NoError(t, db.Find(&invites).Error)
	require.Len(t, invites, 1)
	require.Equal(t, keeper.ID, invites[0].ID)
}

func TestCleanerStartAndStop(t *testing.T) {
	db := openMaintenanceTestDB(t)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)
	sessionSvc, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{})
	require.NoError(t, err)
	inviteSvc, err := services.NewInviteService(db, services.InviteServiceConfig{})
	require.NoError(t, err)

	cleaner := NewCleaner(sessionSvc, inviteSvc)
	require.NoError(t, cleaner.Start())

	stopCtx := cleaner.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}

func TestCleanerWithNoDependencies(t *testing.T) {
	cleaner := NewCleaner(nil, nil)
	require.NoError(t, cleaner.Start())
	require.NoError(t, cleaner.RunOnce(context.Background()))
}
