package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kekishida/ai-chat/internal/models"
	"github.com/kekishida/ai-chat/pkg/crypto"
	apperrors "github.com/kekishida/ai-chat/pkg/errors"
)

// ErrInviteInvalid indicates a code that is unknown, already used, or expired.
var ErrInviteInvalid = apperrors.ErrInvalidInvite

// InviteServiceConfig tunes invite code generation.
type InviteServiceConfig struct {
	// CodeBytes is the number of random bytes per code before hex encoding.
	CodeBytes int
}

// InviteService issues and redeems invite codes gating account signup.
type InviteService struct {
	db  *gorm.DB
	cfg InviteServiceConfig
	now func() time.Time
}

// NewInviteService constructs an InviteService instance.
func NewInviteService(db *gorm.DB, cfg InviteServiceConfig) (*InviteService, error) {
	if db == nil {
		return nil, errors.New("invite service: db is required")
	}
	if cfg.CodeBytes <= 0 {
		cfg.CodeBytes = 16
	}
	return &InviteService{
		db:  db,
		cfg: cfg,
		now: time.Now,
	}, nil
}

// Generate mints a fresh invite code. A non-positive expiresInDays leaves
// the code valid indefinitely.
func (s *InviteService) Generate(ctx context.Context, createdBy string, expiresInDays int) (*models.InviteCode, error) {
	ctx = ensureContext(ctx)

	code, err := crypto.GenerateCode(s.cfg.CodeBytes)
	if err != nil {
		return nil, fmt.Errorf("invite service: generate code: %w", err)
	}

	invite := &models.InviteCode{
		Code:      code,
		CreatedBy: strings.TrimSpace(createdBy),
	}
	if expiresInDays > 0 {
		expiresAt := s.now().Add(time.Duration(expiresInDays) * 24 * time.Hour)
		invite.ExpiresAt = &expiresAt
	}

	if err := s.db.WithContext(ctx).Create(invite).Error; err != nil {
		return nil, fmt.Errorf("invite service: create invite: %w", err)
	}
	return invite, nil
}

// Validate reports whether the code can still be redeemed.
func (s *InviteService) Validate(ctx context.Context, code string) (bool, error) {
	_, err := s.lookupUsable(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInviteInvalid) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Redeem returns the usable invite for the code or ErrInviteInvalid.
// Marking the code used is a separate step so the caller can create the
// account first and leave the code untouched when creation fails.
func (s *InviteService) Redeem(ctx context.Context, code string) (*models.InviteCode, error) {
	return s.lookupUsable(ctx, code)
}

// MarkUsed records the invite as consumed by the given user.
func (s *InviteService) MarkUsed(ctx context.Context, invite *models.InviteCode, usedBy string) error {
	ctx = ensureContext(ctx)

	if invite == nil {
		return errors.New("invite service: invite is required")
	}

	usedBy = strings.TrimSpace(usedBy)
	err := s.db.WithContext(ctx).Model(invite).Updates(map[string]any{
		"is_used": true,
		"used_by": usedBy,
	}).Error
	if err != nil {
		return fmt.Errorf("invite service: mark used: %w", err)
	}

	invite.IsUsed = true
	invite.UsedBy = &usedBy
	return nil
}

// List returns invite codes created by the given user, newest first.
func (s *InviteService) List(ctx context.Context, createdBy string) ([]models.InviteCode, error) {
	ctx = ensureContext(ctx)

	var invites []models.InviteCode
	err := s.db.WithContext(ctx).
		Where("created_by = ?", strings.TrimSpace(createdBy)).
		Order("created_at DESC").
		Find(&invites).Error
	if err != nil {
		return nil, fmt.Errorf("invite service: list invites: %w", err)
	}
	return invites, nil
}

// CleanupExpired removes unused invites whose expiry has passed.
func (s *InviteService) CleanupExpired(ctx context.Context) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).
		Where("is_used = ? AND expires_at IS NOT NULL AND expires_at <= ?", false, s.now().UTC()).
		Delete(&models.InviteCode{}).Error
	if err != nil {
		return fmt.Errorf("invite service: cleanup expired: %w", err)
	}
	return nil
}

func (s *InviteService) lookupUsable(ctx context.Context, code string) (*models.InviteCode, error) {
	ctx = ensureContext(ctx)

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrInviteInvalid
	}

	var invite models.InviteCode
	err := s.db.WithContext(ctx).First(&invite, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteInvalid
		}
		return nil, fmt.Errorf("invite service: lookup invite: %w", err)
	}

	if invite.IsUsed {
		return nil, ErrInviteInvalid
	}
	if invite.ExpiresAt != nil && !invite.ExpiresAt.After(s.now()) {
		return nil, ErrInviteInvalid
	}
	return &invite, nil
}
