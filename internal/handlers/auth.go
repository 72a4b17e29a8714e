package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/kekishida/ai-chat/internal/auth"
	"github.com/kekishida/ai-chat/internal/models"
	"github.com/kekishida/ai-chat/internal/services"
	"github.com/kekishida/ai-chat/pkg/errors"
	"github.com/kekishida/ai-chat/pkg/logger"
	"github.com/kekishida/ai-chat/pkg/metrics"
	"github.com/kekishida/ai-chat/pkg/response"
)

// AuthHandler manages signup and authentication flows.
type AuthHandler struct {
	users    *services.UserService
	invites  *services.InviteService
	sessions *iauth.SessionService
}

func NewAuthHandler(users *services.UserService, invites *services.InviteService, sessions *iauth.SessionService) *AuthHandler {
	return &AuthHandler{users: users, invites: invites, sessions: sessions}
}

type signupRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=30"`
	Password   string `json:"password" validate:"required,min=8"`
	Email      string `json:"email" validate:"omitempty,email"`
	InviteCode string `json:"inviteCode" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func userPayload(user *models.User) gin.H {
	payload := gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"createdAt": user.CreatedAt,
	}
	if user.Email != nil {
		payload["email"] = *user.Email
	}
	return payload
}

// POST /api/auth/signup
//
// The invite is checked before the account is created and only consumed
// afterwards, so a failed signup leaves the code redeemable.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)

	invite, err := h.invites.Redeem(ctx, req.InviteCode)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.users.Create(ctx, services.CreateUserInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		InviteCodeUsed: invite.Code,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.invites.MarkUsed(ctx, invite, user.ID); err != nil {
		// The account exists; log and continue rather than failing signup.
		logger.WithModule("auth").Error("mark invite used",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	pair, _, err := h.sessions.CreateSession(user.ID, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"user":   userPayload(user),
	})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Authenticate(requestContext(c), req.Username, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInvalidCredentials)
		return
	}

	pair, _, err := h.sessions.CreateSession(user.ID, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInternalServer)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()

	response.Success(c, http.StatusOK, gin.H{
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"user":   userPayload(user),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pair, _, err := h.sessions.RefreshSession(req.RefreshToken)
	if err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sid := c.GetString("sessionID")
	if sid == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.sessions.RevokeSession(sid); err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.users.GetByID(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, userPayload(user))
}
