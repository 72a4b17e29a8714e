package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kekishida/ai-chat/internal/services"
	"github.com/kekishida/ai-chat/pkg/errors"
	"github.com/kekishida/ai-chat/pkg/response"
)

// InviteHandler exposes invite code management for authenticated users.
type InviteHandler struct {
	invites *services.InviteService
}

func NewInviteHandler(invites *services.InviteService) *InviteHandler {
	return &InviteHandler{invites: invites}
}

type createInviteRequest struct {
	ExpiresInDays int `json:"expiresInDays" validate:"omitempty,min=1,max=365"`
}

// POST /api/invite-codes
func (h *InviteHandler) Create(c *gin.Context) {
	var req createInviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	userID := c.GetString("userID")
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	invite, err := h.invites.Generate(requestContext(c), userID, req.ExpiresInDays)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, invite)
}

// GET /api/invite-codes
func (h *InviteHandler) List(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	invites, err := h.invites.List(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invites)
}

type validateInviteRequest struct {
	Code string `json:"code" validate:"required"`
}

// POST /api/auth/validate-invite
//
// Public endpoint so the signup form can check a code before submitting.
func (h *InviteHandler) Validate(c *gin.Context) {
	var req validateInviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	valid, err := h.invites.Validate(requestContext(c), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"valid": valid})
}
