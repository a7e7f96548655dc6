// Package handler provides HTTP handlers for the profile feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stock_dashboard/internal/feature/profile/domain/entity"
	"stock_dashboard/internal/feature/profile/transport/http/dto"
	"stock_dashboard/internal/feature/profile/usecase"
)

// DefaultEmailWait bounds how long PUT waits for the email result.
const DefaultEmailWait = 5 * time.Second

// ProfileUsecase defines the profile operations used by the handler.
type ProfileUsecase interface {
	Load(ctx context.Context) (*entity.Profile, error)
	Save(ctx context.Context, p entity.Profile) (*usecase.Submission, error)
}

// ProfileHandler handles /api/profile.
type ProfileHandler struct {
	uc        ProfileUsecase
	emailWait time.Duration
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(uc ProfileUsecase, emailWait time.Duration) *ProfileHandler {
	if emailWait <= 0 {
		emailWait = DefaultEmailWait
	}
	return &ProfileHandler{uc: uc, emailWait: emailWait}
}

// GetProfile returns the stored profile, or 404 when nothing was saved yet.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p, err := h.uc.Load(c.Request.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "profile not found"})
			return
		}
		slog.Error("failed to load profile", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, dto.ProfileResponse{Name: p.Name, Email: p.Email})
}

// SaveProfile overwrites the profile and reports the email result in the
// same response when it arrives within the wait window.
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	var req dto.SaveProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("profile validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
		return
	}

	sub, err := h.uc.Save(c.Request.Context(), entity.Profile{Name: req.Name, Email: req.Email})
	if err != nil {
		slog.Error("failed to save profile", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to save profile"})
		return
	}

	res := dto.SaveProfileResponse{
		Profile: dto.ProfileResponse{Name: sub.Profile.Name, Email: sub.Profile.Email},
		Saved:   true,
		Message: entity.MsgDetailsSaved,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.emailWait)
	defer cancel()
	switch err := sub.EmailResult(ctx); {
	case err == nil:
		res.Email = dto.EmailStatus{Sent: true, Message: entity.MsgEmailSent}
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil:
		res.Email = dto.EmailStatus{Pending: true}
	default:
		res.Email = dto.EmailStatus{Error: err.Error(), Message: entity.MsgEmailFailed}
	}
	c.JSON(http.StatusOK, res)
}
