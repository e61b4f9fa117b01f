package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mediremind/api/internal/domain"
	"github.com/mediremind/api/internal/usecase"
)

type UserHandler struct {
	users  *usecase.UserUsecase
	logger *slog.Logger
}

func NewUserHandler(users *usecase.UserUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger.With("component", "user_handler")}
}

type profileResponse struct {
	ID         string      `json:"id"`
	FullName   string      `json:"full_name"`
	Email      string      `json:"email"`
	Verified   bool        `json:"verified"`
	Plan       domain.Plan `json:"plan"`
	PlanExpiry *time.Time  `json:"plan_expiry,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// GET /me
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		ID:         user.ID,
		FullName:   user.FullName,
		Email:      user.Email,
		Verified:   user.Verified,
		Plan:       user.Plan,
		PlanExpiry: user.PlanExpiry,
		CreatedAt:  user.CreatedAt,
	})
}

type streakResponse struct {
	Current         int `json:"current"`
	Longest         int `json:"longest"`
	TotalMedsTaken  int `json:"total_meds_taken"`
	WeeklyAdherence int `json:"weekly_adherence"`
}

// GET /me/streak
func (h *UserHandler) Streak(c *gin.Context) {
	streak, err := h.users.Streak(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "streak", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, streakResponse{
		Current:         streak.Current,
		Longest:         streak.Longest,
		TotalMedsTaken:  streak.TotalTaken,
		WeeklyAdherence: streak.WeeklyAdherence,
	})
}

type upgradeRequest struct {
	Plan         string `json:"plan"          binding:"required,oneof=individual family"`
	BillingCycle string `json:"billing_cycle" binding:"omitempty,oneof=monthly yearly"`
}

// POST /me/upgrade
func (h *UserHandler) Upgrade(c *gin.Context) {
	var req upgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Upgrade(c.Request.Context(), c.GetString("userID"), domain.Plan(req.Plan), req.BillingCycle)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "upgrade plan", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Successfully upgraded to " + req.Plan + " plan",
		"plan":       user.Plan,
		"expires_at": user.PlanExpiry,
	})
}
