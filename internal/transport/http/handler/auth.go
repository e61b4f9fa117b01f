package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mediremind/api/internal/domain"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Signup(ctx context.Context, fullName, email, password string) (*domain.User, error)
	VerifySignup(ctx context.Context, email, code string) error
	Login(ctx context.Context, email, password string) error
	VerifyLogin(ctx context.Context, email, code string) (string, *domain.User, error)
	ResendCode(ctx context.Context, email string, purpose domain.Purpose) error
}

type AuthHandler struct {
	auth   authUsecaser
	logger *slog.Logger
}

func NewAuthHandler(auth authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With("component", "auth_handler"),
	}
}

type signupRequest struct {
	FullName string `json:"full_name" binding:"required,max=200"`
	Email    string `json:"email"     binding:"required,email"`
	Password string `json:"password"  binding:"required,min=8,max=128"`
}

// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "signup", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Verification code sent to " + user.Email,
	})
}

type verifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code"  binding:"required,len=6,numeric"`
}

// POST /auth/verify
// Confirms a signup code and marks the account verified.
func (h *AuthHandler) VerifySignup(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.VerifySignup(c.Request.Context(), req.Email, req.Code); err != nil {
		h.respondVerifyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account verified successfully"})
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /auth/login
// Password step of the two-factor login. On success a code is emailed
// and the client proceeds to /auth/login/verify.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var rl *domain.RateLimitedError
		switch {
		case errors.As(err, &rl):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":           rl.Error(),
				"blocked_minutes": rl.BlockedMinutes,
			})
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
		case errors.Is(err, domain.ErrNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"error": errNotVerified})
		default:
			h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":               "Verification code sent to your email",
		"requires_verification": true,
	})
}

type userResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// POST /auth/login/verify
// Confirms a login code and returns a signed bearer token.
func (h *AuthHandler) VerifyLogin(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.auth.VerifyLogin(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		h.respondVerifyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": userResponse{
			ID:       user.ID,
			FullName: user.FullName,
			Email:    user.Email,
		},
	})
}

type resendRequest struct {
	Email   string `json:"email"   binding:"required,email"`
	Purpose string `json:"purpose" binding:"omitempty,oneof=signup login"`
}

// POST /auth/resend
func (h *AuthHandler) Resend(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purpose := domain.PurposeSignup
	if req.Purpose == "login" {
		purpose = domain.PurposeLogin
	}

	if err := h.auth.ResendCode(c.Request.Context(), req.Email, purpose); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "resend code", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code resent successfully"})
}

// The three code failures surface as one message so the endpoint does
// not reveal which stage rejected the attempt. The distinction is kept
// in metrics.
func (h *AuthHandler) respondVerifyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound),
		errors.Is(err, domain.ErrCodeExpired),
		errors.Is(err, domain.ErrCodeMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidOrExpiredCode})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
	default:
		h.logger.ErrorContext(c.Request.Context(), "verify code", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
