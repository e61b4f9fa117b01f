package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mediremind/api/internal/domain"
	"github.com/mediremind/api/internal/email"
	"github.com/mediremind/api/internal/metrics"
	"github.com/mediremind/api/internal/ratelimit"
	"github.com/mediremind/api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultCodeTTL  = 15 * time.Minute
	defaultTokenTTL = 7 * 24 * time.Hour
	bcryptCost      = 12
)

// RateLimiter is the slice of ratelimit.Limiter the auth flow needs.
type RateLimiter interface {
	Check(email string) ratelimit.Status
	RecordFailure(email string)
	Reset(email string)
}

type AuthUsecase struct {
	users   repository.UserRepository
	codes   repository.VerificationRepository
	limiter RateLimiter
	email   email.Sender
	logger  *slog.Logger

	jwtKey   []byte
	codeTTL  time.Duration
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthUsecase(
	users repository.UserRepository,
	codes repository.VerificationRepository,
	limiter RateLimiter,
	sender email.Sender,
	jwtKey []byte,
	logger *slog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		codes:    codes,
		limiter:  limiter,
		email:    sender,
		logger:   logger.With("component", "auth_usecase"),
		jwtKey:   jwtKey,
		codeTTL:  defaultCodeTTL,
		tokenTTL: defaultTokenTTL,
		now:      time.Now,
	}
}

// SetCodeTTL overrides the verification-code lifetime.
func (u *AuthUsecase) SetCodeTTL(ttl time.Duration) { u.codeTTL = ttl }

// SetNow overrides the clock. Tests only.
func (u *AuthUsecase) SetNow(now func() time.Time) { u.now = now }

// Signup creates an unverified user and emails a signup code.
// The plaintext password is hashed immediately and never stored.
func (u *AuthUsecase) Signup(ctx context.Context, fullName, emailAddr, password string) (*domain.User, error) {
	normalized := normalizeEmail(emailAddr)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        normalized,
		PasswordHash: string(hash),
		Verified:     false,
		Plan:         domain.PlanFree,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := u.issueCode(ctx, user, domain.PurposeSignup); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifySignup consumes a signup code and flips the user's verified flag.
func (u *AuthUsecase) VerifySignup(ctx context.Context, emailAddr, code string) error {
	normalized := normalizeEmail(emailAddr)

	if err := u.consumeCode(ctx, normalized, code); err != nil {
		return err
	}
	if err := u.users.MarkVerified(ctx, normalized); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// Login performs the password step of the two-factor login. On success
// a login-purpose code is emailed and the caller must follow up with
// VerifyLogin.
//
// Unknown emails and wrong passwords both surface as
// domain.ErrInvalidCredentials and both count against the rate limit.
// An unverified account short-circuits before the limiter is touched.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) error {
	normalized := normalizeEmail(emailAddr)

	if st := u.limiter.Check(normalized); !st.Allowed {
		metrics.LoginsRateLimitedTotal.Inc()
		return &domain.RateLimitedError{BlockedMinutes: st.BlockedMinutes}
	}

	user, err := u.users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			u.recordFailure(normalized)
			return domain.ErrInvalidCredentials
		}
		return fmt.Errorf("find user: %w", err)
	}

	if !user.Verified {
		return domain.ErrNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		u.recordFailure(normalized)
		return domain.ErrInvalidCredentials
	}

	u.limiter.Reset(normalized)

	return u.issueCode(ctx, user, domain.PurposeLogin)
}

// VerifyLogin consumes a login code and returns a signed bearer token.
func (u *AuthUsecase) VerifyLogin(ctx context.Context, emailAddr, code string) (string, *domain.User, error) {
	normalized := normalizeEmail(emailAddr)

	if err := u.consumeCode(ctx, normalized, code); err != nil {
		return "", nil, err
	}

	user, err := u.users.FindByEmail(ctx, normalized)
	if err != nil {
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	now := u.now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(u.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(u.jwtKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign jwt: %w", err)
	}
	return signed, user, nil
}

// ResendCode issues a fresh code for an existing user, replacing any
// outstanding session.
func (u *AuthUsecase) ResendCode(ctx context.Context, emailAddr string, purpose domain.Purpose) error {
	normalized := normalizeEmail(emailAddr)

	user, err := u.users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	return u.issueCode(ctx, user, purpose)
}

// issueCode generates a fresh 6-digit code, stores the session, and
// emails it. Email failure is logged but never fails the request — the
// code is considered issued either way.
func (u *AuthUsecase) issueCode(ctx context.Context, user *domain.User, purpose domain.Purpose) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	session := &domain.VerificationSession{
		Email:     user.Email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: u.now().Add(u.codeTTL),
	}
	if err := u.codes.Upsert(ctx, session); err != nil {
		return fmt.Errorf("store verification session: %w", err)
	}
	metrics.CodesIssuedTotal.WithLabelValues(string(purpose)).Inc()

	subject, body := email.VerificationEmail(purpose, user.FullName, code)
	if err := u.email.Send(ctx, user.Email, subject, body); err != nil {
		u.logger.ErrorContext(ctx, "send verification code", "purpose", purpose, "error", err)
	}
	return nil
}

// consumeCode validates a submitted code against the stored session.
// A correct code deletes the session (one-time use). A wrong code
// leaves it in place until the attempt cap is reached. An expired
// session stays put; only a resend replaces it.
func (u *AuthUsecase) consumeCode(ctx context.Context, normalized, code string) error {
	session, err := u.codes.Find(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrCodeNotFound) {
			metrics.CodeVerificationsTotal.WithLabelValues("no_session").Inc()
			return domain.ErrCodeNotFound
		}
		return fmt.Errorf("find verification session: %w", err)
	}

	if u.now().After(session.ExpiresAt) {
		metrics.CodeVerificationsTotal.WithLabelValues("expired").Inc()
		return domain.ErrCodeExpired
	}

	if session.Code != code {
		attempts, incErr := u.codes.IncrementAttempts(ctx, normalized)
		if incErr != nil && !errors.Is(incErr, domain.ErrCodeNotFound) {
			u.logger.ErrorContext(ctx, "increment code attempts", "error", incErr)
		}
		if attempts >= domain.MaxCodeAttempts {
			if delErr := u.codes.Delete(ctx, normalized); delErr != nil {
				u.logger.ErrorContext(ctx, "delete exhausted session", "error", delErr)
			}
		}
		metrics.CodeVerificationsTotal.WithLabelValues("mismatch").Inc()
		return domain.ErrCodeMismatch
	}

	if err := u.codes.Delete(ctx, normalized); err != nil {
		return fmt.Errorf("delete verification session: %w", err)
	}
	metrics.CodeVerificationsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (u *AuthUsecase) recordFailure(normalized string) {
	u.limiter.RecordFailure(normalized)
	metrics.LoginFailuresTotal.Inc()
}

// generateCode returns a uniformly random 6-digit code in
// [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

func normalizeEmail(emailAddr string) string {
	return strings.ToLower(strings.TrimSpace(emailAddr))
}
