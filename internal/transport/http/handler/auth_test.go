package handler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mediremind/api/internal/domain"
	"github.com/mediremind/api/internal/transport/http/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	signup       func(ctx context.Context, fullName, email, password string) (*domain.User, error)
	verifySignup func(ctx context.Context, email, code string) error
	login        func(ctx context.Context, email, password string) error
	verifyLogin  func(ctx context.Context, email, code string) (string, *domain.User, error)
	resendCode   func(ctx context.Context, email string, purpose domain.Purpose) error
}

func (f *fakeAuthUsecase) Signup(ctx context.Context, fullName, email, password string) (*domain.User, error) {
	return f.signup(ctx, fullName, email, password)
}

func (f *fakeAuthUsecase) VerifySignup(ctx context.Context, email, code string) error {
	return f.verifySignup(ctx, email, code)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) error {
	return f.login(ctx, email, password)
}

func (f *fakeAuthUsecase) VerifyLogin(ctx context.Context, email, code string) (string, *domain.User, error) {
	return f.verifyLogin(ctx, email, code)
}

func (f *fakeAuthUsecase) ResendCode(ctx context.Context, email string, purpose domain.Purpose) error {
	return f.resendCode(ctx, email, purpose)
}

func newTestEngine(uc *fakeAuthUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewAuthHandler(uc, logger)

	r := gin.New()
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/verify", h.VerifySignup)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/login/verify", h.VerifyLogin)
	r.POST("/auth/resend", h.Resend)
	return r
}

func post(t *testing.T, engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

// ---- Signup ----

func TestSignup_InvalidJSON_Returns400(t *testing.T) {
	w := post(t, newTestEngine(&fakeAuthUsecase{}), "/auth/signup", `{bad json}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSignup_ShortPassword_Returns400(t *testing.T) {
	w := post(t, newTestEngine(&fakeAuthUsecase{}), "/auth/signup",
		`{"full_name":"Test","email":"test@example.com","password":"short"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSignup_DuplicateEmail_Returns409(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(_ context.Context, _, _, _ string) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	w := post(t, newTestEngine(uc), "/auth/signup",
		`{"full_name":"Test","email":"test@example.com","password":"password123"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestSignup_Success_Returns201(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(_ context.Context, _, email, _ string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email}, nil
		},
	}
	w := post(t, newTestEngine(uc), "/auth/signup",
		`{"full_name":"Test","email":"test@example.com","password":"password123"}`)
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
}

// ---- VerifySignup ----

func TestVerifySignup_NonNumericCode_Returns400(t *testing.T) {
	w := post(t, newTestEngine(&fakeAuthUsecase{}), "/auth/verify",
		`{"email":"test@example.com","code":"abc123"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestVerifySignup_CodeErrorsShareOneMessage(t *testing.T) {
	for _, codeErr := range []error{domain.ErrCodeNotFound, domain.ErrCodeExpired, domain.ErrCodeMismatch} {
		uc := &fakeAuthUsecase{
			verifySignup: func(_ context.Context, _, _ string) error { return codeErr },
		}
		w := post(t, newTestEngine(uc), "/auth/verify",
			`{"email":"test@example.com","code":"123456"}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%v: status = %d, want 400", codeErr, w.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: bad body: %v", codeErr, err)
		}
		if body["error"] != "Invalid or expired verification code" {
			t.Errorf("%v: leaked distinct message %q", codeErr, body["error"])
		}
	}
}

func TestVerifySignup_Success_Returns200(t *testing.T) {
	uc := &fakeAuthUsecase{
		verifySignup: func(_ context.Context, _, _ string) error { return nil },
	}
	w := post(t, newTestEngine(uc), "/auth/verify",
		`{"email":"test@example.com","code":"123456"}`)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

// ---- Login ----

func TestLogin_InvalidCredentials_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) error { return domain.ErrInvalidCredentials },
	}
	w := post(t, newTestEngine(uc), "/auth/login",
		`{"email":"test@example.com","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLogin_NotVerified_Returns403(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) error { return domain.ErrNotVerified },
	}
	w := post(t, newTestEngine(uc), "/auth/login",
		`{"email":"test@example.com","password":"password123"}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestLogin_RateLimited_Returns429WithMinutes(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) error {
			return &domain.RateLimitedError{BlockedMinutes: 17}
		},
	}
	w := post(t, newTestEngine(uc), "/auth/login",
		`{"email":"test@example.com","password":"password123"}`)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	var body struct {
		BlockedMinutes int `json:"blocked_minutes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.BlockedMinutes != 17 {
		t.Errorf("blocked_minutes = %d, want 17", body.BlockedMinutes)
	}
}

func TestLogin_Success_Returns200(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) error { return nil },
	}
	w := post(t, newTestEngine(uc), "/auth/login",
		`{"email":"test@example.com","password":"password123"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		RequiresVerification bool `json:"requires_verification"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !body.RequiresVerification {
		t.Error("expected requires_verification=true")
	}
}

// ---- VerifyLogin ----

func TestVerifyLogin_Success_ReturnsTokenAndUser(t *testing.T) {
	uc := &fakeAuthUsecase{
		verifyLogin: func(_ context.Context, email, _ string) (string, *domain.User, error) {
			return "signed.jwt.token", &domain.User{ID: "user-1", FullName: "Test User", Email: email}, nil
		},
	}
	w := post(t, newTestEngine(uc), "/auth/login/verify",
		`{"email":"test@example.com","code":"123456"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Token string `json:"token"`
		User  struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Token != "signed.jwt.token" {
		t.Errorf("token = %q", body.Token)
	}
	if body.User.ID != "user-1" || body.User.Email != "test@example.com" {
		t.Errorf("unexpected user %+v", body.User)
	}
}

func TestVerifyLogin_WrongCode_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		verifyLogin: func(_ context.Context, _, _ string) (string, *domain.User, error) {
			return "", nil, domain.ErrCodeMismatch
		},
	}
	w := post(t, newTestEngine(uc), "/auth/login/verify",
		`{"email":"test@example.com","code":"123456"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---- Resend ----

func TestResend_UnknownUser_Returns404(t *testing.T) {
	uc := &fakeAuthUsecase{
		resendCode: func(_ context.Context, _ string, _ domain.Purpose) error {
			return domain.ErrUserNotFound
		},
	}
	w := post(t, newTestEngine(uc), "/auth/resend",
		`{"email":"nobody@example.com"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestResend_DefaultsToSignupPurpose(t *testing.T) {
	var gotPurpose domain.Purpose
	uc := &fakeAuthUsecase{
		resendCode: func(_ context.Context, _ string, purpose domain.Purpose) error {
			gotPurpose = purpose
			return nil
		},
	}
	w := post(t, newTestEngine(uc), "/auth/resend",
		`{"email":"test@example.com"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotPurpose != domain.PurposeSignup {
		t.Errorf("purpose = %q, want signup", gotPurpose)
	}
}

func TestResend_LoginPurpose(t *testing.T) {
	var gotPurpose domain.Purpose
	uc := &fakeAuthUsecase{
		resendCode: func(_ context.Context, _ string, purpose domain.Purpose) error {
			gotPurpose = purpose
			return nil
		},
	}
	w := post(t, newTestEngine(uc), "/auth/resend",
		`{"email":"test@example.com","purpose":"login"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotPurpose != domain.PurposeLogin {
		t.Errorf("purpose = %q, want login", gotPurpose)
	}
}
