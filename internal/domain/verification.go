package domain

import (
	"errors"
	"time"
)

var (
	ErrCodeNotFound = errors.New("no verification session")
	ErrCodeExpired  = errors.New("verification code expired")
	ErrCodeMismatch = errors.New("verification code mismatch")
)

// MaxCodeAttempts is the number of wrong codes a session tolerates
// before it is discarded.
const MaxCodeAttempts = 5

type Purpose string

const (
	PurposeSignup Purpose = "signup"
	PurposeLogin  Purpose = "login"
)

// VerificationSession is a one-time 6-digit code tied to an email.
// At most one session exists per email; a new one overwrites the old.
type VerificationSession struct {
	Email     string // normalized
	Code      string
	Purpose   Purpose
	ExpiresAt time.Time
	Attempts  int
	CreatedAt time.Time
}
