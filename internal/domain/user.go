package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotVerified        = errors.New("email not verified")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Plan string

const (
	PlanFree       Plan = "free"
	PlanIndividual Plan = "individual"
	PlanFamily     Plan = "family"
)

type User struct {
	ID           string
	FullName     string
	Email        string // normalized (lower-cased); the lookup key
	PasswordHash string
	Verified     bool
	Plan         Plan
	PlanExpiry   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Streak summarizes a user's adherence, derived from dose logs.
type Streak struct {
	Current         int
	Longest         int
	TotalTaken      int
	WeeklyAdherence int // percent of scheduled doses taken over the last 7 days
}
