package domain

import "fmt"

// RateLimitedError is returned when an email has accumulated too many
// failed login attempts and is inside its lockout window.
type RateLimitedError struct {
	BlockedMinutes int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many failed attempts, try again in %d minutes", e.BlockedMinutes)
}
