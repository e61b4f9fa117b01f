package domain

import "time"

type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodNeutral Mood = "neutral"
	MoodSad     Mood = "sad"
)

// MoodEntry is a user's mood for one calendar day. Logging twice on the
// same day replaces the earlier entry.
type MoodEntry struct {
	ID        string
	UserID    string
	Mood      Mood
	Note      string
	Date      time.Time
	CreatedAt time.Time
}
