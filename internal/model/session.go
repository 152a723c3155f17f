package model

import "time"

// SessionState names the pending multi-turn flow of a user.
type SessionState string

// StateAwaitingSnoozeTime means the next message is read as a new reminder time.
const StateAwaitingSnoozeTime SessionState = "awaiting_snooze_time"

// Session is the short-lived conversational state of one user.
// ReminderID is a plain lookup key; the reminder may disappear independently.
type Session struct {
	UserAddress string       `gorm:"primaryKey" json:"user_address"`
	State       SessionState `gorm:"type:varchar(32);not null" json:"state"`
	ReminderID  string       `gorm:"type:varchar(36);not null" json:"reminder_id"`
	ExpiresAt   time.Time    `gorm:"not null" json:"expires_at"`
}

// Expired reports whether the session lapsed before now.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
