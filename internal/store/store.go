// Package store holds the repository contracts used by the bot and the
// sweeper, together with their GORM and Redis implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/pathakanu/nudge/internal/model"
)

// ErrNotFound is returned when no document matches a lookup.
var ErrNotFound = errors.New("store: not found")

// Reminder column names accepted by Reminders.Update.
const (
	FieldStatus      = "status"
	FieldRemindAt    = "remind_at"
	FieldPreRemindAt = "pre_remind_at"
	FieldNotifiedAt  = "notified_at"
	FieldSnoozeCount = "snooze_count"
)

// Set is a partial update keyed by column name. A nil value clears the column.
type Set map[string]any

// ReminderFilter selects reminders. Zero-valued fields do not constrain the result.
// All bounds are inclusive.
type ReminderFilter struct {
	UserAddress string
	Statuses    []model.Status

	RemindAtFrom *time.Time
	RemindAtTo   *time.Time

	// PreRemindAtTo also excludes reminders without a pre-reminder.
	PreRemindAtTo *time.Time
	// NotifiedAtTo also excludes reminders that were never notified.
	NotifiedAtTo *time.Time
}

// Reminders is the reminder document repository. Find results are ordered by
// remind_at ascending.
type Reminders interface {
	Insert(ctx context.Context, reminder *model.Reminder) error
	Get(ctx context.Context, id string) (*model.Reminder, error)
	Find(ctx context.Context, filter ReminderFilter) ([]model.Reminder, error)
	FindFirst(ctx context.Context, filter ReminderFilter) (*model.Reminder, error)
	Update(ctx context.Context, id string, set Set) error
	Delete(ctx context.Context, id string) error
}

// Sessions stores at most one conversational session per user.
type Sessions interface {
	Get(ctx context.Context, userAddress string) (*model.Session, error)
	Upsert(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, userAddress string) error
}

// Time returns a pointer to t, for use in filters.
func Time(t time.Time) *time.Time {
	return &t
}
