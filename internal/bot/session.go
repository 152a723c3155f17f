package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pathakanu/nudge/internal/clock"
	"github.com/pathakanu/nudge/internal/model"
	"github.com/pathakanu/nudge/internal/store"
)

const (
	defaultSessionTTL = 10 * time.Minute
	snoozeRetry       = "Didn't catch that. Try '3pm' or 'in 2 hours'."
)

type snooze struct {
	session  *model.Session
	reminder *model.Reminder
}

// openSnooze starts or replaces the user's snooze session.
func (b *Bot) openSnooze(ctx context.Context, msg inbound, reminderID string) error {
	session := &model.Session{
		UserAddress: msg.from,
		State:       model.StateAwaitingSnoozeTime,
		ReminderID:  reminderID,
		ExpiresAt:   msg.now.Add(b.sessionTTL()),
	}
	if err := b.sessions.Upsert(ctx, session); err != nil {
		return fmt.Errorf("open snooze session: %w", err)
	}
	return nil
}

// activeSnooze returns the user's live snooze session. Expired sessions and
// sessions whose reminder is gone are deleted and reported as absent.
func (b *Bot) activeSnooze(ctx context.Context, msg inbound) (*snooze, error) {
	session, err := b.sessions.Get(ctx, msg.from)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if session.Expired(msg.now) || session.State != model.StateAwaitingSnoozeTime {
		return nil, b.dropSession(ctx, msg.from)
	}

	reminder, err := b.reminders.Get(ctx, session.ReminderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, b.dropSession(ctx, msg.from)
	}
	if err != nil {
		return nil, fmt.Errorf("load snoozed reminder: %w", err)
	}
	return &snooze{session: session, reminder: reminder}, nil
}

// handleSnoozeTime reads the message as the new due time of the snoozed reminder.
func (b *Bot) handleSnoozeTime(ctx context.Context, msg inbound, s *snooze) (string, error) {
	loc := b.location()
	at, ok := b.resolver.ResolveTime(ctx, msg.body, loc, msg.now)
	if !ok {
		return snoozeRetry, nil
	}

	err := b.reminders.Update(ctx, s.reminder.ID, store.Set{
		store.FieldStatus:      model.StatusPending,
		store.FieldRemindAt:    at,
		store.FieldPreRemindAt: nil,
		store.FieldNotifiedAt:  nil,
		store.FieldSnoozeCount: s.reminder.SnoozeCount + 1,
	})
	if err != nil {
		return "", fmt.Errorf("snooze %s: %w", s.reminder.ID, err)
	}
	if err := b.dropSession(ctx, msg.from); err != nil {
		return "", err
	}

	return fmt.Sprintf("Got it - reminding you about '%s' at %s", s.reminder.Message, at.In(loc).Format(clock.ClockLayout)), nil
}

func (b *Bot) dropSession(ctx context.Context, userAddress string) error {
	if err := b.sessions.Delete(ctx, userAddress); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
