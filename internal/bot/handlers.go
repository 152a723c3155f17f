package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pathakanu/nudge/internal/clock"
	"github.com/pathakanu/nudge/internal/model"
	"github.com/pathakanu/nudge/internal/store"
)

// HelpText lists what the bot understands.
const HelpText = "Here's what you can say:\n\n" +
	"Remind me at 3pm to call John\n" +
	"Meeting with Sarah at 2:30\n" +
	"Doctor appointment tomorrow at 10am\n" +
	"Call with team in 20 minutes\n\n" +
	"Commands:\n" +
	"your day - see today's schedule\n" +
	"done / ok - dismiss latest reminder\n" +
	"not now - push reminder to a new time\n" +
	"cancel [keyword] - cancel a reminder\n" +
	"help - show this list"

const (
	noActiveToDismiss = "No active reminders to dismiss."
	noActiveToPush    = "No active reminder to push."
	askSnoozeTime     = "When should I remind you?\nSay '3pm' or 'in 2 hours'"
	nothingToday      = "Nothing else scheduled for today!"
	cannotParseTime   = "Couldn't get the time. Try: 'Remind me at 3pm to call John'"

	createdLayout = "Jan 02 at 03:04 PM"
)

func (b *Bot) handleHelp(context.Context, inbound) (string, error) {
	return HelpText, nil
}

// handleAcknowledge dismisses the user's earliest active reminder.
func (b *Bot) handleAcknowledge(ctx context.Context, msg inbound) (string, error) {
	reminder, err := b.reminders.FindFirst(ctx, store.ReminderFilter{
		UserAddress: msg.from,
		Statuses:    model.AcknowledgeableStatuses,
	})
	if errors.Is(err, store.ErrNotFound) {
		return noActiveToDismiss, nil
	}
	if err != nil {
		return "", fmt.Errorf("acknowledge: %w", err)
	}

	if err := b.reminders.Update(ctx, reminder.ID, store.Set{store.FieldStatus: model.StatusAcknowledged}); err != nil {
		return "", fmt.Errorf("acknowledge %s: %w", reminder.ID, err)
	}
	return fmt.Sprintf("Done! '%s' marked complete.", reminder.Message), nil
}

// handlePush opens a snooze session on the user's earliest active reminder.
func (b *Bot) handlePush(ctx context.Context, msg inbound) (string, error) {
	reminder, err := b.reminders.FindFirst(ctx, store.ReminderFilter{
		UserAddress: msg.from,
		Statuses:    model.SnoozableStatuses,
	})
	if errors.Is(err, store.ErrNotFound) {
		return noActiveToPush, nil
	}
	if err != nil {
		return "", fmt.Errorf("push: %w", err)
	}

	if err := b.openSnooze(ctx, msg, reminder.ID); err != nil {
		return "", err
	}
	return askSnoozeTime, nil
}

// handleSchedule lists what is still due before the end of the local day.
func (b *Bot) handleSchedule(ctx context.Context, msg inbound) (string, error) {
	loc := b.location()
	dayEnd := clock.EndOfDay(msg.now, loc)
	reminders, err := b.reminders.Find(ctx, store.ReminderFilter{
		UserAddress:  msg.from,
		Statuses:     model.UpcomingStatuses,
		RemindAtFrom: &msg.now,
		RemindAtTo:   &dayEnd,
	})
	if err != nil {
		return "", fmt.Errorf("schedule: %w", err)
	}
	if len(reminders) == 0 {
		return nothingToday, nil
	}

	items := make([]string, 0, len(reminders))
	for _, r := range reminders {
		item := fmt.Sprintf("%s - %s", r.RemindAt.In(loc).Format(clock.ClockLayout), r.Message)
		if r.Pushed() {
			item += " (pushed)"
		}
		items = append(items, item)
	}
	return "Your day from now:\n\n" + strings.Join(items, "\n"), nil
}

// handleCancel cancels every upcoming reminder whose message contains the keyword.
func (b *Bot) handleCancel(ctx context.Context, msg inbound) (string, error) {
	keyword := cancelKeyword(msg.lower)
	reminders, err := b.reminders.Find(ctx, store.ReminderFilter{
		UserAddress: msg.from,
		Statuses:    model.UpcomingStatuses,
	})
	if err != nil {
		return "", fmt.Errorf("cancel: %w", err)
	}

	var cancelled []string
	for _, r := range reminders {
		if !strings.Contains(strings.ToLower(r.Message), keyword) {
			continue
		}
		if err := b.reminders.Update(ctx, r.ID, store.Set{store.FieldStatus: model.StatusCancelled}); err != nil {
			return "", fmt.Errorf("cancel %s: %w", r.ID, err)
		}
		cancelled = append(cancelled, "- "+r.Message)
	}

	if len(cancelled) == 0 {
		return fmt.Sprintf("No reminders found matching '%s'", keyword), nil
	}
	return "Cancelled:\n" + strings.Join(cancelled, "\n"), nil
}

// handleNewReminder schedules a reminder from a free-text request.
func (b *Bot) handleNewReminder(ctx context.Context, msg inbound) (string, error) {
	loc := b.location()
	result := b.resolver.Resolve(ctx, msg.body, loc, msg.now)
	if result.RemindAt == nil {
		return cannotParseTime, nil
	}

	reminder := &model.Reminder{
		ID:          uuid.NewString(),
		UserAddress: msg.from,
		Message:     result.Task,
		EventType:   result.EventType,
		RemindAt:    *result.RemindAt,
		PreRemindAt: result.PreRemindAt,
		Status:      model.StatusPending,
		CreatedAt:   msg.now,
	}
	if err := b.reminders.Insert(ctx, reminder); err != nil {
		return "", fmt.Errorf("save reminder: %w", err)
	}
	b.logger.Printf("bot: reminder %s scheduled for %s at %s", reminder.ID, msg.from, reminder.RemindAt.Format("2006-01-02 15:04 MST"))

	reply := fmt.Sprintf("Got it!\n%s\n%s", reminder.RemindAt.In(loc).Format(createdLayout), reminder.Message)
	if reminder.PreRemindAt != nil {
		reply += fmt.Sprintf("\nI'll heads-up you %d mins before too.", int(result.Lead.Minutes()))
	}
	return reply, nil
}
