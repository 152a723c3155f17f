// Package escalation advances reminders through pre-notify, notify and
// voice-call escalation on every sweep.
package escalation

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/pathakanu/nudge/internal/clock"
	"github.com/pathakanu/nudge/internal/metrics"
	"github.com/pathakanu/nudge/internal/model"
	"github.com/pathakanu/nudge/internal/store"
)

// Notifier delivers text and voice payloads to a user address.
type Notifier interface {
	SendText(ctx context.Context, to, body string) error
	PlaceCall(ctx context.Context, to, script string) error
}

// Pass names, used for logs and metrics.
const (
	PassPreNotify = "pre_notify"
	PassNotify    = "notify"
	PassEscalate  = "escalate"
)

// Config controls escalation timing.
type Config struct {
	EscalationWait  time.Duration
	CallWindowStart int
	CallWindowEnd   int
	Location        *time.Location
}

// Report summarises one sweep.
type Report struct {
	PreNotified int
	Notified    int
	Called      int
	Deferred    int
	Failed      int
}

// Sweeper runs the three escalation passes against the reminder store.
type Sweeper struct {
	reminders store.Reminders
	notifier  Notifier
	clock     clock.Clock
	cfg       Config
	metrics   *metrics.Metrics
	logger    *log.Logger
}

// NewSweeper creates a Sweeper. metrics and logger may be nil.
func NewSweeper(reminders store.Reminders, notifier Notifier, clk clock.Clock, cfg Config, m *metrics.Metrics, logger *log.Logger) *Sweeper {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if m == nil {
		m = metrics.Nop()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Sweeper{
		reminders: reminders,
		notifier:  notifier,
		clock:     clk,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
	}
}

// Sweep runs pre-notify, notify and escalate in that order. A store failure
// aborts the sweep; a delivery failure leaves the reminder for the next one.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveSweep(time.Since(started).Seconds()) }()

	now := s.clock.Now()
	var report Report

	if err := s.preNotify(ctx, now, &report); err != nil {
		return report, fmt.Errorf("%s pass: %w", PassPreNotify, err)
	}
	if err := s.notify(ctx, now, &report); err != nil {
		return report, fmt.Errorf("%s pass: %w", PassNotify, err)
	}
	if err := s.escalate(ctx, now, &report); err != nil {
		return report, fmt.Errorf("%s pass: %w", PassEscalate, err)
	}

	if report != (Report{}) {
		s.logger.Printf("sweep: pre-notified=%d notified=%d called=%d deferred=%d failed=%d",
			report.PreNotified, report.Notified, report.Called, report.Deferred, report.Failed)
	}
	return report, nil
}

func (s *Sweeper) preNotify(ctx context.Context, now time.Time, report *Report) error {
	due, err := s.reminders.Find(ctx, store.ReminderFilter{
		Statuses:      []model.Status{model.StatusPending},
		PreRemindAtTo: &now,
	})
	if err != nil {
		return err
	}

	for _, r := range due {
		body := fmt.Sprintf("Heads up! '%s' is at %s.\nReply 'done' if sorted, or 'not now' to push it.",
			r.Message, r.RemindAt.In(s.cfg.Location).Format(clock.ClockLayout))
		if err := s.notifier.SendText(ctx, r.UserAddress, body); err != nil {
			s.deliveryFailed(PassPreNotify, "text", r, err, report)
			continue
		}
		if err := s.reminders.Update(ctx, r.ID, store.Set{store.FieldStatus: model.StatusPreNotified}); err != nil {
			return err
		}
		s.metrics.Transition(PassPreNotify)
		report.PreNotified++
	}
	return nil
}

func (s *Sweeper) notify(ctx context.Context, now time.Time, report *Report) error {
	due, err := s.reminders.Find(ctx, store.ReminderFilter{
		Statuses:   model.UpcomingStatuses,
		RemindAtTo: &now,
	})
	if err != nil {
		return err
	}

	for _, r := range due {
		body := fmt.Sprintf("Reminder now: %s\nReply 'done' - I'll call in %d mins if not.",
			r.Message, int(s.cfg.EscalationWait/time.Minute))
		if err := s.notifier.SendText(ctx, r.UserAddress, body); err != nil {
			s.deliveryFailed(PassNotify, "text", r, err, report)
			continue
		}
		err := s.reminders.Update(ctx, r.ID, store.Set{
			store.FieldStatus:     model.StatusNotified,
			store.FieldNotifiedAt: now,
		})
		if err != nil {
			return err
		}
		s.metrics.Transition(PassNotify)
		report.Notified++
	}
	return nil
}

func (s *Sweeper) escalate(ctx context.Context, now time.Time, report *Report) error {
	cutoff := now.Add(-s.cfg.EscalationWait)
	due, err := s.reminders.Find(ctx, store.ReminderFilter{
		Statuses:     []model.Status{model.StatusNotified},
		NotifiedAtTo: &cutoff,
	})
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	if !s.inCallWindow(now) {
		report.Deferred += len(due)
		for range due {
			s.metrics.EscalationDeferred()
		}
		return nil
	}

	// The call decides the transition; the text only accompanies a placed call,
	// so a failing call is retried without repeating the text.
	for _, r := range due {
		if err := s.notifier.PlaceCall(ctx, r.UserAddress, CallScript(r.Message)); err != nil {
			s.deliveryFailed(PassEscalate, "call", r, err, report)
			continue
		}
		if err := s.reminders.Update(ctx, r.ID, store.Set{store.FieldStatus: model.StatusCalled}); err != nil {
			return err
		}
		body := fmt.Sprintf("No response - calling you now about:\n%s", r.Message)
		if err := s.notifier.SendText(ctx, r.UserAddress, body); err != nil {
			s.deliveryFailed(PassEscalate, "text", r, err, report)
		}
		s.metrics.Transition(PassEscalate)
		report.Called++
	}
	return nil
}

// inCallWindow reports whether now falls inside [CallWindowStart, CallWindowEnd) local.
func (s *Sweeper) inCallWindow(now time.Time) bool {
	hour := clock.LocalHour(now, s.cfg.Location)
	return hour >= s.cfg.CallWindowStart && hour < s.cfg.CallWindowEnd
}

func (s *Sweeper) deliveryFailed(pass, channel string, r model.Reminder, err error, report *Report) {
	s.logger.Printf("sweep: %s: %s to %s for reminder %s failed: %v", pass, channel, r.UserAddress, r.ID, err)
	s.metrics.DeliveryFailed(pass, channel)
	report.Failed++
}

// CallScript is what the voice call says about message.
func CallScript(message string) string {
	return fmt.Sprintf("Hi, your reminder bot here. You need to: %s. I repeat: %s. Please reply done on WhatsApp.", message, message)
}
