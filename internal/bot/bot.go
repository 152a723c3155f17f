package bot

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	"github.com/pathakanu/nudge/internal/clock"
	"github.com/pathakanu/nudge/internal/config"
	"github.com/pathakanu/nudge/internal/metrics"
	"github.com/pathakanu/nudge/internal/store"
	"github.com/pathakanu/nudge/internal/timeparse"
)

// Bot turns inbound chat messages into reminder and session changes.
type Bot struct {
	cfg       *config.Config
	reminders store.Reminders
	sessions  store.Sessions
	resolver  *timeparse.Resolver
	clock     clock.Clock
	metrics   *metrics.Metrics
	logger    *log.Logger
}

// New creates a fully configured Bot instance.
func New(cfg *config.Config, reminders store.Reminders, sessions store.Sessions, resolver *timeparse.Resolver, clk clock.Clock, m *metrics.Metrics, logger *log.Logger) *Bot {
	if m == nil {
		m = metrics.Nop()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Bot{
		cfg:       cfg,
		reminders: reminders,
		sessions:  sessions,
		resolver:  resolver,
		clock:     clk,
		metrics:   m,
		logger:    logger,
	}
}

// inbound is one message as seen by the intent handlers.
type inbound struct {
	from  string
	body  string
	lower string
	now   time.Time
}

// Reply handles one inbound message and returns the single reply text.
// An error means the store failed and nothing sensible can be answered.
func (b *Bot) Reply(ctx context.Context, from, body string) (string, error) {
	msg := inbound{
		from: from,
		body: strings.TrimSpace(body),
		now:  b.clock.Now(),
	}
	msg.lower = strings.ToLower(msg.body)

	snooze, err := b.activeSnooze(ctx, msg)
	if err != nil {
		return "", err
	}
	if snooze != nil {
		b.metrics.Inbound(intentSnoozeTime)
		return b.handleSnoozeTime(ctx, msg, snooze)
	}

	for _, in := range intents {
		if in.match(msg) {
			b.metrics.Inbound(in.name)
			return in.handle(b, ctx, msg)
		}
	}
	b.metrics.Inbound(intentFallback)
	return HelpText, nil
}

func (b *Bot) location() *time.Location {
	if b.cfg == nil || b.cfg.LocalTimezone == nil {
		return time.UTC
	}
	return b.cfg.LocalTimezone
}

func (b *Bot) sessionTTL() time.Duration {
	if b.cfg == nil || b.cfg.SessionTTL <= 0 {
		return defaultSessionTTL
	}
	return b.cfg.SessionTTL
}
