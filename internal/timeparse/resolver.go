// Package timeparse turns reminder requests such as "Remind me at 3pm to call
// John" into a task, an absolute due time and an optional heads-up time.
package timeparse

import (
	"context"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/pathakanu/nudge/internal/model"
)

// Fallback resolves a time expression the parser could not handle.
type Fallback interface {
	ResolveTime(ctx context.Context, text string, now time.Time, loc *time.Location) (time.Time, error)
}

// Result is the outcome of resolving a reminder request. RemindAt is nil when
// no time could be found. Instants are UTC.
type Result struct {
	Task        string
	RemindAt    *time.Time
	PreRemindAt *time.Time
	EventType   model.EventType
	Lead        time.Duration
}

// Resolver resolves reminder requests.
type Resolver struct {
	parser   Parser
	fallback Fallback
	logger   *log.Logger
}

// New returns a Resolver. fallback and logger may be nil.
func New(parser Parser, fallback Fallback, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Resolver{
		parser:   parser,
		fallback: fallback,
		logger:   logger,
	}
}

var (
	taskRegex     = regexp.MustCompile(`(?i)\bto\b (.+)$`)
	remindMeRegex = regexp.MustCompile(`(?i)remind me`)
	taskTailRegex = regexp.MustCompile(`(?i)\bto\b.+$`)
)

// Resolve extracts task, category and timing from text. Naive times are read in loc.
func (r *Resolver) Resolve(ctx context.Context, text string, loc *time.Location, now time.Time) Result {
	text = strings.TrimSpace(text)
	eventType := DetectEventType(text)
	result := Result{
		Task:      ExtractTask(text),
		EventType: eventType,
		Lead:      eventType.LeadTime(),
	}

	remindAt, ok := r.resolve(ctx, timeText(text), loc, now)
	if !ok {
		return result
	}
	// A date without a clock time lands at 09:00 local.
	if remindAt.Hour() == 0 && remindAt.Minute() == 0 {
		y, m, d := remindAt.Date()
		remindAt = time.Date(y, m, d, 9, 0, 0, 0, remindAt.Location())
	}
	remindAt = remindAt.UTC()
	result.RemindAt = &remindAt

	pre := remindAt.Add(-result.Lead)
	if pre.After(now) {
		result.PreRemindAt = &pre
	}
	return result
}

// ResolveTime resolves a bare time expression such as "3pm" or "in 2 hours".
// Clock times already past today move to tomorrow.
func (r *Resolver) ResolveTime(ctx context.Context, text string, loc *time.Location, now time.Time) (time.Time, bool) {
	resolved, ok := r.resolve(ctx, text, loc, now)
	if !ok {
		return time.Time{}, false
	}
	return resolved.UTC(), true
}

// resolve returns the parsed instant in loc.
func (r *Resolver) resolve(ctx context.Context, text string, loc *time.Location, now time.Time) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	base := now.In(loc)

	resolved, ok := r.parse(ctx, text, base)
	if !ok {
		return time.Time{}, false
	}
	resolved = resolved.In(loc)

	if resolved.Before(base) && sameDay(resolved, base) {
		resolved = resolved.AddDate(0, 0, 1)
	}
	return resolved, true
}

func (r *Resolver) parse(ctx context.Context, text string, base time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	resolved, ok, err := r.parser.Parse(text, base)
	if err != nil {
		r.logger.Printf("timeparse: parse %q: %v", text, err)
	}
	if ok {
		return resolved, true
	}
	if r.fallback == nil {
		return time.Time{}, false
	}

	resolved, err = r.fallback.ResolveTime(ctx, text, base, base.Location())
	if err != nil {
		r.logger.Printf("timeparse: fallback %q: %v", text, err)
		return time.Time{}, false
	}
	return resolved, true
}

// DetectEventType returns the first category whose keyword occurs in text.
func DetectEventType(text string) model.EventType {
	lower := strings.ToLower(text)
	for _, eventType := range model.EventTypePriority {
		if strings.Contains(lower, string(eventType)) {
			return eventType
		}
	}
	return model.EventDefault
}

// ExtractTask returns what follows the first standalone "to", or the whole text.
func ExtractTask(text string) string {
	matches := taskRegex.FindStringSubmatch(text)
	if len(matches) < 2 {
		return text
	}
	return strings.TrimSpace(matches[1])
}

func timeText(text string) string {
	text = remindMeRegex.ReplaceAllString(text, "")
	text = taskTailRegex.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
