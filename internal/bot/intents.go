package bot

import (
	"context"
	"regexp"
	"strings"
)

const (
	intentSnoozeTime  = "snooze_time"
	intentHelp        = "help"
	intentAck         = "acknowledge"
	intentPush        = "push"
	intentSchedule    = "schedule"
	intentCancel      = "cancel"
	intentNewReminder = "new_reminder"
	intentFallback    = "fallback"
)

var (
	helpWords       = []string{"help", "hi", "hello", "start", "hey"}
	ackWords        = []string{"ok", "done", "got it", "seen", "thanks", "noted", "ack", "yes"}
	pushPhrases     = []string{"not now", "skip", "push", "later", "busy"}
	schedulePhrases = []string{"your day", "my day", "today", "schedule", "whats next", "what's next"}
	triggerWords    = []string{"remind", "meeting", "call", "appointment", "catch up", "standup", "sync", "doctor", "dentist", "interview", "lunch"}

	cancelRegex = regexp.MustCompile(`^cancel (.+)`)
)

type intent struct {
	name   string
	match  func(inbound) bool
	handle func(*Bot, context.Context, inbound) (string, error)
}

// intents are tried in order; the first match handles the message. Anything
// unmatched gets the help text.
var intents = []intent{
	{intentHelp, isHelp, (*Bot).handleHelp},
	{intentAck, isAcknowledgement, (*Bot).handleAcknowledge},
	{intentPush, isPush, (*Bot).handlePush},
	{intentSchedule, isScheduleQuery, (*Bot).handleSchedule},
	{intentCancel, isCancel, (*Bot).handleCancel},
	{intentNewReminder, hasTrigger, (*Bot).handleNewReminder},
}

func isHelp(msg inbound) bool {
	return equalsAny(msg.lower, helpWords)
}

// isAcknowledgement matches any ack word, even inside other words, unless the
// message also asks for a reminder.
func isAcknowledgement(msg inbound) bool {
	return containsAny(msg.lower, ackWords) && !strings.Contains(msg.lower, "remind")
}

func isPush(msg inbound) bool {
	return equalsAny(msg.lower, pushPhrases)
}

func isScheduleQuery(msg inbound) bool {
	return equalsAny(msg.lower, schedulePhrases)
}

func isCancel(msg inbound) bool {
	return cancelKeyword(msg.lower) != ""
}

func hasTrigger(msg inbound) bool {
	return containsAny(msg.lower, triggerWords)
}

func cancelKeyword(lower string) string {
	matches := cancelRegex.FindStringSubmatch(lower)
	if len(matches) < 2 {
		return ""
	}
	return strings.TrimSpace(matches[1])
}

func equalsAny(s string, options []string) bool {
	for _, option := range options {
		if s == option {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
