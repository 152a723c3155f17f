package model

// Status is the lifecycle position of a reminder.
type Status string

const (
	StatusPending      Status = "pending"
	StatusPreNotified  Status = "pre_notified"
	StatusNotified     Status = "notified"
	StatusCalled       Status = "called"
	StatusAcknowledged Status = "acknowledged"
	StatusCancelled    Status = "cancelled"
)

var (
	// UpcomingStatuses are reminders that have not fired their on-time notice yet.
	UpcomingStatuses = []Status{StatusPending, StatusPreNotified}
	// SnoozableStatuses are reminders a "not now" reply may push.
	SnoozableStatuses = []Status{StatusPreNotified, StatusNotified}
	// AcknowledgeableStatuses are reminders a "done" reply may dismiss.
	AcknowledgeableStatuses = []Status{StatusPreNotified, StatusNotified, StatusCalled}
)

type transition struct {
	from, to Status
}

// transitions lists every legal edge. pre_notified/notified -> pending is the snooze edge.
var transitions = []transition{
	{StatusPending, StatusPreNotified},
	{StatusPending, StatusNotified},
	{StatusPending, StatusAcknowledged},
	{StatusPending, StatusCancelled},
	{StatusPreNotified, StatusNotified},
	{StatusPreNotified, StatusAcknowledged},
	{StatusPreNotified, StatusCancelled},
	{StatusPreNotified, StatusPending},
	{StatusNotified, StatusCalled},
	{StatusNotified, StatusAcknowledged},
	{StatusNotified, StatusPending},
	{StatusCalled, StatusAcknowledged},
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions {
		if t.from == s && t.to == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusAcknowledged || s == StatusCancelled
}

// In reports whether s is one of statuses.
func (s Status) In(statuses []Status) bool {
	for _, candidate := range statuses {
		if s == candidate {
			return true
		}
	}
	return false
}
