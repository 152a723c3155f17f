package model

import "time"

// Reminder represents a scheduled reminder for a WhatsApp user.
type Reminder struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)"`
	UserAddress string     `gorm:"index;not null"`
	Message     string     `gorm:"type:text;not null"`
	EventType   EventType  `gorm:"type:varchar(16);not null"`
	RemindAt    time.Time  `gorm:"index;not null"`
	PreRemindAt *time.Time `gorm:"index"`
	Status      Status     `gorm:"type:varchar(16);index;not null"`
	NotifiedAt  *time.Time
	SnoozeCount int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// Pushed reports whether the reminder has been snoozed at least once.
func (r Reminder) Pushed() bool {
	return r.SnoozeCount > 0
}

// EventType labels a reminder category. It only selects the pre-reminder lead time.
type EventType string

const (
	EventMeeting     EventType = "meeting"
	EventCall        EventType = "call"
	EventAppointment EventType = "appointment"
	EventDoctor      EventType = "doctor"
	EventDentist     EventType = "dentist"
	EventInterview   EventType = "interview"
	EventDefault     EventType = "default"
)

// EventTypePriority is the detection order. Earlier entries win when several keywords occur.
var EventTypePriority = []EventType{
	EventMeeting,
	EventCall,
	EventAppointment,
	EventDoctor,
	EventDentist,
	EventInterview,
}

var leadTimes = map[EventType]time.Duration{
	EventMeeting:     10 * time.Minute,
	EventCall:        5 * time.Minute,
	EventAppointment: 15 * time.Minute,
	EventDoctor:      15 * time.Minute,
	EventDentist:     15 * time.Minute,
	EventInterview:   15 * time.Minute,
	EventDefault:     10 * time.Minute,
}

// LeadTime returns how long before the due time the heads-up is sent.
func (e EventType) LeadTime() time.Duration {
	if lead, ok := leadTimes[e]; ok {
		return lead
	}
	return leadTimes[EventDefault]
}
