package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pathakanu/nudge/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReminders implements Reminders on a GORM connection.
type GormReminders struct {
	db *gorm.DB
}

// NewGormReminders returns a reminder repository backed by db.
func NewGormReminders(db *gorm.DB) *GormReminders {
	return &GormReminders{db: db}
}

// Insert persists a new reminder.
func (r *GormReminders) Insert(ctx context.Context, reminder *model.Reminder) error {
	normalizeReminder(reminder)
	if err := r.db.WithContext(ctx).Create(reminder).Error; err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}
	return nil
}

// Get loads one reminder by ID.
func (r *GormReminders) Get(ctx context.Context, id string) (*model.Reminder, error) {
	var reminder model.Reminder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&reminder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reminder %s: %w", id, err)
	}
	return &reminder, nil
}

// Find returns every reminder matching filter, earliest remind_at first.
func (r *GormReminders) Find(ctx context.Context, filter ReminderFilter) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.query(ctx, filter).Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("find reminders: %w", err)
	}
	return reminders, nil
}

// FindFirst returns the matching reminder with the earliest remind_at.
func (r *GormReminders) FindFirst(ctx context.Context, filter ReminderFilter) (*model.Reminder, error) {
	var reminder model.Reminder
	if err := r.query(ctx, filter).First(&reminder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find first reminder: %w", err)
	}
	return &reminder, nil
}

// Update applies a partial update to one reminder.
func (r *GormReminders) Update(ctx context.Context, id string, set Set) error {
	values := make(map[string]any, len(set))
	for column, value := range set {
		values[column] = normalizeValue(value)
	}
	result := r.db.WithContext(ctx).Model(&model.Reminder{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return fmt.Errorf("update reminder %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one reminder.
func (r *GormReminders) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Reminder{}).Error; err != nil {
		return fmt.Errorf("delete reminder %s: %w", id, err)
	}
	return nil
}

func (r *GormReminders) query(ctx context.Context, filter ReminderFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Reminder{})
	if filter.UserAddress != "" {
		query = query.Where("user_address = ?", filter.UserAddress)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.RemindAtFrom != nil {
		query = query.Where("remind_at >= ?", filter.RemindAtFrom.UTC())
	}
	if filter.RemindAtTo != nil {
		query = query.Where("remind_at <= ?", filter.RemindAtTo.UTC())
	}
	if filter.PreRemindAtTo != nil {
		query = query.Where("pre_remind_at IS NOT NULL AND pre_remind_at <= ?", filter.PreRemindAtTo.UTC())
	}
	if filter.NotifiedAtTo != nil {
		query = query.Where("notified_at IS NOT NULL AND notified_at <= ?", filter.NotifiedAtTo.UTC())
	}
	return query.Order("remind_at ASC")
}

// GormSessions implements Sessions on a GORM connection.
type GormSessions struct {
	db *gorm.DB
}

// NewGormSessions returns a session repository backed by db.
func NewGormSessions(db *gorm.DB) *GormSessions {
	return &GormSessions{db: db}
}

// Get loads the session of a user.
func (s *GormSessions) Get(ctx context.Context, userAddress string) (*model.Session, error) {
	var session model.Session
	if err := s.db.WithContext(ctx).Where("user_address = ?", userAddress).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session %s: %w", userAddress, err)
	}
	return &session, nil
}

// Upsert creates the session or overwrites the user's existing one.
func (s *GormSessions) Upsert(ctx context.Context, session *model.Session) error {
	session.ExpiresAt = session.ExpiresAt.UTC()
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_address"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "reminder_id", "expires_at"}),
	}).Create(session).Error
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", session.UserAddress, err)
	}
	return nil
}

// Delete removes the session of a user. Deleting a missing session is not an error.
func (s *GormSessions) Delete(ctx context.Context, userAddress string) error {
	if err := s.db.WithContext(ctx).Where("user_address = ?", userAddress).Delete(&model.Session{}).Error; err != nil {
		return fmt.Errorf("delete session %s: %w", userAddress, err)
	}
	return nil
}

func normalizeReminder(reminder *model.Reminder) {
	reminder.RemindAt = reminder.RemindAt.UTC()
	if reminder.PreRemindAt != nil {
		pre := reminder.PreRemindAt.UTC()
		reminder.PreRemindAt = &pre
	}
	if reminder.NotifiedAt != nil {
		notified := reminder.NotifiedAt.UTC()
		reminder.NotifiedAt = &notified
	}
}

// normalizeValue stores instants in UTC so SQLite's text comparison stays ordered.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case time.Time:
		return v.UTC()
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.UTC()
	default:
		return value
	}
}
