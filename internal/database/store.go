package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pathakanu/alina/internal/model"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("database: record not found")

// Store owns persisted notes and reminders.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore wraps an opened database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// CreateNote inserts a note. A zero CreatedAt is set to the current instant.
func (s *Store) CreateNote(ctx context.Context, note *model.Note) error {
	if strings.TrimSpace(note.Text) == "" {
		return fmt.Errorf("create note: text cannot be empty")
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = s.now()
	}
	note.CreatedAt = note.CreatedAt.UTC()
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// CreateReminder inserts a pending reminder and fills in its ID.
func (s *Store) CreateReminder(ctx context.Context, reminder *model.Reminder) error {
	if strings.TrimSpace(reminder.Title) == "" {
		reminder.Title = model.DefaultReminderTitle
	}
	if reminder.RemindAt.IsZero() {
		return fmt.Errorf("create reminder: due instant is required")
	}
	reminder.RemindAt = reminder.RemindAt.UTC().Truncate(time.Second)
	reminder.Sent = false
	reminder.SentAt = nil
	if err := s.db.WithContext(ctx).Create(reminder).Error; err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// GetReminder loads a reminder by id.
func (s *Store) GetReminder(ctx context.Context, id uint) (model.Reminder, error) {
	var reminder model.Reminder
	err := s.db.WithContext(ctx).First(&reminder, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Reminder{}, ErrNotFound
	}
	if err != nil {
		return model.Reminder{}, fmt.Errorf("get reminder %d: %w", id, err)
	}
	return reminder, nil
}

// DueReminders returns pending reminders whose due instant is at or before now.
func (s *Store) DueReminders(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := s.db.WithContext(ctx).
		Where("sent = ? AND remind_at <= ?", false, now.UTC()).
		Order("remind_at ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("due reminders: %w", err)
	}
	return reminders, nil
}

// UpcomingReminders returns pending reminders due strictly after now.
func (s *Store) UpcomingReminders(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := s.db.WithContext(ctx).
		Where("sent = ? AND remind_at > ?", false, now.UTC()).
		Order("remind_at ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("upcoming reminders: %w", err)
	}
	return reminders, nil
}

// MarkSent flips a reminder from pending to sent. It reports false when the
// reminder was already sent or does not exist; sent reminders are never touched.
func (s *Store) MarkSent(ctx context.Context, id uint) (bool, error) {
	sentAt := s.now().UTC()
	result := s.db.WithContext(ctx).
		Model(&model.Reminder{}).
		Where("id = ? AND sent = ?", id, false).
		Updates(map[string]any{"sent": true, "sent_at": sentAt})
	if result.Error != nil {
		return false, fmt.Errorf("mark reminder %d sent: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// NotesFor returns a conversation's notes, newest first.
func (s *Store) NotesFor(ctx context.Context, conversationID string, limit int) ([]model.Note, error) {
	var notes []model.Note
	query := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// PendingReminders returns a conversation's reminders that have not been sent yet, soonest first.
func (s *Store) PendingReminders(ctx context.Context, conversationID string) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := s.db.WithContext(ctx).
		Where("conversation_id = ? AND sent = ?", conversationID, false).
		Order("remind_at ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("pending reminders: %w", err)
	}
	return reminders, nil
}
