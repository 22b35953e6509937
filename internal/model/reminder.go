package model

import "time"

// Reminder is a future message owed to a conversation.
// RemindAt is always stored in UTC.
type Reminder struct {
	ID             uint      `gorm:"primaryKey"`
	ConversationID string    `gorm:"index;not null"`
	Title          string    `gorm:"type:text;not null"`
	RemindAt       time.Time `gorm:"not null;index:idx_reminders_state_due,priority:2"`
	Sent           bool      `gorm:"not null;default:false;index:idx_reminders_state_due,priority:1"`
	SentAt         *time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// DefaultReminderTitle replaces titles that come out empty after extraction.
const DefaultReminderTitle = "Reminder"
