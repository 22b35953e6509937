package model

import "time"

// Note represents an immediate free-text record for a conversation.
type Note struct {
	ID             uint      `gorm:"primaryKey"`
	ConversationID string    `gorm:"index;not null"`
	Text           string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"not null"`
}
