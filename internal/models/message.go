package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SeenEntry struct {
	UserID uuid.UUID `json:"user_id"`
	SeenAt time.Time `json:"seen_at"`
}

type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChannelID  uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null"`
	AuthorName string    `gorm:"not null"`
	Content    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"index"`
	EditedAt   *time.Time

	// reaction kind -> users who reacted
	Reactions map[string][]uuid.UUID `gorm:"type:text;serializer:json"`
	SeenBy    []SeenEntry            `gorm:"type:text;serializer:json"`
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// LastRead marks how far a user has read a channel.
type LastRead struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChannelID  uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	LastReadAt time.Time
}
