package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MeetingStatus string

const (
	MeetingActive MeetingStatus = "active"
	MeetingEnded  MeetingStatus = "ended"
)

type Meeting struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey"`
	WorkspaceID      uuid.UUID     `gorm:"type:uuid;not null;index"`
	RoomID           uuid.UUID     `gorm:"type:uuid;not null;index"`
	Name             string        `gorm:"not null"`
	CreatedBy        uuid.UUID     `gorm:"type:uuid;not null"`
	ParticipantCount int           `gorm:"not null;default:0;check:participant_count >= 0"`
	Status           MeetingStatus `gorm:"not null;default:'active';index"`
	SessionName      string        `gorm:"not null"`
	CreatedAt        time.Time
}

func (m *Meeting) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MeetingSessionName names the conferencing session. The creation time is
// part of the name so a meeting recreated in the same room gets a new one.
func MeetingSessionName(roomID uuid.UUID, createdAt time.Time) string {
	return fmt.Sprintf("meeting_%s_%d", roomID, createdAt.UnixMilli())
}
