package models

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChannelType string

const (
	ChannelGeneral ChannelType = "general"
	ChannelDirect  ChannelType = "direct"
	ChannelFile    ChannelType = "file"
	ChannelMeeting ChannelType = "meeting"
)

// Channel is a chat stream. File channels are unique per (room, artifact,
// kind), meeting channels per meeting and direct channels per sorted user
// pair within a workspace. Non-matching channel types leave the key columns
// NULL, which never collide in a unique index.
type Channel struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"`
	WorkspaceID uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:idx_channel_direct"`
	Name        string      `gorm:"not null"`
	Type        ChannelType `gorm:"not null;check:type IN ('general','direct','file','meeting')"`

	RoomID       *uuid.UUID   `gorm:"type:uuid;index;uniqueIndex:idx_channel_file"`
	ArtifactID   *uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_channel_file"`
	ArtifactKind ArtifactKind `gorm:"uniqueIndex:idx_channel_file"`

	MeetingID *uuid.UUID `gorm:"type:uuid;uniqueIndex"`

	DirectLow  *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_channel_direct"`
	DirectHigh *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_channel_direct"`

	CreatedBy uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
}

func (c *Channel) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Channel) HasParticipant(userID uuid.UUID) bool {
	if c.DirectLow == nil || c.DirectHigh == nil {
		return false
	}
	return *c.DirectLow == userID || *c.DirectHigh == userID
}

// SortedPair orders two user ids so a direct channel has one key no matter
// who opens it.
func SortedPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return a, b
	}
	return b, a
}
