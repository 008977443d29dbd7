package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoomType is the closed set of room variants. Each variant decides which
// artifact kind it hosts and whether the room owns a realtime session.
type RoomType string

const (
	RoomDocument    RoomType = "document"
	RoomCode        RoomType = "code"
	RoomWhiteboard  RoomType = "whiteboard"
	RoomConference  RoomType = "conference"
	RoomKanban      RoomType = "kanban"
	RoomSpreadsheet RoomType = "spreadsheet"
)

var roomArtifactKinds = map[RoomType]ArtifactKind{
	RoomDocument:    KindDocument,
	RoomCode:        KindCode,
	RoomWhiteboard:  KindWhiteboard,
	RoomKanban:      KindKanban,
	RoomSpreadsheet: KindSpreadsheet,
}

func ParseRoomType(s string) (RoomType, bool) {
	t := RoomType(s)
	if t == RoomConference {
		return t, true
	}
	_, ok := roomArtifactKinds[t]
	return t, ok
}

// ArtifactKind reports the artifact kind stored in rooms of this type.
// Conference rooms hold meetings instead and report false.
func (t RoomType) ArtifactKind() (ArtifactKind, bool) {
	k, ok := roomArtifactKinds[t]
	return k, ok
}

func (t RoomType) HostsMeetings() bool { return t == RoomConference }

// HasRoomSession is true for room types whose realtime session is keyed by
// the room itself rather than by an artifact.
func (t RoomType) HasRoomSession() bool {
	return t == RoomWhiteboard || t == RoomConference
}

type Room struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	Type        RoomType  `gorm:"not null;check:type IN ('document','code','whiteboard','conference','kanban','spreadsheet')"`
	CreatedBy   uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
}

func (r *Room) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Room) SessionID() string {
	return "room:" + r.ID.String()
}
