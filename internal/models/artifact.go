package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ArtifactKind string

const (
	KindDocument    ArtifactKind = "document"
	KindCode        ArtifactKind = "code"
	KindWhiteboard  ArtifactKind = "whiteboard"
	KindKanban      ArtifactKind = "kanban"
	KindSpreadsheet ArtifactKind = "spreadsheet"
)

// Artifact is a collaborative document living in a room. All kinds share
// one table; Kind discriminates.
type Artifact struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey"`
	WorkspaceID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	RoomID       uuid.UUID    `gorm:"type:uuid;not null;index"`
	Kind         ArtifactKind `gorm:"not null;index"`
	Name         string       `gorm:"not null"`
	Language     string
	Content      string    `gorm:"type:text"`
	CreatedBy    uuid.UUID `gorm:"type:uuid"`
	LastEditedBy uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a *Artifact) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// SessionID is the name of the artifact's session on the realtime host.
func (a *Artifact) SessionID() string {
	return string(a.Kind) + ":" + a.ID.String()
}
