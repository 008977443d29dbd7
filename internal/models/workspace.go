package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Workspace struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ExternalOrgID string    `gorm:"uniqueIndex;not null"`
	Name          string    `gorm:"not null"`
	Slug          string
	OwnerID       uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt     time.Time

	Members []User `gorm:"many2many:workspace_members"`
}

func (w *Workspace) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Invitation is a pending membership. It counts against the workspace
// member limit until it is accepted, revoked or expires.
type Invitation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index"`
	Email       string    `gorm:"not null"`
	Role        string    `gorm:"not null;default:'member'"`
	TokenHash   string    `gorm:"not null"`
	InvitedBy   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
	ExpiresAt   time.Time `gorm:"index"`
}

func (i *Invitation) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
