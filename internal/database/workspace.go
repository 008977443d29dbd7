package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/models"
	"gorm.io/gorm/clause"
)

const workspaceMembersTable = "workspace_members"

// CreateWorkspaceIfAbsent inserts ws unless a workspace with the same
// external org id exists, and returns the stored row either way.
func (d *Database) CreateWorkspaceIfAbsent(ws *models.Workspace) (*models.Workspace, bool, error) {
	created, err := insertIgnore(d.db.Omit("Members"), ws)
	if err != nil {
		return nil, false, err
	}
	if created {
		return ws, true, nil
	}
	existing, err := d.FindWorkspaceByExternalOrgID(ws.ExternalOrgID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (d *Database) GetWorkspace(id uuid.UUID) (*models.Workspace, error) {
	var ws models.Workspace
	if err := d.db.First(&ws, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (d *Database) GetWorkspaceForUpdate(id uuid.UUID) (*models.Workspace, error) {
	var ws models.Workspace
	if err := d.forUpdate().First(&ws, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (d *Database) FindWorkspaceByExternalOrgID(orgID string) (*models.Workspace, error) {
	var ws models.Workspace
	if err := d.db.Where("external_org_id = ?", orgID).First(&ws).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (d *Database) IsWorkspaceMember(workspaceID, userID uuid.UUID) (bool, error) {
	var n int64
	err := d.db.Table(workspaceMembersTable).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Count(&n).Error
	return n > 0, err
}

func (d *Database) AddWorkspaceMember(workspaceID, userID uuid.UUID) error {
	return d.db.Table(workspaceMembersTable).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]any{"workspace_id": workspaceID, "user_id": userID}).Error
}

func (d *Database) RemoveWorkspaceMember(workspaceID, userID uuid.UUID) error {
	return d.db.Exec("DELETE FROM "+workspaceMembersTable+" WHERE workspace_id = ? AND user_id = ?",
		workspaceID, userID).Error
}

func (d *Database) ListWorkspaceMembers(workspaceID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := d.db.
		Joins("JOIN "+workspaceMembersTable+" wm ON wm.user_id = users.id").
		Where("wm.workspace_id = ?", workspaceID).
		Order("users.name ASC").
		Find(&users).Error
	return users, err
}

func (d *Database) CountWorkspaceMembers(workspaceID uuid.UUID) (int64, error) {
	var n int64
	err := d.db.Table(workspaceMembersTable).Where("workspace_id = ?", workspaceID).Count(&n).Error
	return n, err
}

func (d *Database) CreateInvitation(inv *models.Invitation) error {
	return d.db.Create(inv).Error
}

func (d *Database) GetInvitation(id uuid.UUID) (*models.Invitation, error) {
	var inv models.Invitation
	if err := d.db.First(&inv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (d *Database) DeleteInvitation(id uuid.UUID) error {
	return d.db.Delete(&models.Invitation{}, "id = ?", id).Error
}

// CountPendingInvitations counts invitations that have not expired at now.
func (d *Database) CountPendingInvitations(workspaceID uuid.UUID, now time.Time) (int64, error) {
	var n int64
	err := d.db.Model(&models.Invitation{}).
		Where("workspace_id = ? AND expires_at > ?", workspaceID, now).
		Count(&n).Error
	return n, err
}

func (d *Database) HasPendingInvitation(workspaceID uuid.UUID, email string, now time.Time) (bool, error) {
	var n int64
	err := d.db.Model(&models.Invitation{}).
		Where("workspace_id = ? AND email = ? AND expires_at > ?", workspaceID, email, now).
		Count(&n).Error
	return n > 0, err
}

func (d *Database) DeleteInvitationsForEmail(workspaceID uuid.UUID, email string) error {
	return d.db.Delete(&models.Invitation{}, "workspace_id = ? AND email = ?", workspaceID, email).Error
}
