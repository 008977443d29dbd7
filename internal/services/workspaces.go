package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/database"
	"github.com/thereayou/vbase/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const invitationTTL = 7 * 24 * time.Hour

// EnsureWorkspace returns the workspace the identity belongs to, creating
// it (with its general channel) on first entry and adding user as a member
// when missing.
func (s *Service) EnsureWorkspace(ctx context.Context, user *models.User, id *Identity) (*models.Workspace, error) {
	if user == nil || id == nil {
		return nil, ErrUnauthenticated
	}

	var result *models.Workspace
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		name := id.OrgSlug
		if name == "" {
			name = user.Name + "'s workspace"
		}

		ws, created, err := tx.CreateWorkspaceIfAbsent(&models.Workspace{
			ExternalOrgID: id.WorkspaceKey(),
			Name:          name,
			Slug:          id.OrgSlug,
			OwnerID:       user.ID,
			CreatedAt:     s.now(),
		})
		if err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
		result = ws

		if created {
			if err := tx.AddWorkspaceMember(ws.ID, user.ID); err != nil {
				return fmt.Errorf("add owner: %w", err)
			}
			general := &models.Channel{
				WorkspaceID: ws.ID,
				Name:        "general",
				Type:        models.ChannelGeneral,
				CreatedBy:   user.ID,
				CreatedAt:   s.now(),
			}
			if err := tx.CreateChannel(general); err != nil {
				return fmt.Errorf("create general channel: %w", err)
			}
			s.log.Info().Str("workspace_id", ws.ID.String()).Str("org", ws.ExternalOrgID).Msg("workspace created")
			return nil
		}

		return s.joinWorkspace(tx, ws.ID, user)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// joinWorkspace adds user to an existing workspace. A pending invitation
// for the user's email is consumed so it does not count twice.
func (s *Service) joinWorkspace(tx *database.Database, workspaceID uuid.UUID, user *models.User) error {
	if _, err := tx.GetWorkspaceForUpdate(workspaceID); err != nil {
		return fmt.Errorf("lock workspace: %w", err)
	}

	member, err := tx.IsWorkspaceMember(workspaceID, user.ID)
	if err != nil {
		return err
	}
	if member {
		return nil
	}

	invited, err := tx.HasPendingInvitation(workspaceID, normalizeEmail(user.Email), s.now())
	if err != nil {
		return err
	}
	if !invited {
		if err := s.checkMembers(tx, workspaceID); err != nil {
			return err
		}
	}

	if err := tx.AddWorkspaceMember(workspaceID, user.ID); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	if invited {
		return tx.DeleteInvitationsForEmail(workspaceID, normalizeEmail(user.Email))
	}
	return nil
}

func (s *Service) checkMembers(tx *database.Database, workspaceID uuid.UUID) error {
	members, err := tx.CountWorkspaceMembers(workspaceID)
	if err != nil {
		return err
	}
	pending, err := tx.CountPendingInvitations(workspaceID, s.now())
	if err != nil {
		return err
	}
	if err := checkMemberCapacity(members, pending); err != nil {
		s.log.Info().Str("workspace_id", workspaceID.String()).Int64("members", members).
			Int64("pending", pending).Msg("member limit reached")
		return err
	}
	return nil
}

func (s *Service) GetWorkspace(ctx context.Context, workspaceID, callerID uuid.UUID) (*models.Workspace, error) {
	db := s.db.WithContext(ctx)
	ws, err := db.GetWorkspace(workspaceID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := requireMember(db, workspaceID, callerID); err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *Service) ListMembers(ctx context.Context, workspaceID, callerID uuid.UUID) ([]models.User, error) {
	db := s.db.WithContext(ctx)
	if err := requireMember(db, workspaceID, callerID); err != nil {
		return nil, err
	}
	return db.ListWorkspaceMembers(workspaceID)
}

// InviteMember reserves a member slot for email. Only the workspace owner
// or an organization admin may invite. The returned token is shown once;
// only its hash is stored.
func (s *Service) InviteMember(ctx context.Context, workspaceID uuid.UUID, inviter *models.User, id *Identity, email, role string) (*models.Invitation, string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, "", newError(KindInvalidState, "email is required")
	}
	if role == "" {
		role = "member"
	}

	token, err := newInvitationToken()
	if err != nil {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash invitation token: %w", err)
	}

	var inv *models.Invitation
	err = s.db.Transaction(ctx, func(tx *database.Database) error {
		ws, err := tx.GetWorkspaceForUpdate(workspaceID)
		if err != nil {
			if database.IsNotFound(err) {
				return notFound("workspace")
			}
			return err
		}
		if !canAdminister(ws, inviter, id) {
			return forbidden("only workspace admins can invite members")
		}

		members, err := tx.ListWorkspaceMembers(workspaceID)
		if err != nil {
			return err
		}
		for _, m := range members {
			if normalizeEmail(m.Email) == email {
				return newError(KindConflict, "%s is already a member", email)
			}
		}
		pending, err := tx.HasPendingInvitation(workspaceID, email, s.now())
		if err != nil {
			return err
		}
		if pending {
			return newError(KindConflict, "%s already has a pending invitation", email)
		}

		if err := s.checkMembers(tx, workspaceID); err != nil {
			return err
		}

		now := s.now()
		inv = &models.Invitation{
			WorkspaceID: workspaceID,
			Email:       email,
			Role:        role,
			TokenHash:   string(hash),
			InvitedBy:   inviter.ID,
			CreatedAt:   now,
			ExpiresAt:   now.Add(invitationTTL),
		}
		return tx.CreateInvitation(inv)
	})
	if err != nil {
		return nil, "", err
	}
	return inv, token, nil
}

// AcceptInvitation turns a pending invitation into a membership. The slot
// was reserved at invite time, so no capacity check happens here.
func (s *Service) AcceptInvitation(ctx context.Context, invitationID uuid.UUID, token string, user *models.User) (*models.Workspace, error) {
	var ws *models.Workspace
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		inv, err := tx.GetInvitation(invitationID)
		if err != nil {
			if database.IsNotFound(err) {
				return notFound("invitation")
			}
			return err
		}
		if !inv.ExpiresAt.After(s.now()) {
			return newError(KindInvalidState, "invitation has expired")
		}
		if bcrypt.CompareHashAndPassword([]byte(inv.TokenHash), []byte(token)) != nil {
			return forbidden("invalid invitation token")
		}
		if normalizeEmail(user.Email) != inv.Email {
			return forbidden("invitation was issued to a different email")
		}

		ws, err = tx.GetWorkspaceForUpdate(inv.WorkspaceID)
		if err != nil {
			return err
		}
		if err := tx.AddWorkspaceMember(ws.ID, user.ID); err != nil {
			return err
		}
		return tx.DeleteInvitation(inv.ID)
	})
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *Service) RevokeInvitation(ctx context.Context, invitationID uuid.UUID, caller *models.User, id *Identity) error {
	return s.db.Transaction(ctx, func(tx *database.Database) error {
		inv, err := tx.GetInvitation(invitationID)
		if err != nil {
			if database.IsNotFound(err) {
				return notFound("invitation")
			}
			return err
		}
		ws, err := tx.GetWorkspace(inv.WorkspaceID)
		if err != nil {
			return err
		}
		if !canAdminister(ws, caller, id) {
			return forbidden("only workspace admins can revoke invitations")
		}
		return tx.DeleteInvitation(inv.ID)
	})
}

// RemoveMember removes userID from the workspace. Only the owner may remove
// members and the owner cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, workspaceID, callerID, userID uuid.UUID) error {
	return s.db.Transaction(ctx, func(tx *database.Database) error {
		ws, err := tx.GetWorkspaceForUpdate(workspaceID)
		if err != nil {
			if database.IsNotFound(err) {
				return notFound("workspace")
			}
			return err
		}
		if ws.OwnerID != callerID {
			return forbidden("only the workspace owner can remove members")
		}
		if userID == ws.OwnerID {
			return newError(KindInvalidState, "the workspace owner cannot be removed")
		}
		return tx.RemoveWorkspaceMember(workspaceID, userID)
	})
}

func requireMember(db *database.Database, workspaceID, userID uuid.UUID) error {
	member, err := db.IsWorkspaceMember(workspaceID, userID)
	if err != nil {
		return err
	}
	if !member {
		return forbidden("not a member of this workspace")
	}
	return nil
}

func canAdminister(ws *models.Workspace, user *models.User, id *Identity) bool {
	if user != nil && ws.OwnerID == user.ID {
		return true
	}
	return id != nil && id.IsOrgAdmin() && id.WorkspaceKey() == ws.ExternalOrgID
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newInvitationToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.New("cannot generate invitation token")
	}
	return hex.EncodeToString(buf), nil
}
