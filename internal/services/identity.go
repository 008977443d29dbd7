package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/database"
	"github.com/thereayou/vbase/internal/models"
)

const (
	anonymousName = "Anonymous"
	unknownName   = "Unknown"
)

// Identity is the verified claim handed over by the auth collaborator.
type Identity struct {
	Subject string
	Name    string
	Email   string
	OrgID   string
	OrgRole string
	OrgSlug string
}

// WorkspaceKey is the external key of the workspace the identity enters:
// its organization, or a personal workspace when it has none.
func (id *Identity) WorkspaceKey() string {
	if id.OrgID != "" {
		return id.OrgID
	}
	return "user:" + id.Subject
}

func (id *Identity) IsOrgAdmin() bool {
	return id.OrgRole == "admin" || id.OrgRole == "org:admin"
}

func (id *Identity) displayName() string {
	if id.Name == "" {
		return anonymousName
	}
	return id.Name
}

// EnsureUser maps the identity to a user record, creating it on first sight
// and overwriting name and email when the claim has drifted.
func (s *Service) EnsureUser(ctx context.Context, id *Identity) (*models.User, error) {
	if id == nil || id.Subject == "" {
		return nil, ErrUnauthenticated
	}
	return s.upsertUser(s.db.WithContext(ctx), id.Subject, id.displayName(), id.Email)
}

func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.db.WithContext(ctx).GetUser(userID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, notFound("user")
		}
		return nil, err
	}
	return user, nil
}

// UpsertUserFromWebhook applies a user.created or user.updated event.
func (s *Service) UpsertUserFromWebhook(ctx context.Context, externalID, name, email string) (*models.User, error) {
	if externalID == "" {
		return nil, newError(KindInvalidState, "external id is required")
	}
	if name == "" {
		name = anonymousName
	}
	return s.upsertUser(s.db.WithContext(ctx), externalID, name, email)
}

// DeleteUserByExternalID applies a user.deleted event. Deleting an unknown
// user is a no-op.
func (s *Service) DeleteUserByExternalID(ctx context.Context, externalID string) error {
	n, err := s.db.WithContext(ctx).DeleteUserByExternalID(externalID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info().Str("external_id", externalID).Int64("deleted", n).Msg("user deleted by identity provider")
	return nil
}

func (s *Service) upsertUser(db *database.Database, externalID, name, email string) (*models.User, error) {
	user, err := db.FindUserByExternalID(externalID)
	switch {
	case err == nil:
		if user.Name == name && user.Email == email {
			return user, nil
		}
		user.Name = name
		user.Email = email
		if err := db.UpdateUser(user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		return user, nil

	case database.IsNotFound(err):
		user = &models.User{ExternalID: externalID, Name: name, Email: email}
		created, err := db.InsertUserIfAbsent(user)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		if !created {
			// lost the race against a concurrent first contact
			return db.FindUserByExternalID(externalID)
		}
		return user, nil

	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}
