package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/database"
	"github.com/thereayou/vbase/internal/models"
)

const defaultCodeLanguage = "plaintext"

// ArtifactStore is the CRUD surface for one artifact kind.
type ArtifactStore struct {
	s    *Service
	kind models.ArtifactKind
}

// ArtifactView is an artifact with its creator and last editor names
// resolved for listing.
type ArtifactView struct {
	models.Artifact
	CreatorName    string
	LastEditorName string
}

type ArtifactOption func(*models.Artifact)

// WithLanguage sets the language of a code file.
func WithLanguage(lang string) ArtifactOption {
	return func(a *models.Artifact) {
		if lang != "" {
			a.Language = lang
		}
	}
}

func (s *Service) Artifacts(kind models.ArtifactKind) *ArtifactStore {
	return &ArtifactStore{s: s, kind: kind}
}

func (st *ArtifactStore) Kind() models.ArtifactKind { return st.kind }

// Create adds an artifact to a room that hosts this kind, initialized with
// the kind's default content.
func (st *ArtifactStore) Create(ctx context.Context, roomID, workspaceID uuid.UUID, name string, creatorID uuid.UUID, opts ...ArtifactOption) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, newError(KindInvalidState, "name is required")
	}

	var id uuid.UUID
	err := st.s.db.Transaction(ctx, func(tx *database.Database) error {
		room, err := tx.GetRoom(roomID)
		if err != nil {
			if database.IsNotFound(err) {
				return notFound("room")
			}
			return err
		}
		if room.WorkspaceID != workspaceID {
			return newError(KindInvalidState, "room does not belong to workspace")
		}
		if kind, ok := room.Type.ArtifactKind(); !ok || kind != st.kind {
			return &Error{
				Kind:    KindInvalidState,
				Reason:  ErrInvalidRoomType.Reason,
				Message: fmt.Sprintf("%s room cannot hold %s artifacts", room.Type, st.kind),
			}
		}

		now := st.s.now()
		artifact := &models.Artifact{
			WorkspaceID:  workspaceID,
			RoomID:       roomID,
			Kind:         st.kind,
			Name:         name,
			Content:      st.kind.DefaultContent(),
			CreatedBy:    creatorID,
			LastEditedBy: creatorID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if st.kind == models.KindCode {
			artifact.Language = defaultCodeLanguage
		}
		for _, opt := range opts {
			opt(artifact)
		}

		if err := tx.CreateArtifact(artifact); err != nil {
			return fmt.Errorf("create %s: %w", st.kind, err)
		}
		id = artifact.ID
		return nil
	})
	return id, err
}

// ListByRoom returns the room's artifacts, most recently updated first.
// Missing users never fail the listing; their names read "Unknown".
func (st *ArtifactStore) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]ArtifactView, error) {
	db := st.s.db.WithContext(ctx)
	artifacts, err := db.GetRoomArtifacts(roomID, st.kind)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(artifacts)*2)
	for _, a := range artifacts {
		ids = append(ids, a.CreatedBy, a.LastEditedBy)
	}
	users, err := db.GetUsersByIDs(ids)
	if err != nil {
		st.s.log.Warn().Err(err).Msg("resolve artifact user names")
		users = nil
	}

	views := make([]ArtifactView, len(artifacts))
	for i, a := range artifacts {
		views[i] = ArtifactView{
			Artifact:       a,
			CreatorName:    nameOf(users, a.CreatedBy),
			LastEditorName: nameOf(users, a.LastEditedBy),
		}
	}
	return views, nil
}

func nameOf(users map[uuid.UUID]models.User, id uuid.UUID) string {
	if u, ok := users[id]; ok && u.Name != "" {
		return u.Name
	}
	return unknownName
}

// GetByID returns nil when no artifact of this kind has the id.
func (st *ArtifactStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Artifact, error) {
	artifact, err := st.s.db.WithContext(ctx).GetArtifact(id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if artifact.Kind != st.kind {
		return nil, nil
	}
	return artifact, nil
}

func (st *ArtifactStore) Rename(ctx context.Context, id uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return newError(KindInvalidState, "name is required")
	}
	return st.s.db.Transaction(ctx, func(tx *database.Database) error {
		if err := st.mustExist(tx, id); err != nil {
			return err
		}
		_, err := tx.UpdateArtifactName(id, name)
		return err
	})
}

// RecordEdit marks userID as the latest editor without touching content.
func (st *ArtifactStore) RecordEdit(ctx context.Context, id, userID uuid.UUID) error {
	return st.s.db.Transaction(ctx, func(tx *database.Database) error {
		if err := st.mustExist(tx, id); err != nil {
			return err
		}
		_, err := tx.TouchArtifact(id, userID, st.s.now())
		return err
	})
}

// UpdateContent stores a content snapshot. Kanban content must be a valid
// board.
func (st *ArtifactStore) UpdateContent(ctx context.Context, id, userID uuid.UUID, content string) error {
	if st.kind == models.KindKanban {
		if _, err := models.ParseKanbanBoard(content); err != nil {
			return newError(KindInvalidState, "invalid kanban content: %v", err)
		}
	}
	return st.s.db.Transaction(ctx, func(tx *database.Database) error {
		if err := st.mustExist(tx, id); err != nil {
			return err
		}
		_, err := tx.UpdateArtifactContent(id, userID, content, st.s.now())
		return err
	})
}

// Delete removes the artifact and its file channel, returning the session
// to tear down.
func (st *ArtifactStore) Delete(ctx context.Context, id uuid.UUID) (*Manifest, error) {
	manifest := &Manifest{SessionIDs: []string{}}
	err := st.s.db.Transaction(ctx, func(tx *database.Database) error {
		if err := st.mustExist(tx, id); err != nil {
			return err
		}
		return deleteSubtree(tx, ref{kind: entityArtifact, id: id}, manifest)
	})
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

func (st *ArtifactStore) mustExist(tx *database.Database, id uuid.UUID) error {
	artifact, err := tx.GetArtifact(id)
	if err != nil {
		if database.IsNotFound(err) {
			return notFound(string(st.kind))
		}
		return err
	}
	if artifact.Kind != st.kind {
		return notFound(string(st.kind))
	}
	return nil
}

// AuthorizeArtifact loads an artifact of any kind that the caller can act
// on, failing with NotFound or Forbidden.
func (s *Service) AuthorizeArtifact(ctx context.Context, id, callerID uuid.UUID) (*models.Artifact, error) {
	db := s.db.WithContext(ctx)
	artifact, err := db.GetArtifact(id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, notFound("artifact")
		}
		return nil, err
	}
	if err := requireMember(db, artifact.WorkspaceID, callerID); err != nil {
		return nil, err
	}
	return artifact, nil
}
