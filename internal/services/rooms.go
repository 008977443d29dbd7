package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/database"
	"github.com/thereayou/vbase/internal/models"
)

// CreateRoom adds a typed room to the workspace, subject to the room limit.
func (s *Service) CreateRoom(ctx context.Context, workspaceID, callerID uuid.UUID, name, roomType string) (*models.Room, error) {
	t, ok := models.ParseRoomType(roomType)
	if !ok {
		return nil, &Error{Kind: KindInvalidState, Reason: ErrInvalidRoomType.Reason, Message: fmt.Sprintf("unknown room type %q", roomType)}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newError(KindInvalidState, "room name is required")
	}

	var room *models.Room
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		if _, err := tx.GetWorkspaceForUpdate(workspaceID); err != nil {
			if database.IsNotFound(err) {
				return notFound("workspace")
			}
			return err
		}
		if err := requireMember(tx, workspaceID, callerID); err != nil {
			return err
		}

		count, err := tx.CountWorkspaceRooms(workspaceID)
		if err != nil {
			return err
		}
		if err := checkRoomCapacity(count); err != nil {
			return err
		}

		room = &models.Room{
			WorkspaceID: workspaceID,
			Name:        name,
			Type:        t,
			CreatedBy:   callerID,
			CreatedAt:   s.now(),
		}
		return tx.CreateRoom(room)
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) ListRooms(ctx context.Context, workspaceID, callerID uuid.UUID) ([]models.Room, error) {
	db := s.db.WithContext(ctx)
	if err := requireMember(db, workspaceID, callerID); err != nil {
		return nil, err
	}
	return db.GetWorkspaceRooms(workspaceID)
}

// GetRoom returns nil when the room does not exist.
func (s *Service) GetRoom(ctx context.Context, roomID, callerID uuid.UUID) (*models.Room, error) {
	db := s.db.WithContext(ctx)
	room, err := db.GetRoom(roomID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := requireMember(db, room.WorkspaceID, callerID); err != nil {
		return nil, err
	}
	return room, nil
}

// AuthorizeRoom loads a room the caller can act on, failing with NotFound
// or Forbidden.
func (s *Service) AuthorizeRoom(ctx context.Context, roomID, callerID uuid.UUID) (*models.Room, error) {
	return authorizeRoom(s.db.WithContext(ctx), roomID, callerID)
}

func authorizeRoom(db *database.Database, roomID, callerID uuid.UUID) (*models.Room, error) {
	room, err := db.GetRoom(roomID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, notFound("room")
		}
		return nil, err
	}
	if err := requireMember(db, room.WorkspaceID, callerID); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) RenameRoom(ctx context.Context, roomID, callerID uuid.UUID, name string) (*models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newError(KindInvalidState, "room name is required")
	}

	var room *models.Room
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		var err error
		room, err = authorizeRoom(tx, roomID, callerID)
		if err != nil {
			return err
		}
		if _, err := tx.UpdateRoomName(roomID, name); err != nil {
			return err
		}
		room.Name = name
		return nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// DeleteRoom removes the room with its channels, artifacts and meetings and
// returns the sessions that must be torn down on the realtime host. Only
// the room creator or the workspace owner may delete a room.
func (s *Service) DeleteRoom(ctx context.Context, roomID, callerID uuid.UUID) (*Manifest, error) {
	manifest := &Manifest{SessionIDs: []string{}}
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		room, err := authorizeRoom(tx, roomID, callerID)
		if err != nil {
			return err
		}
		if room.CreatedBy != callerID {
			ws, err := tx.GetWorkspace(room.WorkspaceID)
			if err != nil {
				return err
			}
			if ws.OwnerID != callerID {
				return forbidden("only the room creator or workspace owner can delete a room")
			}
		}
		return deleteSubtree(tx, ref{kind: entityRoom, id: roomID}, manifest)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("room_id", roomID.String()).Strs("sessions", manifest.SessionIDs).Msg("room deleted")
	return manifest, nil
}
