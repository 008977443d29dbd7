package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/database"
	"github.com/thereayou/vbase/internal/models"
)

// ChannelView is a channel with the caller's unread count.
type ChannelView struct {
	models.Channel
	Unread int64
}

// GetOrCreateFileChannel returns the chat channel bound to an artifact,
// creating it on first access. Concurrent first openers converge on one
// row through the unique (room, artifact, kind) index.
func (s *Service) GetOrCreateFileChannel(ctx context.Context, workspaceID, roomID, artifactID uuid.UUID, kind models.ArtifactKind) (*models.Channel, error) {
	var ch *models.Channel
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		find := func() (*models.Channel, error) { return tx.FindFileChannel(roomID, artifactID, kind) }

		var err error
		ch, err = bindChannel(tx, find, func() (*models.Channel, error) {
			artifact, err := tx.GetArtifact(artifactID)
			if err != nil {
				if database.IsNotFound(err) {
					return nil, notFound(string(kind))
				}
				return nil, err
			}
			if artifact.RoomID != roomID || artifact.WorkspaceID != workspaceID || artifact.Kind != kind {
				return nil, newError(KindInvalidState, "artifact does not belong to room")
			}
			return &models.Channel{
				WorkspaceID:  workspaceID,
				Name:         artifact.Name,
				Type:         models.ChannelFile,
				RoomID:       &roomID,
				ArtifactID:   &artifactID,
				ArtifactKind: kind,
				CreatedBy:    artifact.CreatedBy,
				CreatedAt:    s.now(),
			}, nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// GetOrCreateDirectChannel returns the single direct channel between two
// workspace members, whoever opens it first.
func (s *Service) GetOrCreateDirectChannel(ctx context.Context, workspaceID, callerID, otherID uuid.UUID) (*models.Channel, error) {
	if callerID == otherID {
		return nil, newError(KindInvalidState, "cannot open a direct channel with yourself")
	}
	low, high := models.SortedPair(callerID, otherID)

	var ch *models.Channel
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		if err := requireMember(tx, workspaceID, callerID); err != nil {
			return err
		}
		if err := requireMember(tx, workspaceID, otherID); err != nil {
			return forbidden("user is not a member of this workspace")
		}

		find := func() (*models.Channel, error) { return tx.FindDirectChannel(workspaceID, low, high) }

		var err error
		ch, err = bindChannel(tx, find, func() (*models.Channel, error) {
			return &models.Channel{
				WorkspaceID: workspaceID,
				Name:        "direct",
				Type:        models.ChannelDirect,
				DirectLow:   &low,
				DirectHigh:  &high,
				CreatedBy:   callerID,
				CreatedAt:   s.now(),
			}, nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// getOrCreateMeetingChannel binds a chat channel to a meeting inside the
// caller's transaction.
func (s *Service) getOrCreateMeetingChannel(tx *database.Database, meeting *models.Meeting) (*models.Channel, error) {
	find := func() (*models.Channel, error) { return tx.FindMeetingChannel(meeting.ID) }
	return bindChannel(tx, find, func() (*models.Channel, error) {
		return &models.Channel{
			WorkspaceID: meeting.WorkspaceID,
			Name:        "Meeting: " + meeting.Name,
			Type:        models.ChannelMeeting,
			RoomID:      &meeting.RoomID,
			MeetingID:   &meeting.ID,
			CreatedBy:   meeting.CreatedBy,
			CreatedAt:   s.now(),
		}, nil
	})
}

// bindChannel returns the channel find locates, else inserts the one build
// describes. If another opener inserted the same binding key in between,
// the unique index turns the insert into a no-op and the winner is re-read.
func bindChannel(tx *database.Database, find func() (*models.Channel, error), build func() (*models.Channel, error)) (*models.Channel, error) {
	existing, err := find()
	if err == nil {
		return existing, nil
	}
	if !database.IsNotFound(err) {
		return nil, err
	}

	candidate, err := build()
	if err != nil {
		return nil, err
	}
	created, err := tx.InsertChannelIfAbsent(candidate)
	if err != nil {
		return nil, fmt.Errorf("create %s channel: %w", candidate.Type, err)
	}
	if created {
		return candidate, nil
	}
	return find()
}

// GetMeetingChannel returns nil when the meeting has no channel.
func (s *Service) GetMeetingChannel(ctx context.Context, meetingID, callerID uuid.UUID) (*models.Channel, error) {
	db := s.db.WithContext(ctx)
	ch, err := db.FindMeetingChannel(meetingID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := checkChannelAccess(db, ch, callerID); err != nil {
		return nil, err
	}
	return ch, nil
}

// GetChannel returns nil when the channel does not exist.
func (s *Service) GetChannel(ctx context.Context, channelID, callerID uuid.UUID) (*models.Channel, error) {
	db := s.db.WithContext(ctx)
	ch, err := db.GetChannel(channelID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := checkChannelAccess(db, ch, callerID); err != nil {
		return nil, err
	}
	return ch, nil
}

// AuthorizeChannel loads a channel the caller may read and write, failing
// with NotFound or Forbidden.
func (s *Service) AuthorizeChannel(ctx context.Context, channelID, callerID uuid.UUID) (*models.Channel, error) {
	return authorizeChannel(s.db.WithContext(ctx), channelID, callerID)
}

func authorizeChannel(db *database.Database, channelID, callerID uuid.UUID) (*models.Channel, error) {
	ch, err := db.GetChannel(channelID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, notFound("channel")
		}
		return nil, err
	}
	if err := checkChannelAccess(db, ch, callerID); err != nil {
		return nil, err
	}
	return ch, nil
}

// checkChannelAccess restricts direct channels to their two participants
// and every other channel to workspace members.
func checkChannelAccess(db *database.Database, ch *models.Channel, callerID uuid.UUID) error {
	if ch.Type == models.ChannelDirect {
		if !ch.HasParticipant(callerID) {
			return forbidden("not a participant of this direct channel")
		}
		return nil
	}
	return requireMember(db, ch.WorkspaceID, callerID)
}

func (s *Service) ListChannels(ctx context.Context, workspaceID, callerID uuid.UUID) ([]ChannelView, error) {
	db := s.db.WithContext(ctx)
	if err := requireMember(db, workspaceID, callerID); err != nil {
		return nil, err
	}

	channels, err := db.GetVisibleChannels(workspaceID, callerID)
	if err != nil {
		return nil, err
	}

	views := make([]ChannelView, len(channels))
	for i, ch := range channels {
		unread, err := unreadCount(db, ch.ID, callerID)
		if err != nil {
			return nil, err
		}
		views[i] = ChannelView{Channel: ch, Unread: unread}
	}
	return views, nil
}

// DeleteChannel removes a channel with its messages and read receipts.
// The general channel lives as long as its workspace.
func (s *Service) DeleteChannel(ctx context.Context, channelID, callerID uuid.UUID) error {
	return s.db.Transaction(ctx, func(tx *database.Database) error {
		ch, err := authorizeChannel(tx, channelID, callerID)
		if err != nil {
			return err
		}
		if ch.Type == models.ChannelGeneral {
			return newError(KindInvalidState, "the general channel cannot be deleted")
		}
		return deleteSubtree(tx, ref{kind: entityChannel, id: channelID}, &Manifest{})
	})
}
