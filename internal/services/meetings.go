package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/database"
	"github.com/thereayou/vbase/internal/models"
)

// StaleMeetingAge is how old a meeting must be before anyone may force it
// to end.
const StaleMeetingAge = time.Hour

// CreateMeeting starts a meeting in a conference room together with its
// chat channel.
func (s *Service) CreateMeeting(ctx context.Context, roomID, callerID uuid.UUID, name string) (*models.Meeting, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newError(KindInvalidState, "meeting name is required")
	}

	var meeting *models.Meeting
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		room, err := tx.GetRoomForUpdate(roomID)
		if err != nil {
			if database.IsNotFound(err) {
				return notFound("room")
			}
			return err
		}
		if err := requireMember(tx, room.WorkspaceID, callerID); err != nil {
			return err
		}
		if !room.Type.HostsMeetings() {
			return &Error{
				Kind:    KindInvalidState,
				Reason:  ErrInvalidRoomType.Reason,
				Message: fmt.Sprintf("meetings can only be created in conference rooms, not %s rooms", room.Type),
			}
		}

		active, err := tx.CountActiveMeetings(roomID)
		if err != nil {
			return err
		}
		if err := checkMeetingCapacity(active); err != nil {
			return err
		}

		now := s.now()
		meeting = &models.Meeting{
			WorkspaceID: room.WorkspaceID,
			RoomID:      roomID,
			Name:        name,
			CreatedBy:   callerID,
			Status:      models.MeetingActive,
			SessionName: models.MeetingSessionName(roomID, now),
			CreatedAt:   now,
		}
		if err := tx.CreateMeeting(meeting); err != nil {
			return fmt.Errorf("create meeting: %w", err)
		}
		_, err = s.getOrCreateMeetingChannel(tx, meeting)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("meeting_id", meeting.ID.String()).Str("session", meeting.SessionName).Msg("meeting created")
	return meeting, nil
}

// GetMeeting returns nil when the meeting does not exist.
func (s *Service) GetMeeting(ctx context.Context, meetingID uuid.UUID) (*models.Meeting, error) {
	meeting, err := s.db.WithContext(ctx).GetMeeting(meetingID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return meeting, nil
}

// AuthorizeMeeting loads a meeting in one of the caller's workspaces,
// failing with NotFound or Forbidden.
func (s *Service) AuthorizeMeeting(ctx context.Context, meetingID, callerID uuid.UUID) (*models.Meeting, error) {
	db := s.db.WithContext(ctx)
	meeting, err := db.GetMeeting(meetingID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, notFound("meeting")
		}
		return nil, err
	}
	if err := requireMember(db, meeting.WorkspaceID, callerID); err != nil {
		return nil, err
	}
	return meeting, nil
}

func (s *Service) ListMeetings(ctx context.Context, roomID, callerID uuid.UUID) ([]models.Meeting, error) {
	db := s.db.WithContext(ctx)
	if _, err := authorizeRoom(db, roomID, callerID); err != nil {
		return nil, err
	}
	return db.GetRoomMeetings(roomID)
}

// JoinMeeting counts the caller in and returns the stored session name.
func (s *Service) JoinMeeting(ctx context.Context, meetingID, callerID uuid.UUID) (string, error) {
	var session string
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		meeting, err := lockMeeting(tx, meetingID)
		if err != nil {
			return err
		}
		if err := requireMember(tx, meeting.WorkspaceID, callerID); err != nil {
			return err
		}
		if meeting.Status != models.MeetingActive {
			return ErrMeetingEnded
		}
		if err := tx.AddParticipants(meetingID, 1); err != nil {
			return err
		}
		session = meeting.SessionName
		return nil
	})
	return session, err
}

// LeaveMeeting counts the caller out. The last participant out deletes the
// meeting and its channel; the returned manifest is empty otherwise.
func (s *Service) LeaveMeeting(ctx context.Context, meetingID, callerID uuid.UUID) (*Manifest, error) {
	manifest := &Manifest{SessionIDs: []string{}}
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		meeting, err := lockMeeting(tx, meetingID)
		if err != nil {
			return err
		}
		if err := requireMember(tx, meeting.WorkspaceID, callerID); err != nil {
			return err
		}
		if err := tx.AddParticipants(meetingID, -1); err != nil {
			return err
		}

		updated, err := tx.GetMeeting(meetingID)
		if err != nil {
			return err
		}
		if updated.ParticipantCount > 0 {
			return nil
		}
		return deleteSubtree(tx, ref{kind: entityMeeting, id: meetingID}, manifest)
	})
	if err != nil {
		return nil, err
	}
	if len(manifest.SessionIDs) > 0 {
		s.log.Info().Str("meeting_id", meetingID.String()).Msg("meeting ended by last participant")
	}
	return manifest, nil
}

// EndMeeting lets the creator end the meeting regardless of who is in it.
func (s *Service) EndMeeting(ctx context.Context, meetingID, callerID uuid.UUID) (*Manifest, error) {
	return s.endMeeting(ctx, meetingID, callerID, func(m *models.Meeting) error {
		if m.CreatedBy != callerID {
			return forbidden("only the meeting creator can end the meeting")
		}
		return nil
	})
}

// ForceEndMeeting ends a meeting whose participant counter may have drifted:
// allowed when nobody is counted in, when the meeting is older than
// StaleMeetingAge, or for the creator.
func (s *Service) ForceEndMeeting(ctx context.Context, meetingID, callerID uuid.UUID) (*Manifest, error) {
	return s.endMeeting(ctx, meetingID, callerID, func(m *models.Meeting) error {
		switch {
		case m.ParticipantCount == 0:
		case s.now().Sub(m.CreatedAt) > StaleMeetingAge:
		case m.CreatedBy == callerID:
		default:
			return forbidden("meeting still has participants and is not stale")
		}
		return nil
	})
}

func (s *Service) endMeeting(ctx context.Context, meetingID, callerID uuid.UUID, allow func(*models.Meeting) error) (*Manifest, error) {
	manifest := &Manifest{SessionIDs: []string{}}
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		meeting, err := lockMeeting(tx, meetingID)
		if err != nil {
			return err
		}
		if err := requireMember(tx, meeting.WorkspaceID, callerID); err != nil {
			return err
		}
		if err := allow(meeting); err != nil {
			return err
		}
		return deleteSubtree(tx, ref{kind: entityMeeting, id: meetingID}, manifest)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("meeting_id", meetingID.String()).Msg("meeting ended")
	return manifest, nil
}

func lockMeeting(tx *database.Database, meetingID uuid.UUID) (*models.Meeting, error) {
	meeting, err := tx.GetMeetingForUpdate(meetingID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, notFound("meeting")
		}
		return nil, err
	}
	return meeting, nil
}
