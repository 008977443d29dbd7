package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/database"
)

// LeaseCounter reports how many participants currently hold a live presence
// lease on a meeting.
type LeaseCounter interface {
	LiveCount(ctx context.Context, meetingID uuid.UUID) (int, error)
}

// ReconcileMeeting overwrites the stored participant counter with the live
// lease count. A meeting nobody holds a lease on is deleted like a final
// leave, and its sessions are returned.
func (s *Service) ReconcileMeeting(ctx context.Context, meetingID uuid.UUID) (*Manifest, error) {
	if s.presence == nil {
		return &Manifest{SessionIDs: []string{}}, nil
	}

	live, err := s.presence.LiveCount(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{SessionIDs: []string{}}
	err = s.db.Transaction(ctx, func(tx *database.Database) error {
		meeting, err := tx.GetMeetingForUpdate(meetingID)
		if err != nil {
			return absentOK(err)
		}
		if live > 0 {
			if meeting.ParticipantCount != live {
				s.log.Info().Str("meeting_id", meetingID.String()).
					Int("stored", meeting.ParticipantCount).Int("live", live).
					Msg("participant counter reconciled")
			}
			return tx.SetParticipants(meetingID, live)
		}
		return deleteSubtree(tx, ref{kind: entityMeeting, id: meetingID}, manifest)
	})
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

// ReconcileStaleMeetings reconciles every active meeting older than
// minAge, which should exceed the lease TTL so that a meeting whose
// participants have not sent a first heartbeat yet is left alone.
func (s *Service) ReconcileStaleMeetings(ctx context.Context, minAge time.Duration) (*Manifest, error) {
	manifest := &Manifest{SessionIDs: []string{}}
	if s.presence == nil {
		return manifest, nil
	}

	meetings, err := s.db.WithContext(ctx).GetActiveMeetingsCreatedBefore(s.now().Add(-minAge))
	if err != nil {
		return nil, err
	}
	for _, m := range meetings {
		res, err := s.ReconcileMeeting(ctx, m.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("meeting_id", m.ID.String()).Msg("reconcile meeting")
			continue
		}
		manifest.merge(res)
	}
	return manifest, nil
}
