package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/database"
)

// Manifest lists the realtime-host sessions whose records were deleted.
// The caller is responsible for tearing the sessions down. ChannelIDs
// lists the deleted chat channels so live subscribers can be told.
type Manifest struct {
	SessionIDs []string    `json:"session_ids"`
	ChannelIDs []uuid.UUID `json:"channel_ids,omitempty"`
}

func (m *Manifest) add(ids ...string) {
	m.SessionIDs = append(m.SessionIDs, ids...)
}

func (m *Manifest) merge(other *Manifest) {
	m.add(other.SessionIDs...)
	m.ChannelIDs = append(m.ChannelIDs, other.ChannelIDs...)
}

type entity string

const (
	entityRoom     entity = "room"
	entityArtifact entity = "artifact"
	entityMeeting  entity = "meeting"
	entityChannel  entity = "channel"
)

type ref struct {
	kind entity
	id   uuid.UUID
}

func refs(kind entity, ids []uuid.UUID) []ref {
	out := make([]ref, len(ids))
	for i, id := range ids {
		out[i] = ref{kind: kind, id: id}
	}
	return out
}

// ownedNode is what a record owns: child records with their own subtrees
// and the sessions the record itself names.
type ownedNode struct {
	children []ref
	sessions []string
}

type ownershipRule struct {
	// expand loads the record; a nil node means it is already gone.
	expand func(tx *database.Database, id uuid.UUID) (*ownedNode, error)
	// leaves are bulk-deleted records that own nothing, removed in order
	// before the record itself.
	leaves []func(tx *database.Database, id uuid.UUID) error
	remove func(tx *database.Database, id uuid.UUID) error
}

// ownershipTree declares room -> {channels, artifacts, meetings},
// artifact -> file channel, meeting -> meeting channel,
// channel -> {messages, read receipts}.
var ownershipTree = map[entity]ownershipRule{
	entityRoom: {
		expand: expandRoom,
		remove: (*database.Database).DeleteRoomRecord,
	},
	entityArtifact: {
		expand: expandArtifact,
		remove: (*database.Database).DeleteArtifactRecord,
	},
	entityMeeting: {
		expand: expandMeeting,
		remove: (*database.Database).DeleteMeetingRecord,
	},
	entityChannel: {
		expand: expandChannel,
		leaves: []func(*database.Database, uuid.UUID) error{
			(*database.Database).DeleteChannelMessages,
			(*database.Database).DeleteChannelReceipts,
		},
		remove: (*database.Database).DeleteChannelRecord,
	},
}

func expandRoom(tx *database.Database, id uuid.UUID) (*ownedNode, error) {
	room, err := tx.GetRoom(id)
	if err != nil {
		return nil, absentOK(err)
	}

	channelIDs, err := tx.GetRoomChannelIDs(id)
	if err != nil {
		return nil, err
	}
	artifactIDs, err := tx.GetRoomArtifactIDs(id)
	if err != nil {
		return nil, err
	}
	meetingIDs, err := tx.GetRoomMeetingIDs(id)
	if err != nil {
		return nil, err
	}

	node := &ownedNode{}
	node.children = append(node.children, refs(entityChannel, channelIDs)...)
	node.children = append(node.children, refs(entityArtifact, artifactIDs)...)
	node.children = append(node.children, refs(entityMeeting, meetingIDs)...)
	if room.Type.HasRoomSession() {
		node.sessions = []string{room.SessionID()}
	}
	return node, nil
}

func expandArtifact(tx *database.Database, id uuid.UUID) (*ownedNode, error) {
	artifact, err := tx.GetArtifact(id)
	if err != nil {
		return nil, absentOK(err)
	}
	channelIDs, err := tx.GetArtifactChannelIDs(id)
	if err != nil {
		return nil, err
	}
	return &ownedNode{
		children: refs(entityChannel, channelIDs),
		sessions: []string{artifact.SessionID()},
	}, nil
}

func expandMeeting(tx *database.Database, id uuid.UUID) (*ownedNode, error) {
	meeting, err := tx.GetMeeting(id)
	if err != nil {
		return nil, absentOK(err)
	}
	channelIDs, err := tx.GetMeetingChannelIDs(id)
	if err != nil {
		return nil, err
	}
	return &ownedNode{
		children: refs(entityChannel, channelIDs),
		sessions: []string{meeting.SessionName},
	}, nil
}

func expandChannel(tx *database.Database, id uuid.UUID) (*ownedNode, error) {
	if _, err := tx.GetChannel(id); err != nil {
		return nil, absentOK(err)
	}
	return &ownedNode{}, nil
}

func absentOK(err error) error {
	if database.IsNotFound(err) {
		return nil
	}
	return err
}

// deleteSubtree removes r and everything it owns, children first. Records
// that are already gone count as deleted, so a retry after a partial
// failure completes the job.
func deleteSubtree(tx *database.Database, r ref, m *Manifest) error {
	rule, ok := ownershipTree[r.kind]
	if !ok {
		return fmt.Errorf("no ownership rule for %s", r.kind)
	}

	node, err := rule.expand(tx, r.id)
	if err != nil {
		return fmt.Errorf("load %s %s: %w", r.kind, r.id, err)
	}
	if node == nil {
		return nil
	}

	for _, child := range node.children {
		if err := deleteSubtree(tx, child, m); err != nil {
			return err
		}
	}
	for _, leaf := range rule.leaves {
		if err := leaf(tx, r.id); err != nil {
			return fmt.Errorf("delete %s %s children: %w", r.kind, r.id, err)
		}
	}
	if err := rule.remove(tx, r.id); err != nil {
		return fmt.Errorf("delete %s %s: %w", r.kind, r.id, err)
	}

	m.add(node.sessions...)
	if r.kind == entityChannel {
		m.ChannelIDs = append(m.ChannelIDs, r.id)
	}
	return nil
}
