package database

import (
	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/models"
)

// InsertChannelIfAbsent creates ch unless its binding key (file triple,
// meeting or direct pair) is already taken.
func (d *Database) InsertChannelIfAbsent(ch *models.Channel) (bool, error) {
	return insertIgnore(d.db, ch)
}

func (d *Database) CreateChannel(ch *models.Channel) error {
	return d.db.Create(ch).Error
}

func (d *Database) GetChannel(id uuid.UUID) (*models.Channel, error) {
	var ch models.Channel
	if err := d.db.First(&ch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

func (d *Database) FindFileChannel(roomID, artifactID uuid.UUID, kind models.ArtifactKind) (*models.Channel, error) {
	var ch models.Channel
	err := d.db.
		Where("room_id = ? AND artifact_id = ? AND artifact_kind = ?", roomID, artifactID, kind).
		First(&ch).Error
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (d *Database) FindDirectChannel(workspaceID, low, high uuid.UUID) (*models.Channel, error) {
	var ch models.Channel
	err := d.db.
		Where("workspace_id = ? AND direct_low = ? AND direct_high = ?", workspaceID, low, high).
		First(&ch).Error
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (d *Database) FindMeetingChannel(meetingID uuid.UUID) (*models.Channel, error) {
	var ch models.Channel
	if err := d.db.Where("meeting_id = ?", meetingID).First(&ch).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

// GetVisibleChannels lists the workspace channels userID may read: every
// non-direct channel plus the direct channels userID is part of.
func (d *Database) GetVisibleChannels(workspaceID, userID uuid.UUID) ([]models.Channel, error) {
	var channels []models.Channel
	err := d.db.
		Where("workspace_id = ?", workspaceID).
		Where("type <> ? OR direct_low = ? OR direct_high = ?", models.ChannelDirect, userID, userID).
		Order("created_at ASC").
		Find(&channels).Error
	return channels, err
}

func (d *Database) GetRoomChannelIDs(roomID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.Model(&models.Channel{}).Where("room_id = ?", roomID).Pluck("id", &ids).Error
	return ids, err
}

func (d *Database) GetArtifactChannelIDs(artifactID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.Model(&models.Channel{}).Where("artifact_id = ?", artifactID).Pluck("id", &ids).Error
	return ids, err
}

func (d *Database) GetMeetingChannelIDs(meetingID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.Model(&models.Channel{}).Where("meeting_id = ?", meetingID).Pluck("id", &ids).Error
	return ids, err
}

func (d *Database) DeleteChannelRecord(id uuid.UUID) error {
	return d.db.Delete(&models.Channel{}, "id = ?", id).Error
}
