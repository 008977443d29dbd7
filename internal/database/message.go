package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/models"
)

func (d *Database) SaveMessage(message *models.Message) error {
	return d.db.Create(message).Error
}

func (d *Database) GetMessage(id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := d.db.First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (d *Database) UpdateMessage(message *models.Message) error {
	return d.db.Save(message).Error
}

func (d *Database) DeleteMessage(id uuid.UUID) error {
	return d.db.Delete(&models.Message{}, "id = ?", id).Error
}

// GetChannelMessages returns up to limit messages older than beforeID (or
// the newest ones when beforeID is nil), oldest first. Messages are ordered
// by (created_at, id) so timestamp ties page deterministically.
func (d *Database) GetChannelMessages(channelID uuid.UUID, limit int, beforeID *uuid.UUID) ([]models.Message, error) {
	var messages []models.Message

	query := d.db.Where("channel_id = ?", channelID)

	if beforeID != nil {
		var beforeMsg models.Message
		if err := d.db.First(&beforeMsg, "id = ?", *beforeID).Error; err == nil {
			query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))",
				beforeMsg.CreatedAt, beforeMsg.CreatedAt, beforeMsg.ID)
		}
	}

	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// CountUnread counts messages in the channel newer than after that were not
// written by userID.
func (d *Database) CountUnread(channelID, userID uuid.UUID, after time.Time) (int64, error) {
	var n int64
	err := d.db.Model(&models.Message{}).
		Where("channel_id = ? AND created_at > ? AND author_id <> ?", channelID, after, userID).
		Count(&n).Error
	return n, err
}

func (d *Database) DeleteChannelMessages(channelID uuid.UUID) error {
	return d.db.Delete(&models.Message{}, "channel_id = ?", channelID).Error
}
