package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/models"
	"gorm.io/gorm/clause"
)

func (d *Database) UpsertLastRead(userID, channelID uuid.UUID, at time.Time) error {
	receipt := models.LastRead{UserID: userID, ChannelID: channelID, LastReadAt: at}
	return d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_read_at"}),
	}).Create(&receipt).Error
}

func (d *Database) GetLastRead(userID, channelID uuid.UUID) (*models.LastRead, error) {
	var receipt models.LastRead
	err := d.db.Where("user_id = ? AND channel_id = ?", userID, channelID).First(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (d *Database) DeleteChannelReceipts(channelID uuid.UUID) error {
	return d.db.Delete(&models.LastRead{}, "channel_id = ?", channelID).Error
}
