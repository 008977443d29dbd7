package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/models"
	"gorm.io/gorm"
)

func (d *Database) CreateMeeting(meeting *models.Meeting) error {
	return d.db.Create(meeting).Error
}

func (d *Database) GetMeeting(id uuid.UUID) (*models.Meeting, error) {
	var meeting models.Meeting
	if err := d.db.First(&meeting, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (d *Database) GetMeetingForUpdate(id uuid.UUID) (*models.Meeting, error) {
	var meeting models.Meeting
	if err := d.forUpdate().First(&meeting, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (d *Database) GetRoomMeetings(roomID uuid.UUID) ([]models.Meeting, error) {
	var meetings []models.Meeting
	err := d.db.Where("room_id = ?", roomID).Order("created_at DESC").Find(&meetings).Error
	return meetings, err
}

func (d *Database) GetRoomMeetingIDs(roomID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.Model(&models.Meeting{}).Where("room_id = ?", roomID).Pluck("id", &ids).Error
	return ids, err
}

func (d *Database) CountActiveMeetings(roomID uuid.UUID) (int64, error) {
	var n int64
	err := d.db.Model(&models.Meeting{}).
		Where("room_id = ? AND status = ?", roomID, models.MeetingActive).
		Count(&n).Error
	return n, err
}

// GetActiveMeetingsCreatedBefore lists active meetings old enough to be
// reconciled against presence leases.
func (d *Database) GetActiveMeetingsCreatedBefore(t time.Time) ([]models.Meeting, error) {
	var meetings []models.Meeting
	err := d.db.Where("status = ? AND created_at < ?", models.MeetingActive, t).Find(&meetings).Error
	return meetings, err
}

// AddParticipants adjusts the participant counter by delta in one
// statement, flooring at zero.
func (d *Database) AddParticipants(id uuid.UUID, delta int) error {
	expr := gorm.Expr("CASE WHEN participant_count + ? < 0 THEN 0 ELSE participant_count + ? END", delta, delta)
	return d.db.Model(&models.Meeting{}).Where("id = ?", id).Update("participant_count", expr).Error
}

func (d *Database) SetParticipants(id uuid.UUID, n int) error {
	return d.db.Model(&models.Meeting{}).Where("id = ?", id).Update("participant_count", n).Error
}

func (d *Database) DeleteMeetingRecord(id uuid.UUID) error {
	return d.db.Delete(&models.Meeting{}, "id = ?", id).Error
}
