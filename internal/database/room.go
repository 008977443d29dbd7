package database

import (
	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/models"
)

func (d *Database) CreateRoom(room *models.Room) error {
	return d.db.Create(room).Error
}

func (d *Database) GetRoom(id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := d.db.First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (d *Database) GetRoomForUpdate(id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := d.forUpdate().First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (d *Database) GetWorkspaceRooms(workspaceID uuid.UUID) ([]models.Room, error) {
	var rooms []models.Room
	err := d.db.Where("workspace_id = ?", workspaceID).Order("created_at ASC").Find(&rooms).Error
	return rooms, err
}

func (d *Database) CountWorkspaceRooms(workspaceID uuid.UUID) (int64, error) {
	var n int64
	err := d.db.Model(&models.Room{}).Where("workspace_id = ?", workspaceID).Count(&n).Error
	return n, err
}

func (d *Database) UpdateRoomName(id uuid.UUID, name string) (int64, error) {
	res := d.db.Model(&models.Room{}).Where("id = ?", id).Update("name", name)
	return res.RowsAffected, res.Error
}

func (d *Database) DeleteRoomRecord(id uuid.UUID) error {
	return d.db.Delete(&models.Room{}, "id = ?", id).Error
}
