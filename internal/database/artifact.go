package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/models"
)

func (d *Database) CreateArtifact(artifact *models.Artifact) error {
	return d.db.Create(artifact).Error
}

func (d *Database) GetArtifact(id uuid.UUID) (*models.Artifact, error) {
	var artifact models.Artifact
	if err := d.db.First(&artifact, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &artifact, nil
}

// GetRoomArtifacts lists a room's artifacts of one kind, most recently
// updated first.
func (d *Database) GetRoomArtifacts(roomID uuid.UUID, kind models.ArtifactKind) ([]models.Artifact, error) {
	var artifacts []models.Artifact
	err := d.db.
		Where("room_id = ? AND kind = ?", roomID, kind).
		Order("updated_at DESC").
		Find(&artifacts).Error
	return artifacts, err
}

func (d *Database) GetRoomArtifactIDs(roomID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.Model(&models.Artifact{}).Where("room_id = ?", roomID).Pluck("id", &ids).Error
	return ids, err
}

func (d *Database) UpdateArtifactName(id uuid.UUID, name string) (int64, error) {
	res := d.db.Model(&models.Artifact{}).Where("id = ?", id).Update("name", name)
	return res.RowsAffected, res.Error
}

// TouchArtifact records an edit without changing content.
func (d *Database) TouchArtifact(id, userID uuid.UUID, at time.Time) (int64, error) {
	res := d.db.Model(&models.Artifact{}).Where("id = ?", id).Updates(map[string]any{
		"last_edited_by": userID,
		"updated_at":     at,
	})
	return res.RowsAffected, res.Error
}

func (d *Database) UpdateArtifactContent(id, userID uuid.UUID, content string, at time.Time) (int64, error) {
	res := d.db.Model(&models.Artifact{}).Where("id = ?", id).Updates(map[string]any{
		"content":        content,
		"last_edited_by": userID,
		"updated_at":     at,
	})
	return res.RowsAffected, res.Error
}

func (d *Database) DeleteArtifactRecord(id uuid.UUID) error {
	return d.db.Delete(&models.Artifact{}, "id = ?", id).Error
}
