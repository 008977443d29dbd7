package database

import (
	"github.com/google/uuid"
	"github.com/thereayou/vbase/internal/models"
)

func (d *Database) UpdateUser(user *models.User) error {
	return d.db.Save(user).Error
}

func (d *Database) GetUser(id uuid.UUID) (*models.User, error) {
	user := models.User{}
	if err := d.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByExternalID(externalID string) (*models.User, error) {
	user := models.User{}
	if err := d.db.Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// InsertUserIfAbsent creates user unless its external id is already taken.
func (d *Database) InsertUserIfAbsent(user *models.User) (bool, error) {
	return insertIgnore(d.db, user)
}

// DeleteUserByExternalID removes the user and its workspace memberships.
// Messages keep the author name cached at send time.
func (d *Database) DeleteUserByExternalID(externalID string) (int64, error) {
	user, err := d.FindUserByExternalID(externalID)
	if err != nil {
		if IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}

	if err := d.db.Exec("DELETE FROM "+workspaceMembersTable+" WHERE user_id = ?", user.ID).Error; err != nil {
		return 0, err
	}
	res := d.db.Delete(&models.User{}, "id = ?", user.ID)
	return res.RowsAffected, res.Error
}

// GetUsersByIDs loads the users that exist among ids, keyed by id.
func (d *Database) GetUsersByIDs(ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	result := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []models.User
	if err := d.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}
