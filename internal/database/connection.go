package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thereayou/vbase/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// Connect opens the database named by dsn and migrates the schema. A dsn
// of the form "sqlite:<path>" selects SQLite; anything else is handed to
// the postgres driver.
func Connect(dsn string) (*Database, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, sqlitePrefix) {
		dialector = sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix))
	} else {
		dialector = postgres.Open(dsn)
	}

	return Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
}

func Open(dialector gorm.Dialector, cfg *gorm.Config) (*Database, error) {
	if cfg.NowFunc == nil {
		cfg.NowFunc = func() time.Time { return time.Now().UTC() }
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := NewDatabase(db)
	if err := d.Migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Database) Migrate() error {
	err := d.db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Invitation{},
		&models.Room{},
		&models.Artifact{},
		&models.Meeting{},
		&models.Channel{},
		&models.Message{},
		&models.LastRead{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
