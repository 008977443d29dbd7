package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// WithContext returns a handle whose queries are bound to ctx.
func (d *Database) WithContext(ctx context.Context) *Database {
	return &Database{db: d.db.WithContext(ctx)}
}

// Transaction runs fn inside a single database transaction. Every query fn
// issues must go through tx.
func (d *Database) Transaction(ctx context.Context, fn func(tx *Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Database{db: tx})
	})
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// forUpdate locks the selected rows until the transaction ends. The SQLite
// dialect drops the clause; SQLite serializes writers anyway.
func (d *Database) forUpdate() *gorm.DB {
	return d.db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func insertIgnore(db *gorm.DB, value any) (bool, error) {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(value)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
