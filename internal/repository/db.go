package repository

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/entity"
)

// OpenDatabase opens the SQLite file at path and migrates the schema.
// Use ":memory:" for tests.
func OpenDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Credential{},
		&entity.Chat{},
		&entity.ChatMember{},
		&entity.Message{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
