package repository

import (
	"database/sql"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"voice-recorder/entities"
)

// Open wraps an established postgres connection in gorm. The connection
// itself is owned by config, the way the rest of the app expects it.
func Open(conn *sql.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		Conn: conn}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		},
	)
}

// Migrate creates the three tables. Safe to run on every start.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entities.User{},
		&entities.Recording{},
		&entities.AudioChunk{},
	)
}
