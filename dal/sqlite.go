package dal

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitTestDB opens a private in-memory sqlite database with the full table
// set migrated. Each call returns an independent database, so tests never
// share state.
func InitTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := CreateTables(db); err != nil {
		return nil, err
	}
	return db, nil
}
