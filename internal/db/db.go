package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	// TranslateError lets handlers match gorm.ErrDuplicatedKey on unique
	// constraint violations instead of parsing driver errors.
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}
