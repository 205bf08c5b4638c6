package repo

import (
	"gorm.io/gorm"

	"store-rating/internal/domain"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Store{}, &domain.Rating{})
}
