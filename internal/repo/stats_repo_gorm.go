package repo

import (
	"context"

	"gorm.io/gorm"

	"store-rating/internal/domain"
)

type StatsRepo struct{ db *gorm.DB }

func NewStatsRepo(db *gorm.DB) *StatsRepo { return &StatsRepo{db: db} }

func (r *StatsRepo) Counts(ctx context.Context) (domain.Stats, error) {
	var s domain.Stats
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.User{}).Count(&s.TotalUsers).Error; err != nil {
		return s, err
	}
	if err := db.Model(&domain.Store{}).Count(&s.TotalStores).Error; err != nil {
		return s, err
	}
	if err := db.Model(&domain.Rating{}).Count(&s.TotalRatings).Error; err != nil {
		return s, err
	}
	return s, nil
}
