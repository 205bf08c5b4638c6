package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"store-rating/internal/domain"
	"store-rating/internal/query"
	"store-rating/pkg/utils"
)

type RatingRepo struct{ db *gorm.DB }

func NewRatingRepo(db *gorm.DB) *RatingRepo { return &RatingRepo{db: db} }

var _ domain.RatingRepository = (*RatingRepo)(nil)

// Upsert 单事务完成：锁店铺行 → INSERT ... ON CONFLICT DO NOTHING → 冲突则原地改分 → 重算聚合。
// 唯一索引 (user_id, store_id) 保证并发下不会出现第二行；店铺行锁保证聚合读到全部已提交评分。
func (r *RatingRepo) Upsert(ctx context.Context, userID, storeID string, score int) (domain.UpsertOutcome, error) {
	var outcome domain.UpsertOutcome
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s domain.Store
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&s, "id = ?", storeID).Error
		if err != nil {
			return translate(err, msgStoreNotFound, msgStoreExists)
		}

		row := domain.Rating{ID: utils.NewID(), UserID: userID, StoreID: storeID, Score: score}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "store_id"}},
			DoNothing: true,
		}).Create(&row)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 1 {
			outcome = domain.OutcomeCreated
		} else {
			res = tx.Model(&domain.Rating{}).
				Where("user_id = ? AND store_id = ?", userID, storeID).
				Updates(map[string]any{"rating": score, "updated_at": time.Now()})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("rating for user %s store %s vanished during upsert", userID, storeID)
			}
			outcome = domain.OutcomeUpdated
		}
		return refreshAggregates(tx, storeID)
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// Find 未评分时返回 nil, nil
func (r *RatingRepo) Find(ctx context.Context, userID, storeID string) (*domain.Rating, error) {
	var rt domain.Rating
	err := r.db.WithContext(ctx).First(&rt, "user_id = ? AND store_id = ?", userID, storeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// ListForStore 最近活动在前；limit<=0 不限
func (r *RatingRepo) ListForStore(ctx context.Context, storeID string, limit int) ([]domain.RaterEntry, error) {
	q := r.db.WithContext(ctx).Model(&domain.Rating{}).
		Select("ratings.rating, ratings.created_at, ratings.updated_at, users.name AS user_name, users.email AS user_email").
		Joins("JOIN users ON users.id = ratings.user_id").
		Where("ratings.store_id = ?", storeID).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "ratings", Name: "updated_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "ratings", Name: "id"}, Desc: true})
	if limit > 0 {
		q = q.Limit(limit)
	}
	out := []domain.RaterEntry{}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RatingRepo) Distribution(ctx context.Context, storeID string) ([]domain.ScoreCount, error) {
	out := []domain.ScoreCount{}
	err := r.db.WithContext(ctx).Model(&domain.Rating{}).
		Select("rating, COUNT(*) AS count").
		Where("store_id = ?", storeID).
		Group("rating").
		Order("rating").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RatingRepo) ListAll(ctx context.Context, storeID string, p query.Params) ([]domain.RatingRow, query.Pagination, error) {
	base := r.db.Model(&domain.Rating{}).
		Joins("JOIN users ON users.id = ratings.user_id").
		Joins("JOIN stores ON stores.id = ratings.store_id")
	if storeID != "" {
		base = base.Where("ratings.store_id = ?", storeID)
	}
	project := func(db *gorm.DB) *gorm.DB {
		return db.Select("ratings.id, ratings.user_id, ratings.store_id, ratings.rating, ratings.created_at, ratings.updated_at, " +
			"users.name AS user_name, users.email AS user_email, stores.name AS store_name")
	}
	return query.Find[domain.RatingRow](ctx, base, ratingSpec.Plan(p), project)
}
