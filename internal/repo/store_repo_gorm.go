package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"store-rating/internal/domain"
	"store-rating/internal/query"
)

const (
	msgStoreNotFound = "store not found"
	msgStoreExists   = "store already exists with this email"
	msgNoOwnedStore  = "no store found for this owner"
)

type StoreRepo struct{ db *gorm.DB }

func NewStoreRepo(db *gorm.DB) *StoreRepo { return &StoreRepo{db: db} }

var _ domain.StoreRepository = (*StoreRepo)(nil)

func (r *StoreRepo) CreateWithOwner(ctx context.Context, owner *domain.User, s *domain.Store) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(owner).Error; err != nil {
			return translate(err, msgUserNotFound, msgUserExists)
		}
		s.OwnerID = owner.ID
		return translate(tx.Create(s).Error, msgStoreNotFound, msgStoreExists)
	})
}

func (r *StoreRepo) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	var s domain.Store
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err, msgStoreNotFound, msgStoreExists)
	}
	return &s, nil
}

func (r *StoreRepo) FindByOwner(ctx context.Context, ownerID string) (*domain.Store, error) {
	var s domain.Store
	if err := r.db.WithContext(ctx).First(&s, "owner_id = ?", ownerID).Error; err != nil {
		return nil, translate(err, msgNoOwnedStore, msgStoreExists)
	}
	return &s, nil
}

func withOwner(db *gorm.DB) *gorm.DB {
	return db.Joins("LEFT JOIN users ON users.id = stores.owner_id")
}

func selectWithOwner(db *gorm.DB) *gorm.DB {
	return db.Select("stores.*, users.name AS owner_name")
}

func (r *StoreRepo) Get(ctx context.Context, id string) (*domain.StoreWithOwner, error) {
	var s domain.StoreWithOwner
	err := r.db.WithContext(ctx).Model(&domain.Store{}).
		Scopes(withOwner, selectWithOwner).
		Where("stores.id = ?", id).
		Take(&s).Error
	if err != nil {
		return nil, translate(err, msgStoreNotFound, msgStoreExists)
	}
	return &s, nil
}

func (r *StoreRepo) List(ctx context.Context, p query.Params) ([]domain.StoreWithOwner, query.Pagination, error) {
	base := r.db.Model(&domain.Store{}).Scopes(withOwner)
	return query.Find[domain.StoreWithOwner](ctx, base, storeAdminSpec.Plan(p), selectWithOwner)
}

func (r *StoreRepo) ListForUser(ctx context.Context, userID string, p query.Params) ([]domain.StoreForUser, query.Pagination, error) {
	base := r.db.Model(&domain.Store{}).
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id AND ratings.user_id = ?", userID)
	project := func(db *gorm.DB) *gorm.DB {
		return db.Select("stores.*, ratings.rating AS user_rating")
	}
	return query.Find[domain.StoreForUser](ctx, base, storeUserSpec.Plan(p), project)
}

func (r *StoreRepo) Update(ctx context.Context, id string, p domain.StorePatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s domain.Store
		if err := tx.Select("id").First(&s, "id = ?", id).Error; err != nil {
			return translate(err, msgStoreNotFound, msgStoreExists)
		}
		err := tx.Model(&domain.Store{}).Where("id = ?", id).Updates(map[string]any{
			"name":    p.Name,
			"email":   p.Email,
			"address": p.Address,
		}).Error
		return translate(err, msgStoreNotFound, msgStoreExists)
	})
}

// DeleteWithOwner 店铺与店主同生命周期
func (r *StoreRepo) DeleteWithOwner(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s domain.Store
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "owner_id").First(&s, "id = ?", id).Error
		if err != nil {
			return translate(err, msgStoreNotFound, msgStoreExists)
		}
		if _, err := purgeStore(tx, s.ID); err != nil {
			return err
		}
		if s.OwnerID == "" {
			return nil
		}
		_, err = purgeUser(tx, s.OwnerID)
		return err
	})
}
