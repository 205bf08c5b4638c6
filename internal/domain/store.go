package domain

import (
	"context"
	"time"

	"store-rating/internal/query"
)

// Store average_rating/total_ratings 为派生字段，只由评分仓储在事务内重算
type Store struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Name          string    `gorm:"size:255;not null;index" json:"name"`
	Email         string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Address       string    `gorm:"size:400;not null" json:"address"`
	OwnerID       string    `gorm:"uniqueIndex;size:36;not null" json:"owner_id"`
	AverageRating float64   `gorm:"not null;default:0" json:"average_rating"`
	TotalRatings  int64     `gorm:"not null;default:0" json:"total_ratings"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Store) TableName() string { return "stores" }

type StoreWithOwner struct {
	Store
	OwnerName *string `json:"owner_name"`
}

// StoreForUser 普通用户视角，附带本人评分
type StoreForUser struct {
	Store
	UserRating *int `json:"user_rating"`
}

type StorePatch struct {
	Name    string
	Email   string
	Address string
}

type StoreRepository interface {
	// CreateWithOwner 店主用户与店铺同一事务创建
	CreateWithOwner(ctx context.Context, owner *User, s *Store) error
	FindByID(ctx context.Context, id string) (*Store, error)
	FindByOwner(ctx context.Context, ownerID string) (*Store, error)
	Get(ctx context.Context, id string) (*StoreWithOwner, error)
	List(ctx context.Context, p query.Params) ([]StoreWithOwner, query.Pagination, error)
	ListForUser(ctx context.Context, userID string, p query.Params) ([]StoreForUser, query.Pagination, error)
	Update(ctx context.Context, id string, p StorePatch) error
	// DeleteWithOwner 删除店铺、其评分及店主
	DeleteWithOwner(ctx context.Context, id string) error
}

type Stats struct {
	TotalUsers   int64 `json:"totalUsers"`
	TotalStores  int64 `json:"totalStores"`
	TotalRatings int64 `json:"totalRatings"`
}

type StatsRepository interface {
	Counts(ctx context.Context) (Stats, error)
}
