package domain

import (
	"context"
	"time"

	"store-rating/internal/query"
)

const (
	MinScore = 1
	MaxScore = 5
)

// Rating 每个 (user, store) 至多一行，由唯一索引保证
type Rating struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:uq_ratings_user_store,priority:1" json:"user_id"`
	StoreID   string    `gorm:"size:36;not null;uniqueIndex:uq_ratings_user_store,priority:2;index" json:"store_id"`
	Score     int       `gorm:"column:rating;not null" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rating) TableName() string { return "ratings" }

func ValidScore(s int) bool { return s >= MinScore && s <= MaxScore }

type UpsertOutcome string

const (
	OutcomeCreated UpsertOutcome = "created"
	OutcomeUpdated UpsertOutcome = "updated"
)

// RaterEntry 店主可见的评分明细
type RaterEntry struct {
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
}

// RatingRow 管理端列表行
type RatingRow struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	StoreID   string    `json:"store_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	StoreName string    `json:"store_name"`
}

type RatingStats struct {
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int64   `json:"total_ratings"`
}

type ScoreCount struct {
	Rating int   `json:"rating"`
	Count  int64 `json:"count"`
}

type RatingRepository interface {
	// Upsert 原子写入并在同一事务内刷新店铺聚合
	Upsert(ctx context.Context, userID, storeID string, score int) (UpsertOutcome, error)
	Find(ctx context.Context, userID, storeID string) (*Rating, error)
	ListForStore(ctx context.Context, storeID string, limit int) ([]RaterEntry, error)
	Distribution(ctx context.Context, storeID string) ([]ScoreCount, error)
	ListAll(ctx context.Context, storeID string, p query.Params) ([]RatingRow, query.Pagination, error)
}
