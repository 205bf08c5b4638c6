package service

import (
	"context"

	"store-rating/internal/core/cache"
	"store-rating/internal/domain"
	"store-rating/internal/query"
)

const recentRatings = 10

type RatingService struct {
	ratings domain.RatingRepository
	stores  domain.StoreRepository
	cache   *cache.Cache
}

func NewRatingService(ratings domain.RatingRepository, stores domain.StoreRepository, c *cache.Cache) *RatingService {
	return &RatingService{ratings: ratings, stores: stores, cache: c}
}

// Submit 分值先校验，再交给仓储原子 upsert；聚合在同一事务内刷新
func (s *RatingService) Submit(ctx context.Context, userID, storeID string, score int) (domain.UpsertOutcome, error) {
	if !domain.ValidScore(score) {
		return "", domain.Validation("validation failed", domain.MsgRating)
	}
	out, err := s.ratings.Upsert(ctx, userID, storeID, score)
	if err != nil {
		ratingSubmissions.WithLabelValues("error").Inc()
		return "", err
	}
	ratingSubmissions.WithLabelValues(string(out)).Inc()
	if out == domain.OutcomeCreated {
		s.cache.Invalidate(ctx, statsKey)
	}
	return out, nil
}

// UserRating 未评分返回 nil
func (s *RatingService) UserRating(ctx context.Context, userID, storeID string) (*domain.Rating, error) {
	return s.ratings.Find(ctx, userID, storeID)
}

type StoreRatings struct {
	Ratings []domain.RaterEntry `json:"ratings"`
	Stats   domain.RatingStats  `json:"stats"`
}

// StoreRatings 只有店铺自己的店主可看评分人列表，按 owner_id 比对而非角色
func (s *RatingService) StoreRatings(ctx context.Context, requesterID, storeID string) (*StoreRatings, error) {
	st, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if st.OwnerID != requesterID {
		return nil, domain.Forbidden("access denied: you can only view ratings for your own store")
	}
	list, err := s.ratings.ListForStore(ctx, storeID, 0)
	if err != nil {
		return nil, err
	}
	return &StoreRatings{
		Ratings: list,
		Stats:   domain.RatingStats{AverageRating: st.AverageRating, TotalRatings: st.TotalRatings},
	}, nil
}

type OwnerDashboard struct {
	Store              *domain.Store       `json:"store"`
	RecentRatings      []domain.RaterEntry `json:"recentRatings"`
	RatingDistribution map[int]int64       `json:"ratingDistribution"`
}

// OwnerDashboard 分布只含出现过的分值
func (s *RatingService) OwnerDashboard(ctx context.Context, ownerID string) (*OwnerDashboard, error) {
	st, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	recent, err := s.ratings.ListForStore(ctx, st.ID, recentRatings)
	if err != nil {
		return nil, err
	}
	counts, err := s.ratings.Distribution(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	dist := make(map[int]int64, len(counts))
	for _, c := range counts {
		dist[c.Rating] = c.Count
	}
	return &OwnerDashboard{Store: st, RecentRatings: recent, RatingDistribution: dist}, nil
}

type RatingPage struct {
	Ratings    []domain.RatingRow `json:"ratings"`
	Pagination query.Pagination   `json:"pagination"`
}

// AllRatings storeID 为空时不过滤
func (s *RatingService) AllRatings(ctx context.Context, storeID string, p query.Params) (*RatingPage, error) {
	items, pg, err := s.ratings.ListAll(ctx, storeID, p)
	if err != nil {
		return nil, err
	}
	return &RatingPage{Ratings: items, Pagination: pg}, nil
}
