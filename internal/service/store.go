package service

import (
	"context"
	"unicode/utf8"

	"store-rating/internal/core/cache"
	"store-rating/internal/domain"
	"store-rating/internal/query"
	"store-rating/pkg/utils"
)

type StoreService struct {
	stores domain.StoreRepository
	cache  *cache.Cache
}

func NewStoreService(stores domain.StoreRepository, c *cache.Cache) *StoreService {
	return &StoreService{stores: stores, cache: c}
}

type CreateStoreInput struct {
	Name          string
	Email         string
	Address       string
	OwnerName     string
	OwnerPassword string
}

type StoreFields struct {
	Name    string
	Email   string
	Address string
}

type StorePage struct {
	Stores     []domain.StoreWithOwner `json:"stores"`
	Pagination query.Pagination        `json:"pagination"`
}

type UserStorePage struct {
	Stores     []domain.StoreForUser `json:"stores"`
	Pagination query.Pagination      `json:"pagination"`
}

type CreatedStore struct {
	Store *domain.Store `json:"store"`
	Owner *domain.User  `json:"owner"`
}

func validateStore(f StoreFields) []string {
	var details []string
	if n := utf8.RuneCountInString(f.Name); n == 0 || n > domain.StoreNameMax {
		details = append(details, "store name is required and cannot exceed 255 characters")
	}
	if !domain.ValidEmail(f.Email) {
		details = append(details, domain.MsgEmail)
	}
	if f.Address == "" || !domain.ValidAddress(f.Address) {
		details = append(details, "address is required and cannot exceed 400 characters")
	}
	return details
}

// Create 店主账号与店铺共用邮箱，同一事务创建
func (s *StoreService) Create(ctx context.Context, in CreateStoreInput) (*CreatedStore, error) {
	details := validateStore(StoreFields{Name: in.Name, Email: in.Email, Address: in.Address})
	if !domain.ValidName(in.OwnerName) {
		details = append(details, domain.MsgName)
	}
	if !domain.StrongPassword(in.OwnerPassword) {
		details = append(details, domain.MsgPassword)
	}
	if len(details) > 0 {
		return nil, domain.Validation("validation failed", details...)
	}

	hash, err := utils.HashPassword(in.OwnerPassword)
	if err != nil {
		return nil, domain.Internal("hash password", err)
	}
	owner := &domain.User{
		ID:           utils.NewID(),
		Name:         in.OwnerName,
		Email:        in.Email,
		PasswordHash: hash,
		Address:      in.Address,
		Role:         domain.RoleStoreOwner,
	}
	st := &domain.Store{
		ID:      utils.NewID(),
		Name:    in.Name,
		Email:   in.Email,
		Address: in.Address,
	}
	if err := s.stores.CreateWithOwner(ctx, owner, st); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, statsKey)
	return &CreatedStore{Store: st, Owner: owner}, nil
}

func (s *StoreService) Get(ctx context.Context, id string) (*domain.StoreWithOwner, error) {
	return s.stores.Get(ctx, id)
}

func (s *StoreService) List(ctx context.Context, p query.Params) (*StorePage, error) {
	items, pg, err := s.stores.List(ctx, p)
	if err != nil {
		return nil, err
	}
	return &StorePage{Stores: items, Pagination: pg}, nil
}

func (s *StoreService) ListForUser(ctx context.Context, userID string, p query.Params) (*UserStorePage, error) {
	items, pg, err := s.stores.ListForUser(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return &UserStorePage{Stores: items, Pagination: pg}, nil
}

func (s *StoreService) Update(ctx context.Context, id string, f StoreFields) (*domain.StoreWithOwner, error) {
	if details := validateStore(f); len(details) > 0 {
		return nil, domain.Validation("validation failed", details...)
	}
	if err := s.stores.Update(ctx, id, domain.StorePatch(f)); err != nil {
		return nil, err
	}
	return s.stores.Get(ctx, id)
}

func (s *StoreService) Delete(ctx context.Context, id string) error {
	if err := s.stores.DeleteWithOwner(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, statsKey)
	return nil
}
