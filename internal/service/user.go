package service

import (
	"context"
	"time"

	"store-rating/internal/core/cache"
	"store-rating/internal/domain"
	"store-rating/internal/query"
	"store-rating/pkg/utils"
)

const (
	statsKey = "dashboard:stats"
	statsTTL = 30 * time.Second
)

type UserService struct {
	users domain.UserRepository
	stats domain.StatsRepository
	cache *cache.Cache
}

// NewUserService cache 可为 nil
func NewUserService(users domain.UserRepository, stats domain.StatsRepository, c *cache.Cache) *UserService {
	return &UserService{users: users, stats: stats, cache: c}
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Address  string
	Role     domain.Role
}

type UpdateUserInput struct {
	Name     *string
	Email    *string
	Address  *string
	Role     *domain.Role
	Password *string
}

type UserPage struct {
	Users      []domain.User    `json:"users"`
	Pagination query.Pagination `json:"pagination"`
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if err := domain.ValidateAccount(in.Name, in.Email, in.Password, in.Address); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, domain.Validation("validation failed", domain.MsgRole)
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, domain.Internal("hash password", err)
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Address:      in.Address,
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, statsKey)
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.UserDetail, error) {
	return s.users.Detail(ctx, id)
}

func (s *UserService) List(ctx context.Context, f domain.UserFilter) (*UserPage, error) {
	if f.Role != "" && !f.Role.Valid() {
		return nil, domain.Validation("validation failed", domain.MsgRole)
	}
	items, pg, err := s.users.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: items, Pagination: pg}, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*domain.UserDetail, error) {
	var details []string
	if in.Name != nil && !domain.ValidName(*in.Name) {
		details = append(details, domain.MsgName)
	}
	if in.Email != nil && !domain.ValidEmail(*in.Email) {
		details = append(details, domain.MsgEmail)
	}
	if in.Address != nil && !domain.ValidAddress(*in.Address) {
		details = append(details, domain.MsgAddress)
	}
	if in.Role != nil && !in.Role.Valid() {
		details = append(details, domain.MsgRole)
	}
	if in.Password != nil && !domain.StrongPassword(*in.Password) {
		details = append(details, domain.MsgPassword)
	}
	if len(details) > 0 {
		return nil, domain.Validation("validation failed", details...)
	}

	p := domain.UserPatch{Name: in.Name, Email: in.Email, Address: in.Address, Role: in.Role}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, domain.Internal("hash password", err)
		}
		p.PasswordHash = &hash
	}
	if err := s.users.Update(ctx, id, p); err != nil {
		return nil, err
	}
	return s.users.Detail(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, statsKey)
	return nil
}

// Stats 管理台计数，配置 redis 时短暂缓存
func (s *UserService) Stats(ctx context.Context) (*domain.Stats, error) {
	return cache.GetOrLoadJSON(s.cache, ctx, statsKey, statsTTL, func(ctx context.Context) (*domain.Stats, error) {
		st, err := s.stats.Counts(ctx)
		if err != nil {
			return nil, err
		}
		return &st, nil
	})
}
