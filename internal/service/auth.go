package service

import (
	"context"
	"errors"

	"store-rating/internal/domain"
	"store-rating/pkg/utils"
)

const msgInvalidCredentials = "invalid credentials"

type AuthService struct {
	users  domain.UserRepository
	tokens TokenIssuer
}

func NewAuthService(users domain.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Address  string
}

type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Register 公开注册只产生 user 角色
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := domain.ValidateAccount(in.Name, in.Email, in.Password, in.Address); err != nil {
		return nil, err
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
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.session(u)
}

// Login 邮箱不存在与密码错误返回同一错误
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Unauthenticated(msgInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	ok, err := utils.CheckPassword(password, u.PasswordHash)
	if err != nil {
		return nil, domain.Internal("verify credential", err)
	}
	if !ok {
		return nil, domain.Unauthenticated(msgInvalidCredentials)
	}
	return s.session(u)
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, next string) error {
	if !domain.StrongPassword(next) {
		return domain.Validation("validation failed", domain.MsgPassword)
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := utils.CheckPassword(current, u.PasswordHash)
	if err != nil {
		return domain.Internal("verify credential", err)
	}
	if !ok {
		return domain.Validation("current password is incorrect")
	}
	hash, err := utils.HashPassword(next)
	if err != nil {
		return domain.Internal("hash password", err)
	}
	return s.users.Update(ctx, userID, domain.UserPatch{PasswordHash: &hash})
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) session(u *domain.User) (*Session, error) {
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, domain.Internal("issue token", err)
	}
	return &Session{Token: tok, User: u}, nil
}
