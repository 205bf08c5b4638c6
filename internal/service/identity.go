package service

import (
	"context"
	"errors"

	"store-rating/internal/domain"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type TokenIssuer interface {
	Issue(uid string) (string, error)
}

// IdentityResolver 每次请求都回库查用户，不缓存；令牌有效但用户已删除同样视为未认证
type IdentityResolver struct {
	tokens TokenVerifier
	users  domain.UserRepository
}

func NewIdentityResolver(tokens TokenVerifier, users domain.UserRepository) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, users: users}
}

func (r *IdentityResolver) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.Unauthenticated("access denied: no token provided")
	}
	uid, err := r.tokens.Verify(token)
	if err != nil {
		return domain.Identity{}, domain.Unauthenticated("invalid or expired token")
	}
	u, err := r.users.FindByID(ctx, uid)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Identity{}, domain.Unauthenticated("user no longer exists")
	}
	if err != nil {
		return domain.Identity{}, domain.Internal("resolve identity", err)
	}
	return u.Identity(), nil
}
