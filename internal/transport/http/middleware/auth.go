package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"store-rating/internal/domain"
)

const KeyIdentity = "identity"

// Guard 按顺序执行；返回错误即中止，由调用方统一映射响应
type Guard func(c *gin.Context) error

type Resolver interface {
	Resolve(ctx context.Context, token string) (domain.Identity, error)
}

func bearer(c *gin.Context) string {
	tok, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(tok)
}

// Authenticate 解析令牌并回库加载身份，写入上下文
func Authenticate(r Resolver) Guard {
	return func(c *gin.Context) error {
		tok := bearer(c)
		if tok == "" {
			return domain.Unauthenticated("access denied: no token provided")
		}
		id, err := r.Resolve(c.Request.Context(), tok)
		if err != nil {
			return err
		}
		c.Set(KeyIdentity, id)
		return nil
	}
}

// Authorize 必须排在 Authenticate 之后
func Authorize(roles ...domain.Role) Guard {
	return func(c *gin.Context) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return domain.Unauthenticated("access denied: no token provided")
		}
		return domain.Authorize(id, roles)
	}
}

func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(KeyIdentity)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}
