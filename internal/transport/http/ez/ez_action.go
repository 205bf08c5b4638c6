package ez

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"store-rating/internal/domain"
	"store-rating/internal/transport/http/middleware"
	resp "store-rating/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// EZ 路由分组 + 身份解析 + 错误输出
type EZ struct {
	g        *gin.RouterGroup
	resolver middleware.Resolver
	log      *zap.Logger
	dev      bool
}

func New(g *gin.RouterGroup, r middleware.Resolver, l *zap.Logger, dev bool) EZ {
	return EZ{g: g, resolver: r, log: l, dev: dev}
}

func (e EZ) Group(path string, hs ...gin.HandlerFunc) EZ {
	e.g = e.g.Group(path, hs...)
	return e
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method string // "GET" | "POST" | "PUT" | "DELETE"
	Path   string
	Binder Binder
	// Public 为 true 时不鉴权；否则必须声明 Roles
	Public bool
	Roles  []domain.Role
	// Status 成功状态码，默认 200
	Status  int
	Handler func(c *gin.Context, in *I) (O, error)
}

// StatusCoder 出参可按结果决定状态码（如新建返回 201）
type StatusCoder interface {
	HTTPStatus() int
}

// Identity 受保护动作内取当前身份
func Identity(c *gin.Context) domain.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

func (e EZ) guards(public bool, roles []domain.Role) []middleware.Guard {
	if public {
		return nil
	}
	return []middleware.Guard{middleware.Authenticate(e.resolver), middleware.Authorize(roles...)}
}

// RegisterAction 管线：Authenticate → Authorize → 绑定校验 → Handler
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	if !a.Public && len(a.Roles) == 0 {
		panic(fmt.Sprintf("ez: protected action %s %s declares no roles", a.Method, a.Path))
	}
	guards := e.guards(a.Public, a.Roles)
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}

	h := func(c *gin.Context) {
		for _, g := range guards {
			if err := g(c); err != nil {
				e.fail(c, err)
				return
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default:
		}
		if bindErr != nil {
			e.fail(c, bindError(bindErr))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		code := status
		if sc, ok := any(out).(StatusCoder); ok {
			code = sc.HTTPStatus()
		}
		c.JSON(code, resp.OK(out))
	}

	e.g.Handle(strings.ToUpper(a.Method), a.Path, h)
}

func statusOf(k domain.Kind) int {
	switch k {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail 统一错误映射；Internal 只记日志，开发环境才把原因带给调用方
func (e EZ) fail(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := statusOf(kind)

	var de *domain.Error
	isDomain := errors.As(err, &de)

	if kind == domain.KindInternal {
		cause := err.Error()
		if isDomain && de.Err != nil {
			cause = de.Error() + ": " + de.Err.Error()
		}
		e.log.Error("request failed",
			zap.String("rid", c.GetString(middleware.KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("cause", cause),
		)
		body := resp.Error(status, "internal error")
		if e.dev {
			body = body.WithDetail(cause)
		}
		c.AbortWithStatusJSON(status, body)
		return
	}

	body := resp.Error(status, err.Error())
	if isDomain && len(de.Details) > 0 {
		body = body.WithErrors(de.Details...)
	}
	c.AbortWithStatusJSON(status, body)
}
