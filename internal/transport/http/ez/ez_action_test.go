package ez

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"store-rating/internal/domain"
	resp "store-rating/internal/transport/http/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

type tokens map[string]domain.Identity

func (t tokens) Resolve(_ context.Context, tok string) (domain.Identity, error) {
	if id, ok := t[tok]; ok {
		return id, nil
	}
	return domain.Identity{}, domain.Unauthenticated("invalid or expired token")
}

type signupIn struct {
	Name     string      `json:"name"     binding:"required,personname"`
	Password string      `json:"password" binding:"required,strongpwd"`
	Role     domain.Role `json:"role"     binding:"required,role"`
	Address  string      `json:"address"  binding:"max=400"`
}

func newEngine(dev bool) (*gin.Engine, EZ) {
	r := gin.New()
	e := New(r.Group(""), tokens{"u": {ID: "1", Role: domain.RoleUser}}, zap.NewNop(), dev)
	return r, e
}

func call(t *testing.T, r *gin.Engine, method, path, token, body string) (int, resp.Resp) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w.Code, out
}

func TestRegisterAction_PanicsWithoutRoles(t *testing.T) {
	_, e := newEngine(false)
	assert.Panics(t, func() {
		RegisterAction(e, Action[struct{}, string]{Method: http.MethodGet, Path: "/x"})
	})
}

func TestRegisterAction_ValidationMessages(t *testing.T) {
	r, e := newEngine(false)
	RegisterAction(e, Action[signupIn, string]{
		Method: http.MethodPost, Path: "/signup", Binder: BindJSON, Public: true, Status: http.StatusCreated,
		Handler: func(*gin.Context, *signupIn) (string, error) { return "ok", nil },
	})

	code, out := call(t, r, http.MethodPost, "/signup", "", `{"name":"short","password":"weak","role":"root","address":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation failed", out.Msg)
	assert.ElementsMatch(t, []string{
		"name must be between 20 and 60 characters",
		"password must be 8-16 characters with at least one uppercase letter and one special character",
		domain.MsgRole,
	}, out.Errors)

	code, out = call(t, r, http.MethodPost, "/signup", "", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid request body", out.Msg)

	code, _ = call(t, r, http.MethodPost, "/signup", "", `{"name":"Alexandra Montgomery Smith","password":"Secret#123","role":"user"}`)
	assert.Equal(t, http.StatusCreated, code)
}

func TestRegisterAction_GuardsRunBeforeBinding(t *testing.T) {
	r, e := newEngine(false)
	called := false
	RegisterAction(e, Action[signupIn, string]{
		Method: http.MethodPost, Path: "/admin", Binder: BindJSON, Roles: []domain.Role{domain.RoleAdmin},
		Handler: func(*gin.Context, *signupIn) (string, error) { called = true; return "", nil },
	})

	code, _ := call(t, r, http.MethodPost, "/admin", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	// 角色不符时即便入参非法也返回 403
	code, _ = call(t, r, http.MethodPost, "/admin", "u", `{}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, called)
}

func TestFail_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.NotFound("store not found"), http.StatusNotFound},
		{domain.Conflict("email already exists"), http.StatusConflict},
		{domain.Forbidden("nope"), http.StatusForbidden},
		{domain.Validation("bad"), http.StatusBadRequest},
		{errors.New("driver exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r, e := newEngine(false)
		err := tc.err
		RegisterAction(e, Action[struct{}, string]{
			Method: http.MethodGet, Path: "/x", Public: true,
			Handler: func(*gin.Context, *struct{}) (string, error) { return "", err },
		})
		code, out := call(t, r, http.MethodGet, "/x", "", "")
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.Equal(t, tc.code, out.Code)
	}
}

func TestFail_InternalDetailOnlyInDev(t *testing.T) {
	for _, dev := range []bool{false, true} {
		r, e := newEngine(dev)
		RegisterAction(e, Action[struct{}, string]{
			Method: http.MethodGet, Path: "/x", Public: true,
			Handler: func(*gin.Context, *struct{}) (string, error) {
				return "", domain.Internal("load stats", errors.New("connection refused"))
			},
		})
		_, out := call(t, r, http.MethodGet, "/x", "", "")
		assert.Equal(t, "internal error", out.Msg)
		if dev {
			assert.Equal(t, "load stats: connection refused", out.Detail)
		} else {
			assert.Empty(t, out.Detail)
		}
	}
}
