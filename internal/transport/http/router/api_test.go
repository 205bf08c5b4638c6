package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"store-rating/internal/core/auth"
	"store-rating/internal/core/cache"
	"store-rating/internal/domain"
	"store-rating/internal/repo"
	"store-rating/internal/service"
	"store-rating/pkg/utils"
)

const pw = "Secret#123"

var ctxBG = context.Background()

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type harness struct {
	t      *testing.T
	engine *gin.Engine
	users  *service.UserService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repo.Migrate(db))

	c := cache.New("", "", 0)
	userRepo := repo.NewUserRepo(db)
	storeRepo := repo.NewStoreRepo(db)
	jwt := auth.NewJWTer("router-test-secret", "store-rating", 0)
	users := service.NewUserService(userRepo, repo.NewStatsRepo(db), c)

	e := NewAPIEngine(Deps{
		Log:      zap.NewNop(),
		Resolver: service.NewIdentityResolver(jwt, userRepo),
		Auth:     service.NewAuthService(userRepo, jwt),
		Users:    users,
		Stores:   service.NewStoreService(storeRepo, c),
		Ratings:  service.NewRatingService(repo.NewRatingRepo(db), storeRepo, c),
		Ping:     sqlDB.PingContext,
		Limits: Limits{
			RPS: 1000, Burst: 1000, MaxConcurrent: 64, MaxBodyBytes: 1 << 20, RequestTimeout: 5 * time.Second,
		},
	})
	return &harness{t: t, engine: e, users: users}
}

type envelope struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
	Errors []string        `json:"errors"`
}

func (h *harness) do(method, path, token string, body any) (int, envelope) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type session struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *harness) register(name, email string) session {
	h.t.Helper()
	code, env := h.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": pw, "address": "221B Baker Street",
	})
	require.Equal(h.t, http.StatusCreated, code, env.Msg)
	return decode[session](h.t, env.Data)
}

func (h *harness) login(email, password string) session {
	h.t.Helper()
	code, env := h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, code, env.Msg)
	return decode[session](h.t, env.Data)
}

func (h *harness) adminToken() string {
	h.t.Helper()
	_, err := h.users.Create(ctxBG, service.CreateUserInput{
		Name: "Platform Administrator Account", Email: "admin@example.com", Password: pw, Role: domain.RoleAdmin,
	})
	require.NoError(h.t, err)
	return h.login("admin@example.com", pw).Token
}

type createdStore struct {
	Store domain.Store `json:"store"`
	Owner domain.User  `json:"owner"`
}

func (h *harness) createStore(admin, name, email string) createdStore {
	h.t.Helper()
	code, env := h.do(http.MethodPost, "/api/stores", admin, gin.H{
		"name": name, "email": email, "address": "1 Market Street",
		"ownerName": "Proprietor Of " + name + " Ltd", "ownerPassword": pw,
	})
	require.Equal(h.t, http.StatusCreated, code, env.Msg)
	return decode[createdStore](h.t, env.Data)
}

type dashboard struct {
	Store              domain.Store     `json:"store"`
	RecentRatings      []map[string]any `json:"recentRatings"`
	RatingDistribution map[string]int   `json:"ratingDistribution"`
}

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)
	s := h.register("Alexandra Montgomery Smith", "alex@example.com")
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, domain.RoleUser, s.User.Role)

	l := h.login("alex@example.com", pw)
	assert.Equal(t, s.User.ID, l.User.ID)

	code, env := h.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Alexandra Montgomery Smith", "email": "alex@example.com", "password": pw,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, 409, env.Code)

	code, env = h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alex@example.com", "password": "Wrong#123"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", env.Msg)

	code, env = h.do(http.MethodGet, "/api/auth/profile", s.Token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "password")
}

func TestRegister_ValidationErrors(t *testing.T) {
	h := newHarness(t)
	code, env := h.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Too Short", "email": "not-an-email", "password": "weakpass",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Len(t, env.Errors, 3)
	assert.Contains(t, env.Errors, "please provide a valid email address")

	code, _ = h.do(http.MethodPost, "/api/auth/register", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUpdatePassword(t *testing.T) {
	h := newHarness(t)
	s := h.register("Alexandra Montgomery Smith", "alex@example.com")

	code, env := h.do(http.MethodPut, "/api/auth/update-password", s.Token, gin.H{
		"currentPassword": "Wrong#123", "newPassword": "Another#456",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "current password is incorrect", env.Msg)

	code, _ = h.do(http.MethodPut, "/api/auth/update-password", s.Token, gin.H{
		"currentPassword": pw, "newPassword": "weak",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(http.MethodPut, "/api/auth/update-password", s.Token, gin.H{
		"currentPassword": pw, "newPassword": "Another#456",
	})
	assert.Equal(t, http.StatusOK, code)
	h.login("alex@example.com", "Another#456")
}

func TestRatingFlow_OwnerDashboard(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()
	cs := h.createStore(admin, "Corner Bakery", "bakery@example.com")
	a := h.register("Alexandra Montgomery Smith", "alex@example.com")
	a = h.login("alex@example.com", pw)

	code, env := h.do(http.MethodPost, "/api/ratings/submit", a.Token, gin.H{"storeId": cs.Store.ID, "rating": 4})
	require.Equal(t, http.StatusCreated, code, env.Msg)

	owner := h.login("bakery@example.com", pw)
	code, env = h.do(http.MethodGet, "/api/ratings/dashboard", owner.Token, nil)
	require.Equal(t, http.StatusOK, code, env.Msg)
	d := decode[dashboard](t, env.Data)
	assert.Equal(t, int64(1), d.Store.TotalRatings)
	assert.InDelta(t, 4.0, d.Store.AverageRating, 1e-9)
	assert.Equal(t, map[string]int{"4": 1}, d.RatingDistribution)

	code, _ = h.do(http.MethodPost, "/api/ratings/submit", a.Token, gin.H{"storeId": cs.Store.ID, "rating": 2})
	require.Equal(t, http.StatusOK, code)

	_, env = h.do(http.MethodGet, "/api/ratings/dashboard", owner.Token, nil)
	d = decode[dashboard](t, env.Data)
	assert.Equal(t, int64(1), d.Store.TotalRatings)
	assert.InDelta(t, 2.0, d.Store.AverageRating, 1e-9)

	code, env = h.do(http.MethodGet, "/api/ratings/user/"+cs.Store.ID, a.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, decode[struct {
		Rating domain.Rating `json:"rating"`
	}](t, env.Data).Rating.Score)

	code, env = h.do(http.MethodGet, "/api/ratings/store/"+cs.Store.ID, owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	sr := decode[service.StoreRatings](t, env.Data)
	require.Len(t, sr.Ratings, 1)
	assert.Equal(t, "alex@example.com", sr.Ratings[0].UserEmail)
}

func TestSubmitRating_Errors(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()
	cs := h.createStore(admin, "Corner Bakery", "bakery@example.com")
	a := h.register("Alexandra Montgomery Smith", "alex@example.com")

	for _, bad := range []any{0, 6, "four", 3.5} {
		code, _ := h.do(http.MethodPost, "/api/ratings/submit", a.Token, gin.H{"storeId": cs.Store.ID, "rating": bad})
		assert.Equal(t, http.StatusBadRequest, code, bad)
	}
	code, _ := h.do(http.MethodPost, "/api/ratings/submit", a.Token, gin.H{"storeId": cs.Store.ID})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := h.do(http.MethodPost, "/api/ratings/submit", a.Token, gin.H{"storeId": "missing", "rating": 3})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "store not found", env.Msg)

	code, env = h.do(http.MethodGet, "/api/ratings/user/"+cs.Store.ID, a.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"rating":null}`, string(env.Data))
}

func TestStoreRatings_ForeignOwnerForbidden(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()
	mine := h.createStore(admin, "Corner Bakery", "bakery@example.com")
	h.createStore(admin, "Harbour Fishmonger", "fish@example.com")

	other := h.login("fish@example.com", pw)
	code, _ := h.do(http.MethodGet, "/api/ratings/store/"+mine.Store.ID, other.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = h.do(http.MethodGet, "/api/ratings/store/missing", other.Token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAuthGuards(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()
	cs := h.createStore(admin, "Corner Bakery", "bakery@example.com")

	code, env := h.do(http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, 401, env.Code)

	code, _ = h.do(http.MethodGet, "/api/auth/profile", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	// 无角色继承：admin 不能以 user 身份评分
	code, _ = h.do(http.MethodPost, "/api/ratings/submit", admin, gin.H{"storeId": cs.Store.ID, "rating": 5})
	assert.Equal(t, http.StatusForbidden, code)

	a := h.register("Alexandra Montgomery Smith", "alex@example.com")
	code, _ = h.do(http.MethodGet, "/api/users", a.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = h.do(http.MethodGet, "/api/ratings/dashboard", a.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()
	a := h.register("Alexandra Montgomery Smith", "alex@example.com")

	code, _ := h.do(http.MethodDelete, "/api/users/"+a.User.ID, admin, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = h.do(http.MethodGet, "/api/auth/profile", a.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

type storePage struct {
	Stores []struct {
		domain.Store
		UserRating *int `json:"user_rating"`
	} `json:"stores"`
	Pagination struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
		Pages int   `json:"pages"`
	} `json:"pagination"`
}

func TestStoreListing_SortInjectionFallsBack(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()
	h.createStore(admin, "Corner Bakery", "bakery@example.com")
	h.createStore(admin, "Harbour Fishmonger", "fish@example.com")
	a := h.register("Alexandra Montgomery Smith", "alex@example.com")

	q := url.Values{"sortBy": {"created_at; DROP TABLE users"}, "sortOrder": {"sideways"}, "page": {"-3"}, "limit": {"abc"}}
	code, env := h.do(http.MethodGet, "/api/stores/user/list?"+q.Encode(), a.Token, nil)
	require.Equal(t, http.StatusOK, code, env.Msg)
	p := decode[storePage](t, env.Data)
	assert.Len(t, p.Stores, 2)
	assert.Equal(t, 1, p.Pagination.Page)
	assert.Equal(t, 10, p.Pagination.Limit)

	q = url.Values{"sortBy": {"name"}, "sortOrder": {"desc"}, "limit": {"1"}}
	code, env = h.do(http.MethodGet, "/api/stores/admin/all?"+q.Encode(), admin, nil)
	require.Equal(t, http.StatusOK, code)
	p = decode[storePage](t, env.Data)
	require.Len(t, p.Stores, 1)
	assert.Equal(t, "Harbour Fishmonger", p.Stores[0].Name)
	assert.Equal(t, int64(2), p.Pagination.Total)
	assert.Equal(t, 2, p.Pagination.Pages)

	// users 表仍在
	code, _ = h.do(http.MethodGet, "/api/auth/profile", a.Token, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAdminStoreAndUserManagement(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()
	cs := h.createStore(admin, "Corner Bakery", "bakery@example.com")

	code, _ := h.do(http.MethodPost, "/api/stores", admin, gin.H{
		"name": "Copycat Bakery", "email": "bakery@example.com", "address": "2 Market Street",
		"ownerName": "Another Proprietor Full Name", "ownerPassword": pw,
	})
	assert.Equal(t, http.StatusConflict, code)

	code, env := h.do(http.MethodPut, "/api/stores/"+cs.Store.ID, admin, gin.H{
		"name": "Corner Bakery & Cafe", "email": "cafe@example.com", "address": "1 Market Street",
	})
	require.Equal(t, http.StatusOK, code, env.Msg)

	code, _ = h.do(http.MethodGet, "/api/stores/"+cs.Store.ID, admin, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = h.do(http.MethodPost, "/api/users", admin, gin.H{
		"name": "Created By The Administrator", "email": "made@example.com", "password": pw, "role": "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "invalid role specified")

	code, env = h.do(http.MethodPost, "/api/users", admin, gin.H{
		"name": "Created By The Administrator", "email": "made@example.com", "password": pw, "role": "user",
	})
	require.Equal(t, http.StatusCreated, code, env.Msg)
	made := decode[domain.User](t, env.Data)

	code, env = h.do(http.MethodPut, "/api/users/"+made.ID, admin, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "no fields to update", env.Msg)

	code, _ = h.do(http.MethodPut, "/api/users/"+made.ID, admin, gin.H{"role": "store_owner"})
	assert.Equal(t, http.StatusOK, code)

	code, env = h.do(http.MethodGet, "/api/users?role=store_owner&sortBy=email", admin, nil)
	require.Equal(t, http.StatusOK, code)
	users := decode[struct {
		Users []domain.User `json:"users"`
	}](t, env.Data).Users
	assert.Len(t, users, 2)

	code, env = h.do(http.MethodGet, "/api/users/dashboard/stats", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"totalUsers":3,"totalStores":1,"totalRatings":0}`, string(env.Data))

	code, _ = h.do(http.MethodDelete, "/api/stores/"+cs.Store.ID, admin, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = h.do(http.MethodGet, "/api/stores/"+cs.Store.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = h.do(http.MethodGet, "/api/users/"+cs.Owner.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)
	code, env := h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))

	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
