// Package query 将列表请求的 search/sortBy/sortOrder/page/limit 转成有界、参数化的 gorm 查询。
//
// 只有列名与排序方向来自白名单并拼入 SQL（经 clause.Column 由方言转义），
// 所有值（搜索词、分页）一律走绑定参数。
package query

import (
	"context"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params 原样接收查询串；page/limit 用字符串以便非法值回落默认
type Params struct {
	Search    string `form:"search"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	Page      string `form:"page"`
	Limit     string `form:"limit"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type Column struct {
	Table string
	Name  string
}

func (c Column) clause() clause.Column { return clause.Column{Table: c.Table, Name: c.Name} }

// Spec 每种实体一份：可搜索列 + 排序白名单
type Spec struct {
	Search      []Column
	Sort        map[string]Column
	DefaultSort string
	// DefaultDesc 仅在未传 sortOrder 时生效
	DefaultDesc bool
	Tiebreak    Column
}

type Plan struct {
	Search string
	Sort   Column
	Desc   bool
	Page   int
	Limit  int

	searchCols []Column
	tiebreak   Column
}

func (s Spec) Plan(p Params) Plan {
	sortCol, ok := s.Sort[strings.TrimSpace(p.SortBy)]
	if !ok {
		sortCol = s.Sort[s.DefaultSort]
	}
	desc := s.DefaultDesc
	switch strings.ToUpper(strings.TrimSpace(p.SortOrder)) {
	case "":
	case "DESC":
		desc = true
	default:
		desc = false
	}
	limit := atoiDefault(p.Limit, DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Plan{
		Search:     strings.TrimSpace(p.Search),
		Sort:       sortCol,
		Desc:       desc,
		Page:       atoiDefault(p.Page, DefaultPage),
		Limit:      limit,
		searchCols: s.Search,
		tiebreak:   s.Tiebreak,
	}
}

func (pl Plan) Offset() int { return (pl.Page - 1) * pl.Limit }

// Where 搜索谓词，列表与计数共用
func (pl Plan) Where(db *gorm.DB) *gorm.DB {
	if pl.Search == "" || len(pl.searchCols) == 0 {
		return db
	}
	like := "%" + pl.Search + "%"
	exprs := make([]clause.Expression, 0, len(pl.searchCols))
	for _, c := range pl.searchCols {
		exprs = append(exprs, clause.Like{Column: c.clause(), Value: like})
	}
	return db.Where(clause.Or(exprs...))
}

func (pl Plan) Order(db *gorm.DB) *gorm.DB {
	db = db.Order(clause.OrderByColumn{Column: pl.Sort.clause(), Desc: pl.Desc})
	if pl.tiebreak.Name != "" && pl.tiebreak != pl.Sort {
		db = db.Order(clause.OrderByColumn{Column: pl.tiebreak.clause(), Desc: pl.Desc})
	}
	return db
}

func (pl Plan) Paginate(db *gorm.DB) *gorm.DB {
	return db.Limit(pl.Limit).Offset(pl.Offset())
}

func (pl Plan) Pagination(total int64) Pagination {
	pages := int((total + int64(pl.Limit) - 1) / int64(pl.Limit))
	return Pagination{Page: pl.Page, Limit: pl.Limit, Total: total, Pages: pages}
}

// Find 执行计数 + 分页查询；base 只放 Model/Joins/固定过滤，project 追加 Select
func Find[T any](ctx context.Context, base *gorm.DB, pl Plan, project func(*gorm.DB) *gorm.DB) ([]T, Pagination, error) {
	base = base.WithContext(ctx).Session(&gorm.Session{})

	var total int64
	if err := base.Scopes(pl.Where).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}
	items := make([]T, 0, pl.Limit)
	if total == 0 {
		return items, pl.Pagination(0), nil
	}
	q := base.Scopes(pl.Where)
	if project != nil {
		q = q.Scopes(project)
	}
	if err := q.Scopes(pl.Order, pl.Paginate).Find(&items).Error; err != nil {
		return nil, Pagination{}, err
	}
	return items, pl.Pagination(total), nil
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v > 0 {
		return v
	}
	return def
}
