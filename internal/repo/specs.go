package repo

import "store-rating/internal/query"

// 排序白名单：sortBy 取值 → 列
var (
	storeAdminSpec = query.Spec{
		Search: []query.Column{{Table: "stores", Name: "name"}, {Table: "stores", Name: "address"}},
		Sort: map[string]query.Column{
			"name":           {Table: "stores", Name: "name"},
			"email":          {Table: "stores", Name: "email"},
			"address":        {Table: "stores", Name: "address"},
			"average_rating": {Table: "stores", Name: "average_rating"},
			"total_ratings":  {Table: "stores", Name: "total_ratings"},
		},
		DefaultSort: "name",
		Tiebreak:    query.Column{Table: "stores", Name: "id"},
	}

	storeUserSpec = query.Spec{
		Search: []query.Column{{Table: "stores", Name: "name"}, {Table: "stores", Name: "address"}},
		Sort: map[string]query.Column{
			"name":           {Table: "stores", Name: "name"},
			"address":        {Table: "stores", Name: "address"},
			"average_rating": {Table: "stores", Name: "average_rating"},
		},
		DefaultSort: "name",
		Tiebreak:    query.Column{Table: "stores", Name: "id"},
	}

	userSpec = query.Spec{
		Search: []query.Column{
			{Table: "users", Name: "name"},
			{Table: "users", Name: "email"},
			{Table: "users", Name: "address"},
		},
		Sort: map[string]query.Column{
			"name":       {Table: "users", Name: "name"},
			"email":      {Table: "users", Name: "email"},
			"address":    {Table: "users", Name: "address"},
			"role":       {Table: "users", Name: "role"},
			"created_at": {Table: "users", Name: "created_at"},
		},
		DefaultSort: "name",
		Tiebreak:    query.Column{Table: "users", Name: "id"},
	}

	ratingSpec = query.Spec{
		Search: []query.Column{{Table: "users", Name: "name"}, {Table: "stores", Name: "name"}},
		Sort: map[string]query.Column{
			"created_at": {Table: "ratings", Name: "created_at"},
			"updated_at": {Table: "ratings", Name: "updated_at"},
			"rating":     {Table: "ratings", Name: "rating"},
		},
		DefaultSort: "created_at",
		DefaultDesc: true,
		Tiebreak:    query.Column{Table: "ratings", Name: "id"},
	}
)
