package domain

import (
	"context"
	"time"

	"store-rating/internal/query"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:60;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Address      string    `gorm:"size:400" json:"address"`
	Role         Role      `gorm:"size:16;not null;index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// UserDetail 管理端详情，store_owner 附带店铺信息
type UserDetail struct {
	User
	StoreName   *string  `json:"store_name"`
	StoreRating *float64 `json:"store_rating"`
}

type UserFilter struct {
	Role   Role
	Params query.Params
}

// UserPatch nil 字段不更新
type UserPatch struct {
	Name         *string
	Email        *string
	Address      *string
	Role         *Role
	PasswordHash *string
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Address == nil && p.Role == nil && p.PasswordHash == nil
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Detail(ctx context.Context, id string) (*UserDetail, error)
	List(ctx context.Context, f UserFilter) ([]User, query.Pagination, error)
	Update(ctx context.Context, id string, p UserPatch) error
	// Delete 级联：名下店铺及其评分、本人评分；受影响店铺的聚合在同一事务内重算
	Delete(ctx context.Context, id string) error
}
