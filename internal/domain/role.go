package domain

import "slices"

// Role 封闭枚举，无继承关系：admin 不自动拥有 user/store_owner 的权限
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
	RoleStoreOwner Role = "store_owner"
)

// AllRoles 任意已登录角色
var AllRoles = []Role{RoleAdmin, RoleUser, RoleStoreOwner}

func (r Role) Valid() bool { return slices.Contains(AllRoles, r) }

func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Authorize 纯成员判断
func Authorize(id Identity, allowed []Role) error {
	if slices.Contains(allowed, id.Role) {
		return nil
	}
	return Forbidden("access denied: insufficient permissions")
}
