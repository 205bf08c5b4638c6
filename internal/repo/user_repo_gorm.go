package repo

import (
	"context"

	"gorm.io/gorm"

	"store-rating/internal/domain"
	"store-rating/internal/query"
)

const (
	msgUserNotFound = "user not found"
	msgUserExists   = "user already exists with this email"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error, msgUserNotFound, msgUserExists)
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, msgUserNotFound, msgUserExists)
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, translate(err, msgUserNotFound, msgUserExists)
	}
	return &u, nil
}

func (r *UserRepo) Detail(ctx context.Context, id string) (*domain.UserDetail, error) {
	var d domain.UserDetail
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Select("users.*, stores.name AS store_name, stores.average_rating AS store_rating").
		Joins("LEFT JOIN stores ON stores.owner_id = users.id").
		Where("users.id = ?", id).
		Take(&d).Error
	if err != nil {
		return nil, translate(err, msgUserNotFound, msgUserExists)
	}
	return &d, nil
}

func selectUserColumns(db *gorm.DB) *gorm.DB {
	return db.Select("users.id, users.name, users.email, users.address, users.role, users.created_at, users.updated_at")
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, query.Pagination, error) {
	base := r.db.Model(&domain.User{})
	if f.Role.Valid() {
		base = base.Where("users.role = ?", f.Role)
	}
	return query.Find[domain.User](ctx, base, userSpec.Plan(f.Params), selectUserColumns)
}

func (r *UserRepo) Update(ctx context.Context, id string, p domain.UserPatch) error {
	fields := map[string]any{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Email != nil {
		fields["email"] = *p.Email
	}
	if p.Address != nil {
		fields["address"] = *p.Address
	}
	if p.Role != nil {
		fields["role"] = *p.Role
	}
	if p.PasswordHash != nil {
		fields["password_hash"] = *p.PasswordHash
	}
	if len(fields) == 0 {
		return domain.Validation("no fields to update")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.Select("id").First(&u, "id = ?", id).Error; err != nil {
			return translate(err, msgUserNotFound, msgUserExists)
		}
		err := tx.Model(&domain.User{}).Where("id = ?", id).Updates(fields).Error
		return translate(err, msgUserNotFound, msgUserExists)
	})
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := purgeUser(tx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NotFound(msgUserNotFound)
		}
		return nil
	})
}
