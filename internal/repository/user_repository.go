package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

// UserUpdate is a self-service profile change. Nil fields are left alone.
type UserUpdate struct {
	Username       *string
	Email          *string
	HashedPassword *string
	DiscordID      *string
	PortfolioID    *uint
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.ensureUnique(ctx, 0, "email", user.Email); err != nil {
		return err
	}
	if err := r.ensureUnique(ctx, 0, "username", user.Username); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Omit("Role").Create(user).Error
}

// ensureUnique reports a conflict when another user already holds value in column.
func (r *UserRepository) ensureUnique(ctx context.Context, selfID uint, column string, value any) error {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.User{}).Where(column+" = ?", value)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ConflictError{Field: column, Value: value}
	}
	return nil
}

// FindByEmail returns nil, nil when no user has the email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID loads the user with its role.
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Role").Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, page Page) ([]model.User, error) {
	page = page.normalized()
	var users []model.User
	err := r.db.WithContext(ctx).Order("id ASC").Offset(page.Skip).Limit(page.Limit).Find(&users).Error
	return users, err
}

// Search matches usernames and emails, case-insensitively.
func (r *UserRepository) Search(ctx context.Context, term string, limit int) ([]model.User, error) {
	limit = Page{Limit: limit}.normalized().Limit
	like := "%" + term + "%"
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("username ILIKE ? OR email ILIKE ?", like, like).
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// Update applies a profile change. A user may join a portfolio once; moving
// to a different one afterwards is refused.
func (r *UserRepository) Update(ctx context.Context, id uint, in UserUpdate) (*model.User, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Username != nil && *in.Username != current.Username {
		if err := r.ensureUnique(ctx, id, "username", *in.Username); err != nil {
			return nil, err
		}
		updates["username"] = *in.Username
	}
	if in.Email != nil && *in.Email != current.Email {
		if err := r.ensureUnique(ctx, id, "email", *in.Email); err != nil {
			return nil, err
		}
		updates["email"] = *in.Email
	}
	if in.DiscordID != nil {
		if err := r.ensureUnique(ctx, id, "discord_id", *in.DiscordID); err != nil {
			return nil, err
		}
		updates["discord_id"] = *in.DiscordID
	}
	if in.HashedPassword != nil {
		updates["hashed_password"] = *in.HashedPassword
	}
	if in.PortfolioID != nil {
		switch {
		case current.PortfolioID == nil:
			updates["portfolio_id"] = *in.PortfolioID
		case *current.PortfolioID != *in.PortfolioID:
			return nil, &ConflictError{Field: "portfolio_id", Value: *in.PortfolioID, Reason: "portfolio can only be set once"}
		}
	}

	if len(updates) == 0 {
		return current, nil
	}
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
