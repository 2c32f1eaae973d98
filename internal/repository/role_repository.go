package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

type RoleUpdate struct {
	RoleName    *string
	Description *string
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) nameTaken(ctx context.Context, selfID uint, name string) error {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Role{}).Where("role_name = ?", name)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ConflictError{Field: "role_name", Value: name}
	}
	return nil
}

func (r *RoleRepository) Create(ctx context.Context, role *model.Role) error {
	if err := r.nameTaken(ctx, 0, role.RoleName); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *RoleRepository) GetByID(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Where("role_name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) List(ctx context.Context, page Page) ([]model.Role, error) {
	page = page.normalized()
	var roles []model.Role
	err := r.db.WithContext(ctx).Order("id ASC").Offset(page.Skip).Limit(page.Limit).Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) Update(ctx context.Context, id uint, in RoleUpdate) (*model.Role, error) {
	role, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.RoleName != nil && *in.RoleName != role.RoleName {
		if err := r.nameTaken(ctx, id, *in.RoleName); err != nil {
			return nil, err
		}
		updates["role_name"] = *in.RoleName
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if len(updates) == 0 {
		return role, nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Role{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *RoleRepository) Delete(ctx context.Context, id uint) (bool, error) {
	var users int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("role_id = ?", id).Count(&users).Error; err != nil {
		return false, err
	}
	if users > 0 {
		return false, &ConflictError{Field: "role_id", Value: id, Reason: "role is still assigned to users"}
	}
	result := r.db.WithContext(ctx).Delete(&model.Role{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
