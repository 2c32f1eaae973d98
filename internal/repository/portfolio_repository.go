package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"gorm.io/gorm"
)

type PortfolioRepository struct {
	db *gorm.DB
}

// PortfolioUpdate holds the fields present in an update request.
type PortfolioUpdate struct {
	Name        *string
	Description *string
	ChannelID   *string
}

func NewPortfolioRepository(db *gorm.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

func (r *PortfolioRepository) checkUnique(ctx context.Context, selfID uint, column string, value string) error {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Portfolio{}).Where(column+" = ?", value)
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

// Create inserts a portfolio after checking name and channel uniqueness
func (r *PortfolioRepository) Create(ctx context.Context, p *model.Portfolio) error {
	if err := r.checkUnique(ctx, 0, "name", p.Name); err != nil {
		return err
	}
	if p.ChannelID != nil {
		if err := r.checkUnique(ctx, 0, "channel_id", *p.ChannelID); err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PortfolioRepository) GetByID(ctx context.Context, id uint) (*model.Portfolio, error) {
	var p model.Portfolio
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPortfolioNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByChannel finds the portfolio bound to a chat channel.
func (r *PortfolioRepository) GetByChannel(ctx context.Context, channelID string) (*model.Portfolio, error) {
	var p model.Portfolio
	err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPortfolioNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PortfolioRepository) List(ctx context.Context, page Page) ([]model.Portfolio, error) {
	page = page.normalized()
	var ps []model.Portfolio
	err := r.db.WithContext(ctx).Order("id ASC").Offset(page.Skip).Limit(page.Limit).Find(&ps).Error
	return ps, err
}

func (r *PortfolioRepository) Update(ctx context.Context, id uint, in PortfolioUpdate) (*model.Portfolio, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil && *in.Name != p.Name {
		if err := r.checkUnique(ctx, id, "name", *in.Name); err != nil {
			return nil, err
		}
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.ChannelID != nil {
		if err := r.checkUnique(ctx, id, "channel_id", *in.ChannelID); err != nil {
			return nil, err
		}
		updates["channel_id"] = *in.ChannelID
	}
	if len(updates) == 0 {
		return p, nil
	}

	if err := r.db.WithContext(ctx).Model(&model.Portfolio{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a portfolio nobody references. Users, tasks or meetings
// still pointing at it make the delete a conflict.
func (r *PortfolioRepository) Delete(ctx context.Context, id uint) (bool, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrPortfolioNotFound) {
			return false, nil
		}
		return false, err
	}

	for _, dep := range []struct {
		model any
		name  string
	}{
		{&model.User{}, "users"},
		{&model.Task{}, "tasks"},
		{&model.MeetingRecord{}, "meeting records"},
	} {
		var count int64
		if err := r.db.WithContext(ctx).Model(dep.model).Where("portfolio_id = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return false, &ConflictError{Field: "portfolio_id", Value: id, Reason: "portfolio still has " + dep.name}
		}
	}

	result := r.db.WithContext(ctx).Delete(&model.Portfolio{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Statistics counts the users, tasks and meetings of a portfolio
func (r *PortfolioRepository) Statistics(ctx context.Context, id uint) (*model.PortfolioStatistics, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &model.PortfolioStatistics{PortfolioID: p.ID, Name: p.Name}
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.User{}).Where("portfolio_id = ?", id).Count(&stats.UserCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Task{}).Where("portfolio_id = ?", id).Count(&stats.TaskCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Task{}).
		Where("portfolio_id = ? AND status IN ?", id, model.OpenStatuses).
		Count(&stats.ActiveTaskCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Task{}).
		Where("portfolio_id = ? AND status = ?", id, model.StatusCompleted).
		Count(&stats.CompletedTaskCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.MeetingRecord{}).Where("portfolio_id = ?", id).Count(&stats.MeetingCount).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
