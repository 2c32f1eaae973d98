package repository

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/model"

	"gorm.io/gorm"
)

type MeetingRecordRepository struct {
	db *gorm.DB
}

// MeetingFilter narrows List. Nil fields mean "any".
type MeetingFilter struct {
	PortfolioID  *uint
	From         *time.Time
	Before       *time.Time
	HasRecording *bool
	HasSummary   *bool
}

type MeetingUpdate struct {
	MeetingDate       *time.Time
	MeetingName       *string
	RecordingFileLink *string
	AutoCaption       *string
	Summary           *string
	PortfolioID       *uint
	UserCanSee        *bool
}

func NewMeetingRecordRepository(db *gorm.DB) *MeetingRecordRepository {
	return &MeetingRecordRepository{db: db}
}

// visibleTo restricts q to the meetings the actor may read. Admins see
// everything, directors their portfolio, users the visible meetings of
// their portfolio. Without a portfolio a non-admin sees nothing.
func visibleTo(q *gorm.DB, actor model.Actor) *gorm.DB {
	switch {
	case actor.IsAdmin():
		return q
	case actor.PortfolioID == nil:
		return q.Where("1 = 0")
	case actor.IsDirector():
		return q.Where("meeting_records.portfolio_id = ?", *actor.PortfolioID)
	default:
		return q.Where("meeting_records.portfolio_id = ? AND meeting_records.user_can_see = ?", *actor.PortfolioID, true)
	}
}

// CanSee applies the same rule as the list filter to a loaded meeting.
func CanSee(actor model.Actor, m *model.MeetingRecord) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.PortfolioID == nil || *actor.PortfolioID != m.PortfolioID:
		return false
	case actor.IsDirector():
		return true
	default:
		return m.UserCanSee
	}
}

func (r *MeetingRecordRepository) Create(ctx context.Context, m *model.MeetingRecord) error {
	m.MeetingDate = m.MeetingDate.UTC()
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MeetingRecordRepository) GetByID(ctx context.Context, id uint) (*model.MeetingRecord, error) {
	var m model.MeetingRecord
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMeetingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetVisible loads a meeting and hides it from callers who may not read it.
func (r *MeetingRecordRepository) GetVisible(ctx context.Context, id uint, actor model.Actor) (*model.MeetingRecord, error) {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanSee(actor, m) {
		return nil, ErrMeetingNotFound
	}
	return m, nil
}

// List returns the meetings the actor can see, most recent first
func (r *MeetingRecordRepository) List(ctx context.Context, actor model.Actor, f MeetingFilter, page Page) ([]model.MeetingRecord, error) {
	page = page.normalized()
	q := visibleTo(r.db.WithContext(ctx).Model(&model.MeetingRecord{}), actor)

	if f.PortfolioID != nil {
		q = q.Where("meeting_records.portfolio_id = ?", *f.PortfolioID)
	}
	if f.From != nil {
		q = q.Where("meeting_records.meeting_date >= ?", f.From.UTC())
	}
	if f.Before != nil {
		q = q.Where("meeting_records.meeting_date < ?", f.Before.UTC())
	}
	if f.HasRecording != nil {
		if *f.HasRecording {
			q = q.Where("meeting_records.recording_file_link IS NOT NULL AND meeting_records.recording_file_link <> ''")
		} else {
			q = q.Where("(meeting_records.recording_file_link IS NULL OR meeting_records.recording_file_link = '')")
		}
	}
	if f.HasSummary != nil {
		if *f.HasSummary {
			q = q.Where("meeting_records.summary IS NOT NULL AND meeting_records.summary <> ''")
		} else {
			q = q.Where("(meeting_records.summary IS NULL OR meeting_records.summary = '')")
		}
	}

	var meetings []model.MeetingRecord
	err := q.Order("meeting_records.meeting_date DESC").Offset(page.Skip).Limit(page.Limit).Find(&meetings).Error
	return meetings, err
}

func (r *MeetingRecordRepository) Update(ctx context.Context, id uint, in MeetingUpdate) (*model.MeetingRecord, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.MeetingDate != nil {
		updates["meeting_date"] = in.MeetingDate.UTC()
	}
	if in.MeetingName != nil {
		updates["meeting_name"] = *in.MeetingName
	}
	if in.RecordingFileLink != nil {
		updates["recording_file_link"] = *in.RecordingFileLink
	}
	if in.AutoCaption != nil {
		updates["auto_caption"] = *in.AutoCaption
	}
	if in.Summary != nil {
		updates["summary"] = *in.Summary
	}
	if in.PortfolioID != nil {
		updates["portfolio_id"] = *in.PortfolioID
	}
	if in.UserCanSee != nil {
		updates["user_can_see"] = *in.UserCanSee
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&model.MeetingRecord{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// SetSummary stores the generated summary of a meeting.
func (r *MeetingRecordRepository) SetSummary(ctx context.Context, id uint, summary string) error {
	result := r.db.WithContext(ctx).Model(&model.MeetingRecord{}).Where("id = ?", id).Update("summary", summary)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMeetingNotFound
	}
	return nil
}

func (r *MeetingRecordRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.MeetingRecord{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
