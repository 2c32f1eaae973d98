package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// priorityOrder sorts High, Medium, Low. Sorting the raw strings would put
// Medium first.
const priorityOrder = "CASE tasks.priority WHEN 'High' THEN 3 WHEN 'Medium' THEN 2 WHEN 'Low' THEN 1 ELSE 0 END DESC"

const detailColumns = "tasks.*, portfolios.name AS portfolio_name, users.username AS creator_username, users.email AS creator_email"

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskFilter narrows List. Zero values mean "any".
type TaskFilter struct {
	PortfolioID    *uint
	Status         model.TaskStatus
	Priority       model.TaskPriority
	ParentTaskID   *uint
	CreatedBy      *uint
	DeadlineFrom   *time.Time
	DeadlineBefore *time.Time
	RootsOnly      bool
}

// TaskUpdate carries the fields a caller explicitly sent. Nil means untouched.
type TaskUpdate struct {
	Title           *string
	Description     *string
	Status          *model.TaskStatus
	Priority        *model.TaskPriority
	Deadline        *time.Time
	PortfolioID     *uint
	ParentTaskID    *uint
	ClearParent     bool
	SourceMeetingID *uint
}

// DueTask is a task due inside a reminder window, joined with its portfolio.
type DueTask struct {
	model.Task
	PortfolioName    string
	PortfolioChannel *string
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ParentTaskID != nil {
		if _, err := r.GetByID(ctx, *task.ParentTaskID); err != nil {
			if errors.Is(err, ErrTaskNotFound) {
				return &ConflictError{Field: "parent_task_id", Value: *task.ParentTaskID, Reason: "parent task does not exist"}
			}
			return err
		}
	}
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

func (r *TaskRepository) detailQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Task{}).
		Select(detailColumns).
		Joins("JOIN portfolios ON portfolios.id = tasks.portfolio_id").
		Joins("JOIN users ON users.id = tasks.created_by")
}

// GetDetail retrieves a task together with its portfolio and creator names
func (r *TaskRepository) GetDetail(ctx context.Context, id uint) (*model.TaskDetail, error) {
	var details []model.TaskDetail
	if err := r.detailQuery(ctx).Where("tasks.id = ?", id).Limit(1).Scan(&details).Error; err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, ErrTaskNotFound
	}
	return &details[0], nil
}

// List returns tasks matching the filter, newest deadline last
func (r *TaskRepository) List(ctx context.Context, f TaskFilter, page Page) ([]model.TaskDetail, error) {
	page = page.normalized()
	q := r.detailQuery(ctx)

	if f.PortfolioID != nil {
		q = q.Where("tasks.portfolio_id = ?", *f.PortfolioID)
	}
	if f.Status != "" {
		q = q.Where("tasks.status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("tasks.priority = ?", f.Priority)
	}
	if f.ParentTaskID != nil {
		q = q.Where("tasks.parent_task_id = ?", *f.ParentTaskID)
	}
	if f.RootsOnly {
		q = q.Where("tasks.parent_task_id IS NULL")
	}
	if f.CreatedBy != nil {
		q = q.Where("tasks.created_by = ?", *f.CreatedBy)
	}
	if f.DeadlineFrom != nil {
		q = q.Where("tasks.deadline >= ?", f.DeadlineFrom.UTC())
	}
	if f.DeadlineBefore != nil {
		q = q.Where("tasks.deadline < ?", f.DeadlineBefore.UTC())
	}

	var details []model.TaskDetail
	err := q.Order("tasks.deadline ASC").Order("tasks.id ASC").
		Offset(page.Skip).Limit(page.Limit).
		Scan(&details).Error
	return details, err
}

// Subtasks returns the direct children of a task
func (r *TaskRepository) Subtasks(ctx context.Context, parentID uint) ([]model.TaskDetail, error) {
	var details []model.TaskDetail
	err := r.detailQuery(ctx).
		Where("tasks.parent_task_id = ?", parentID).
		Order("tasks.id ASC").
		Scan(&details).Error
	return details, err
}

// ByMeeting returns the tasks generated from a meeting. pendingOnly keeps the
// ones still waiting for confirmation.
func (r *TaskRepository) ByMeeting(ctx context.Context, meetingID uint, pendingOnly bool) ([]model.TaskDetail, error) {
	q := r.detailQuery(ctx).Where("tasks.source_meeting_id = ?", meetingID)
	if pendingOnly {
		q = q.Where("tasks.status = ?", model.StatusPending)
	}
	var details []model.TaskDetail
	err := q.Order("tasks.id ASC").Scan(&details).Error
	return details, err
}

// Search matches the term against title and description, case-insensitively
func (r *TaskRepository) Search(ctx context.Context, term string, portfolioID *uint) ([]model.TaskDetail, error) {
	like := "%" + term + "%"
	q := r.detailQuery(ctx).Where("(tasks.title ILIKE ? OR tasks.description ILIKE ?)", like, like)
	if portfolioID != nil {
		q = q.Where("tasks.portfolio_id = ?", *portfolioID)
	}
	var details []model.TaskDetail
	err := q.Order("tasks.id ASC").Limit(MaxLimit).Scan(&details).Error
	return details, err
}

// AssignedTo returns the tasks a user is assigned to
func (r *TaskRepository) AssignedTo(ctx context.Context, userID uint, page Page) ([]model.TaskDetail, error) {
	page = page.normalized()
	var details []model.TaskDetail
	err := r.detailQuery(ctx).
		Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id").
		Where("task_assignments.user_id = ?", userID).
		Order("tasks.deadline ASC").
		Offset(page.Skip).Limit(page.Limit).
		Scan(&details).Error
	return details, err
}

// Tree loads a task and all of its descendants and links them in memory
func (r *TaskRepository) Tree(ctx context.Context, rootID uint) (*model.TaskNode, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).Raw(`
		WITH RECURSIVE subtree AS (
			SELECT * FROM tasks WHERE id = ?
			UNION
			SELECT t.* FROM tasks t JOIN subtree s ON t.parent_task_id = s.id
		)
		SELECT * FROM subtree ORDER BY id`, rootID).Scan(&tasks).Error
	if err != nil {
		return nil, err
	}

	for _, n := range model.BuildForest(tasks) {
		if n.Task.ID == rootID {
			return n, nil
		}
	}
	return nil, ErrTaskNotFound
}

// ancestors returns the ids on the parent chain starting at id, id included.
func (r *TaskRepository) ancestors(ctx context.Context, id uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Raw(`
		WITH RECURSIVE chain AS (
			SELECT id, parent_task_id FROM tasks WHERE id = ?
			UNION
			SELECT t.id, t.parent_task_id FROM tasks t JOIN chain c ON t.id = c.parent_task_id
		)
		SELECT id FROM chain`, id).Scan(&ids).Error
	return ids, err
}

// Update applies a partial update and refreshes updated_at
func (r *TaskRepository) Update(ctx context.Context, id uint, in TaskUpdate) (*model.Task, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.Priority != nil {
		updates["priority"] = *in.Priority
	}
	if in.Deadline != nil {
		updates["deadline"] = in.Deadline.UTC()
	}
	if in.PortfolioID != nil {
		updates["portfolio_id"] = *in.PortfolioID
	}
	if in.SourceMeetingID != nil {
		updates["source_meeting_id"] = *in.SourceMeetingID
	}
	if in.ClearParent {
		updates["parent_task_id"] = nil
	} else if in.ParentTaskID != nil {
		chain, err := r.ancestors(ctx, *in.ParentTaskID)
		if err != nil {
			return nil, err
		}
		if len(chain) == 0 {
			return nil, &ConflictError{Field: "parent_task_id", Value: *in.ParentTaskID, Reason: "parent task does not exist"}
		}
		if slices.Contains(chain, id) {
			return nil, &ConflictError{Field: "parent_task_id", Value: *in.ParentTaskID, Reason: "would create a cycle"}
		}
		updates["parent_task_id"] = *in.ParentTaskID
	}
	updates["updated_at"] = time.Now().UTC()

	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DueBetween selects tasks with a deadline in [from, to) and one of the given
// statuses, most urgent first
func (r *TaskRepository) DueBetween(ctx context.Context, from, to time.Time, statuses []model.TaskStatus, portfolioID *uint) ([]DueTask, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Select("tasks.*, portfolios.name AS portfolio_name, portfolios.channel_id AS portfolio_channel").
		Joins("JOIN portfolios ON portfolios.id = tasks.portfolio_id").
		Where("tasks.deadline >= ? AND tasks.deadline < ?", from.UTC(), to.UTC()).
		Where("tasks.status IN ?", statuses)

	if portfolioID != nil {
		q = q.Where("tasks.portfolio_id = ?", *portfolioID)
	}

	var due []DueTask
	err := q.Order(priorityOrder).Order("tasks.deadline ASC").Scan(&due).Error
	return due, err
}
