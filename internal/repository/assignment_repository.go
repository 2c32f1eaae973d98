package repository

import (
	"context"
	"errors"
	"slices"

	"taskboard/internal/model"

	"gorm.io/gorm"
)

type TaskAssignmentRepository struct {
	db *gorm.DB
}

func NewTaskAssignmentRepository(db *gorm.DB) *TaskAssignmentRepository {
	return &TaskAssignmentRepository{db: db}
}

func (r *TaskAssignmentRepository) requireTaskAndUser(ctx context.Context, taskID, userID uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrTaskNotFound
	}
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *TaskAssignmentRepository) findPair(ctx context.Context, taskID, userID uint) (*model.TaskAssignment, error) {
	var a model.TaskAssignment
	err := r.db.WithContext(ctx).Where("task_id = ? AND user_id = ?", taskID, userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create assigns a user to a task. Assigning the same pair twice returns the
// existing row and created == false.
func (r *TaskAssignmentRepository) Create(ctx context.Context, taskID, userID uint) (*model.TaskAssignment, bool, error) {
	if err := r.requireTaskAndUser(ctx, taskID, userID); err != nil {
		return nil, false, err
	}
	existing, err := r.findPair(ctx, taskID, userID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	a := &model.TaskAssignment{TaskID: taskID, UserID: userID}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, false, err
	}
	return a, true, nil
}

func (r *TaskAssignmentRepository) GetByID(ctx context.Context, id uint) (*model.TaskAssignment, error) {
	var a model.TaskAssignment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns assignments, optionally only those of one task or one user.
func (r *TaskAssignmentRepository) List(ctx context.Context, taskID, userID *uint, page Page) ([]model.TaskAssignment, error) {
	page = page.normalized()
	q := r.db.WithContext(ctx).Model(&model.TaskAssignment{})
	if taskID != nil {
		q = q.Where("task_id = ?", *taskID)
	}
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var out []model.TaskAssignment
	err := q.Order("id ASC").Offset(page.Skip).Limit(page.Limit).Find(&out).Error
	return out, err
}

// Update moves an assignment to another task or user. Moving onto a pair that
// already exists is a conflict.
func (r *TaskAssignmentRepository) Update(ctx context.Context, id uint, taskID, userID *uint) (*model.TaskAssignment, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	newTask, newUser := a.TaskID, a.UserID
	if taskID != nil {
		newTask = *taskID
	}
	if userID != nil {
		newUser = *userID
	}
	if newTask == a.TaskID && newUser == a.UserID {
		return a, nil
	}
	if err := r.requireTaskAndUser(ctx, newTask, newUser); err != nil {
		return nil, err
	}
	existing, err := r.findPair(ctx, newTask, newUser)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &ConflictError{Field: "user_id", Value: newUser, Reason: "user is already assigned to this task"}
	}

	err = r.db.WithContext(ctx).Model(&model.TaskAssignment{}).Where("id = ?", id).
		Updates(map[string]any{"task_id": newTask, "user_id": newUser}).Error
	if err != nil {
		return nil, err
	}
	a.TaskID, a.UserID = newTask, newUser
	return a, nil
}

func (r *TaskAssignmentRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.TaskAssignment{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeletePair unassigns one user from one task.
func (r *TaskAssignmentRepository) DeletePair(ctx context.Context, taskID, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).Where("task_id = ? AND user_id = ?", taskID, userID).Delete(&model.TaskAssignment{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteAllForTask unassigns everybody from a task and returns how many rows went.
func (r *TaskAssignmentRepository) DeleteAllForTask(ctx context.Context, taskID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&model.TaskAssignment{})
	return result.RowsAffected, result.Error
}

// BulkCreate assigns every user to the task, skipping pairs that already exist.
func (r *TaskAssignmentRepository) BulkCreate(ctx context.Context, taskID uint, userIDs []uint) ([]model.TaskAssignment, error) {
	var out []model.TaskAssignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = assignMissing(tx, taskID, dedupe(userIDs))
		return err
	})
	return out, err
}

// ReplaceUsers makes userIDs the exact set of assignees of a task. Rows for
// users that stay are kept.
func (r *TaskAssignmentRepository) ReplaceUsers(ctx context.Context, taskID uint, userIDs []uint) (added, removed int, err error) {
	want := dedupe(userIDs)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []uint
		if err := tx.Model(&model.TaskAssignment{}).Where("task_id = ?", taskID).Pluck("user_id", &current).Error; err != nil {
			return err
		}

		var drop []uint
		for _, id := range current {
			if !slices.Contains(want, id) {
				drop = append(drop, id)
			}
		}
		if len(drop) > 0 {
			res := tx.Where("task_id = ? AND user_id IN ?", taskID, drop).Delete(&model.TaskAssignment{})
			if res.Error != nil {
				return res.Error
			}
			removed = int(res.RowsAffected)
		}

		var missing []model.TaskAssignment
		for _, id := range want {
			if !slices.Contains(current, id) {
				missing = append(missing, model.TaskAssignment{TaskID: taskID, UserID: id})
			}
		}
		if len(missing) > 0 {
			if err := tx.Create(&missing).Error; err != nil {
				return err
			}
		}
		added = len(missing)
		return nil
	})
	return added, removed, err
}

func assignMissing(tx *gorm.DB, taskID uint, userIDs []uint) ([]model.TaskAssignment, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var existing []model.TaskAssignment
	if err := tx.Where("task_id = ? AND user_id IN ?", taskID, userIDs).Find(&existing).Error; err != nil {
		return nil, err
	}

	var missing []model.TaskAssignment
	for _, uid := range userIDs {
		if !slices.ContainsFunc(existing, func(a model.TaskAssignment) bool { return a.UserID == uid }) {
			missing = append(missing, model.TaskAssignment{TaskID: taskID, UserID: uid})
		}
	}
	if len(missing) > 0 {
		if err := tx.Create(&missing).Error; err != nil {
			return nil, err
		}
	}
	return append(existing, missing...), nil
}

func dedupe(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// UsersOfTasks returns the assignees of every given task in one query.
func (r *TaskAssignmentRepository) UsersOfTasks(ctx context.Context, taskIDs []uint) ([]model.AssignedUser, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	var users []model.AssignedUser
	err := r.db.WithContext(ctx).
		Model(&model.TaskAssignment{}).
		Select("task_assignments.id AS assignment_id, task_assignments.task_id, users.id AS user_id, users.username, users.email, users.discord_id").
		Joins("JOIN users ON users.id = task_assignments.user_id").
		Where("task_assignments.task_id IN ?", taskIDs).
		Order("task_assignments.id ASC").
		Scan(&users).Error
	return users, err
}

func (r *TaskAssignmentRepository) UsersOfTask(ctx context.Context, taskID uint) ([]model.AssignedUser, error) {
	return r.UsersOfTasks(ctx, []uint{taskID})
}
