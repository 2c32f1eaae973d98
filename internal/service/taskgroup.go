package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/model"
	"taskboard/internal/tz"

	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"
)

// TaskGroupRequest is a forest of drafts plus the defaults applied to every
// node created from it.
type TaskGroupRequest struct {
	Tasks           []model.TaskDraft
	PortfolioID     *uint
	SourceMeetingID *uint
	CreatedBy       uint
}

type TaskGroupResult struct {
	CreatedTaskIDs []uint `json:"created_task_ids"`
	TotalCreated   int    `json:"total_created"`
	TotalNodes     int    `json:"total_nodes"`
}

// TaskGroupService materializes nested drafts as task rows.
//
// All trees share one transaction. Each top-level tree gets its own savepoint,
// so a failure anywhere inside a tree removes that whole tree and leaves the
// others in place.
type TaskGroupService struct {
	db      *gorm.DB
	zone    *tz.Zone
	project config.ProjectConfig
	log     *slog.Logger
}

func NewTaskGroupService(db *gorm.DB, zone *tz.Zone, project config.ProjectConfig, log *slog.Logger) *TaskGroupService {
	return &TaskGroupService{db: db, zone: zone, project: project, log: log}
}

func (s *TaskGroupService) Create(ctx context.Context, req TaskGroupRequest) (*TaskGroupResult, error) {
	portfolio := s.project.FallbackPortfolio
	if req.PortfolioID != nil {
		portfolio = *req.PortfolioID
	}

	result := &TaskGroupResult{CreatedTaskIDs: []uint{}}
	if model.CountTitled(req.Tasks) == 0 {
		return result, nil
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin task group: %w", tx.Error)
	}

	var failures *multierror.Error
	for i, draft := range req.Tasks {
		if draft.Title == "" {
			continue
		}

		savepoint := fmt.Sprintf("task_tree_%d", i)
		if err := tx.SavePoint(savepoint).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("savepoint %s: %w", savepoint, err)
		}

		rootID, nodes, err := s.insertTree(tx, draft, nil, portfolio, req)
		if err != nil {
			if rbErr := tx.RollbackTo(savepoint).Error; rbErr != nil {
				tx.Rollback()
				return nil, fmt.Errorf("rollback to %s: %w", savepoint, rbErr)
			}
			failures = multierror.Append(failures, fmt.Errorf("tree %d %q: %w", i, draft.Title, err))
			continue
		}

		result.CreatedTaskIDs = append(result.CreatedTaskIDs, rootID)
		result.TotalNodes += nodes
	}

	if err := failures.ErrorOrNil(); err != nil {
		s.log.Warn("some task trees were not created",
			"failed", failures.Len(),
			"created", len(result.CreatedTaskIDs),
			"error", err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("commit task group: %w", err)
	}

	result.TotalCreated = len(result.CreatedTaskIDs)
	s.log.Info("task group created",
		"roots", result.TotalCreated,
		"nodes", result.TotalNodes,
		"created_by", req.CreatedBy)
	return result, nil
}

// insertTree writes draft and its titled descendants, parents first.
func (s *TaskGroupService) insertTree(tx *gorm.DB, draft model.TaskDraft, parentID *uint, portfolio uint, req TaskGroupRequest) (uint, int, error) {
	if draft.PortfolioID != nil {
		portfolio = *draft.PortfolioID
	}

	deadline, err := s.deadline(draft.Deadline)
	if err != nil {
		return 0, 0, err
	}

	task := &model.Task{
		Title:           draft.Title,
		Description:     draft.Description,
		Status:          model.StatusPending,
		Priority:        draft.PriorityOrDefault(),
		Deadline:        deadline,
		PortfolioID:     portfolio,
		ParentTaskID:    parentID,
		SourceMeetingID: req.SourceMeetingID,
		CreatedBy:       req.CreatedBy,
	}
	if err := tx.Create(task).Error; err != nil {
		return 0, 0, fmt.Errorf("insert %q: %w", draft.Title, err)
	}

	nodes := 1
	for _, child := range draft.Subtasks {
		if child.Title == "" {
			continue
		}
		_, n, err := s.insertTree(tx, child, &task.ID, portfolio, req)
		if err != nil {
			return 0, 0, err
		}
		nodes += n
	}
	return task.ID, nodes, nil
}

func (s *TaskGroupService) deadline(d model.DraftDeadline) (time.Time, error) {
	if d.At != nil {
		return s.zone.ToUTC(*d.At), nil
	}
	return s.zone.ParseDeadline(d.Date, s.project.FallbackDeadline)
}
