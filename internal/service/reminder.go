package service

import (
	"context"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/tz"
)

// DueTaskFinder selects open tasks inside a deadline range.
type DueTaskFinder interface {
	DueBetween(ctx context.Context, from, to time.Time, statuses []model.TaskStatus, portfolioID *uint) ([]repository.DueTask, error)
}

// AssigneeFinder loads the assignees of many tasks at once.
type AssigneeFinder interface {
	UsersOfTasks(ctx context.Context, taskIDs []uint) ([]model.AssignedUser, error)
}

// ReminderEntry is one task due in the reminder window, ready to be posted.
type ReminderEntry struct {
	TaskID            uint                 `json:"task_id"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	Priority          model.TaskPriority   `json:"priority"`
	Status            model.TaskStatus     `json:"status"`
	Deadline          time.Time            `json:"deadline"`
	DeadlineLocal     string               `json:"deadline_local"`
	DeadlineLocalDate string               `json:"deadline_local_date"`
	DeadlineLocalTime string               `json:"deadline_local_time"`
	PortfolioID       uint                 `json:"portfolio_id"`
	PortfolioName     string               `json:"portfolio_name"`
	PortfolioChannel  *string              `json:"portfolio_channel"`
	AssignedUsers     []model.AssignedUser `json:"assigned_users"`
}

type ReminderService struct {
	tasks     DueTaskFinder
	assignees AssigneeFinder
	zone      *tz.Zone
}

func NewReminderService(tasks DueTaskFinder, assignees AssigneeFinder, zone *tz.Zone) *ReminderService {
	return &ReminderService{tasks: tasks, assignees: assignees, zone: zone}
}

// Window is the range Tomorrow currently queries.
func (s *ReminderService) Window() tz.Window {
	return s.zone.TomorrowWindow()
}

// Tomorrow lists the open tasks due on the next project-local calendar day,
// highest priority first, then earliest deadline.
func (s *ReminderService) Tomorrow(ctx context.Context, portfolioID *uint) ([]ReminderEntry, error) {
	w := s.Window()

	due, err := s.tasks.DueBetween(ctx, w.Start, w.End, model.OpenStatuses, portfolioID)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return []ReminderEntry{}, nil
	}

	ids := make([]uint, len(due))
	for i := range due {
		ids[i] = due[i].ID
	}
	users, err := s.assignees.UsersOfTasks(ctx, ids)
	if err != nil {
		return nil, err
	}
	byTask := make(map[uint][]model.AssignedUser, len(due))
	for _, u := range users {
		byTask[u.TaskID] = append(byTask[u.TaskID], u)
	}

	entries := make([]ReminderEntry, 0, len(due))
	for _, t := range due {
		assigned := byTask[t.ID]
		if assigned == nil {
			assigned = []model.AssignedUser{}
		}
		entries = append(entries, ReminderEntry{
			TaskID:            t.ID,
			Title:             t.Title,
			Description:       t.Description,
			Priority:          t.Priority,
			Status:            t.Status,
			Deadline:          t.Deadline.UTC(),
			DeadlineLocal:     s.zone.Format(t.Deadline, tz.DateTimeLayout),
			DeadlineLocalDate: s.zone.Format(t.Deadline, tz.DateLayout),
			DeadlineLocalTime: s.zone.Format(t.Deadline, tz.TimeLayout),
			PortfolioID:       t.PortfolioID,
			PortfolioName:     t.PortfolioName,
			PortfolioChannel:  t.PortfolioChannel,
			AssignedUsers:     assigned,
		})
	}
	return entries, nil
}
