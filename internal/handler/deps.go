package handler

import (
	"context"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

// UserStore is what the user endpoints need from storage.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint) (*model.User, error)
	List(ctx context.Context, page repository.Page) ([]model.User, error)
	Search(ctx context.Context, term string, limit int) ([]model.User, error)
	Update(ctx context.Context, id uint, in repository.UserUpdate) (*model.User, error)
}

type RoleStore interface {
	Create(ctx context.Context, role *model.Role) error
	GetByID(ctx context.Context, id uint) (*model.Role, error)
	GetByName(ctx context.Context, name string) (*model.Role, error)
	List(ctx context.Context, page repository.Page) ([]model.Role, error)
	Update(ctx context.Context, id uint, in repository.RoleUpdate) (*model.Role, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetDetail(ctx context.Context, id uint) (*model.TaskDetail, error)
	List(ctx context.Context, f repository.TaskFilter, page repository.Page) ([]model.TaskDetail, error)
	Subtasks(ctx context.Context, parentID uint) ([]model.TaskDetail, error)
	ByMeeting(ctx context.Context, meetingID uint, pendingOnly bool) ([]model.TaskDetail, error)
	Search(ctx context.Context, term string, portfolioID *uint) ([]model.TaskDetail, error)
	AssignedTo(ctx context.Context, userID uint, page repository.Page) ([]model.TaskDetail, error)
	Tree(ctx context.Context, rootID uint) (*model.TaskNode, error)
	Update(ctx context.Context, id uint, in repository.TaskUpdate) (*model.Task, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

type PortfolioStore interface {
	Create(ctx context.Context, p *model.Portfolio) error
	GetByID(ctx context.Context, id uint) (*model.Portfolio, error)
	GetByChannel(ctx context.Context, channelID string) (*model.Portfolio, error)
	List(ctx context.Context, page repository.Page) ([]model.Portfolio, error)
	Update(ctx context.Context, id uint, in repository.PortfolioUpdate) (*model.Portfolio, error)
	Delete(ctx context.Context, id uint) (bool, error)
	Statistics(ctx context.Context, id uint) (*model.PortfolioStatistics, error)
}

type MeetingStore interface {
	Create(ctx context.Context, m *model.MeetingRecord) error
	GetVisible(ctx context.Context, id uint, actor model.Actor) (*model.MeetingRecord, error)
	List(ctx context.Context, actor model.Actor, f repository.MeetingFilter, page repository.Page) ([]model.MeetingRecord, error)
	Update(ctx context.Context, id uint, in repository.MeetingUpdate) (*model.MeetingRecord, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

type AssignmentStore interface {
	Create(ctx context.Context, taskID, userID uint) (*model.TaskAssignment, bool, error)
	GetByID(ctx context.Context, id uint) (*model.TaskAssignment, error)
	List(ctx context.Context, taskID, userID *uint, page repository.Page) ([]model.TaskAssignment, error)
	Update(ctx context.Context, id uint, taskID, userID *uint) (*model.TaskAssignment, error)
	Delete(ctx context.Context, id uint) (bool, error)
	DeletePair(ctx context.Context, taskID, userID uint) (bool, error)
	DeleteAllForTask(ctx context.Context, taskID uint) (int64, error)
	BulkCreate(ctx context.Context, taskID uint, userIDs []uint) ([]model.TaskAssignment, error)
	ReplaceUsers(ctx context.Context, taskID uint, userIDs []uint) (added, removed int, err error)
	UsersOfTask(ctx context.Context, taskID uint) ([]model.AssignedUser, error)
}

// TaskGroupBuilder turns a forest of drafts into task rows.
type TaskGroupBuilder interface {
	Create(ctx context.Context, req service.TaskGroupRequest) (*service.TaskGroupResult, error)
}

type ReminderSource interface {
	Tomorrow(ctx context.Context, portfolioID *uint) ([]service.ReminderEntry, error)
}

type MeetingPipeline interface {
	GenerateTasks(ctx context.Context, meetingID uint, actor model.Actor) (*service.TaskGroupResult, error)
	Summarize(ctx context.Context, meetingID uint, actor model.Actor) (string, error)
}
