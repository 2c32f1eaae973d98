package handler_test

import (
	"context"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"

	"github.com/stretchr/testify/mock"
)

// Мок репозитория пользователей
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context, page repository.Page) ([]model.User, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserStore) Search(ctx context.Context, term string, limit int) ([]model.User, error) {
	args := m.Called(ctx, term, limit)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, id uint, in repository.UserUpdate) (*model.User, error) {
	args := m.Called(ctx, id, in)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// Мок репозитория ролей
type MockRoleStore struct {
	mock.Mock
}

func (m *MockRoleStore) Create(ctx context.Context, role *model.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *MockRoleStore) GetByID(ctx context.Context, id uint) (*model.Role, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*model.Role), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoleStore) GetByName(ctx context.Context, name string) (*model.Role, error) {
	args := m.Called(ctx, name)
	if r := args.Get(0); r != nil {
		return r.(*model.Role), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoleStore) List(ctx context.Context, page repository.Page) ([]model.Role, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]model.Role), args.Error(1)
}

func (m *MockRoleStore) Update(ctx context.Context, id uint, in repository.RoleUpdate) (*model.Role, error) {
	args := m.Called(ctx, id, in)
	if r := args.Get(0); r != nil {
		return r.(*model.Role), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoleStore) Delete(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// Мок репозитория задач
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) Create(ctx context.Context, task *model.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskStore) GetDetail(ctx context.Context, id uint) (*model.TaskDetail, error) {
	args := m.Called(ctx, id)
	if d := args.Get(0); d != nil {
		return d.(*model.TaskDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskStore) List(ctx context.Context, f repository.TaskFilter, page repository.Page) ([]model.TaskDetail, error) {
	args := m.Called(ctx, f, page)
	return args.Get(0).([]model.TaskDetail), args.Error(1)
}

func (m *MockTaskStore) Subtasks(ctx context.Context, parentID uint) ([]model.TaskDetail, error) {
	args := m.Called(ctx, parentID)
	return args.Get(0).([]model.TaskDetail), args.Error(1)
}

func (m *MockTaskStore) ByMeeting(ctx context.Context, meetingID uint, pendingOnly bool) ([]model.TaskDetail, error) {
	args := m.Called(ctx, meetingID, pendingOnly)
	return args.Get(0).([]model.TaskDetail), args.Error(1)
}

func (m *MockTaskStore) Search(ctx context.Context, term string, portfolioID *uint) ([]model.TaskDetail, error) {
	args := m.Called(ctx, term, portfolioID)
	return args.Get(0).([]model.TaskDetail), args.Error(1)
}

func (m *MockTaskStore) AssignedTo(ctx context.Context, userID uint, page repository.Page) ([]model.TaskDetail, error) {
	args := m.Called(ctx, userID, page)
	return args.Get(0).([]model.TaskDetail), args.Error(1)
}

func (m *MockTaskStore) Tree(ctx context.Context, rootID uint) (*model.TaskNode, error) {
	args := m.Called(ctx, rootID)
	if n := args.Get(0); n != nil {
		return n.(*model.TaskNode), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskStore) Update(ctx context.Context, id uint, in repository.TaskUpdate) (*model.Task, error) {
	args := m.Called(ctx, id, in)
	if t := args.Get(0); t != nil {
		return t.(*model.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskStore) Delete(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockTaskGroupBuilder struct {
	mock.Mock
}

func (m *MockTaskGroupBuilder) Create(ctx context.Context, req service.TaskGroupRequest) (*service.TaskGroupResult, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*service.TaskGroupResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockReminderSource struct {
	mock.Mock
}

func (m *MockReminderSource) Tomorrow(ctx context.Context, portfolioID *uint) ([]service.ReminderEntry, error) {
	args := m.Called(ctx, portfolioID)
	return args.Get(0).([]service.ReminderEntry), args.Error(1)
}

// Мок репозитория портфелей
type MockPortfolioStore struct {
	mock.Mock
}

func (m *MockPortfolioStore) Create(ctx context.Context, p *model.Portfolio) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPortfolioStore) GetByID(ctx context.Context, id uint) (*model.Portfolio, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*model.Portfolio), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPortfolioStore) GetByChannel(ctx context.Context, channelID string) (*model.Portfolio, error) {
	args := m.Called(ctx, channelID)
	if p := args.Get(0); p != nil {
		return p.(*model.Portfolio), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPortfolioStore) List(ctx context.Context, page repository.Page) ([]model.Portfolio, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]model.Portfolio), args.Error(1)
}

func (m *MockPortfolioStore) Update(ctx context.Context, id uint, in repository.PortfolioUpdate) (*model.Portfolio, error) {
	args := m.Called(ctx, id, in)
	if p := args.Get(0); p != nil {
		return p.(*model.Portfolio), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPortfolioStore) Delete(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPortfolioStore) Statistics(ctx context.Context, id uint) (*model.PortfolioStatistics, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*model.PortfolioStatistics), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockMeetingPipeline struct {
	mock.Mock
}

func (m *MockMeetingPipeline) GenerateTasks(ctx context.Context, meetingID uint, actor model.Actor) (*service.TaskGroupResult, error) {
	args := m.Called(ctx, meetingID, actor)
	if r := args.Get(0); r != nil {
		return r.(*service.TaskGroupResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMeetingPipeline) Summarize(ctx context.Context, meetingID uint, actor model.Actor) (string, error) {
	args := m.Called(ctx, meetingID, actor)
	return args.String(0), args.Error(1)
}
