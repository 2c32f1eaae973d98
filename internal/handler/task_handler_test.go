package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"taskboard/internal/handler"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/tz"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sydneyZone(t *testing.T) *tz.Zone {
	t.Helper()
	z, err := tz.New("Australia/Sydney", tz.WithClock(func() time.Time {
		return time.Date(2025, 6, 9, 2, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return z
}

type taskDeps struct {
	tasks     *MockTaskStore
	groups    *MockTaskGroupBuilder
	reminders *MockReminderSource
}

func setupTaskTest(t *testing.T) (*gin.Engine, taskDeps) {
	gin.SetMode(gin.TestMode)
	d := taskDeps{new(MockTaskStore), new(MockTaskGroupBuilder), new(MockReminderSource)}
	h := handler.NewTaskHandler(d.tasks, d.groups, d.reminders, sydneyZone(t))

	r := gin.New()
	g := r.Group("/tasks", asUser(7, model.RoleNameUser, nil))
	g.POST("", h.Create)
	g.POST("/group", h.CreateGroup)
	g.GET("/reminders/tomorrow", h.RemindersTomorrow)
	g.GET("/:id", h.Get)
	g.GET("/:id/tree", h.Tree)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return r, d
}

func TestCreateTask_LocalDeadline(t *testing.T) {
	router, d := setupTaskTest(t)

	// Дата без времени означает конец местного дня
	want := time.Date(2025, 6, 10, 13, 59, 59, 0, time.UTC)
	d.tasks.On("Create", mock.Anything, mock.MatchedBy(func(task *model.Task) bool {
		return task.Deadline.Equal(want) &&
			task.Status == model.StatusNotStarted &&
			task.Priority == model.PriorityMedium &&
			task.CreatedBy == 7
	})).Run(func(args mock.Arguments) { args.Get(1).(*model.Task).ID = 40 }).Return(nil)

	resp := doJSON(router, "POST", "/tasks", map[string]any{
		"title":        "Prepare release notes",
		"deadline":     "2025-06-10",
		"portfolio_id": 2,
	})

	require.Equal(t, http.StatusCreated, resp.Code)
	var body handler.TaskResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, uint(40), body.ID)
	assert.Equal(t, "2025-06-10T23:59:59+10:00", body.DeadlineLocal)
	d.tasks.AssertExpectations(t)
}

func TestCreateTask_InvalidDeadline(t *testing.T) {
	router, d := setupTaskTest(t)

	resp := doJSON(router, "POST", "/tasks", map[string]any{
		"title":        "Prepare release notes",
		"deadline":     "next week",
		"portfolio_id": 2,
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "deadline", errorBody(t, resp)["field"])
	d.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTask_MissingParent(t *testing.T) {
	router, d := setupTaskTest(t)

	d.tasks.On("Create", mock.Anything, mock.Anything).
		Return(&repository.ConflictError{Field: "parent_task_id", Value: uint(99), Reason: "parent task does not exist"})

	resp := doJSON(router, "POST", "/tasks", map[string]any{
		"title":          "Child",
		"deadline":       "2025-06-10T09:00:00Z",
		"portfolio_id":   2,
		"parent_task_id": 99,
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "parent_task_id", errorBody(t, resp)["field"])
}

func TestGetTask_WithSubtasks(t *testing.T) {
	router, d := setupTaskTest(t)

	parent := uint(1)
	d.tasks.On("GetDetail", mock.Anything, uint(1)).
		Return(&model.TaskDetail{Task: model.Task{ID: 1, Title: "Root"}, PortfolioName: "Web"}, nil)
	d.tasks.On("Subtasks", mock.Anything, uint(1)).
		Return([]model.TaskDetail{{Task: model.Task{ID: 2, Title: "Child", ParentTaskID: &parent}}}, nil)

	resp := doJSON(router, "GET", "/tasks/1", nil)

	require.Equal(t, http.StatusOK, resp.Code)
	var body handler.TaskResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Web", body.PortfolioName)
	require.Len(t, body.Subtasks, 1)
	assert.Equal(t, uint(2), body.Subtasks[0].ID)
}

func TestGetTask_NotFound(t *testing.T) {
	router, d := setupTaskTest(t)

	d.tasks.On("GetDetail", mock.Anything, uint(5)).Return(nil, repository.ErrTaskNotFound)

	resp := doJSON(router, "GET", "/tasks/5", nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Task not found", errorBody(t, resp)["error"])
}

func TestGetTask_BadID(t *testing.T) {
	router, _ := setupTaskTest(t)

	resp := doJSON(router, "GET", "/tasks/abc", nil)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTaskTree(t *testing.T) {
	router, d := setupTaskTest(t)

	root := &model.TaskNode{
		Task: model.Task{ID: 1, Title: "Root"},
		Children: []*model.TaskNode{
			{Task: model.Task{ID: 2}, Children: []*model.TaskNode{{Task: model.Task{ID: 3}}}},
		},
	}
	d.tasks.On("Tree", mock.Anything, uint(1)).Return(root, nil)

	resp := doJSON(router, "GET", "/tasks/1/tree", nil)

	require.Equal(t, http.StatusOK, resp.Code)
	var body handler.TaskResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Subtasks, 1)
	require.Len(t, body.Subtasks[0].Subtasks, 1)
	assert.Equal(t, uint(3), body.Subtasks[0].Subtasks[0].ID)
}

func TestUpdateTask_OwnParent(t *testing.T) {
	router, d := setupTaskTest(t)

	resp := doJSON(router, "PUT", "/tasks/3", map[string]any{"parent_task_id": 3})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	d.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateTask_InvalidStatus(t *testing.T) {
	router, _ := setupTaskTest(t)

	resp := doJSON(router, "PUT", "/tasks/3", map[string]any{"status": "Done"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "status", errorBody(t, resp)["field"])
}

func TestDeleteTask_NotFound(t *testing.T) {
	router, d := setupTaskTest(t)

	d.tasks.On("Delete", mock.Anything, uint(8)).Return(false, nil)

	resp := doJSON(router, "DELETE", "/tasks/8", nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateGroup_Success(t *testing.T) {
	router, d := setupTaskTest(t)

	d.groups.On("Create", mock.Anything, mock.MatchedBy(func(req service.TaskGroupRequest) bool {
		return req.CreatedBy == 7 &&
			len(req.Tasks) == 2 &&
			len(req.Tasks[0].Subtasks) == 1 &&
			req.PortfolioID == nil
	})).Return(&service.TaskGroupResult{CreatedTaskIDs: []uint{10, 11, 12}, TotalCreated: 3, TotalNodes: 3}, nil)

	resp := doJSON(router, "POST", "/tasks/group", map[string]any{
		"tasks": []any{
			map[string]any{"title": "A", "subtasks": []any{map[string]any{"title": "A.1"}}},
			map[string]any{"title": "B", "deadline": "2025-06-20"},
		},
	})

	require.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		CreatedTaskIDs []uint `json:"created_task_ids"`
		TotalCreated   int    `json:"total_created"`
		TotalNodes     int    `json:"total_nodes"`
		Message        string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, []uint{10, 11, 12}, body.CreatedTaskIDs)
	assert.Equal(t, 3, body.TotalCreated)
	assert.Equal(t, 3, body.TotalNodes)
	assert.Equal(t, "Successfully created 3 tasks with hierarchical structure", body.Message)
	d.groups.AssertExpectations(t)
}

func TestCreateGroup_NothingCreated(t *testing.T) {
	router, d := setupTaskTest(t)

	d.groups.On("Create", mock.Anything, mock.Anything).
		Return(&service.TaskGroupResult{CreatedTaskIDs: []uint{}}, nil)

	resp := doJSON(router, "POST", "/tasks/group", map[string]any{
		"tasks": []any{map[string]any{"title": ""}},
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, errorBody(t, resp)["error"], "No tasks were created")
}

func TestCreateGroup_StorageFailure(t *testing.T) {
	router, d := setupTaskTest(t)

	d.groups.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("commit failed"))

	resp := doJSON(router, "POST", "/tasks/group", map[string]any{
		"tasks": []any{map[string]any{"title": "A"}},
	})

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestRemindersTomorrow(t *testing.T) {
	router, d := setupTaskTest(t)

	portfolio := uint(3)
	channel := "555"
	d.reminders.On("Tomorrow", mock.Anything, &portfolio).Return([]service.ReminderEntry{
		{TaskID: 1, Title: "Ship", PortfolioID: 3, PortfolioChannel: &channel, AssignedUsers: []model.AssignedUser{}},
		{TaskID: 2, Title: "Test", PortfolioID: 3, PortfolioChannel: &channel, AssignedUsers: []model.AssignedUser{}},
	}, nil)

	resp := doJSON(router, "GET", "/tasks/reminders/tomorrow?portfolio_id=3", nil)

	require.Equal(t, http.StatusOK, resp.Code)
	var body handler.RemindersResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 2, body.TotalCount)
	assert.Equal(t, uint(1), body.Tasks[0].TaskID)
	d.reminders.AssertExpectations(t)
}

func TestRemindersTomorrow_BadPortfolio(t *testing.T) {
	router, d := setupTaskTest(t)

	resp := doJSON(router, "GET", "/tasks/reminders/tomorrow?portfolio_id=x", nil)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	d.reminders.AssertNotCalled(t, "Tomorrow", mock.Anything, mock.Anything)
}
