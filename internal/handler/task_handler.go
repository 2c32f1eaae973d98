package handler

import (
	"fmt"
	"net/http"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/tz"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	tasks     TaskStore
	groups    TaskGroupBuilder
	reminders ReminderSource
	zone      *tz.Zone
}

func NewTaskHandler(tasks TaskStore, groups TaskGroupBuilder, reminders ReminderSource, zone *tz.Zone) *TaskHandler {
	return &TaskHandler{tasks: tasks, groups: groups, reminders: reminders, zone: zone}
}

type CreateTaskRequest struct {
	Title           string             `json:"title" binding:"required"`
	Description     string             `json:"description"`
	Status          model.TaskStatus   `json:"status"`
	Priority        model.TaskPriority `json:"priority"`
	Deadline        string             `json:"deadline" binding:"required"`
	PortfolioID     uint               `json:"portfolio_id" binding:"required"`
	ParentTaskID    *uint              `json:"parent_task_id"`
	SourceMeetingID *uint              `json:"source_meeting_id"`
}

type UpdateTaskRequest struct {
	Title           *string             `json:"title"`
	Description     *string             `json:"description"`
	Status          *model.TaskStatus   `json:"status"`
	Priority        *model.TaskPriority `json:"priority"`
	Deadline        *string             `json:"deadline"`
	PortfolioID     *uint               `json:"portfolio_id"`
	ParentTaskID    *uint               `json:"parent_task_id"`
	ClearParent     bool                `json:"clear_parent"`
	SourceMeetingID *uint               `json:"source_meeting_id"`
}

type TaskGroupRequest struct {
	Tasks           []model.TaskDraft `json:"tasks" binding:"required"`
	PortfolioID     *uint             `json:"portfolio_id"`
	SourceMeetingID *uint             `json:"source_meeting_id"`
}

type TaskGroupResponse struct {
	service.TaskGroupResult
	Message string `json:"message"`
}

type RemindersResponse struct {
	Tasks      []service.ReminderEntry `json:"tasks"`
	TotalCount int                     `json:"total_count"`
}

// Create создает одну задачу
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required", "field": "title"})
		return
	}

	if req.Status == "" {
		req.Status = model.StatusNotStarted
	}
	if req.Priority == "" {
		req.Priority = model.PriorityMedium
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "field": "status"})
		return
	}
	if !req.Priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority", "field": "priority"})
		return
	}

	deadline, err := parseInstant(h.zone, req.Deadline)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline", "field": "deadline"})
		return
	}

	task := &model.Task{
		Title:           req.Title,
		Description:     req.Description,
		Status:          req.Status,
		Priority:        req.Priority,
		Deadline:        deadline,
		PortfolioID:     req.PortfolioID,
		ParentTaskID:    req.ParentTaskID,
		SourceMeetingID: req.SourceMeetingID,
		CreatedBy:       userID,
	}
	if err := h.tasks.Create(c.Request.Context(), task); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(h.zone, task))
}

// Get возвращает задачу вместе с прямыми подзадачами
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.tasks.GetDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	subtasks, err := h.tasks.Subtasks(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := newTaskDetailResponse(h.zone, detail)
	resp.Subtasks = newTaskDetailList(h.zone, subtasks)
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) List(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	var f repository.TaskFilter
	if f.PortfolioID, ok = optionalUintQuery(c, "portfolio_id"); !ok {
		return
	}
	if f.ParentTaskID, ok = optionalUintQuery(c, "parent_task_id"); !ok {
		return
	}
	if f.CreatedBy, ok = optionalUintQuery(c, "created_by"); !ok {
		return
	}
	if f.DeadlineFrom, ok = optionalInstantQuery(c, h.zone, "deadline_from"); !ok {
		return
	}
	if f.DeadlineBefore, ok = optionalInstantQuery(c, h.zone, "deadline_before"); !ok {
		return
	}
	f.Status = model.TaskStatus(c.Query("status"))
	if f.Status != "" && !f.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	f.Priority = model.TaskPriority(c.Query("priority"))
	if f.Priority != "" && !f.Priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}
	f.RootsOnly = c.Query("roots_only") == "true"

	tasks, err := h.tasks.List(c.Request.Context(), f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskDetailList(h.zone, tasks))
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	in := repository.TaskUpdate{
		Description:     req.Description,
		PortfolioID:     req.PortfolioID,
		ParentTaskID:    req.ParentTaskID,
		ClearParent:     req.ClearParent,
		SourceMeetingID: req.SourceMeetingID,
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title cannot be empty", "field": "title"})
			return
		}
		in.Title = &title
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "field": "status"})
			return
		}
		in.Status = req.Status
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority", "field": "priority"})
			return
		}
		in.Priority = req.Priority
	}
	if req.Deadline != nil {
		deadline, err := parseInstant(h.zone, *req.Deadline)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline", "field": "deadline"})
			return
		}
		in.Deadline = &deadline
	}
	if in.ParentTaskID != nil && *in.ParentTaskID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A task cannot be its own parent", "field": "parent_task_id"})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(h.zone, task))
}

// Delete удаляет задачу, подзадачи удаляются каскадно
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	deleted, err := h.tasks.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (h *TaskHandler) Subtasks(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tasks, err := h.tasks.Subtasks(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskDetailList(h.zone, tasks))
}

// Tree возвращает задачу со всеми потомками
func (h *TaskHandler) Tree(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	root, err := h.tasks.Tree(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskTree(h.zone, root))
}

func (h *TaskHandler) ByMeeting(c *gin.Context) {
	h.byMeeting(c, false)
}

func (h *TaskHandler) PendingByMeeting(c *gin.Context) {
	h.byMeeting(c, true)
}

func (h *TaskHandler) byMeeting(c *gin.Context, pendingOnly bool) {
	id, ok := idParam(c, "meeting_id")
	if !ok {
		return
	}
	tasks, err := h.tasks.ByMeeting(c.Request.Context(), id, pendingOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskDetailList(h.zone, tasks))
}

func (h *TaskHandler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}
	portfolioID, ok := optionalUintQuery(c, "portfolio_id")
	if !ok {
		return
	}
	tasks, err := h.tasks.Search(c.Request.Context(), term, portfolioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskDetailList(h.zone, tasks))
}

// CreateGroup создает вложенные задачи со статусом Pending
func (h *TaskHandler) CreateGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req TaskGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	result, err := h.groups.Create(c.Request.Context(), service.TaskGroupRequest{
		Tasks:           req.Tasks,
		PortfolioID:     req.PortfolioID,
		SourceMeetingID: req.SourceMeetingID,
		CreatedBy:       userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if result.TotalCreated == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No tasks were created. Please check your input data."})
		return
	}

	c.JSON(http.StatusOK, TaskGroupResponse{
		TaskGroupResult: *result,
		Message:         fmt.Sprintf("Successfully created %d tasks with hierarchical structure", result.TotalCreated),
	})
}

// RemindersTomorrow отдает открытые задачи со сроком на завтра по местному времени
func (h *TaskHandler) RemindersTomorrow(c *gin.Context) {
	portfolioID, ok := optionalUintQuery(c, "portfolio_id")
	if !ok {
		return
	}
	entries, err := h.reminders.Tomorrow(c.Request.Context(), portfolioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, RemindersResponse{Tasks: entries, TotalCount: len(entries)})
}
