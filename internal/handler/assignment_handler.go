package handler

import (
	"net/http"

	"taskboard/internal/model"
	"taskboard/internal/tz"

	"github.com/gin-gonic/gin"
)

type AssignmentHandler struct {
	assignments AssignmentStore
	tasks       TaskStore
	zone        *tz.Zone
}

func NewAssignmentHandler(assignments AssignmentStore, tasks TaskStore, zone *tz.Zone) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, tasks: tasks, zone: zone}
}

type AssignmentRequest struct {
	TaskID uint `json:"task_id" binding:"required"`
	UserID uint `json:"user_id" binding:"required"`
}

type AssignmentUpdateRequest struct {
	TaskID *uint `json:"task_id"`
	UserID *uint `json:"user_id"`
}

type BulkAssignmentRequest struct {
	TaskID  uint   `json:"task_id" binding:"required"`
	UserIDs []uint `json:"user_ids"`
}

type TaskUsersRequest struct {
	UserIDs []uint `json:"user_ids"`
}

// Create назначает пользователя на задачу. Повторное назначение возвращает существующую запись
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	a, created, err := h.assignments.Create(c.Request.Context(), req.TaskID, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, newAssignmentResponse(a))
}

func (h *AssignmentHandler) Bulk(c *gin.Context) {
	var req BulkAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if _, err := h.tasks.GetDetail(c.Request.Context(), req.TaskID); err != nil {
		respondError(c, err)
		return
	}

	as, err := h.assignments.BulkCreate(c.Request.Context(), req.TaskID, req.UserIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(as, newAssignmentResponse))
}

func (h *AssignmentHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	a, err := h.assignments.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAssignmentResponse(a))
}

func (h *AssignmentHandler) List(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	taskID, ok := optionalUintQuery(c, "task_id")
	if !ok {
		return
	}
	userID, ok := optionalUintQuery(c, "user_id")
	if !ok {
		return
	}
	as, err := h.assignments.List(c.Request.Context(), taskID, userID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(as, newAssignmentResponse))
}

func (h *AssignmentHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req AssignmentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	a, err := h.assignments.Update(c.Request.Context(), id, req.TaskID, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAssignmentResponse(a))
}

func (h *AssignmentHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deleted, err := h.assignments.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task assignment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task assignment deleted successfully"})
}

func (h *AssignmentHandler) DeletePair(c *gin.Context) {
	taskID, ok := idParam(c, "task_id")
	if !ok {
		return
	}
	userID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	deleted, err := h.assignments.DeletePair(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task assignment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User unassigned from task"})
}

// ClearTask unassigns everybody from a task.
func (h *AssignmentHandler) ClearTask(c *gin.Context) {
	taskID, ok := idParam(c, "task_id")
	if !ok {
		return
	}
	removed, err := h.assignments.DeleteAllForTask(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *AssignmentHandler) TaskUsers(c *gin.Context) {
	taskID, ok := idParam(c, "task_id")
	if !ok {
		return
	}
	users, err := h.assignments.UsersOfTask(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	if users == nil {
		users = []model.AssignedUser{}
	}
	c.JSON(http.StatusOK, users)
}

// ReplaceTaskUsers делает переданный список точным набором исполнителей задачи
func (h *AssignmentHandler) ReplaceTaskUsers(c *gin.Context) {
	taskID, ok := idParam(c, "task_id")
	if !ok {
		return
	}
	var req TaskUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if _, err := h.tasks.GetDetail(c.Request.Context(), taskID); err != nil {
		respondError(c, err)
		return
	}

	added, removed, err := h.assignments.ReplaceUsers(c.Request.Context(), taskID, req.UserIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	users, err := h.assignments.UsersOfTask(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	if users == nil {
		users = []model.AssignedUser{}
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "removed": removed, "users": users})
}

func (h *AssignmentHandler) MyTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	tasks, err := h.tasks.AssignedTo(c.Request.Context(), userID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskDetailList(h.zone, tasks))
}
