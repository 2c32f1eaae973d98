package handler

import (
	"net/http"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roles RoleStore
}

func NewRoleHandler(roles RoleStore) *RoleHandler {
	return &RoleHandler{roles: roles}
}

type RoleRequest struct {
	RoleName    *string `json:"role_name"`
	Description *string `json:"description"`
}

func (h *RoleHandler) Create(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RoleName == nil || strings.TrimSpace(*req.RoleName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role_name is required", "field": "role_name"})
		return
	}
	role := &model.Role{RoleName: strings.TrimSpace(*req.RoleName)}
	if req.Description != nil {
		role.Description = *req.Description
	}
	if err := h.roles.Create(c.Request.Context(), role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRoleResponse(role))
}

func (h *RoleHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	role, err := h.roles.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRoleResponse(role))
}

func (h *RoleHandler) List(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	roles, err := h.roles.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(roles, newRoleResponse))
}

func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	role, err := h.roles.Update(c.Request.Context(), id, repository.RoleUpdate{
		RoleName:    req.RoleName,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRoleResponse(role))
}

func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deleted, err := h.roles.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role deleted successfully"})
}
