package handler

import (
	"net/http"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type PortfolioHandler struct {
	portfolios PortfolioStore
}

func NewPortfolioHandler(portfolios PortfolioStore) *PortfolioHandler {
	return &PortfolioHandler{portfolios: portfolios}
}

type PortfolioRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ChannelID   *string `json:"channel_id"`
}

func (h *PortfolioHandler) Create(c *gin.Context) {
	var req PortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required", "field": "name"})
		return
	}

	p := &model.Portfolio{Name: strings.TrimSpace(*req.Name), ChannelID: req.ChannelID}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if err := h.portfolios.Create(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPortfolioResponse(p))
}

func (h *PortfolioHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.portfolios.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPortfolioResponse(p))
}

// ByChannel находит портфель, привязанный к каналу чата
func (h *PortfolioHandler) ByChannel(c *gin.Context) {
	p, err := h.portfolios.GetByChannel(c.Request.Context(), c.Param("channel_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPortfolioResponse(p))
}

func (h *PortfolioHandler) List(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	ps, err := h.portfolios.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(ps, newPortfolioResponse))
}

func (h *PortfolioHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req PortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name cannot be empty", "field": "name"})
			return
		}
		req.Name = &name
	}

	p, err := h.portfolios.Update(c.Request.Context(), id, repository.PortfolioUpdate{
		Name:        req.Name,
		Description: req.Description,
		ChannelID:   req.ChannelID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPortfolioResponse(p))
}

// Delete отказывает, пока на портфель ссылаются пользователи, задачи или встречи
func (h *PortfolioHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deleted, err := h.portfolios.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Portfolio deleted successfully"})
}

func (h *PortfolioHandler) Statistics(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	stats, err := h.portfolios.Statistics(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
