package handler

import (
	"fmt"
	"net/http"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/tz"

	"github.com/gin-gonic/gin"
)

type MeetingHandler struct {
	meetings MeetingStore
	pipeline MeetingPipeline
	zone     *tz.Zone
}

func NewMeetingHandler(meetings MeetingStore, pipeline MeetingPipeline, zone *tz.Zone) *MeetingHandler {
	return &MeetingHandler{meetings: meetings, pipeline: pipeline, zone: zone}
}

type MeetingRequest struct {
	MeetingDate       *string `json:"meeting_date"`
	MeetingName       *string `json:"meeting_name"`
	RecordingFileLink *string `json:"recording_file_link"`
	AutoCaption       *string `json:"auto_caption"`
	Summary           *string `json:"summary"`
	PortfolioID       *uint   `json:"portfolio_id"`
	UserCanSee        *bool   `json:"user_can_see"`
}

func (h *MeetingHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req MeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if req.MeetingName == nil || strings.TrimSpace(*req.MeetingName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meeting_name is required", "field": "meeting_name"})
		return
	}
	if req.MeetingDate == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meeting_date is required", "field": "meeting_date"})
		return
	}
	date, err := parseInstant(h.zone, *req.MeetingDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meeting_date", "field": "meeting_date"})
		return
	}

	portfolioID := req.PortfolioID
	if portfolioID == nil {
		portfolioID = actor.PortfolioID
	}
	if portfolioID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "portfolio_id is required", "field": "portfolio_id"})
		return
	}

	m := &model.MeetingRecord{
		MeetingDate:       date,
		MeetingName:       strings.TrimSpace(*req.MeetingName),
		RecordingFileLink: req.RecordingFileLink,
		AutoCaption:       req.AutoCaption,
		Summary:           req.Summary,
		PortfolioID:       *portfolioID,
		UserCanSee:        req.UserCanSee == nil || *req.UserCanSee,
	}
	if err := h.meetings.Create(c.Request.Context(), m); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newMeetingResponse(h.zone, m))
}

// Get отдает встречу, только если она видна текущему пользователю
func (h *MeetingHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	m, err := h.meetings.GetVisible(c.Request.Context(), id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMeetingResponse(h.zone, m))
}

func (h *MeetingHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	var f repository.MeetingFilter
	if f.PortfolioID, ok = optionalUintQuery(c, "portfolio_id"); !ok {
		return
	}
	if f.From, ok = optionalInstantQuery(c, h.zone, "from"); !ok {
		return
	}
	if f.Before, ok = optionalInstantQuery(c, h.zone, "before"); !ok {
		return
	}
	if f.HasRecording, ok = optionalBoolQuery(c, "has_recording"); !ok {
		return
	}
	if f.HasSummary, ok = optionalBoolQuery(c, "has_summary"); !ok {
		return
	}

	ms, err := h.meetings.List(c.Request.Context(), actor, f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(ms, func(m *model.MeetingRecord) MeetingResponse {
		return newMeetingResponse(h.zone, m)
	}))
}

func (h *MeetingHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req MeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if _, err := h.meetings.GetVisible(c.Request.Context(), id, actor); err != nil {
		respondError(c, err)
		return
	}

	in := repository.MeetingUpdate{
		MeetingName:       req.MeetingName,
		RecordingFileLink: req.RecordingFileLink,
		AutoCaption:       req.AutoCaption,
		Summary:           req.Summary,
		PortfolioID:       req.PortfolioID,
		UserCanSee:        req.UserCanSee,
	}
	if req.MeetingDate != nil {
		date, err := parseInstant(h.zone, *req.MeetingDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meeting_date", "field": "meeting_date"})
			return
		}
		in.MeetingDate = &date
	}

	m, err := h.meetings.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMeetingResponse(h.zone, m))
}

func (h *MeetingHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.meetings.GetVisible(c.Request.Context(), id, actor); err != nil {
		respondError(c, err)
		return
	}
	deleted, err := h.meetings.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meeting record not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meeting record deleted successfully"})
}

// GenerateTasks извлекает задачи из расшифровки встречи
func (h *MeetingHandler) GenerateTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.pipeline.GenerateTasks(c.Request.Context(), id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TaskGroupResponse{
		TaskGroupResult: *result,
		Message:         fmt.Sprintf("Created %d tasks from meeting %d", result.TotalCreated, id),
	})
}

func (h *MeetingHandler) Summarize(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.pipeline.Summarize(c.Request.Context(), id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meeting_id": id, "summary": summary})
}
