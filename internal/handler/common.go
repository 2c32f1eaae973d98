package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/ai"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/tz"

	"github.com/gin-gonic/gin"
)

var notFoundErrors = []error{
	repository.ErrTaskNotFound,
	repository.ErrPortfolioNotFound,
	repository.ErrRoleNotFound,
	repository.ErrMeetingNotFound,
	repository.ErrAssignmentNotFound,
	repository.ErrUserNotFound,
}

// respondError maps repository and service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	for _, nf := range notFoundErrors {
		if errors.Is(err, nf) {
			c.JSON(http.StatusNotFound, gin.H{"error": capitalize(nf.Error())})
			return
		}
	}

	var ce *repository.ConflictError
	if errors.As(err, &ce) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ce.Error(), "field": ce.Field})
		return
	}
	if errors.Is(err, service.ErrNoTranscript) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Meeting has no transcript"})
		return
	}
	if errors.Is(err, ai.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI assistant is not configured"})
		return
	}

	_ = c.Error(err)
	slog.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func optionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return nil, false
	}
	u := uint(v)
	return &u, true
}

func optionalBoolQuery(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return nil, false
	}
	return &v, true
}

func pageQuery(c *gin.Context) (repository.Page, bool) {
	var p repository.Page
	var err error
	if raw := c.Query("skip"); raw != "" {
		if p.Skip, err = strconv.Atoi(raw); err != nil || p.Skip < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid skip"})
			return p, false
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if p.Limit, err = strconv.Atoi(raw); err != nil || p.Limit < 1 || p.Limit > repository.MaxLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return p, false
		}
	}
	return p, true
}

func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return 0, false
	}
	id, ok := v.(uint)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return 0, false
	}
	return id, true
}

func currentActor(c *gin.Context) (model.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	}
	return actor, ok
}

// parseInstant reads a request timestamp. Values without an offset are
// project-local wall times; a bare date means the end of that local day.
func parseInstant(zone *tz.Zone, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return zone.ToUTC(t), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, zone.Location()); err == nil {
			return zone.ToUTC(t), nil
		}
	}
	return zone.ParseLocalDate(s)
}

func optionalInstantQuery(c *gin.Context, zone *tz.Zone, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := parseInstant(zone, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return nil, false
	}
	return &t, true
}
