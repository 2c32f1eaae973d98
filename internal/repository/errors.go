package repository

import (
	"errors"
	"fmt"
)

// Common repository errors
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrPortfolioNotFound  = errors.New("portfolio not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrMeetingNotFound    = errors.New("meeting record not found")
	ErrAssignmentNotFound = errors.New("task assignment not found")
	ErrUserNotFound       = errors.New("user not found")
)

// ConflictError reports a uniqueness or business-rule violation on one field.
type ConflictError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %v already exists", e.Field, e.Value)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Page is skip/limit pagination.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) normalized() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}
