package handler

import (
	"time"

	"taskboard/internal/model"
	"taskboard/internal/tz"
)

type UserResponse struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	RoleID      uint      `json:"role_id"`
	RoleName    string    `json:"role_name,omitempty"`
	PortfolioID *uint     `json:"portfolio_id"`
	DiscordID   *string   `json:"discord_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		RoleID:      u.RoleID,
		RoleName:    u.Role.RoleName,
		PortfolioID: u.PortfolioID,
		DiscordID:   u.DiscordID,
		CreatedAt:   u.CreatedAt,
	}
}

type TaskResponse struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Status          model.TaskStatus   `json:"status"`
	Priority        model.TaskPriority `json:"priority"`
	Deadline        time.Time          `json:"deadline"`
	DeadlineLocal   string             `json:"deadline_local"`
	PortfolioID     uint               `json:"portfolio_id"`
	ParentTaskID    *uint              `json:"parent_task_id"`
	SourceMeetingID *uint              `json:"source_meeting_id"`
	CreatedBy       uint               `json:"created_by"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`

	PortfolioName   string         `json:"portfolio_name,omitempty"`
	CreatorUsername string         `json:"creator_username,omitempty"`
	CreatorEmail    string         `json:"creator_email,omitempty"`
	Subtasks        []TaskResponse `json:"subtasks,omitempty"`
}

func newTaskResponse(zone *tz.Zone, t *model.Task) TaskResponse {
	return TaskResponse{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Status:          t.Status,
		Priority:        t.Priority,
		Deadline:        t.Deadline.UTC(),
		DeadlineLocal:   zone.Format(t.Deadline, time.RFC3339),
		PortfolioID:     t.PortfolioID,
		ParentTaskID:    t.ParentTaskID,
		SourceMeetingID: t.SourceMeetingID,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func newTaskDetailResponse(zone *tz.Zone, d *model.TaskDetail) TaskResponse {
	r := newTaskResponse(zone, &d.Task)
	r.PortfolioName = d.PortfolioName
	r.CreatorUsername = d.CreatorUsername
	r.CreatorEmail = d.CreatorEmail
	return r
}

func newTaskDetailList(zone *tz.Zone, ds []model.TaskDetail) []TaskResponse {
	out := make([]TaskResponse, 0, len(ds))
	for i := range ds {
		out = append(out, newTaskDetailResponse(zone, &ds[i]))
	}
	return out
}

func newTaskTree(zone *tz.Zone, n *model.TaskNode) TaskResponse {
	r := newTaskResponse(zone, &n.Task)
	for _, c := range n.Children {
		r.Subtasks = append(r.Subtasks, newTaskTree(zone, c))
	}
	return r
}

type PortfolioResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ChannelID   *string `json:"channel_id"`
}

func newPortfolioResponse(p *model.Portfolio) PortfolioResponse {
	return PortfolioResponse{ID: p.ID, Name: p.Name, Description: p.Description, ChannelID: p.ChannelID}
}

type RoleResponse struct {
	ID          uint   `json:"id"`
	RoleName    string `json:"role_name"`
	Description string `json:"description"`
}

func newRoleResponse(r *model.Role) RoleResponse {
	return RoleResponse{ID: r.ID, RoleName: r.RoleName, Description: r.Description}
}

type MeetingResponse struct {
	ID                uint      `json:"id"`
	MeetingDate       time.Time `json:"meeting_date"`
	MeetingDateLocal  string    `json:"meeting_date_local"`
	MeetingName       string    `json:"meeting_name"`
	RecordingFileLink *string   `json:"recording_file_link"`
	AutoCaption       *string   `json:"auto_caption"`
	Summary           *string   `json:"summary"`
	PortfolioID       uint      `json:"portfolio_id"`
	UserCanSee        bool      `json:"user_can_see"`
}

func newMeetingResponse(zone *tz.Zone, m *model.MeetingRecord) MeetingResponse {
	return MeetingResponse{
		ID:                m.ID,
		MeetingDate:       m.MeetingDate.UTC(),
		MeetingDateLocal:  zone.Format(m.MeetingDate, time.RFC3339),
		MeetingName:       m.MeetingName,
		RecordingFileLink: m.RecordingFileLink,
		AutoCaption:       m.AutoCaption,
		Summary:           m.Summary,
		PortfolioID:       m.PortfolioID,
		UserCanSee:        m.UserCanSee,
	}
}

type AssignmentResponse struct {
	ID     uint `json:"id"`
	TaskID uint `json:"task_id"`
	UserID uint `json:"user_id"`
}

func newAssignmentResponse(a *model.TaskAssignment) AssignmentResponse {
	return AssignmentResponse{ID: a.ID, TaskID: a.TaskID, UserID: a.UserID}
}

func mapSlice[T, R any](in []T, f func(*T) R) []R {
	out := make([]R, 0, len(in))
	for i := range in {
		out = append(out, f(&in[i]))
	}
	return out
}
