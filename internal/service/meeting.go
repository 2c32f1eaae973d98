package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"taskboard/internal/model"
)

var ErrNoTranscript = errors.New("meeting has no transcript")

// MeetingAssistant is the AI collaborator that reads transcripts.
type MeetingAssistant interface {
	ExtractTasks(ctx context.Context, transcript string) ([]model.TaskDraft, error)
	Summarize(ctx context.Context, transcript string) (string, error)
}

// MeetingStore is the part of the meeting repository the pipeline needs.
type MeetingStore interface {
	GetVisible(ctx context.Context, id uint, actor model.Actor) (*model.MeetingRecord, error)
	SetSummary(ctx context.Context, id uint, summary string) error
}

// TaskGroupCreator turns drafts into rows.
type TaskGroupCreator interface {
	Create(ctx context.Context, req TaskGroupRequest) (*TaskGroupResult, error)
}

type MeetingService struct {
	meetings  MeetingStore
	builder   TaskGroupCreator
	assistant MeetingAssistant
	log       *slog.Logger
}

func NewMeetingService(meetings MeetingStore, builder TaskGroupCreator, assistant MeetingAssistant, log *slog.Logger) *MeetingService {
	return &MeetingService{meetings: meetings, builder: builder, assistant: assistant, log: log}
}

func (s *MeetingService) transcript(ctx context.Context, meetingID uint, actor model.Actor) (*model.MeetingRecord, string, error) {
	m, err := s.meetings.GetVisible(ctx, meetingID, actor)
	if err != nil {
		return nil, "", err
	}
	if m.AutoCaption == nil || strings.TrimSpace(*m.AutoCaption) == "" {
		return nil, "", ErrNoTranscript
	}
	return m, *m.AutoCaption, nil
}

// GenerateTasks extracts drafts from the meeting transcript and stores them as
// pending tasks of the meeting's portfolio.
func (s *MeetingService) GenerateTasks(ctx context.Context, meetingID uint, actor model.Actor) (*TaskGroupResult, error) {
	m, text, err := s.transcript(ctx, meetingID, actor)
	if err != nil {
		return nil, err
	}

	drafts, err := s.assistant.ExtractTasks(ctx, text)
	if err != nil {
		return nil, err
	}
	s.log.Info("tasks extracted from meeting",
		"meeting_id", m.ID,
		"drafts", len(drafts),
		"titled", model.CountTitled(drafts))

	return s.builder.Create(ctx, TaskGroupRequest{
		Tasks:           drafts,
		PortfolioID:     &m.PortfolioID,
		SourceMeetingID: &m.ID,
		CreatedBy:       actor.UserID,
	})
}

// Summarize asks the assistant for a summary and stores it on the meeting.
func (s *MeetingService) Summarize(ctx context.Context, meetingID uint, actor model.Actor) (string, error) {
	m, text, err := s.transcript(ctx, meetingID, actor)
	if err != nil {
		return "", err
	}

	summary, err := s.assistant.Summarize(ctx, text)
	if err != nil {
		return "", err
	}
	if err := s.meetings.SetSummary(ctx, m.ID, summary); err != nil {
		return "", err
	}
	return summary, nil
}
