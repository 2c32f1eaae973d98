package notify

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

const (
	reminderColor     = 0xE67E22
	descriptionLimit  = 100
	reminderTitle     = "🔔 Task Reminder"
	reminderFooter    = "Don't forget to complete your tasks on time! 💪"
	nobodyAssigned    = "No one assigned"
	unknownPortfolio  = "Unknown Portfolio"
	untitledTaskTitle = "Untitled Task"
)

// Embed is the subset of a Discord embed the reminders use.
type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []EmbedField `json:"fields"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

var priorityMarks = map[model.TaskPriority]string{
	model.PriorityHigh:   "🔴",
	model.PriorityMedium: "🟡",
	model.PriorityLow:    "🟢",
}

var statusMarks = map[model.TaskStatus]string{
	model.StatusNotStarted: "⏸️",
	model.StatusInProgress: "▶️",
	model.StatusCompleted:  "✅",
	model.StatusPending:    "🕓",
}

// Mentions renders assignees as Discord mentions, falling back to the
// username for people without a linked account.
func Mentions(users []model.AssignedUser) string {
	if len(users) == 0 {
		return nobodyAssigned
	}
	parts := make([]string, 0, len(users))
	for _, u := range users {
		if u.DiscordID != nil && *u.DiscordID != "" {
			parts = append(parts, fmt.Sprintf("<@%s>", *u.DiscordID))
			continue
		}
		parts = append(parts, u.Username)
	}
	return strings.Join(parts, ", ")
}

func shorten(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit]) + "..."
}

func mark(m string) string {
	if m == "" {
		return "⚪"
	}
	return m
}

// ReminderEmbed builds the message posted to one portfolio channel.
func ReminderEmbed(entries []service.ReminderEntry) Embed {
	portfolio := unknownPortfolio
	if len(entries) > 0 && entries[0].PortfolioName != "" {
		portfolio = entries[0].PortfolioName
	}

	e := Embed{
		Title:       reminderTitle,
		Description: fmt.Sprintf("**%s** has tasks due tomorrow!", portfolio),
		Color:       reminderColor,
		Footer:      &EmbedFooter{Text: reminderFooter},
	}
	for _, t := range entries {
		title := t.Title
		if title == "" {
			title = untitledTaskTitle
		}
		description := t.Description
		if description == "" {
			description = "No description"
		}
		status := statusMarks[t.Status]
		if status == "" {
			status = "❓"
		}

		e.Fields = append(e.Fields, EmbedField{
			Name: "📋 " + title,
			Value: fmt.Sprintf("**Assigned to:** %s\n**Deadline:** %s at %s\n**Priority:** %s %s\n**Status:** %s %s\n**Description:** %s",
				Mentions(t.AssignedUsers),
				t.DeadlineLocalDate, t.DeadlineLocalTime,
				mark(priorityMarks[t.Priority]), t.Priority,
				status, t.Status,
				shorten(description, descriptionLimit)),
		})
	}
	return e
}
