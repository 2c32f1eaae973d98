package model

import (
	"time"
)

type TaskStatus string

const (
	StatusNotStarted TaskStatus = "Not Started"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
	StatusPending    TaskStatus = "Pending"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusPending:
		return true
	}
	return false
}

// OpenStatuses are the statuses that still need work and trigger reminders.
var OpenStatuses = []TaskStatus{StatusNotStarted, StatusInProgress}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities High > Medium > Low. Unknown values rank lowest.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type Task struct {
	ID              uint         `gorm:"primaryKey"`
	Title           string       `gorm:"not null"`
	Description     string       `gorm:"type:text"`
	Status          TaskStatus   `gorm:"type:varchar(32);not null;index"`
	Priority        TaskPriority `gorm:"type:varchar(16);not null"`
	Deadline        time.Time    `gorm:"type:timestamptz;not null;index"`
	PortfolioID     uint         `gorm:"not null;index"`
	ParentTaskID    *uint        `gorm:"index"`
	SourceMeetingID *uint        `gorm:"index"`
	CreatedBy       uint         `gorm:"not null"`
	CreatedAt       time.Time    `gorm:"type:timestamptz"`
	UpdatedAt       time.Time    `gorm:"type:timestamptz"`
}

// TaskDetail is a task row joined with the names the API shows next to it.
type TaskDetail struct {
	Task
	PortfolioName   string
	CreatorUsername string
	CreatorEmail    string
}

// TaskNode is a task with its descendants, built in memory from a flat fetch.
type TaskNode struct {
	Task     Task
	Children []*TaskNode
}

// BuildForest indexes a flat task list by parent id and returns the trees
// rooted at tasks whose parent is absent from the list. A task whose parent
// chain loops back on itself is returned as a root so it is not lost.
func BuildForest(tasks []Task) []*TaskNode {
	nodes := make(map[uint]*TaskNode, len(tasks))
	for i := range tasks {
		nodes[tasks[i].ID] = &TaskNode{Task: tasks[i]}
	}

	var roots []*TaskNode
	for i := range tasks {
		n := nodes[tasks[i].ID]
		pid := tasks[i].ParentTaskID
		if pid == nil || nodes[*pid] == nil || inCycle(nodes, tasks[i].ID) {
			roots = append(roots, n)
			continue
		}
		parent := nodes[*pid]
		parent.Children = append(parent.Children, n)
	}
	return roots
}

func inCycle(nodes map[uint]*TaskNode, start uint) bool {
	seen := map[uint]bool{start: true}
	cur := nodes[start]
	for cur != nil && cur.Task.ParentTaskID != nil {
		next := *cur.Task.ParentTaskID
		if seen[next] {
			return next == start
		}
		seen[next] = true
		cur = nodes[next]
	}
	return false
}

// Count returns the number of nodes in the tree rooted at n.
func (n *TaskNode) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}
