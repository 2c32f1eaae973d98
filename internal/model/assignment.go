package model

type TaskAssignment struct {
	ID     uint `gorm:"primaryKey"`
	TaskID uint `gorm:"not null;uniqueIndex:uk_task_user"`
	UserID uint `gorm:"not null;uniqueIndex:uk_task_user;index"`
}

// AssignedUser is the slice of a user a notification needs.
type AssignedUser struct {
	AssignmentID uint    `json:"assignment_id,omitempty"`
	TaskID       uint    `json:"-"`
	UserID       uint    `json:"user_id"`
	Username     string  `json:"username"`
	Email        string  `json:"email,omitempty"`
	DiscordID    *string `json:"discord_id"`
}
