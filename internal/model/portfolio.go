package model

type Portfolio struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"uniqueIndex;not null"`
	Description string  `gorm:"type:text"`
	ChannelID   *string `gorm:"uniqueIndex"`
}

type PortfolioStatistics struct {
	PortfolioID        uint   `json:"portfolio_id"`
	Name               string `json:"name"`
	UserCount          int64  `json:"user_count"`
	TaskCount          int64  `json:"task_count"`
	ActiveTaskCount    int64  `json:"active_task_count"`
	CompletedTaskCount int64  `json:"completed_task_count"`
	MeetingCount       int64  `json:"meeting_count"`
}
