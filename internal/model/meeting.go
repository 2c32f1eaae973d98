package model

import (
	"time"
)

type MeetingRecord struct {
	ID                uint      `gorm:"primaryKey"`
	MeetingDate       time.Time `gorm:"type:timestamptz;not null;index"`
	MeetingName       string    `gorm:"not null"`
	RecordingFileLink *string   `gorm:"type:text"`
	AutoCaption       *string   `gorm:"type:text"`
	Summary           *string   `gorm:"type:text"`
	PortfolioID       uint      `gorm:"not null;index"`
	UserCanSee        bool      `gorm:"not null"`
}
