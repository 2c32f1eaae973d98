package model

import (
	"time"
)

const (
	RoleNameUser     = "user"
	RoleNameAdmin    = "admin"
	RoleNameDirector = "director"
)

type Role struct {
	ID          uint   `gorm:"primaryKey"`
	RoleName    string `gorm:"uniqueIndex;not null"`
	Description string `gorm:"type:text"`
}

type User struct {
	ID             uint    `gorm:"primaryKey"`
	Email          string  `gorm:"uniqueIndex;not null"`
	Username       string  `gorm:"uniqueIndex;not null"`
	HashedPassword string  `gorm:"not null"`
	RoleID         uint    `gorm:"not null"`
	PortfolioID    *uint   `gorm:"index"`
	DiscordID      *string `gorm:"uniqueIndex"`
	CreatedAt      time.Time

	Role Role `gorm:"foreignKey:RoleID"`
}

// Actor is the authenticated caller as the permission filters see it.
type Actor struct {
	UserID      uint
	RoleName    string
	PortfolioID *uint
}

func (a Actor) IsAdmin() bool    { return a.RoleName == RoleNameAdmin }
func (a Actor) IsDirector() bool { return a.RoleName == RoleNameDirector }

func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, RoleName: u.Role.RoleName, PortfolioID: u.PortfolioID}
}
