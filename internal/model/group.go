package model

import (
	"time"

	"gorm.io/gorm"
)

// Membership roles.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Group is a community node. Topics is a capped ordered-unique list
// derived from explicit input plus tokens parsed from the description.

type Group struct {
	ID          uint           `gorm:"primaryKey"`
	Name        string         `gorm:"type:varchar(128);not null;index"`
	Description string         `gorm:"type:text"`
	Topics      []string       `gorm:"serializer:json;type:json"`
	Cover       string         `gorm:"type:varchar(255)"`
	CreatorID   uint           `gorm:"not null;index"`
	CreatedAt   time.Time      ``
	UpdatedAt   time.Time      ``
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// "group" is a reserved word in MySQL.
func (Group) TableName() string { return "community" }

// Membership is a MEMBER_OF edge with a role. A group must keep at
// least one owner; the last owner cannot leave.

type Membership struct {
	ID       uint      `gorm:"primaryKey"`
	UserID   uint      `gorm:"not null;uniqueIndex:uq_membership,priority:1;index"`
	GroupID  uint      `gorm:"not null;uniqueIndex:uq_membership,priority:2;index"`
	Role     string    `gorm:"type:varchar(32);not null;default:'member'"`
	JoinedAt time.Time ``
}

func (Membership) TableName() string { return "membership" }
