package model

import (
	"time"

	"gorm.io/gorm"
)

// User is a node in the social graph.
// Unique constraint on email; password is stored as a bcrypt hash only.
// Interests is an unordered set of strings, stored as a JSON column.

type User struct {
	ID           uint           `gorm:"primaryKey"`
	Name         string         `gorm:"type:varchar(128);not null;index"`
	Email        string         `gorm:"type:varchar(128);not null;uniqueIndex"`
	PasswordHash string         `gorm:"type:varchar(255);not null"`
	City         string         `gorm:"type:varchar(128)"`
	Headline     string         `gorm:"type:varchar(255)"`
	Workplace    string         `gorm:"type:varchar(255)"`
	Avatar       string         `gorm:"type:varchar(255)"`
	About        string         `gorm:"type:text"`
	Interests    []string       `gorm:"serializer:json;type:json"`
	LastActive   time.Time      ``
	CreatedAt    time.Time      ``
	UpdatedAt    time.Time      ``
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string { return "user" }
