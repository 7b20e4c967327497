package model

import (
	"time"

	"gorm.io/gorm"
)

// Post visibility levels.
const (
	VisibilityFriends = "friends"
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Post belongs to exactly one author. Topics combine explicit input
// with hashtags parsed from the content.

type Post struct {
	ID         uint           `gorm:"primaryKey"`
	AuthorID   uint           `gorm:"not null;index"`
	Content    string         `gorm:"type:text;not null"`
	Media      string         `gorm:"type:varchar(255)"`
	Topics     []string       `gorm:"serializer:json;type:json"`
	Visibility string         `gorm:"type:varchar(32);not null;default:'friends'"`
	CreatedAt  time.Time      `gorm:"index"`
	UpdatedAt  time.Time      ``
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (Post) TableName() string { return "post" }

// PostLike is a LIKED edge; presence is the toggle state, like count is
// the in-degree on the post.

type PostLike struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:uq_post_like,priority:1"`
	PostID    uint      `gorm:"not null;uniqueIndex:uq_post_like,priority:2;index"`
	CreatedAt time.Time ``
}

func (PostLike) TableName() string { return "post_like" }
