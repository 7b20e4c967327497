package model

import (
	"time"
)

// Friendship is one direction of a FRIEND_WITH edge. Edges are always
// written as a symmetric pair of rows (A→B and B→A) inside a single
// transaction; a lone direction must never exist.

type Friendship struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:uq_friend_pair,priority:1;index"`
	FriendID  uint      `gorm:"not null;uniqueIndex:uq_friend_pair,priority:2;index"`
	CreatedAt time.Time ``
}

func (Friendship) TableName() string { return "friendship" }

// FriendRequest is a directed REQUESTED edge from sender to target.
// At most one outstanding row per ordered (sender, target) pair, and a
// request never coexists with a friendship between the same pair.

type FriendRequest struct {
	ID        uint      `gorm:"primaryKey"`
	SenderID  uint      `gorm:"not null;uniqueIndex:uq_request_pair,priority:1;index"`
	TargetID  uint      `gorm:"not null;uniqueIndex:uq_request_pair,priority:2;index"`
	Message   string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time ``
}

func (FriendRequest) TableName() string { return "friend_request" }

// Dismissal is a directed DISMISSED edge: the viewer suppresses the
// target from future suggestions. Idempotent and permanent.

type Dismissal struct {
	ID        uint      `gorm:"primaryKey"`
	ViewerID  uint      `gorm:"not null;uniqueIndex:uq_dismiss_pair,priority:1;index"`
	TargetID  uint      `gorm:"not null;uniqueIndex:uq_dismiss_pair,priority:2"`
	CreatedAt time.Time ``
}

func (Dismissal) TableName() string { return "dismissal" }
