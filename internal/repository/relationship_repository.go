package repository

import (
	"errors"
	"time"

	"friendnet/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationshipRepository owns every write to friendship, friend_request
// and dismissal rows. Each state transition executes inside one
// database transaction; the row locks taken by the Tx methods are what
// close the concurrent send/send and accept/cancel races, since no
// in-process lock would hold across server instances.
type RelationshipRepository struct {
	orm *gorm.DB
}

// NewRelationshipRepository creates a RelationshipRepository.
func NewRelationshipRepository(orm *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{orm: orm}
}

// RelationshipTx exposes the check-and-act primitives available inside
// a transition transaction.
type RelationshipTx interface {
	// LockRequestBetween takes a FOR UPDATE lock on the request row
	// sender→target, returning nil when no such row exists.
	LockRequestBetween(senderID, targetID uint) (*model.FriendRequest, error)
	// LockRequestByID takes a FOR UPDATE lock on a request row by ID,
	// returning nil when absent.
	LockRequestByID(id uint) (*model.FriendRequest, error)
	// AreFriends checks friendship inside the transaction.
	AreFriends(a, b uint) (bool, error)
	CreateRequest(req *model.FriendRequest) error
	DeleteRequest(id uint) error
	// CreateFriendshipPair inserts both directions of a friendship
	// edge; the two rows commit or roll back together.
	CreateFriendshipPair(a, b uint) error
	// CreateDismissal inserts a dismissal edge, ignoring duplicates.
	CreateDismissal(viewerID, targetID uint) error
}

type relationshipTx struct {
	tx *gorm.DB
}

// InTx runs fn inside a transaction. Any error rolls everything back,
// so no partial transition is ever observable.
func (r *RelationshipRepository) InTx(fn func(tx RelationshipTx) error) error {
	return r.orm.Transaction(func(tx *gorm.DB) error {
		return fn(&relationshipTx{tx: tx})
	})
}

// ListIncoming returns pending requests addressed to the viewer,
// newest first.
func (r *RelationshipRepository) ListIncoming(viewerID uint) ([]*model.FriendRequest, error) {
	var reqs []*model.FriendRequest
	err := r.orm.Where("target_id = ?", viewerID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// ListOutgoing returns pending requests sent by the viewer, newest
// first.
func (r *RelationshipRepository) ListOutgoing(viewerID uint) ([]*model.FriendRequest, error) {
	var reqs []*model.FriendRequest
	err := r.orm.Where("sender_id = ?", viewerID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// AreFriends reports whether a friendship edge exists a→b. Pair rows
// are symmetric, so one direction is sufficient.
func (r *RelationshipRepository) AreFriends(a, b uint) (bool, error) {
	return areFriends(r.orm, a, b)
}

func (t *relationshipTx) LockRequestBetween(senderID, targetID uint) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sender_id = ? AND target_id = ?", senderID, targetID).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (t *relationshipTx) LockRequestByID(id uint) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (t *relationshipTx) AreFriends(a, b uint) (bool, error) {
	return areFriends(t.tx, a, b)
}

func (t *relationshipTx) CreateRequest(req *model.FriendRequest) error {
	return t.tx.Create(req).Error
}

func (t *relationshipTx) DeleteRequest(id uint) error {
	return t.tx.Delete(&model.FriendRequest{}, id).Error
}

func (t *relationshipTx) CreateFriendshipPair(a, b uint) error {
	now := time.Now()
	rows := []model.Friendship{
		{UserID: a, FriendID: b, CreatedAt: now},
		{UserID: b, FriendID: a, CreatedAt: now},
	}
	return t.tx.Create(&rows).Error
}

func (t *relationshipTx) CreateDismissal(viewerID, targetID uint) error {
	return createDismissal(t.tx, viewerID, targetID)
}

// CreateDismissal inserts a dismissal edge outside a transition, for
// the standalone dismiss operation. Idempotent.
func (r *RelationshipRepository) CreateDismissal(viewerID, targetID uint) error {
	return createDismissal(r.orm, viewerID, targetID)
}

func areFriends(db *gorm.DB, a, b uint) (bool, error) {
	var count int64
	err := db.Model(&model.Friendship{}).
		Where("user_id = ? AND friend_id = ?", a, b).
		Count(&count).Error
	return count > 0, err
}

func createDismissal(db *gorm.DB, viewerID, targetID uint) error {
	row := model.Dismissal{ViewerID: viewerID, TargetID: targetID, CreatedAt: time.Now()}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}
