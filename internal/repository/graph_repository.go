package repository

import (
	"friendnet/internal/model"

	"gorm.io/gorm"
)

// FriendEdge is one direction of a friendship, as returned by bulk
// adjacency queries.
type FriendEdge struct {
	UserID   uint
	FriendID uint
}

// GraphRepository answers the read-side adjacency queries the
// suggestion, feed and insight engines are built on. All methods are
// side-effect free.
type GraphRepository struct {
	orm *gorm.DB
}

// NewGraphRepository creates a GraphRepository.
func NewGraphRepository(orm *gorm.DB) *GraphRepository {
	return &GraphRepository{orm: orm}
}

// FriendIDs returns the IDs of userID's friends.
func (r *GraphRepository) FriendIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.orm.Model(&model.Friendship{}).
		Where("user_id = ?", userID).
		Pluck("friend_id", &ids).Error
	return ids, err
}

// FriendEdgesOf returns every outgoing friendship edge of the given
// users in one query. This is the friend-of-friend expansion step.
func (r *GraphRepository) FriendEdgesOf(userIDs []uint) ([]FriendEdge, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var edges []FriendEdge
	err := r.orm.Model(&model.Friendship{}).
		Select("user_id", "friend_id").
		Where("user_id IN ?", userIDs).
		Scan(&edges).Error
	return edges, err
}

// OutgoingRequestTargetIDs returns IDs the viewer has requested.
func (r *GraphRepository) OutgoingRequestTargetIDs(viewerID uint) ([]uint, error) {
	var ids []uint
	err := r.orm.Model(&model.FriendRequest{}).
		Where("sender_id = ?", viewerID).
		Pluck("target_id", &ids).Error
	return ids, err
}

// IncomingRequestSenderIDs returns IDs that have requested the viewer.
func (r *GraphRepository) IncomingRequestSenderIDs(viewerID uint) ([]uint, error) {
	var ids []uint
	err := r.orm.Model(&model.FriendRequest{}).
		Where("target_id = ?", viewerID).
		Pluck("sender_id", &ids).Error
	return ids, err
}

// DismissedTargetIDs returns IDs the viewer has dismissed.
func (r *GraphRepository) DismissedTargetIDs(viewerID uint) ([]uint, error) {
	var ids []uint
	err := r.orm.Model(&model.Dismissal{}).
		Where("viewer_id = ?", viewerID).
		Pluck("target_id", &ids).Error
	return ids, err
}
