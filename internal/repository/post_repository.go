package repository

import (
	"errors"
	"time"

	"friendnet/internal/model"

	"gorm.io/gorm"
)

// PostRepository reads and writes posts and like edges.
type PostRepository struct {
	orm *gorm.DB
}

// NewPostRepository creates a PostRepository.
func NewPostRepository(orm *gorm.DB) *PostRepository {
	return &PostRepository{orm: orm}
}

func (r *PostRepository) Create(post *model.Post) error {
	return r.orm.Create(post).Error
}

func (r *PostRepository) GetByID(id uint) (*model.Post, error) {
	var p model.Post
	err := r.orm.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ByAuthor returns the author's own posts, newest first.
func (r *PostRepository) ByAuthor(authorID uint, limit int) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.orm.Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// ByAuthors returns recent posts authored by any of the given users
// with one of the given visibilities, newest first. The friend_post
// feed source.
func (r *PostRepository) ByAuthors(authorIDs []uint, visibilities []string, limit int) ([]*model.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var posts []*model.Post
	err := r.orm.Where("author_id IN ? AND visibility IN ?", authorIDs, visibilities).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// LikedByUsers returns recent posts liked by any of the given users,
// excluding the viewer's own posts, newest first. The friend_like feed
// source.
func (r *PostRepository) LikedByUsers(userIDs []uint, excludeAuthorID uint, limit int) ([]*model.Post, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var posts []*model.Post
	err := r.orm.
		Joins("JOIN post_like ON post_like.post_id = post.id").
		Where("post_like.user_id IN ?", userIDs).
		Where("post.author_id <> ?", excludeAuthorID).
		Where("post.visibility IN ?", []string{model.VisibilityFriends, model.VisibilityPublic}).
		Group("post.id").
		Order("post.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// LikesFor returns every like edge on the given posts.
func (r *PostRepository) LikesFor(postIDs []uint) ([]*model.PostLike, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var likes []*model.PostLike
	err := r.orm.Where("post_id IN ?", postIDs).Find(&likes).Error
	return likes, err
}

// HasLike reports whether the user currently likes the post.
func (r *PostRepository) HasLike(userID, postID uint) (bool, error) {
	var count int64
	err := r.orm.Model(&model.PostLike{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

// CreateLike inserts a like edge.
func (r *PostRepository) CreateLike(userID, postID uint) error {
	like := model.PostLike{UserID: userID, PostID: postID, CreatedAt: time.Now()}
	return r.orm.Create(&like).Error
}

// DeleteLike removes a like edge.
func (r *PostRepository) DeleteLike(userID, postID uint) error {
	return r.orm.Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.PostLike{}).Error
}

// LikeCount returns the like in-degree of a post.
func (r *PostRepository) LikeCount(postID uint) (int, error) {
	var count int64
	err := r.orm.Model(&model.PostLike{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return int(count), err
}
