package repository

import (
	"time"

	"friendnet/internal/model"

	"gorm.io/gorm"
)

// UserRepository reads and writes User nodes.
type UserRepository struct {
	orm *gorm.DB
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(orm *gorm.DB) *UserRepository {
	return &UserRepository{orm: orm}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.orm.Create(user).Error
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var u model.User
	if err := r.orm.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var u model.User
	if err := r.orm.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.orm.Save(user).Error
}

// UsersByIDs loads a batch of users. Order is unspecified.
func (r *UserRepository) UsersByIDs(ids []uint) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []*model.User
	if err := r.orm.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// AllExcept returns up to limit users other than viewerID, oldest
// accounts first so the global fallback pool is stable between calls.
func (r *UserRepository) AllExcept(viewerID uint, limit int) ([]*model.User, error) {
	var users []*model.User
	err := r.orm.Where("id <> ?", viewerID).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// SearchCandidates returns users whose name, headline or interests
// contain the term. Scoring happens in the engine; this is only the
// broad candidate fetch.
func (r *UserRepository) SearchCandidates(term string, limit int) ([]*model.User, error) {
	pattern := "%" + term + "%"
	var users []*model.User
	err := r.orm.
		Where("name LIKE ? OR headline LIKE ? OR interests LIKE ?", pattern, pattern, pattern).
		Limit(limit).
		Find(&users).Error
	return users, err
}

// TouchLastActive bumps the user's last-active timestamp.
func (r *UserRepository) TouchLastActive(id uint) error {
	return r.orm.Model(&model.User{}).
		Where("id = ?", id).
		Update("last_active", time.Now()).Error
}
