package repository

import (
	"errors"
	"time"

	"friendnet/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupMemberRow is one membership edge, as returned by bulk queries.
type GroupMemberRow struct {
	GroupID uint
	UserID  uint
	Role    string
}

// GroupRepository reads and writes groups and memberships.
type GroupRepository struct {
	orm *gorm.DB
}

// NewGroupRepository creates a GroupRepository.
func NewGroupRepository(orm *gorm.DB) *GroupRepository {
	return &GroupRepository{orm: orm}
}

func (r *GroupRepository) Create(group *model.Group) error {
	return r.orm.Create(group).Error
}

func (r *GroupRepository) GetByID(id uint) (*model.Group, error) {
	var g model.Group
	err := r.orm.First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GroupsByIDs loads a batch of groups.
func (r *GroupRepository) GroupsByIDs(ids []uint) ([]*model.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var groups []*model.Group
	err := r.orm.Where("id IN ?", ids).Find(&groups).Error
	return groups, err
}

// ListAll returns every group.
func (r *GroupRepository) ListAll() ([]*model.Group, error) {
	var groups []*model.Group
	err := r.orm.Find(&groups).Error
	return groups, err
}

// ListAllExcept returns every group the viewer is not a member of.
// The candidate pool for group suggestions.
func (r *GroupRepository) ListAllExcept(viewerID uint) ([]*model.Group, error) {
	var groups []*model.Group
	err := r.orm.
		Where("id NOT IN (?)", r.orm.Model(&model.Membership{}).
			Select("group_id").
			Where("user_id = ?", viewerID)).
		Find(&groups).Error
	return groups, err
}

// SearchCandidates returns groups whose name, description or topics
// contain the term. Weighted scoring happens in the engine.
func (r *GroupRepository) SearchCandidates(term string, limit int) ([]*model.Group, error) {
	pattern := "%" + term + "%"
	var groups []*model.Group
	err := r.orm.
		Where("name LIKE ? OR description LIKE ? OR topics LIKE ?", pattern, pattern, pattern).
		Limit(limit).
		Find(&groups).Error
	return groups, err
}

// MembershipsOf returns the viewer's memberships, newest join first.
func (r *GroupRepository) MembershipsOf(userID uint) ([]*model.Membership, error) {
	var rows []*model.Membership
	err := r.orm.Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&rows).Error
	return rows, err
}

// GetMembership loads one membership edge, nil when absent.
func (r *GroupRepository) GetMembership(userID, groupID uint) (*model.Membership, error) {
	var m model.Membership
	err := r.orm.Where("user_id = ? AND group_id = ?", userID, groupID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMembership inserts a membership edge, ignoring duplicates so
// join is idempotent.
func (r *GroupRepository) CreateMembership(m *model.Membership) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return r.orm.Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
}

// MemberIDs returns the user IDs belonging to a group.
func (r *GroupRepository) MemberIDs(groupID uint) ([]uint, error) {
	var ids []uint
	err := r.orm.Model(&model.Membership{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// MemberRows returns membership edges for many groups in one query.
func (r *GroupRepository) MemberRows(groupIDs []uint) ([]GroupMemberRow, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	var rows []GroupMemberRow
	err := r.orm.Model(&model.Membership{}).
		Select("group_id", "user_id", "role").
		Where("group_id IN ?", groupIDs).
		Scan(&rows).Error
	return rows, err
}

// MemberCounts returns the member count per group.
func (r *GroupRepository) MemberCounts(groupIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(groupIDs))
	if len(groupIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		GroupID uint
		N       int
	}
	err := r.orm.Model(&model.Membership{}).
		Select("group_id", "COUNT(*) AS n").
		Where("group_id IN ?", groupIDs).
		Group("group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.GroupID] = row.N
	}
	return counts, nil
}

// GroupTx exposes the primitives of a membership-removal transaction.
type GroupTx interface {
	// LockMembership takes a FOR UPDATE lock on a membership row, nil
	// when absent.
	LockMembership(userID, groupID uint) (*model.Membership, error)
	// CountOwners counts owner-role memberships of a group, locking
	// the rows so a concurrent leave cannot race the check.
	CountOwners(groupID uint) (int, error)
	DeleteMembership(userID, groupID uint) error
}

type groupTx struct {
	tx *gorm.DB
}

// InTx runs fn inside a transaction. The owner-count check and the
// membership delete must be one atomic unit.
func (r *GroupRepository) InTx(fn func(tx GroupTx) error) error {
	return r.orm.Transaction(func(tx *gorm.DB) error {
		return fn(&groupTx{tx: tx})
	})
}

func (t *groupTx) LockMembership(userID, groupID uint) (*model.Membership, error) {
	var m model.Membership
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *groupTx) CountOwners(groupID uint) (int, error) {
	var rows []model.Membership
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("group_id = ? AND role = ?", groupID, model.RoleOwner).
		Find(&rows).Error
	return len(rows), err
}

func (t *groupTx) DeleteMembership(userID, groupID uint) error {
	return t.tx.Where("user_id = ? AND group_id = ?", userID, groupID).
		Delete(&model.Membership{}).Error
}
