package service

import (
	"friendnet/internal/model"
	"friendnet/internal/repository"
)

// The engine consumes the graph store through these interfaces. The
// gorm repositories implement them in production; tests substitute
// in-memory fakes. Keeping the interfaces here keeps all scoring and
// transition logic independent of query construction.

// UserStore reads and writes User nodes.
type UserStore interface {
	Create(user *model.User) error
	GetByID(id uint) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	Update(user *model.User) error
	UsersByIDs(ids []uint) ([]*model.User, error)
	AllExcept(viewerID uint, limit int) ([]*model.User, error)
	SearchCandidates(term string, limit int) ([]*model.User, error)
	TouchLastActive(id uint) error
}

// GraphStore answers side-effect-free adjacency queries.
type GraphStore interface {
	FriendIDs(userID uint) ([]uint, error)
	FriendEdgesOf(userIDs []uint) ([]repository.FriendEdge, error)
	OutgoingRequestTargetIDs(viewerID uint) ([]uint, error)
	IncomingRequestSenderIDs(viewerID uint) ([]uint, error)
	DismissedTargetIDs(viewerID uint) ([]uint, error)
}

// RelationshipStore owns relationship transitions. InTx must provide
// single-transaction atomicity: all edges of one transition commit
// together or none do.
type RelationshipStore interface {
	InTx(fn func(tx repository.RelationshipTx) error) error
	ListIncoming(viewerID uint) ([]*model.FriendRequest, error)
	ListOutgoing(viewerID uint) ([]*model.FriendRequest, error)
	AreFriends(a, b uint) (bool, error)
	CreateDismissal(viewerID, targetID uint) error
}

// GroupStore reads and writes groups and memberships.
type GroupStore interface {
	Create(group *model.Group) error
	GetByID(id uint) (*model.Group, error)
	GroupsByIDs(ids []uint) ([]*model.Group, error)
	ListAll() ([]*model.Group, error)
	ListAllExcept(viewerID uint) ([]*model.Group, error)
	SearchCandidates(term string, limit int) ([]*model.Group, error)
	MembershipsOf(userID uint) ([]*model.Membership, error)
	GetMembership(userID, groupID uint) (*model.Membership, error)
	CreateMembership(m *model.Membership) error
	MemberIDs(groupID uint) ([]uint, error)
	MemberRows(groupIDs []uint) ([]repository.GroupMemberRow, error)
	MemberCounts(groupIDs []uint) (map[uint]int, error)
	InTx(fn func(tx repository.GroupTx) error) error
}

// PostStore reads and writes posts and like edges.
type PostStore interface {
	Create(post *model.Post) error
	GetByID(id uint) (*model.Post, error)
	ByAuthor(authorID uint, limit int) ([]*model.Post, error)
	ByAuthors(authorIDs []uint, visibilities []string, limit int) ([]*model.Post, error)
	LikedByUsers(userIDs []uint, excludeAuthorID uint, limit int) ([]*model.Post, error)
	LikesFor(postIDs []uint) ([]*model.PostLike, error)
	HasLike(userID, postID uint) (bool, error)
	CreateLike(userID, postID uint) error
	DeleteLike(userID, postID uint) error
	LikeCount(postID uint) (int, error)
}
