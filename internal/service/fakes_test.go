package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	"friendnet/internal/model"
	"friendnet/internal/repository"
)

// fakeGraph is an in-memory implementation of every store interface,
// so the engine's logic runs in tests without a database. Map
// iteration is always sorted to keep results deterministic.
type fakeGraph struct {
	users  map[uint]*model.User
	nextID uint

	friendships map[[2]uint]bool
	requests    map[uint]*model.FriendRequest
	nextReqID   uint
	dismissals  map[[2]uint]bool

	groups      map[uint]*model.Group
	nextGroupID uint
	memberships map[[2]uint]*model.Membership

	posts      map[uint]*model.Post
	nextPostID uint
	likes      map[[2]uint]bool
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		users:       make(map[uint]*model.User),
		friendships: make(map[[2]uint]bool),
		requests:    make(map[uint]*model.FriendRequest),
		dismissals:  make(map[[2]uint]bool),
		groups:      make(map[uint]*model.Group),
		memberships: make(map[[2]uint]*model.Membership),
		posts:       make(map[uint]*model.Post),
		likes:       make(map[[2]uint]bool),
	}
}

// --- test graph builders ---

func (f *fakeGraph) addUser(name string, mutate ...func(*model.User)) *model.User {
	f.nextID++
	u := &model.User{
		ID:    f.nextID,
		Name:  name,
		Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
	}
	for _, m := range mutate {
		m(u)
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeGraph) befriend(a, b uint) {
	f.friendships[[2]uint{a, b}] = true
	f.friendships[[2]uint{b, a}] = true
}

func (f *fakeGraph) addRequest(senderID, targetID uint) *model.FriendRequest {
	f.nextReqID++
	req := &model.FriendRequest{
		ID:        f.nextReqID,
		SenderID:  senderID,
		TargetID:  targetID,
		CreatedAt: time.Now(),
	}
	f.requests[req.ID] = req
	return req
}

func (f *fakeGraph) addGroup(name string, topics ...string) *model.Group {
	f.nextGroupID++
	g := &model.Group{ID: f.nextGroupID, Name: name, Topics: topics}
	f.groups[g.ID] = g
	return g
}

func (f *fakeGraph) addMember(userID, groupID uint, role string) {
	f.memberships[[2]uint{userID, groupID}] = &model.Membership{
		UserID:   userID,
		GroupID:  groupID,
		Role:     role,
		JoinedAt: time.Now(),
	}
}

func (f *fakeGraph) addPost(authorID uint, content string, createdAt time.Time, mutate ...func(*model.Post)) *model.Post {
	f.nextPostID++
	p := &model.Post{
		ID:         f.nextPostID,
		AuthorID:   authorID,
		Content:    content,
		Visibility: model.VisibilityFriends,
		CreatedAt:  createdAt,
	}
	for _, m := range mutate {
		m(p)
	}
	f.posts[p.ID] = p
	return p
}

func (f *fakeGraph) like(userID, postID uint) {
	f.likes[[2]uint{userID, postID}] = true
}

// --- UserStore ---

func (f *fakeGraph) Create(u *model.User) error {
	f.nextID++
	u.ID = f.nextID
	f.users[u.ID] = u
	return nil
}

func (f *fakeGraph) GetByID(id uint) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (f *fakeGraph) GetByEmail(email string) (*model.User, error) {
	for _, id := range f.sortedUserIDs() {
		if f.users[id].Email == email {
			return f.users[id], nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeGraph) Update(u *model.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeGraph) UsersByIDs(ids []uint) ([]*model.User, error) {
	out := make([]*model.User, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeGraph) AllExcept(viewerID uint, limit int) ([]*model.User, error) {
	var out []*model.User
	for _, id := range f.sortedUserIDs() {
		if id == viewerID {
			continue
		}
		out = append(out, f.users[id])
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeGraph) SearchCandidates(term string, limit int) ([]*model.User, error) {
	term = strings.ToLower(term)
	var out []*model.User
	for _, id := range f.sortedUserIDs() {
		u := f.users[id]
		haystack := strings.ToLower(u.Name + " " + u.Headline + " " + u.About + " " + strings.Join(u.Interests, " "))
		if strings.Contains(haystack, term) {
			out = append(out, u)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeGraph) TouchLastActive(id uint) error {
	if u, ok := f.users[id]; ok {
		u.LastActive = time.Now()
	}
	return nil
}

func (f *fakeGraph) sortedUserIDs() []uint {
	ids := make([]uint, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// --- GraphStore ---

func (f *fakeGraph) FriendIDs(userID uint) ([]uint, error) {
	var out []uint
	for pair := range f.friendships {
		if pair[0] == userID {
			out = append(out, pair[1])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (f *fakeGraph) FriendEdgesOf(userIDs []uint) ([]repository.FriendEdge, error) {
	want := make(map[uint]struct{}, len(userIDs))
	for _, id := range userIDs {
		want[id] = struct{}{}
	}
	var out []repository.FriendEdge
	for pair := range f.friendships {
		if _, ok := want[pair[0]]; ok {
			out = append(out, repository.FriendEdge{UserID: pair[0], FriendID: pair[1]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].FriendID < out[j].FriendID
	})
	return out, nil
}

func (f *fakeGraph) OutgoingRequestTargetIDs(viewerID uint) ([]uint, error) {
	var out []uint
	for _, id := range f.sortedRequestIDs() {
		if f.requests[id].SenderID == viewerID {
			out = append(out, f.requests[id].TargetID)
		}
	}
	return out, nil
}

func (f *fakeGraph) IncomingRequestSenderIDs(viewerID uint) ([]uint, error) {
	var out []uint
	for _, id := range f.sortedRequestIDs() {
		if f.requests[id].TargetID == viewerID {
			out = append(out, f.requests[id].SenderID)
		}
	}
	return out, nil
}

func (f *fakeGraph) DismissedTargetIDs(viewerID uint) ([]uint, error) {
	var out []uint
	for pair := range f.dismissals {
		if pair[0] == viewerID {
			out = append(out, pair[1])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (f *fakeGraph) sortedRequestIDs() []uint {
	ids := make([]uint, 0, len(f.requests))
	for id := range f.requests {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// --- RelationshipStore and RelationshipTx ---

func (f *fakeGraph) InTx(fn func(tx repository.RelationshipTx) error) error {
	return fn(f)
}

func (f *fakeGraph) ListIncoming(viewerID uint) ([]*model.FriendRequest, error) {
	var out []*model.FriendRequest
	for _, id := range f.sortedRequestIDs() {
		if f.requests[id].TargetID == viewerID {
			out = append(out, f.requests[id])
		}
	}
	return out, nil
}

func (f *fakeGraph) ListOutgoing(viewerID uint) ([]*model.FriendRequest, error) {
	var out []*model.FriendRequest
	for _, id := range f.sortedRequestIDs() {
		if f.requests[id].SenderID == viewerID {
			out = append(out, f.requests[id])
		}
	}
	return out, nil
}

func (f *fakeGraph) AreFriends(a, b uint) (bool, error) {
	return f.friendships[[2]uint{a, b}], nil
}

func (f *fakeGraph) CreateDismissal(viewerID, targetID uint) error {
	f.dismissals[[2]uint{viewerID, targetID}] = true
	return nil
}

func (f *fakeGraph) LockRequestBetween(senderID, targetID uint) (*model.FriendRequest, error) {
	for _, id := range f.sortedRequestIDs() {
		req := f.requests[id]
		if req.SenderID == senderID && req.TargetID == targetID {
			return req, nil
		}
	}
	return nil, nil
}

func (f *fakeGraph) LockRequestByID(id uint) (*model.FriendRequest, error) {
	return f.requests[id], nil
}

func (f *fakeGraph) CreateRequest(req *model.FriendRequest) error {
	f.nextReqID++
	req.ID = f.nextReqID
	f.requests[req.ID] = req
	return nil
}

func (f *fakeGraph) DeleteRequest(id uint) error {
	delete(f.requests, id)
	return nil
}

func (f *fakeGraph) CreateFriendshipPair(a, b uint) error {
	f.befriend(a, b)
	return nil
}

// --- GroupStore and GroupTx ---

// fakeGroupStore adapts fakeGraph to GroupStore; the shared method
// names (Create, GetByID, SearchCandidates, InTx) differ by entity, so
// a thin wrapper renames them while the rest promote through embedding.
type fakeGroupStore struct{ *fakeGraph }

func (s fakeGroupStore) Create(g *model.Group) error { return s.CreateGroup(g) }
func (s fakeGroupStore) GetByID(id uint) (*model.Group, error) { return s.GetGroupByID(id) }
func (s fakeGroupStore) SearchCandidates(term string, limit int) ([]*model.Group, error) {
	return s.SearchGroupCandidates(term, limit)
}
func (s fakeGroupStore) InTx(fn func(tx repository.GroupTx) error) error { return s.InGroupTx(fn) }

func (f *fakeGraph) groupStore() GroupStore { return fakeGroupStore{f} }

// fakePostStore adapts fakeGraph to PostStore the same way.
type fakePostStore struct{ *fakeGraph }

func (s fakePostStore) Create(p *model.Post) error { return s.CreatePost(p) }
func (s fakePostStore) GetByID(id uint) (*model.Post, error) { return s.GetPostByID(id) }

func (f *fakeGraph) postStore() PostStore { return fakePostStore{f} }

func (f *fakeGraph) CreateGroup(g *model.Group) error {
	f.nextGroupID++
	g.ID = f.nextGroupID
	f.groups[g.ID] = g
	return nil
}

func (f *fakeGraph) GetGroupByID(id uint) (*model.Group, error) {
	return f.groups[id], nil
}

func (f *fakeGraph) GroupsByIDs(ids []uint) ([]*model.Group, error) {
	out := make([]*model.Group, 0, len(ids))
	for _, id := range ids {
		if g, ok := f.groups[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGraph) ListAll() ([]*model.Group, error) {
	var out []*model.Group
	for _, id := range f.sortedGroupIDs() {
		out = append(out, f.groups[id])
	}
	return out, nil
}

func (f *fakeGraph) ListAllExcept(viewerID uint) ([]*model.Group, error) {
	var out []*model.Group
	for _, id := range f.sortedGroupIDs() {
		if _, member := f.memberships[[2]uint{viewerID, id}]; member {
			continue
		}
		out = append(out, f.groups[id])
	}
	return out, nil
}

func (f *fakeGraph) SearchGroupCandidates(term string, limit int) ([]*model.Group, error) {
	term = strings.ToLower(term)
	var out []*model.Group
	for _, id := range f.sortedGroupIDs() {
		g := f.groups[id]
		haystack := strings.ToLower(g.Name + " " + g.Description + " " + strings.Join(g.Topics, " "))
		if strings.Contains(haystack, term) {
			out = append(out, g)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeGraph) MembershipsOf(userID uint) ([]*model.Membership, error) {
	var out []*model.Membership
	for _, gid := range f.sortedGroupIDs() {
		if m, ok := f.memberships[[2]uint{userID, gid}]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeGraph) GetMembership(userID, groupID uint) (*model.Membership, error) {
	return f.memberships[[2]uint{userID, groupID}], nil
}

func (f *fakeGraph) CreateMembership(m *model.Membership) error {
	key := [2]uint{m.UserID, m.GroupID}
	if _, exists := f.memberships[key]; exists {
		return nil
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	f.memberships[key] = m
	return nil
}

func (f *fakeGraph) MemberIDs(groupID uint) ([]uint, error) {
	var out []uint
	for key := range f.memberships {
		if key[1] == groupID {
			out = append(out, key[0])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (f *fakeGraph) MemberRows(groupIDs []uint) ([]repository.GroupMemberRow, error) {
	want := make(map[uint]struct{}, len(groupIDs))
	for _, id := range groupIDs {
		want[id] = struct{}{}
	}
	var out []repository.GroupMemberRow
	for key, m := range f.memberships {
		if _, ok := want[key[1]]; ok {
			out = append(out, repository.GroupMemberRow{GroupID: key[1], UserID: key[0], Role: m.Role})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GroupID != out[j].GroupID {
			return out[i].GroupID < out[j].GroupID
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (f *fakeGraph) MemberCounts(groupIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(groupIDs))
	for key := range f.memberships {
		counts[key[1]]++
	}
	out := make(map[uint]int, len(groupIDs))
	for _, id := range groupIDs {
		out[id] = counts[id]
	}
	return out, nil
}

func (f *fakeGraph) InGroupTx(fn func(tx repository.GroupTx) error) error {
	return fn(f)
}

func (f *fakeGraph) LockMembership(userID, groupID uint) (*model.Membership, error) {
	return f.memberships[[2]uint{userID, groupID}], nil
}

func (f *fakeGraph) CountOwners(groupID uint) (int, error) {
	count := 0
	for key, m := range f.memberships {
		if key[1] == groupID && m.Role == model.RoleOwner {
			count++
		}
	}
	return count, nil
}

func (f *fakeGraph) DeleteMembership(userID, groupID uint) error {
	delete(f.memberships, [2]uint{userID, groupID})
	return nil
}

func (f *fakeGraph) sortedGroupIDs() []uint {
	ids := make([]uint, 0, len(f.groups))
	for id := range f.groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// --- PostStore ---

func (f *fakeGraph) CreatePost(p *model.Post) error {
	f.nextPostID++
	p.ID = f.nextPostID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	f.posts[p.ID] = p
	return nil
}

func (f *fakeGraph) GetPostByID(id uint) (*model.Post, error) {
	return f.posts[id], nil
}

func (f *fakeGraph) ByAuthor(authorID uint, limit int) ([]*model.Post, error) {
	var out []*model.Post
	for _, id := range f.sortedPostIDsByRecency() {
		if f.posts[id].AuthorID == authorID {
			out = append(out, f.posts[id])
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeGraph) ByAuthors(authorIDs []uint, visibilities []string, limit int) ([]*model.Post, error) {
	authors := make(map[uint]struct{}, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = struct{}{}
	}
	allowed := make(map[string]struct{}, len(visibilities))
	for _, v := range visibilities {
		allowed[v] = struct{}{}
	}
	var out []*model.Post
	for _, id := range f.sortedPostIDsByRecency() {
		p := f.posts[id]
		if _, ok := authors[p.AuthorID]; !ok {
			continue
		}
		if _, ok := allowed[p.Visibility]; !ok {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeGraph) LikedByUsers(userIDs []uint, excludeAuthorID uint, limit int) ([]*model.Post, error) {
	likers := make(map[uint]struct{}, len(userIDs))
	for _, id := range userIDs {
		likers[id] = struct{}{}
	}
	var out []*model.Post
	for _, id := range f.sortedPostIDsByRecency() {
		p := f.posts[id]
		if p.AuthorID == excludeAuthorID {
			continue
		}
		if p.Visibility != model.VisibilityFriends && p.Visibility != model.VisibilityPublic {
			continue
		}
		likedByAny := false
		for key := range f.likes {
			if key[1] == p.ID {
				if _, ok := likers[key[0]]; ok {
					likedByAny = true
					break
				}
			}
		}
		if likedByAny {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeGraph) LikesFor(postIDs []uint) ([]*model.PostLike, error) {
	want := make(map[uint]struct{}, len(postIDs))
	for _, id := range postIDs {
		want[id] = struct{}{}
	}
	var keys [][2]uint
	for key := range f.likes {
		if _, ok := want[key[1]]; ok {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][1] != keys[j][1] {
			return keys[i][1] < keys[j][1]
		}
		return keys[i][0] < keys[j][0]
	})
	out := make([]*model.PostLike, 0, len(keys))
	for _, key := range keys {
		out = append(out, &model.PostLike{UserID: key[0], PostID: key[1]})
	}
	return out, nil
}

func (f *fakeGraph) HasLike(userID, postID uint) (bool, error) {
	return f.likes[[2]uint{userID, postID}], nil
}

func (f *fakeGraph) CreateLike(userID, postID uint) error {
	f.likes[[2]uint{userID, postID}] = true
	return nil
}

func (f *fakeGraph) DeleteLike(userID, postID uint) error {
	delete(f.likes, [2]uint{userID, postID})
	return nil
}

func (f *fakeGraph) LikeCount(postID uint) (int, error) {
	count := 0
	for key := range f.likes {
		if key[1] == postID {
			count++
		}
	}
	return count, nil
}

func (f *fakeGraph) sortedPostIDsByRecency() []uint {
	ids := make([]uint, 0, len(f.posts))
	for id := range f.posts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := f.posts[ids[i]], f.posts[ids[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return ids
}

// downGraph fails every adjacency query, simulating a store outage.
type downGraph struct{ *fakeGraph }

func (downGraph) FriendIDs(uint) ([]uint, error) {
	return nil, errors.New("dial tcp: connection refused")
}
