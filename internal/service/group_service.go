package service

import (
	"fmt"
	"sort"
	"strings"

	"friendnet/internal/model"
	"friendnet/internal/repository"
	"friendnet/pkg/logger"

	"go.uber.org/zap"
)

// GroupInput carries a group creation request.
type GroupInput struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Topics      []string `json:"topics"`
	Cover       string   `json:"cover"`
}

// GroupView is a group with viewer-relative context attached.
type GroupView struct {
	GroupID     uint     `json:"group_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Topics      []string `json:"topics"`
	Cover       string   `json:"cover,omitempty"`
	MemberCount int      `json:"member_count"`
	IsMember    bool     `json:"is_member"`
	Role        string   `json:"role,omitempty"`
}

// GroupMember is one member of a group, flagged when the viewer is
// friends with them.
type GroupMember struct {
	User     UserSnippet `json:"user"`
	Role     string      `json:"role"`
	IsFriend bool        `json:"is_friend"`
}

// SimilarGroup is one group related to a base group by shared topics
// or overlapping members.
type SimilarGroup struct {
	GroupID      uint     `json:"group_id"`
	Name         string   `json:"name"`
	Cover        string   `json:"cover,omitempty"`
	SharedTopics []string `json:"shared_topics"`
	OverlapCount int      `json:"overlap_count"`
	MemberCount  int      `json:"member_count"`
}

// MemberCandidate is one member of a group the viewer is not yet
// connected to, surfaced as a friend candidate.
type MemberCandidate struct {
	User                 UserSnippet   `json:"user"`
	MutualFriendCount    int           `json:"mutual_friend_count"`
	MutualFriendsPreview []UserSnippet `json:"mutual_friends_preview"`
}

// GroupService manages groups and memberships.
type GroupService struct {
	groups GroupStore
	users  UserStore
	graph  GraphStore
}

// NewGroupService creates a GroupService.
func NewGroupService(groups GroupStore, users UserStore, graph GraphStore) *GroupService {
	return &GroupService{groups: groups, users: users, graph: graph}
}

// Create stores a new group and makes the creator its first owner.
func (s *GroupService) Create(creatorID uint, input GroupInput) (*GroupView, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	group := &model.Group{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Topics:      normalizeGroupTopics(input.Topics, input.Description),
		Cover:       strings.TrimSpace(input.Cover),
		CreatorID:   creatorID,
	}
	if err := s.groups.Create(group); err != nil {
		return nil, err
	}
	if err := s.groups.CreateMembership(&model.Membership{
		UserID:  creatorID,
		GroupID: group.ID,
		Role:    model.RoleOwner,
	}); err != nil {
		return nil, err
	}

	logger.Info("group created",
		zap.Uint("group_id", group.ID),
		zap.Uint("creator_id", creatorID))

	return &GroupView{
		GroupID:     group.ID,
		Name:        group.Name,
		Description: group.Description,
		Topics:      group.Topics,
		Cover:       group.Cover,
		MemberCount: 1,
		IsMember:    true,
		Role:        model.RoleOwner,
	}, nil
}

// Join adds the viewer to a group as a member. Joining a group twice
// is a no-op that reports the existing membership.
func (s *GroupService) Join(viewerID, groupID uint) (*GroupView, error) {
	group, err := s.groups.GetByID(groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, fmt.Errorf("%w: group %d", ErrNotFound, groupID)
	}

	if err := s.groups.CreateMembership(&model.Membership{
		UserID:  viewerID,
		GroupID: groupID,
		Role:    model.RoleMember,
	}); err != nil {
		return nil, err
	}
	return s.Detail(viewerID, groupID)
}

// Leave removes the viewer's membership. The last remaining owner may
// not leave; some other member must be promoted first.
func (s *GroupService) Leave(viewerID, groupID uint) error {
	group, err := s.groups.GetByID(groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return fmt.Errorf("%w: group %d", ErrNotFound, groupID)
	}

	err = s.groups.InTx(func(tx repository.GroupTx) error {
		membership, err := tx.LockMembership(viewerID, groupID)
		if err != nil {
			return err
		}
		if membership == nil {
			return fmt.Errorf("%w: not a member of group %d", ErrNotFound, groupID)
		}
		if membership.Role == model.RoleOwner {
			owners, err := tx.CountOwners(groupID)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return fmt.Errorf("%w: last owner cannot leave group %d", ErrConflict, groupID)
			}
		}
		return tx.DeleteMembership(viewerID, groupID)
	})
	if err != nil {
		return err
	}

	logger.Info("left group",
		zap.Uint("group_id", groupID),
		zap.Uint("user_id", viewerID))
	return nil
}

// Mine lists the viewer's groups, newest membership first by store
// order, each with member counts.
func (s *GroupService) Mine(viewerID uint) ([]GroupView, error) {
	memberships, err := s.groups.MembershipsOf(viewerID)
	if err != nil {
		return nil, unavailable("memberships", err)
	}

	groupIDs := make([]uint, 0, len(memberships))
	roles := make(map[uint]string, len(memberships))
	for _, m := range memberships {
		groupIDs = append(groupIDs, m.GroupID)
		roles[m.GroupID] = m.Role
	}

	groups, err := s.groups.GroupsByIDs(groupIDs)
	if err != nil {
		return nil, unavailable("groups", err)
	}
	counts, err := s.groups.MemberCounts(groupIDs)
	if err != nil {
		return nil, unavailable("member counts", err)
	}

	byID := make(map[uint]*model.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}

	views := make([]GroupView, 0, len(groupIDs))
	for _, gid := range groupIDs {
		g, ok := byID[gid]
		if !ok {
			continue
		}
		views = append(views, GroupView{
			GroupID:     g.ID,
			Name:        g.Name,
			Description: g.Description,
			Topics:      g.Topics,
			Cover:       g.Cover,
			MemberCount: counts[gid],
			IsMember:    true,
			Role:        roles[gid],
		})
	}
	return views, nil
}

// Detail returns one group with the viewer's membership attached.
func (s *GroupService) Detail(viewerID, groupID uint) (*GroupView, error) {
	group, err := s.groups.GetByID(groupID)
	if err != nil {
		return nil, unavailable("load group", err)
	}
	if group == nil {
		return nil, fmt.Errorf("%w: group %d", ErrNotFound, groupID)
	}

	counts, err := s.groups.MemberCounts([]uint{groupID})
	if err != nil {
		return nil, unavailable("member counts", err)
	}
	membership, err := s.groups.GetMembership(viewerID, groupID)
	if err != nil {
		return nil, unavailable("membership", err)
	}

	view := &GroupView{
		GroupID:     group.ID,
		Name:        group.Name,
		Description: group.Description,
		Topics:      group.Topics,
		Cover:       group.Cover,
		MemberCount: counts[groupID],
	}
	if membership != nil {
		view.IsMember = true
		view.Role = membership.Role
	}
	return view, nil
}

// Members lists a group's members with the viewer's friends first,
// then by name.
func (s *GroupService) Members(viewerID, groupID uint) ([]GroupMember, error) {
	group, err := s.groups.GetByID(groupID)
	if err != nil {
		return nil, unavailable("load group", err)
	}
	if group == nil {
		return nil, fmt.Errorf("%w: group %d", ErrNotFound, groupID)
	}

	memberIDs, err := s.groups.MemberIDs(groupID)
	if err != nil {
		return nil, unavailable("group members", err)
	}
	users, err := s.users.UsersByIDs(memberIDs)
	if err != nil {
		return nil, unavailable("users", err)
	}
	friendIDs, err := s.graph.FriendIDs(viewerID)
	if err != nil {
		return nil, unavailable("friend ids", err)
	}
	friendSet := idSet(friendIDs)

	rows, err := s.groups.MemberRows([]uint{groupID})
	if err != nil {
		return nil, unavailable("member roles", err)
	}
	rolesByUser := make(map[uint]string, len(rows))
	for _, row := range rows {
		rolesByUser[row.UserID] = row.Role
	}

	members := make([]GroupMember, 0, len(users))
	for _, u := range users {
		_, isFriend := friendSet[u.ID]
		members = append(members, GroupMember{
			User:     newUserSnippet(u),
			Role:     rolesByUser[u.ID],
			IsFriend: isFriend,
		})
	}

	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.IsFriend != b.IsFriend {
			return a.IsFriend
		}
		na, nb := strings.ToLower(a.User.Name), strings.ToLower(b.User.Name)
		if na != nb {
			return na < nb
		}
		return a.User.ID < b.User.ID
	})
	return members, nil
}

// SimilarGroups finds groups related to a base group by shared topics
// and overlapping members, most related first.
func (s *GroupService) SimilarGroups(groupID uint, limit int) ([]SimilarGroup, error) {
	base, err := s.groups.GetByID(groupID)
	if err != nil {
		return nil, unavailable("load group", err)
	}
	if base == nil {
		return nil, fmt.Errorf("%w: group %d", ErrNotFound, groupID)
	}
	if limit <= 0 {
		limit = 5
	}

	candidates, err := s.groups.ListAll()
	if err != nil {
		return nil, unavailable("group pool", err)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	baseMembers, err := s.groups.MemberIDs(groupID)
	if err != nil {
		return nil, unavailable("group members", err)
	}
	baseMemberSet := idSet(baseMembers)

	candidateIDs := make([]uint, 0, len(candidates))
	for _, g := range candidates {
		if g.ID != groupID {
			candidateIDs = append(candidateIDs, g.ID)
		}
	}
	memberRows, err := s.groups.MemberRows(candidateIDs)
	if err != nil {
		return nil, unavailable("group members", err)
	}
	membersByGroup := make(map[uint][]uint)
	for _, row := range memberRows {
		membersByGroup[row.GroupID] = append(membersByGroup[row.GroupID], row.UserID)
	}

	similar := make([]SimilarGroup, 0, len(candidates))
	for _, g := range candidates {
		if g.ID == groupID {
			continue
		}

		shared := sharedInterests(base.Topics, g.Topics)
		overlap := 0
		for _, uid := range membersByGroup[g.ID] {
			if _, ok := baseMemberSet[uid]; ok {
				overlap++
			}
		}
		if len(shared) == 0 && overlap == 0 {
			continue
		}

		similar = append(similar, SimilarGroup{
			GroupID:      g.ID,
			Name:         g.Name,
			Cover:        g.Cover,
			SharedTopics: shared,
			OverlapCount: overlap,
			MemberCount:  len(membersByGroup[g.ID]),
		})
	}

	sort.SliceStable(similar, func(i, j int) bool {
		a, b := similar[i], similar[j]
		if len(a.SharedTopics) != len(b.SharedTopics) {
			return len(a.SharedTopics) > len(b.SharedTopics)
		}
		if a.OverlapCount != b.OverlapCount {
			return a.OverlapCount > b.OverlapCount
		}
		if a.MemberCount != b.MemberCount {
			return a.MemberCount > b.MemberCount
		}
		return a.GroupID < b.GroupID
	})

	if len(similar) > limit {
		similar = similar[:limit]
	}
	return similar, nil
}

// MemberSuggestions proposes fellow group members the viewer is not
// yet connected to, ranked by mutual friends. The exclusion set is the
// same as friend suggestions: friends, pending requests in either
// direction, dismissed users and the viewer never appear.
func (s *GroupService) MemberSuggestions(viewerID, groupID uint, limit int) ([]MemberCandidate, error) {
	group, err := s.groups.GetByID(groupID)
	if err != nil {
		return nil, unavailable("load group", err)
	}
	if group == nil {
		return nil, fmt.Errorf("%w: group %d", ErrNotFound, groupID)
	}
	if limit <= 0 {
		limit = 10
	}

	friendIDs, err := s.graph.FriendIDs(viewerID)
	if err != nil {
		return nil, unavailable("friend ids", err)
	}
	outgoing, err := s.graph.OutgoingRequestTargetIDs(viewerID)
	if err != nil {
		return nil, unavailable("outgoing requests", err)
	}
	incoming, err := s.graph.IncomingRequestSenderIDs(viewerID)
	if err != nil {
		return nil, unavailable("incoming requests", err)
	}
	dismissed, err := s.graph.DismissedTargetIDs(viewerID)
	if err != nil {
		return nil, unavailable("dismissals", err)
	}

	excluded := idSet(friendIDs)
	for _, id := range outgoing {
		excluded[id] = struct{}{}
	}
	for _, id := range incoming {
		excluded[id] = struct{}{}
	}
	for _, id := range dismissed {
		excluded[id] = struct{}{}
	}
	excluded[viewerID] = struct{}{}

	memberIDs, err := s.groups.MemberIDs(groupID)
	if err != nil {
		return nil, unavailable("group members", err)
	}
	candidateIDs := make([]uint, 0, len(memberIDs))
	for _, id := range memberIDs {
		if _, skip := excluded[id]; skip {
			continue
		}
		candidateIDs = append(candidateIDs, id)
	}
	if len(candidateIDs) == 0 {
		return []MemberCandidate{}, nil
	}

	friendSet := idSet(friendIDs)
	edges, err := s.graph.FriendEdgesOf(candidateIDs)
	if err != nil {
		return nil, unavailable("friend edges", err)
	}
	mutualsByCandidate := make(map[uint][]uint)
	for _, edge := range edges {
		if _, ok := friendSet[edge.FriendID]; ok {
			mutualsByCandidate[edge.UserID] = append(mutualsByCandidate[edge.UserID], edge.FriendID)
		}
	}

	snippetIDs := append([]uint{}, candidateIDs...)
	for _, mutuals := range mutualsByCandidate {
		snippetIDs = append(snippetIDs, mutuals...)
	}
	users, err := s.users.UsersByIDs(snippetIDs)
	if err != nil {
		return nil, unavailable("user snippets", err)
	}
	snippets := snippetsByID(users)

	candidates := make([]MemberCandidate, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		snippet, ok := snippets[id]
		if !ok {
			continue
		}
		mutuals := mutualsByCandidate[id]
		sort.Slice(mutuals, func(i, j int) bool { return mutuals[i] < mutuals[j] })

		candidate := MemberCandidate{
			User:                 snippet,
			MutualFriendCount:    len(mutuals),
			MutualFriendsPreview: make([]UserSnippet, 0, mutualPreviewSize),
		}
		for _, mid := range mutuals {
			if len(candidate.MutualFriendsPreview) == mutualPreviewSize {
				break
			}
			if ms, ok := snippets[mid]; ok {
				candidate.MutualFriendsPreview = append(candidate.MutualFriendsPreview, ms)
			}
		}
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.MutualFriendCount != b.MutualFriendCount {
			return a.MutualFriendCount > b.MutualFriendCount
		}
		na, nb := strings.ToLower(a.User.Name), strings.ToLower(b.User.Name)
		if na != nb {
			return na < nb
		}
		return a.User.ID < b.User.ID
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
