package service

import (
	"fmt"
	"sort"
	"strings"

	"friendnet/config"
	"friendnet/internal/model"
	"friendnet/pkg/cache"
)

// Candidate generation strategies.
const (
	StrategyMutual    = "mutual"
	StrategyGlobal    = "global"
	StrategyFriends   = "friends"
	StrategyInterests = "interests"
	StrategyPopular   = "popular"
)

// globalPoolSize bounds the fallback candidate pool fetched per
// request.
const globalPoolSize = 200

// searchPoolMultiplier over-fetches search candidates before scoring.
const searchPoolMultiplier = 4

// Preview caps attached to suggestion and search payloads.
const (
	mutualPreviewSize      = 4
	groupFriendPreviewSize = 4
	groupTopicPreviewSize  = 3
)

// Social boosts added on top of the text match score.
const (
	manyConnectionsBoost = 8
	someConnectionsBoost = 4
	manyTopicsBoost      = 4
	someTopicsBoost      = 2
)

// SuggestionFilters narrows friend suggestions. A zero value applies no
// filtering.
type SuggestionFilters struct {
	MutualMin              int    `form:"mutual_min"`
	City                   string `form:"city"`
	Interest               string `form:"interest"`
	IncludeInterestMatches bool   `form:"include_interests"`
	Limit                  int    `form:"limit"`
}

// FriendSuggestion is one ranked friend candidate.
type FriendSuggestion struct {
	CandidateID          uint          `json:"candidate_id"`
	Name                 string        `json:"name"`
	Avatar               string        `json:"avatar,omitempty"`
	Headline             string        `json:"headline,omitempty"`
	City                 string        `json:"city,omitempty"`
	MutualFriendCount    int           `json:"mutual_friend_count"`
	MutualFriendsPreview []UserSnippet `json:"mutual_friends_preview"`
	SharedInterests      []string      `json:"shared_interests,omitempty"`
	Strategies           []string      `json:"strategies"`

	sharedInterestCount int
}

// UserSearchResult is one ranked match for a user search.
type UserSearchResult struct {
	Candidate         UserSnippet   `json:"candidate"`
	Status            RelationState `json:"status"`
	MutualFriendCount int           `json:"mutual_friend_count"`
	SharedInterests   []string      `json:"shared_interests,omitempty"`
	MatchScore        int           `json:"match_score"`
}

// GroupSuggestion is one ranked group candidate. Reason is the primary
// bucket; Strategies lists every strategy that proposed the group.
type GroupSuggestion struct {
	GroupID             uint          `json:"group_id"`
	Name                string        `json:"name"`
	Cover               string        `json:"cover,omitempty"`
	Reason              string        `json:"reason"`
	Strategies          []string      `json:"strategies"`
	FriendCount         int           `json:"friend_count"`
	SharedTopicCount    int           `json:"shared_topic_count"`
	MemberCount         int           `json:"member_count"`
	FriendMembers       []UserSnippet `json:"friend_members,omitempty"`
	SharedTopicsPreview []string      `json:"shared_topics_preview,omitempty"`
}

// GroupSearchResult is one ranked match for a group search.
type GroupSearchResult struct {
	GroupID           uint          `json:"group_id"`
	Name              string        `json:"name"`
	Description       string        `json:"description,omitempty"`
	Cover             string        `json:"cover,omitempty"`
	Topics            []string      `json:"topics"`
	MemberCount       int           `json:"member_count"`
	FriendMemberCount int           `json:"friend_member_count"`
	FriendMembers     []UserSnippet `json:"friend_members"`
	SharedTopics      []string      `json:"shared_topics"`
	IsMember          bool          `json:"is_member"`
	MatchScore        int           `json:"match_score"`
}

// SuggestionService generates, merges and ranks candidates. It is a
// pure read-then-compute pipeline: each call issues one query per
// strategy, merges overlapping evidence by candidate, then applies a
// deterministic sort key.
type SuggestionService struct {
	users  UserStore
	graph  GraphStore
	groups GroupStore
	cfg    config.EngineConfig
}

// NewSuggestionService creates a SuggestionService.
func NewSuggestionService(users UserStore, graph GraphStore, groups GroupStore, cfg config.EngineConfig) *SuggestionService {
	return &SuggestionService{users: users, graph: graph, groups: groups, cfg: cfg}
}

// FriendSuggestions returns ranked friend candidates for the viewer.
//
// Strategy "mutual" expands friend-of-friend edges; strategy "global"
// is a bounded pool of not-yet-connected users. Candidates proposed by
// both keep both tags. Friends, pending requests in either direction,
// dismissed users and the viewer are never candidates.
func (s *SuggestionService) FriendSuggestions(viewerID uint, filters SuggestionFilters) ([]FriendSuggestion, error) {
	if filters.MutualMin < 0 {
		return nil, fmt.Errorf("%w: mutual_min must be >= 0", ErrInvalidInput)
	}
	if filters.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must be >= 0", ErrInvalidInput)
	}
	limit := filters.Limit
	if limit == 0 {
		limit = s.cfg.SuggestionLimit
	}

	cacheable := filters == SuggestionFilters{IncludeInterestMatches: true}
	if cacheable {
		var cached []FriendSuggestion
		if cache.GetSuggestions(viewerID, &cached) {
			return truncateSuggestions(cached, limit), nil
		}
	}

	viewer, err := s.users.GetByID(viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: viewer %d", ErrNotFound, viewerID)
	}

	excluded, friendIDs, err := s.excludedCandidates(viewerID)
	if err != nil {
		return nil, err
	}

	// Strategy "mutual": one adjacency expansion over the viewer's
	// friends, accumulating the contributing friend per candidate.
	edges, err := s.graph.FriendEdgesOf(friendIDs)
	if err != nil {
		return nil, unavailable("friend edges", err)
	}
	mutualsByCandidate := make(map[uint][]uint)
	for _, edge := range edges {
		candidateID := edge.FriendID
		if _, skip := excluded[candidateID]; skip {
			continue
		}
		mutualsByCandidate[candidateID] = append(mutualsByCandidate[candidateID], edge.UserID)
	}

	// Strategy "global": a bounded fallback pool of unconnected users.
	pool, err := s.users.AllExcept(viewerID, globalPoolSize)
	if err != nil {
		return nil, unavailable("candidate pool", err)
	}

	strategies := make(map[uint][]string)
	candidateIDs := make([]uint, 0, len(mutualsByCandidate)+len(pool))
	for id := range mutualsByCandidate {
		strategies[id] = []string{StrategyMutual}
		candidateIDs = append(candidateIDs, id)
	}
	for _, u := range pool {
		if _, skip := excluded[u.ID]; skip {
			continue
		}
		if _, seen := strategies[u.ID]; seen {
			strategies[u.ID] = append(strategies[u.ID], StrategyGlobal)
			continue
		}
		strategies[u.ID] = []string{StrategyGlobal}
		candidateIDs = append(candidateIDs, u.ID)
	}

	candidates, err := s.users.UsersByIDs(candidateIDs)
	if err != nil {
		return nil, unavailable("candidates", err)
	}
	// Deterministic base order before the ranking sort.
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	mutualUserIDs := make([]uint, 0)
	for _, ids := range mutualsByCandidate {
		mutualUserIDs = append(mutualUserIDs, ids...)
	}
	mutualUsers, err := s.users.UsersByIDs(mutualUserIDs)
	if err != nil {
		return nil, unavailable("mutual friends", err)
	}
	mutualSnippets := snippetsByID(mutualUsers)

	suggestions := make([]FriendSuggestion, 0, len(candidates))
	for _, candidate := range candidates {
		mutualIDs := mutualsByCandidate[candidate.ID]
		shared := sharedInterests(viewer.Interests, candidate.Interests)

		suggestion := FriendSuggestion{
			CandidateID:          candidate.ID,
			Name:                 candidate.Name,
			Avatar:               candidate.Avatar,
			Headline:             candidate.Headline,
			City:                 candidate.City,
			MutualFriendCount:    len(mutualIDs),
			MutualFriendsPreview: make([]UserSnippet, 0, mutualPreviewSize),
			Strategies:           strategies[candidate.ID],
			sharedInterestCount:  len(shared),
		}
		for _, mid := range mutualIDs {
			if len(suggestion.MutualFriendsPreview) == mutualPreviewSize {
				break
			}
			if snippet, ok := mutualSnippets[mid]; ok {
				suggestion.MutualFriendsPreview = append(suggestion.MutualFriendsPreview, snippet)
			}
		}
		if filters.IncludeInterestMatches {
			suggestion.SharedInterests = shared
		}

		if !s.keepSuggestion(candidate.City, candidate.Interests, suggestion, filters) {
			continue
		}
		suggestions = append(suggestions, suggestion)
	}

	sortFriendSuggestions(suggestions)

	if cacheable {
		cache.SetSuggestions(viewerID, suggestions, s.cfg.CacheTTL)
	}
	return truncateSuggestions(suggestions, limit), nil
}

func (s *SuggestionService) keepSuggestion(city string, interests []string, suggestion FriendSuggestion, filters SuggestionFilters) bool {
	if suggestion.MutualFriendCount < filters.MutualMin {
		return false
	}
	if filters.City != "" && !strings.EqualFold(city, filters.City) {
		return false
	}
	if filters.Interest != "" && !containsFold(interests, filters.Interest) {
		return false
	}
	return true
}

// sortFriendSuggestions applies the ranking key: mutual-sourced first,
// then mutual count, shared interests, case-insensitive name, and
// candidate ID as the last resort so equal names stay deterministic.
func sortFriendSuggestions(suggestions []FriendSuggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		pa, pb := strategyPriority(a.Strategies), strategyPriority(b.Strategies)
		if pa != pb {
			return pa < pb
		}
		if a.MutualFriendCount != b.MutualFriendCount {
			return a.MutualFriendCount > b.MutualFriendCount
		}
		if a.sharedInterestCount != b.sharedInterestCount {
			return a.sharedInterestCount > b.sharedInterestCount
		}
		na, nb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if na != nb {
			return na < nb
		}
		return a.CandidateID < b.CandidateID
	})
}

func strategyPriority(strategies []string) int {
	for _, strategy := range strategies {
		if strategy == StrategyMutual {
			return 0
		}
	}
	return 1
}

func truncateSuggestions(suggestions []FriendSuggestion, limit int) []FriendSuggestion {
	if len(suggestions) > limit {
		return suggestions[:limit]
	}
	return suggestions
}

// excludedCandidates returns the set of user IDs that must never be
// suggested to the viewer, plus the viewer's friend IDs.
func (s *SuggestionService) excludedCandidates(viewerID uint) (map[uint]struct{}, []uint, error) {
	friendIDs, err := s.graph.FriendIDs(viewerID)
	if err != nil {
		return nil, nil, unavailable("friend ids", err)
	}
	outgoing, err := s.graph.OutgoingRequestTargetIDs(viewerID)
	if err != nil {
		return nil, nil, unavailable("outgoing requests", err)
	}
	incoming, err := s.graph.IncomingRequestSenderIDs(viewerID)
	if err != nil {
		return nil, nil, unavailable("incoming requests", err)
	}
	dismissed, err := s.graph.DismissedTargetIDs(viewerID)
	if err != nil {
		return nil, nil, unavailable("dismissals", err)
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
	return excluded, friendIDs, nil
}

// SearchUsers ranks users against a search term with a weighted
// additive score, then breaks ties by relationship status, mutual
// count and name.
func (s *SuggestionService) SearchUsers(viewerID uint, term string, limit int) ([]UserSearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []UserSearchResult{}, nil
	}
	if limit <= 0 {
		limit = s.cfg.SuggestionLimit
	}

	viewer, err := s.users.GetByID(viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: viewer %d", ErrNotFound, viewerID)
	}

	candidates, err := s.users.SearchCandidates(term, limit*searchPoolMultiplier)
	if err != nil {
		return nil, unavailable("search candidates", err)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

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
	friendSet := idSet(friendIDs)
	outgoingSet := idSet(outgoing)
	incomingSet := idSet(incoming)

	edges, err := s.graph.FriendEdgesOf(friendIDs)
	if err != nil {
		return nil, unavailable("friend edges", err)
	}
	mutualCounts := make(map[uint]int)
	for _, edge := range edges {
		mutualCounts[edge.FriendID]++
	}

	lowerTerm := strings.ToLower(term)
	results := make([]UserSearchResult, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == viewerID {
			continue
		}

		base := s.textMatchScore(candidate.Name, candidate.Headline+" "+candidate.About, candidate.Interests, lowerTerm)
		if base == 0 {
			continue
		}

		mutualCount := mutualCounts[candidate.ID]
		shared := sharedInterests(viewer.Interests, candidate.Interests)

		score := base
		switch {
		case mutualCount >= s.cfg.SearchManyMutualsMin:
			score += manyConnectionsBoost
		case mutualCount > 0:
			score += someConnectionsBoost
		}
		switch {
		case len(shared) >= 2:
			score += manyTopicsBoost
		case len(shared) > 0:
			score += someTopicsBoost
		}

		status := StateNone
		switch {
		case contains(friendSet, candidate.ID):
			status = StateFriend
		case contains(incomingSet, candidate.ID):
			status = StateIncoming
		case contains(outgoingSet, candidate.ID):
			status = StateOutgoing
		}

		results = append(results, UserSearchResult{
			Candidate:         newUserSnippet(candidate),
			Status:            status,
			MutualFriendCount: mutualCount,
			SharedInterests:   shared,
			MatchScore:        score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		sa, sb := statusPriority(a.Status), statusPriority(b.Status)
		if sa != sb {
			return sa < sb
		}
		if a.MutualFriendCount != b.MutualFriendCount {
			return a.MutualFriendCount > b.MutualFriendCount
		}
		na, nb := strings.ToLower(a.Candidate.Name), strings.ToLower(b.Candidate.Name)
		if na != nb {
			return na < nb
		}
		return a.Candidate.ID < b.Candidate.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// textMatchScore is the shared base score for user and group search.
func (s *SuggestionService) textMatchScore(name, details string, topics []string, lowerTerm string) int {
	lowerName := strings.ToLower(name)
	lowerDetails := strings.ToLower(details)

	score := 0
	if strings.HasPrefix(lowerName, lowerTerm) {
		score += s.cfg.SearchPrefixScore
	}
	if strings.Contains(lowerName, lowerTerm) {
		score += s.cfg.SearchNameScore
	}
	if strings.Contains(lowerDetails, lowerTerm) {
		score += s.cfg.SearchDetailScore
	}
	for _, topic := range topics {
		if strings.Contains(strings.ToLower(topic), lowerTerm) {
			score += s.cfg.SearchTopicScore
			break
		}
	}
	return score
}

// statusPriority orders relationship states for search tie-breaks:
// friends surface first, then incoming requests, outgoing, strangers.
func statusPriority(state RelationState) int {
	switch state {
	case StateFriend:
		return 0
	case StateIncoming:
		return 1
	case StateOutgoing:
		return 2
	default:
		return 3
	}
}

func contains(set map[uint]struct{}, id uint) bool {
	_, ok := set[id]
	return ok
}

// groupReasonRank orders suggestion buckets: friends < interests <
// popular.
func groupReasonRank(reason string) int {
	switch reason {
	case StrategyFriends:
		return 0
	case StrategyInterests:
		return 1
	default:
		return 2
	}
}

// GroupSuggestions returns ranked group candidates for the viewer from
// three strategies: groups the viewer's friends belong to, groups whose
// members share the viewer's interests, and a popularity fallback.
// A group proposed by several strategies merges into one record tagged
// with all of them; its primary reason is the best bucket.
func (s *SuggestionService) GroupSuggestions(viewerID uint, limit int) ([]GroupSuggestion, error) {
	if limit <= 0 {
		limit = s.cfg.SuggestionLimit
	}

	viewer, err := s.users.GetByID(viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: viewer %d", ErrNotFound, viewerID)
	}
	friendIDs, err := s.graph.FriendIDs(viewerID)
	if err != nil {
		return nil, unavailable("friend ids", err)
	}
	friendSet := idSet(friendIDs)

	pool, err := s.groups.ListAllExcept(viewerID)
	if err != nil {
		return nil, unavailable("group pool", err)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })

	groupIDs := make([]uint, 0, len(pool))
	for _, g := range pool {
		groupIDs = append(groupIDs, g.ID)
	}
	memberRows, err := s.groups.MemberRows(groupIDs)
	if err != nil {
		return nil, unavailable("group members", err)
	}
	membersByGroup := make(map[uint][]uint)
	memberIDSet := make(map[uint]struct{})
	for _, row := range memberRows {
		membersByGroup[row.GroupID] = append(membersByGroup[row.GroupID], row.UserID)
		memberIDSet[row.UserID] = struct{}{}
	}

	memberIDs := make([]uint, 0, len(memberIDSet))
	for uid := range memberIDSet {
		memberIDs = append(memberIDs, uid)
	}
	memberUsers, err := s.users.UsersByIDs(memberIDs)
	if err != nil {
		return nil, unavailable("group members", err)
	}
	usersByID := make(map[uint]*model.User, len(memberUsers))
	for _, u := range memberUsers {
		usersByID[u.ID] = u
	}

	suggestions := make([]GroupSuggestion, 0, len(pool))
	for _, g := range pool {
		members := membersByGroup[g.ID]

		var friendMembers []UserSnippet
		for _, uid := range members {
			if _, ok := friendSet[uid]; !ok {
				continue
			}
			if u, ok := usersByID[uid]; ok && len(friendMembers) < groupFriendPreviewSize {
				friendMembers = append(friendMembers, newUserSnippet(u))
			}
		}
		friendCount := 0
		for _, uid := range members {
			if _, ok := friendSet[uid]; ok {
				friendCount++
			}
		}

		// Aggregate member interests against the viewer's.
		var memberInterests []string
		for _, uid := range members {
			if u, ok := usersByID[uid]; ok {
				memberInterests = append(memberInterests, u.Interests...)
			}
		}
		shared := sharedInterests(viewer.Interests, memberInterests)

		var tags []string
		if friendCount > 0 {
			tags = append(tags, StrategyFriends)
		}
		if len(shared) > 0 {
			tags = append(tags, StrategyInterests)
		}
		tags = append(tags, StrategyPopular)

		preview := shared
		if len(preview) > groupTopicPreviewSize {
			preview = preview[:groupTopicPreviewSize]
		}

		suggestions = append(suggestions, GroupSuggestion{
			GroupID:             g.ID,
			Name:                g.Name,
			Cover:               g.Cover,
			Reason:              tags[0],
			Strategies:          tags,
			FriendCount:         friendCount,
			SharedTopicCount:    len(shared),
			MemberCount:         len(members),
			FriendMembers:       friendMembers,
			SharedTopicsPreview: preview,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ra, rb := groupReasonRank(a.Reason), groupReasonRank(b.Reason)
		if ra != rb {
			return ra < rb
		}
		if a.FriendCount != b.FriendCount {
			return a.FriendCount > b.FriendCount
		}
		if a.SharedTopicCount != b.SharedTopicCount {
			return a.SharedTopicCount > b.SharedTopicCount
		}
		if a.MemberCount != b.MemberCount {
			return a.MemberCount > b.MemberCount
		}
		na, nb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if na != nb {
			return na < nb
		}
		return a.GroupID < b.GroupID
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// SearchGroups ranks groups against a search term, combining the text
// match with friend-membership and shared-topic boosts.
func (s *SuggestionService) SearchGroups(viewerID uint, term string, limit int) ([]GroupSearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []GroupSearchResult{}, nil
	}
	if limit <= 0 {
		limit = s.cfg.SuggestionLimit
	}

	viewer, err := s.users.GetByID(viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: viewer %d", ErrNotFound, viewerID)
	}
	friendIDs, err := s.graph.FriendIDs(viewerID)
	if err != nil {
		return nil, unavailable("friend ids", err)
	}
	friendSet := idSet(friendIDs)

	candidates, err := s.groups.SearchCandidates(term, limit*searchPoolMultiplier)
	if err != nil {
		return nil, unavailable("search candidates", err)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	groupIDs := make([]uint, 0, len(candidates))
	for _, g := range candidates {
		groupIDs = append(groupIDs, g.ID)
	}
	memberRows, err := s.groups.MemberRows(groupIDs)
	if err != nil {
		return nil, unavailable("group members", err)
	}
	membersByGroup := make(map[uint][]uint)
	for _, row := range memberRows {
		membersByGroup[row.GroupID] = append(membersByGroup[row.GroupID], row.UserID)
	}

	friendUsers, err := s.users.UsersByIDs(friendIDs)
	if err != nil {
		return nil, unavailable("friend snippets", err)
	}
	friendSnippets := snippetsByID(friendUsers)

	lowerTerm := strings.ToLower(term)
	results := make([]GroupSearchResult, 0, len(candidates))
	for _, g := range candidates {
		base := s.textMatchScore(g.Name, g.Description, g.Topics, lowerTerm)
		if base == 0 {
			continue
		}

		members := membersByGroup[g.ID]
		memberSet := idSet(members)
		isMember := contains(memberSet, viewerID)

		friendMemberCount := 0
		friendMembers := make([]UserSnippet, 0, groupFriendPreviewSize)
		for _, uid := range members {
			if _, ok := friendSet[uid]; !ok {
				continue
			}
			friendMemberCount++
			if snippet, ok := friendSnippets[uid]; ok && len(friendMembers) < groupFriendPreviewSize {
				friendMembers = append(friendMembers, snippet)
			}
		}

		shared := sharedInterests(viewer.Interests, g.Topics)

		score := base
		switch {
		case friendMemberCount >= s.cfg.SearchManyMutualsMin:
			score += manyConnectionsBoost
		case friendMemberCount > 0:
			score += someConnectionsBoost
		}
		switch {
		case len(shared) >= 2:
			score += manyTopicsBoost
		case len(shared) > 0:
			score += someTopicsBoost
		}

		result := GroupSearchResult{
			GroupID:           g.ID,
			Name:              g.Name,
			Description:       g.Description,
			Cover:             g.Cover,
			Topics:            g.Topics,
			MemberCount:       len(members),
			FriendMemberCount: friendMemberCount,
			FriendMembers:     friendMembers,
			SharedTopics:      shared,
			IsMember:          isMember,
			MatchScore:        score,
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if a.IsMember != b.IsMember {
			return a.IsMember
		}
		if a.FriendMemberCount != b.FriendMemberCount {
			return a.FriendMemberCount > b.FriendMemberCount
		}
		if a.MemberCount != b.MemberCount {
			return a.MemberCount > b.MemberCount
		}
		na, nb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if na != nb {
			return na < nb
		}
		return a.GroupID < b.GroupID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
