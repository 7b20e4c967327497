package service

import (
	"testing"

	"friendnet/config"
	"friendnet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSuggestionFixture() (*fakeGraph, *SuggestionService) {
	f := newFakeGraph()
	return f, NewSuggestionService(f, f, f.groupStore(), config.DefaultEngineConfig())
}

func suggestionIDs(suggestions []FriendSuggestion) []uint {
	ids := make([]uint, 0, len(suggestions))
	for _, s := range suggestions {
		ids = append(ids, s.CandidateID)
	}
	return ids
}

func TestFriendSuggestionsExcludeConnectedUsers(t *testing.T) {
	f, svc := newSuggestionFixture()
	viewer := f.addUser("Viewer")
	friend := f.addUser("Friend")
	requested := f.addUser("Requested")
	requester := f.addUser("Requester")
	dismissed := f.addUser("Dismissed")
	stranger := f.addUser("Stranger")

	f.befriend(viewer.ID, friend.ID)
	f.addRequest(viewer.ID, requested.ID)
	f.addRequest(requester.ID, viewer.ID)
	f.dismissals[[2]uint{viewer.ID, dismissed.ID}] = true

	suggestions, err := svc.FriendSuggestions(viewer.ID, SuggestionFilters{})
	require.NoError(t, err)

	ids := suggestionIDs(suggestions)
	assert.Contains(t, ids, stranger.ID)
	assert.NotContains(t, ids, viewer.ID)
	assert.NotContains(t, ids, friend.ID)
	assert.NotContains(t, ids, requested.ID)
	assert.NotContains(t, ids, requester.ID)
	assert.NotContains(t, ids, dismissed.ID)
}

func TestFriendSuggestionsMutualFirstThenCount(t *testing.T) {
	f, svc := newSuggestionFixture()
	viewer := f.addUser("Viewer")
	f1 := f.addUser("Friend One")
	f2 := f.addUser("Friend Two")
	oneMutual := f.addUser("Aaron")
	twoMutuals := f.addUser("Zoe")
	noMutual := f.addUser("Bert")

	f.befriend(viewer.ID, f1.ID)
	f.befriend(viewer.ID, f2.ID)
	f.befriend(f1.ID, twoMutuals.ID)
	f.befriend(f2.ID, twoMutuals.ID)
	f.befriend(f1.ID, oneMutual.ID)

	suggestions, err := svc.FriendSuggestions(viewer.ID, SuggestionFilters{})
	require.NoError(t, err)
	require.Len(t, suggestions, 3)

	// Two mutuals beats one, mutual-sourced beats global even when the
	// global candidate's name sorts first.
	assert.Equal(t, twoMutuals.ID, suggestions[0].CandidateID)
	assert.Equal(t, 2, suggestions[0].MutualFriendCount)
	assert.Equal(t, oneMutual.ID, suggestions[1].CandidateID)
	assert.Equal(t, noMutual.ID, suggestions[2].CandidateID)

	assert.Contains(t, suggestions[0].Strategies, StrategyMutual)
	assert.Contains(t, suggestions[2].Strategies, StrategyGlobal)
}

func TestFriendSuggestionsTieBreakByName(t *testing.T) {
	f, svc := newSuggestionFixture()
	viewer := f.addUser("Viewer")
	zed := f.addUser("zed")
	amy := f.addUser("Amy")

	first, err := svc.FriendSuggestions(viewer.ID, SuggestionFilters{})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, amy.ID, first[0].CandidateID, "names compare case-insensitively")
	assert.Equal(t, zed.ID, first[1].CandidateID)

	// Same input, same order.
	second, err := svc.FriendSuggestions(viewer.ID, SuggestionFilters{})
	require.NoError(t, err)
	assert.Equal(t, suggestionIDs(first), suggestionIDs(second))
}

func TestFriendSuggestionsFilters(t *testing.T) {
	f, svc := newSuggestionFixture()
	viewer := f.addUser("Viewer", func(u *model.User) {
		u.Interests = []string{"chess", "hiking"}
	})
	friend := f.addUser("Friend")
	inHanoi := f.addUser("Hanoi Resident", func(u *model.User) { u.City = "Hanoi" })
	chessFan := f.addUser("Chess Fan", func(u *model.User) {
		u.City = "Hue"
		u.Interests = []string{"Chess"}
	})
	f.befriend(viewer.ID, friend.ID)
	f.befriend(friend.ID, inHanoi.ID)

	byCity, err := svc.FriendSuggestions(viewer.ID, SuggestionFilters{City: "hanoi"})
	require.NoError(t, err)
	assert.Equal(t, []uint{inHanoi.ID}, suggestionIDs(byCity))

	byInterest, err := svc.FriendSuggestions(viewer.ID, SuggestionFilters{Interest: "chess"})
	require.NoError(t, err)
	assert.Equal(t, []uint{chessFan.ID}, suggestionIDs(byInterest))

	byMutual, err := svc.FriendSuggestions(viewer.ID, SuggestionFilters{MutualMin: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint{inHanoi.ID}, suggestionIDs(byMutual))

	withShared, err := svc.FriendSuggestions(viewer.ID, SuggestionFilters{IncludeInterestMatches: true})
	require.NoError(t, err)
	for _, s := range withShared {
		if s.CandidateID == chessFan.ID {
			assert.Equal(t, []string{"chess"}, s.SharedInterests,
				"shared interests keep the viewer's casing")
		}
	}

	_, err = svc.FriendSuggestions(viewer.ID, SuggestionFilters{MutualMin: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFriendSuggestionsMutualPreviewCapped(t *testing.T) {
	f, svc := newSuggestionFixture()
	viewer := f.addUser("Viewer")
	candidate := f.addUser("Candidate")
	for i := 0; i < 6; i++ {
		mutual := f.addUser("Mutual")
		f.befriend(viewer.ID, mutual.ID)
		f.befriend(mutual.ID, candidate.ID)
	}

	suggestions, err := svc.FriendSuggestions(viewer.ID, SuggestionFilters{})
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, 6, suggestions[0].MutualFriendCount)
	assert.Len(t, suggestions[0].MutualFriendsPreview, mutualPreviewSize)
}

func TestFriendSuggestionsLimit(t *testing.T) {
	f, svc := newSuggestionFixture()
	viewer := f.addUser("Viewer")
	for i := 0; i < 20; i++ {
		f.addUser("Stranger")
	}

	suggestions, err := svc.FriendSuggestions(viewer.ID, SuggestionFilters{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, suggestions, 5)
}

func TestSearchUsersRanksStatusAfterScore(t *testing.T) {
	f, svc := newSuggestionFixture()
	viewer := f.addUser("Viewer")
	friend := f.addUser("Taylor Friend")
	incoming := f.addUser("Taylor Incoming")
	outgoing := f.addUser("Taylor Outgoing")
	stranger := f.addUser("Taylor Stranger")

	f.befriend(viewer.ID, friend.ID)
	f.addRequest(incoming.ID, viewer.ID)
	f.addRequest(viewer.ID, outgoing.ID)

	results, err := svc.SearchUsers(viewer.ID, "taylor", 10)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, friend.ID, results[0].Candidate.ID)
	assert.Equal(t, StateFriend, results[0].Status)
	assert.Equal(t, incoming.ID, results[1].Candidate.ID)
	assert.Equal(t, StateIncoming, results[1].Status)
	assert.Equal(t, outgoing.ID, results[2].Candidate.ID)
	assert.Equal(t, StateOutgoing, results[2].Status)
	assert.Equal(t, stranger.ID, results[3].Candidate.ID)
	assert.Equal(t, StateNone, results[3].Status)
}

func TestSearchUsersPrefixOutranksSubstring(t *testing.T) {
	f, svc := newSuggestionFixture()
	viewer := f.addUser("Viewer")
	prefix := f.addUser("Anna Lee")
	substring := f.addUser("Joanna Smith")

	results, err := svc.SearchUsers(viewer.ID, "anna", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, prefix.ID, results[0].Candidate.ID)
	assert.Greater(t, results[0].MatchScore, results[1].MatchScore)
	assert.Equal(t, substring.ID, results[1].Candidate.ID)
}

func TestSearchUsersEmptyTerm(t *testing.T) {
	f, svc := newSuggestionFixture()
	viewer := f.addUser("Viewer")
	f.addUser("Someone")

	results, err := svc.SearchUsers(viewer.ID, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGroupSuggestionsBucketOrder(t *testing.T) {
	f, svc := newSuggestionFixture()
	viewer := f.addUser("Viewer", func(u *model.User) {
		u.Interests = []string{"hiking"}
	})
	friend := f.addUser("Friend")
	hiker := f.addUser("Hiker", func(u *model.User) {
		u.Interests = []string{"hiking"}
	})
	regular := f.addUser("Regular")
	f.befriend(viewer.ID, friend.ID)

	withFriend := f.addGroup("Friend Group")
	f.addMember(friend.ID, withFriend.ID, model.RoleOwner)

	withInterest := f.addGroup("Interest Group")
	f.addMember(hiker.ID, withInterest.ID, model.RoleOwner)

	popular := f.addGroup("Popular Group")
	f.addMember(regular.ID, popular.ID, model.RoleOwner)

	joined := f.addGroup("Already Joined")
	f.addMember(viewer.ID, joined.ID, model.RoleMember)

	suggestions, err := svc.GroupSuggestions(viewer.ID, 10)
	require.NoError(t, err)
	require.Len(t, suggestions, 3, "joined groups are not suggested")

	assert.Equal(t, withFriend.ID, suggestions[0].GroupID)
	assert.Equal(t, StrategyFriends, suggestions[0].Reason)
	require.Len(t, suggestions[0].FriendMembers, 1)
	assert.Equal(t, "Friend", suggestions[0].FriendMembers[0].Name)

	assert.Equal(t, withInterest.ID, suggestions[1].GroupID)
	assert.Equal(t, StrategyInterests, suggestions[1].Reason)

	assert.Equal(t, popular.ID, suggestions[2].GroupID)
	assert.Equal(t, StrategyPopular, suggestions[2].Reason)
}

func TestSearchGroupsMembershipBreaksTies(t *testing.T) {
	f, svc := newSuggestionFixture()
	viewer := f.addUser("Viewer")
	other := f.addUser("Other")

	mine := f.addGroup("Climbing Crew A")
	f.addMember(viewer.ID, mine.ID, model.RoleMember)
	f.addMember(other.ID, mine.ID, model.RoleOwner)

	notMine := f.addGroup("Climbing Crew B")
	f.addMember(other.ID, notMine.ID, model.RoleOwner)
	f.addMember(f.addUser("Extra").ID, notMine.ID, model.RoleMember)

	results, err := svc.SearchGroups(viewer.ID, "climbing", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, mine.ID, results[0].GroupID)
	assert.True(t, results[0].IsMember)
	assert.Equal(t, notMine.ID, results[1].GroupID)
	assert.False(t, results[1].IsMember)
}

func TestSearchGroupsFriendMembersBoostScore(t *testing.T) {
	f, svc := newSuggestionFixture()
	viewer := f.addUser("Viewer")
	friend := f.addUser("Friend")
	stranger := f.addUser("Stranger")
	f.befriend(viewer.ID, friend.ID)

	withFriend := f.addGroup("Reading Circle North")
	f.addMember(friend.ID, withFriend.ID, model.RoleOwner)

	without := f.addGroup("Reading Circle South")
	f.addMember(stranger.ID, without.ID, model.RoleOwner)

	results, err := svc.SearchGroups(viewer.ID, "reading", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, withFriend.ID, results[0].GroupID)
	assert.Equal(t, 1, results[0].FriendMemberCount)
	assert.Greater(t, results[0].MatchScore, results[1].MatchScore)
}

func TestFriendSuggestionsReportGraphOutageAsUnavailable(t *testing.T) {
	f := newFakeGraph()
	viewer := f.addUser("Viewer")
	svc := NewSuggestionService(f, downGraph{f}, f.groupStore(), config.DefaultEngineConfig())

	_, err := svc.FriendSuggestions(viewer.ID, SuggestionFilters{})
	require.ErrorIs(t, err, ErrUnavailable)
}
