package service

import (
	"testing"

	"friendnet/config"
	"friendnet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInsightFixture() (*fakeGraph, *InsightService) {
	f := newFakeGraph()
	suggestions := NewSuggestionService(f, f, f.groupStore(), config.DefaultEngineConfig())
	return f, NewInsightService(f, f, suggestions, config.DefaultEngineConfig())
}

func TestInsightsCountsAndHistograms(t *testing.T) {
	f, svc := newInsightFixture()
	viewer := f.addUser("Viewer")

	cities := []string{"Hanoi", "Hanoi", "Hue", "Hanoi", "Saigon"}
	for i, city := range cities {
		friend := f.addUser("Friend", func(u *model.User) {
			u.City = city
			u.Interests = []string{"chess"}
			if i%2 == 0 {
				u.Interests = append(u.Interests, "hiking")
			}
		})
		f.befriend(viewer.ID, friend.ID)
	}
	f.addRequest(f.addUser("Requester").ID, viewer.ID)
	f.addRequest(viewer.ID, f.addUser("Requested").ID)

	insights, err := svc.Insights(viewer.ID)
	require.NoError(t, err)

	assert.Equal(t, 5, insights.FriendCount)
	assert.Equal(t, 1, insights.IncomingCount)
	assert.Equal(t, 1, insights.OutgoingCount)

	require.Len(t, insights.TopCities, 3)
	assert.Equal(t, InsightBucket{Value: "Hanoi", Count: 3}, insights.TopCities[0])
	// Hue and Saigon tie at one; first-encountered order breaks it.
	assert.Equal(t, InsightBucket{Value: "Hue", Count: 1}, insights.TopCities[1])
	assert.Equal(t, InsightBucket{Value: "Saigon", Count: 1}, insights.TopCities[2])

	require.Len(t, insights.TopInterests, 2)
	assert.Equal(t, InsightBucket{Value: "chess", Count: 5}, insights.TopInterests[0])
	assert.Equal(t, InsightBucket{Value: "hiking", Count: 3}, insights.TopInterests[1])
}

func TestInsightsCountsReachableSuggestions(t *testing.T) {
	f, svc := newInsightFixture()
	viewer := f.addUser("Viewer")
	friend := f.addUser("Friend")
	fof := f.addUser("Friend Of Friend")
	f.befriend(viewer.ID, friend.ID)
	f.befriend(friend.ID, fof.ID)
	f.addUser("Stranger")

	insights, err := svc.Insights(viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, insights.SuggestionCount, "friend-of-friend plus the global stranger")
}

func TestInsightsEmptyNetwork(t *testing.T) {
	f, svc := newInsightFixture()
	viewer := f.addUser("Viewer")

	insights, err := svc.Insights(viewer.ID)
	require.NoError(t, err)
	assert.Zero(t, insights.FriendCount)
	assert.Empty(t, insights.TopCities)
	assert.Empty(t, insights.TopInterests)
}

func TestInsightsUnknownViewer(t *testing.T) {
	_, svc := newInsightFixture()
	_, err := svc.Insights(404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTopKTruncatesAndKeepsTieOrder(t *testing.T) {
	buckets := topK([]string{"a", "b", "b", "c", "d", "d"}, 3)
	require.Len(t, buckets, 3)
	assert.Equal(t, InsightBucket{Value: "b", Count: 2}, buckets[0])
	assert.Equal(t, InsightBucket{Value: "d", Count: 2}, buckets[1])
	assert.Equal(t, InsightBucket{Value: "a", Count: 1}, buckets[2])
}
