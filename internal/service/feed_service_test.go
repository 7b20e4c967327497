package service

import (
	"fmt"
	"testing"
	"time"

	"friendnet/config"
	"friendnet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedFixture() (*fakeGraph, *FeedService) {
	f := newFakeGraph()
	return f, NewFeedService(f.postStore(), f, f, config.DefaultEngineConfig())
}

func TestFeedMergesSourcesIntoOneItem(t *testing.T) {
	f, svc := newFeedFixture()
	now := time.Now()
	viewer := f.addUser("Viewer")
	author := f.addUser("Author")
	likerOne := f.addUser("Liker One")
	likerTwo := f.addUser("Liker Two")
	f.befriend(viewer.ID, author.ID)
	f.befriend(viewer.ID, likerOne.ID)
	f.befriend(viewer.ID, likerTwo.ID)

	post := f.addPost(author.ID, "hello", now.Add(-30*time.Minute))
	f.like(likerOne.ID, post.ID)
	f.like(likerTwo.ID, post.ID)

	items, err := svc.feedAt(viewer.ID, 30, now)
	require.NoError(t, err)
	require.Len(t, items, 1, "a post surfaced by both sources must merge into one item")

	item := items[0]
	assert.Equal(t, post.ID, item.PostID)
	assert.Equal(t, 2, item.LikeCount)

	require.Len(t, item.Reasons, 2)
	assert.Equal(t, SourceFriendPost, item.Reasons[0].Type)
	require.Len(t, item.Reasons[0].Friends, 1)
	assert.Equal(t, author.ID, item.Reasons[0].Friends[0].ID)
	assert.Equal(t, SourceFriendLike, item.Reasons[1].Type)
	assert.Len(t, item.Reasons[1].Friends, 2)

	// Author plus both likers, each exactly once.
	assert.Len(t, item.FriendHighlights, 3)
	seen := make(map[uint]int)
	for _, s := range item.FriendHighlights {
		seen[s.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "friend %d appears more than once in highlights", id)
	}
}

func TestFeedScoreCombinesEngagementAndDecay(t *testing.T) {
	f, svc := newFeedFixture()
	now := time.Now()
	viewer := f.addUser("Viewer")
	author := f.addUser("Author")
	f.befriend(viewer.ID, author.ID)

	fresh := f.addPost(author.ID, "fresh", now.Add(-10*time.Minute))
	stale := f.addPost(author.ID, "stale", now.Add(-72*time.Hour))

	items, err := svc.feedAt(viewer.ID, 30, now)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, fresh.ID, items[0].PostID, "equal engagement ranks the newer post first")
	assert.Equal(t, stale.ID, items[1].PostID)
	assert.Greater(t, items[0].Score, items[1].Score)

	// Sub-hour age floors at one hour: highlight(6) + friend_post(4).
	assert.InDelta(t, 10.0, items[0].Score, 0.0001)
}

func TestFeedHidesPrivateAndStrangerPosts(t *testing.T) {
	f, svc := newFeedFixture()
	now := time.Now()
	viewer := f.addUser("Viewer")
	friend := f.addUser("Friend")
	stranger := f.addUser("Stranger")
	f.befriend(viewer.ID, friend.ID)

	visible := f.addPost(friend.ID, "visible", now.Add(-time.Hour))
	f.addPost(friend.ID, "secret", now.Add(-time.Hour), func(p *model.Post) {
		p.Visibility = model.VisibilityPrivate
	})
	f.addPost(stranger.ID, "unrelated", now.Add(-time.Hour))

	items, err := svc.feedAt(viewer.ID, 30, now)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, visible.ID, items[0].PostID)
}

func TestFeedExcludesViewerAuthoredFromFriendLikeSource(t *testing.T) {
	f, svc := newFeedFixture()
	now := time.Now()
	viewer := f.addUser("Viewer")
	friend := f.addUser("Friend")
	f.befriend(viewer.ID, friend.ID)

	own := f.addPost(viewer.ID, "mine", now.Add(-time.Hour))
	f.like(friend.ID, own.ID)

	items, err := svc.feedAt(viewer.ID, 30, now)
	require.NoError(t, err)
	assert.Empty(t, items, "a friend liking the viewer's own post is not feed material")
}

func TestFeedTruncatesToLimit(t *testing.T) {
	f, svc := newFeedFixture()
	now := time.Now()
	viewer := f.addUser("Viewer")
	friend := f.addUser("Friend")
	f.befriend(viewer.ID, friend.ID)

	for i := 0; i < 10; i++ {
		f.addPost(friend.ID, fmt.Sprintf("post %d", i), now.Add(-time.Duration(i)*time.Hour))
	}

	items, err := svc.feedAt(viewer.ID, 4, now)
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestFeedEmptyWithoutFriends(t *testing.T) {
	f, svc := newFeedFixture()
	viewer := f.addUser("Viewer")
	loner := f.addUser("Loner")
	f.addPost(loner.ID, "unseen", time.Now())

	items, err := svc.Feed(viewer.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreatePostExtractsHashtags(t *testing.T) {
	f, svc := newFeedFixture()
	author := f.addUser("Author")

	post, err := svc.CreatePost(author.ID, PostInput{
		Content: "Morning ride #cycling with friends #CoffeeStop",
		Topics:  []string{"fitness"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"fitness", "cycling", "CoffeeStop"}, post.Topics)
	assert.Equal(t, model.VisibilityFriends, post.Visibility)
}

func TestCreatePostRejectsBadInput(t *testing.T) {
	f, svc := newFeedFixture()
	author := f.addUser("Author")

	_, err := svc.CreatePost(author.ID, PostInput{Content: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreatePost(author.ID, PostInput{Content: "hi", Visibility: "everyone"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetPostHonorsVisibility(t *testing.T) {
	f, svc := newFeedFixture()
	now := time.Now()
	author := f.addUser("Author")
	friend := f.addUser("Friend")
	stranger := f.addUser("Stranger")
	f.befriend(author.ID, friend.ID)

	friendsOnly := f.addPost(author.ID, "friends only", now)
	private := f.addPost(author.ID, "private", now, func(p *model.Post) {
		p.Visibility = model.VisibilityPrivate
	})
	public := f.addPost(author.ID, "public", now, func(p *model.Post) {
		p.Visibility = model.VisibilityPublic
	})

	_, err := svc.GetPost(friend.ID, friendsOnly.ID)
	assert.NoError(t, err)
	_, err = svc.GetPost(stranger.ID, friendsOnly.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetPost(friend.ID, private.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetPost(author.ID, private.ID)
	assert.NoError(t, err)

	_, err = svc.GetPost(stranger.ID, public.ID)
	assert.NoError(t, err)
}

func TestToggleLikeFlips(t *testing.T) {
	f, svc := newFeedFixture()
	now := time.Now()
	author := f.addUser("Author")
	friend := f.addUser("Friend")
	f.befriend(author.ID, friend.ID)
	post := f.addPost(author.ID, "likeable", now)

	result, err := svc.ToggleLike(friend.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 1, result.LikeCount)

	result, err = svc.ToggleLike(friend.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Equal(t, 0, result.LikeCount)
}

func TestFeedCountsMutualFriendsOfDistantAuthors(t *testing.T) {
	f, svc := newFeedFixture()
	now := time.Now()
	viewer := f.addUser("Viewer")
	liker := f.addUser("Liker Friend")
	author := f.addUser("Distant Author")
	mutualOne := f.addUser("Mutual One")
	mutualTwo := f.addUser("Mutual Two")
	f.befriend(viewer.ID, liker.ID)
	f.befriend(viewer.ID, mutualOne.ID)
	f.befriend(viewer.ID, mutualTwo.ID)
	f.befriend(author.ID, mutualOne.ID)
	f.befriend(author.ID, mutualTwo.ID)

	post := f.addPost(author.ID, "long ride", now.Add(-20*time.Minute))
	f.like(liker.ID, post.ID)

	items, err := svc.feedAt(viewer.ID, 30, now)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, 2, item.MutualCount)
	// like(1.5) + highlight(6) + friend_like(5) + two mutuals(2).
	assert.InDelta(t, 14.5, item.Score, 0.0001)
}

func TestFeedReportsGraphOutageAsUnavailable(t *testing.T) {
	f := newFakeGraph()
	viewer := f.addUser("Viewer")
	svc := NewFeedService(f.postStore(), downGraph{f}, f, config.DefaultEngineConfig())

	_, err := svc.Feed(viewer.ID, 10)
	require.ErrorIs(t, err, ErrUnavailable)
}
