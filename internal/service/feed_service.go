package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"friendnet/config"
	"friendnet/internal/model"
	"friendnet/pkg/logger"

	"go.uber.org/zap"
)

// Feed item sources.
const (
	SourceFriendPost = "friend_post"
	SourceFriendLike = "friend_like"
	SourceOwnPost    = "own_post"
)

// feedOverFetchFactor widens each source query so that merging and
// decay reordering still fill the page.
const feedOverFetchFactor = 2

// FeedReason records why a post surfaced and which friends contribute
// to that reason.
type FeedReason struct {
	Type    string        `json:"type"`
	Friends []UserSnippet `json:"friends"`
}

// FeedItem is one merged, scored entry of the viewer's feed.
type FeedItem struct {
	PostID           uint          `json:"post_id"`
	Author           UserSnippet   `json:"author"`
	Content          string        `json:"content"`
	Media            string        `json:"media,omitempty"`
	Topics           []string      `json:"topics"`
	Visibility       string        `json:"visibility"`
	CreatedAt        time.Time     `json:"created_at"`
	LikeCount        int           `json:"like_count"`
	LikedByViewer    bool          `json:"liked_by_viewer"`
	MutualCount      int           `json:"mutual_count"`
	Reasons          []FeedReason  `json:"reasons"`
	FriendHighlights []UserSnippet `json:"friend_highlights"`
	Score            float64       `json:"score"`
}

// PostInput carries a post creation request.
type PostInput struct {
	Content    string   `json:"content" binding:"required"`
	Media      string   `json:"media"`
	Topics     []string `json:"topics"`
	Visibility string   `json:"visibility"`
}

// LikeResult reports the state after a like toggle.
type LikeResult struct {
	PostID    uint `json:"post_id"`
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// FeedService assembles the viewer's feed from friend activity and
// scores it with recency decay.
type FeedService struct {
	posts PostStore
	graph GraphStore
	users UserStore
	cfg   config.EngineConfig
}

// NewFeedService creates a FeedService.
func NewFeedService(posts PostStore, graph GraphStore, users UserStore, cfg config.EngineConfig) *FeedService {
	return &FeedService{posts: posts, graph: graph, users: users, cfg: cfg}
}

// Feed merges two sources, posts authored by friends and posts liked
// by friends, into one ranked page. Overlapping items collapse into a
// single entry that keeps every reason; a friend appears at most once
// per reason. Items are scored by engagement divided by age decay.
func (s *FeedService) Feed(viewerID uint, limit int) ([]FeedItem, error) {
	if limit <= 0 {
		limit = s.cfg.FeedLimit
	}
	return s.feedAt(viewerID, limit, time.Now())
}

// feedAt is Feed with an explicit clock, so decay is reproducible.
func (s *FeedService) feedAt(viewerID uint, limit int, now time.Time) ([]FeedItem, error) {
	friendIDs, err := s.graph.FriendIDs(viewerID)
	if err != nil {
		return nil, unavailable("friend ids", err)
	}
	if len(friendIDs) == 0 {
		return []FeedItem{}, nil
	}
	friendSet := idSet(friendIDs)

	fetch := limit * feedOverFetchFactor

	authored, err := s.posts.ByAuthors(friendIDs, []string{model.VisibilityFriends, model.VisibilityPublic}, fetch)
	if err != nil {
		return nil, unavailable("friend posts", err)
	}
	liked, err := s.posts.LikedByUsers(friendIDs, viewerID, fetch)
	if err != nil {
		return nil, unavailable("friend likes", err)
	}

	posts := make(map[uint]*model.Post, len(authored)+len(liked))
	for _, p := range authored {
		posts[p.ID] = p
	}
	for _, p := range liked {
		if _, ok := posts[p.ID]; !ok {
			posts[p.ID] = p
		}
	}

	postIDs := make([]uint, 0, len(posts))
	for pid := range posts {
		postIDs = append(postIDs, pid)
	}
	sort.Slice(postIDs, func(i, j int) bool { return postIDs[i] < postIDs[j] })

	// Second-degree authors surface through friend likes; count the
	// mutual friends between the viewer and each of them.
	strangerAuthors := make([]uint, 0)
	seenAuthors := make(map[uint]struct{})
	for _, pid := range postIDs {
		author := posts[pid].AuthorID
		if author == viewerID {
			continue
		}
		if _, ok := friendSet[author]; ok {
			continue
		}
		if _, ok := seenAuthors[author]; ok {
			continue
		}
		seenAuthors[author] = struct{}{}
		strangerAuthors = append(strangerAuthors, author)
	}
	mutualCounts := make(map[uint]int)
	if len(strangerAuthors) > 0 {
		edges, err := s.graph.FriendEdgesOf(strangerAuthors)
		if err != nil {
			return nil, unavailable("friend edges", err)
		}
		for _, edge := range edges {
			if _, ok := friendSet[edge.FriendID]; ok {
				mutualCounts[edge.UserID]++
			}
		}
	}

	likes, err := s.posts.LikesFor(postIDs)
	if err != nil {
		return nil, unavailable("post likes", err)
	}
	likeCounts := make(map[uint]int)
	likedByViewer := make(map[uint]bool)
	friendLikers := make(map[uint][]uint)
	for _, like := range likes {
		likeCounts[like.PostID]++
		if like.UserID == viewerID {
			likedByViewer[like.PostID] = true
		}
		if _, ok := friendSet[like.UserID]; ok {
			friendLikers[like.PostID] = append(friendLikers[like.PostID], like.UserID)
		}
	}

	// Snippets for authors and every friend contributing a reason.
	snippetIDs := make(map[uint]struct{})
	for _, p := range posts {
		snippetIDs[p.AuthorID] = struct{}{}
	}
	for _, likers := range friendLikers {
		for _, uid := range likers {
			snippetIDs[uid] = struct{}{}
		}
	}
	snippetIDList := make([]uint, 0, len(snippetIDs))
	for uid := range snippetIDs {
		snippetIDList = append(snippetIDList, uid)
	}
	snippetUsers, err := s.users.UsersByIDs(snippetIDList)
	if err != nil {
		return nil, unavailable("user snippets", err)
	}
	snippets := snippetsByID(snippetUsers)

	items := make([]FeedItem, 0, len(postIDs))
	for _, pid := range postIDs {
		post := posts[pid]

		item := FeedItem{
			PostID:        post.ID,
			Author:        snippets[post.AuthorID],
			Content:       post.Content,
			Media:         post.Media,
			Topics:        post.Topics,
			Visibility:    post.Visibility,
			CreatedAt:     post.CreatedAt,
			LikeCount:     likeCounts[pid],
			LikedByViewer: likedByViewer[pid],
			MutualCount:   mutualCounts[post.AuthorID],
		}

		highlightSet := make(map[uint]struct{})
		if _, ok := friendSet[post.AuthorID]; ok {
			item.Reasons = append(item.Reasons, FeedReason{
				Type:    SourceFriendPost,
				Friends: []UserSnippet{snippets[post.AuthorID]},
			})
			highlightSet[post.AuthorID] = struct{}{}
			item.FriendHighlights = append(item.FriendHighlights, snippets[post.AuthorID])
		}
		if likers := friendLikers[pid]; len(likers) > 0 && post.AuthorID != viewerID {
			reason := FeedReason{Type: SourceFriendLike}
			seen := make(map[uint]struct{})
			for _, uid := range likers {
				if _, dup := seen[uid]; dup {
					continue
				}
				seen[uid] = struct{}{}
				reason.Friends = append(reason.Friends, snippets[uid])
				if _, dup := highlightSet[uid]; !dup {
					highlightSet[uid] = struct{}{}
					item.FriendHighlights = append(item.FriendHighlights, snippets[uid])
				}
			}
			item.Reasons = append(item.Reasons, reason)
		}
		if len(item.Reasons) == 0 {
			continue
		}
		if item.FriendHighlights == nil {
			item.FriendHighlights = []UserSnippet{}
		}

		item.Score = s.scoreItem(item, now)
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].PostID < items[j].PostID
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// scoreItem computes likeCount*likeWeight + highlights*highlightWeight
// + per-reason bonuses + the viewer↔author mutual-friend count, then
// divides by ageHours^decay. Age is floored at one hour so fresh posts
// share a decay baseline.
func (s *FeedService) scoreItem(item FeedItem, now time.Time) float64 {
	base := float64(item.LikeCount)*s.cfg.FeedLikeWeight +
		float64(len(item.FriendHighlights))*s.cfg.FeedHighlightWeight +
		float64(item.MutualCount)
	for _, reason := range item.Reasons {
		switch reason.Type {
		case SourceFriendPost:
			base += s.cfg.FeedFriendPostBonus
		case SourceFriendLike:
			base += s.cfg.FeedFriendLikeBonus
		}
	}

	ageHours := now.Sub(item.CreatedAt).Hours()
	if ageHours < 1 {
		ageHours = 1
	}
	return base / math.Pow(ageHours, s.cfg.FeedDecayExponent)
}

// CreatePost validates and stores a new post, extracting hashtag
// topics from the content when no explicit topics are given.
func (s *FeedService) CreatePost(authorID uint, input PostInput) (*model.Post, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = model.VisibilityFriends
	}
	switch visibility {
	case model.VisibilityFriends, model.VisibilityPublic, model.VisibilityPrivate:
	default:
		return nil, fmt.Errorf("%w: visibility %q", ErrInvalidInput, input.Visibility)
	}

	post := &model.Post{
		AuthorID:   authorID,
		Content:    content,
		Media:      strings.TrimSpace(input.Media),
		Topics:     normalizePostTopics(input.Topics, content),
		Visibility: visibility,
	}
	if err := s.posts.Create(post); err != nil {
		return nil, err
	}

	logger.Info("post created",
		zap.Uint("author_id", authorID),
		zap.Uint("post_id", post.ID),
		zap.String("visibility", visibility))
	return post, nil
}

// MyPosts returns the viewer's own posts, newest first.
func (s *FeedService) MyPosts(viewerID uint, limit int) ([]*model.Post, error) {
	if limit <= 0 {
		limit = s.cfg.FeedLimit
	}
	posts, err := s.posts.ByAuthor(viewerID, limit)
	if err != nil {
		return nil, unavailable("own posts", err)
	}
	return posts, nil
}

// GetPost returns one post if the viewer may see it: the author always
// may, friends may unless it is private, strangers only when public.
func (s *FeedService) GetPost(viewerID, postID uint) (*model.Post, error) {
	post, err := s.posts.GetByID(postID)
	if err != nil {
		return nil, unavailable("load post", err)
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	if post.AuthorID == viewerID {
		return post, nil
	}
	switch post.Visibility {
	case model.VisibilityPublic:
		return post, nil
	case model.VisibilityFriends:
		friendIDs, err := s.graph.FriendIDs(viewerID)
		if err != nil {
			return nil, unavailable("friend ids", err)
		}
		if _, ok := idSet(friendIDs)[post.AuthorID]; ok {
			return post, nil
		}
	}
	return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
}

// ToggleLike flips the viewer's like on a post and reports the new
// state. Liking an already-liked post unlikes it.
func (s *FeedService) ToggleLike(viewerID, postID uint) (*LikeResult, error) {
	if _, err := s.GetPost(viewerID, postID); err != nil {
		return nil, err
	}

	liked, err := s.posts.HasLike(viewerID, postID)
	if err != nil {
		return nil, err
	}
	if liked {
		if err := s.posts.DeleteLike(viewerID, postID); err != nil {
			return nil, err
		}
	} else {
		if err := s.posts.CreateLike(viewerID, postID); err != nil {
			return nil, err
		}
	}

	count, err := s.posts.LikeCount(postID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{PostID: postID, Liked: !liked, LikeCount: count}, nil
}
