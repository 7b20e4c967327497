package handler

import (
	"friendnet/internal/service"
	"friendnet/pkg/jwt"
	"friendnet/pkg/response"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	feed *service.FeedService
}

func NewPostHandler(feed *service.FeedService) *PostHandler {
	return &PostHandler{feed: feed}
}

// Feed returns the ranked feed for the authenticated user.
func (h *PostHandler) Feed(c *gin.Context) {
	items, err := h.feed.Feed(jwt.GetUserID(c), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{
		"count": len(items),
		"items": items,
	})
}

// Create stores a new post.
func (h *PostHandler) Create(c *gin.Context) {
	var input service.PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.feed.CreatePost(jwt.GetUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "post created", post)
}

// Mine returns the authenticated user's own posts.
func (h *PostHandler) Mine(c *gin.Context) {
	posts, err := h.feed.MyPosts(jwt.GetUserID(c), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{
		"count": len(posts),
		"posts": posts,
	})
}

// Get returns one post the viewer may see.
func (h *PostHandler) Get(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}
	post, err := h.feed.GetPost(jwt.GetUserID(c), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, post)
}

// ToggleLike flips the viewer's like on a post.
func (h *PostHandler) ToggleLike(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}
	result, err := h.feed.ToggleLike(jwt.GetUserID(c), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, result)
}
