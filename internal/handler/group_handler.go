package handler

import (
	"friendnet/internal/service"
	"friendnet/pkg/jwt"
	"friendnet/pkg/response"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	groups      *service.GroupService
	suggestions *service.SuggestionService
}

func NewGroupHandler(groups *service.GroupService, suggestions *service.SuggestionService) *GroupHandler {
	return &GroupHandler{groups: groups, suggestions: suggestions}
}

// Create stores a new group owned by the authenticated user.
func (h *GroupHandler) Create(c *gin.Context) {
	var input service.GroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := h.groups.Create(jwt.GetUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "group created", view)
}

// Mine lists the authenticated user's groups.
func (h *GroupHandler) Mine(c *gin.Context) {
	views, err := h.groups.Mine(jwt.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{
		"count":  len(views),
		"groups": views,
	})
}

// Suggestions returns ranked group candidates.
func (h *GroupHandler) Suggestions(c *gin.Context) {
	suggestions, err := h.suggestions.GroupSuggestions(jwt.GetUserID(c), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{
		"count":       len(suggestions),
		"suggestions": suggestions,
	})
}

// Search ranks groups against a search term.
func (h *GroupHandler) Search(c *gin.Context) {
	results, err := h.suggestions.SearchGroups(jwt.GetUserID(c), c.Query("q"), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{
		"count":   len(results),
		"results": results,
	})
}

// Detail returns one group with the viewer's membership.
func (h *GroupHandler) Detail(c *gin.Context) {
	groupID, ok := pathID(c, "group_id")
	if !ok {
		return
	}
	view, err := h.groups.Detail(jwt.GetUserID(c), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, view)
}

// Members lists a group's members, the viewer's friends first.
func (h *GroupHandler) Members(c *gin.Context) {
	groupID, ok := pathID(c, "group_id")
	if !ok {
		return
	}
	members, err := h.groups.Members(jwt.GetUserID(c), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{
		"count":   len(members),
		"members": members,
	})
}

// Join adds the authenticated user to a group.
func (h *GroupHandler) Join(c *gin.Context) {
	groupID, ok := pathID(c, "group_id")
	if !ok {
		return
	}
	view, err := h.groups.Join(jwt.GetUserID(c), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "joined group", view)
}

// Leave removes the authenticated user from a group.
func (h *GroupHandler) Leave(c *gin.Context) {
	groupID, ok := pathID(c, "group_id")
	if !ok {
		return
	}
	if err := h.groups.Leave(jwt.GetUserID(c), groupID); err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "left group", nil)
}

// Similar returns groups related to a base group.
func (h *GroupHandler) Similar(c *gin.Context) {
	groupID, ok := pathID(c, "group_id")
	if !ok {
		return
	}
	similar, err := h.groups.SimilarGroups(groupID, queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{
		"count":  len(similar),
		"groups": similar,
	})
}

// MemberSuggestions proposes friends of the viewer to invite.
func (h *GroupHandler) MemberSuggestions(c *gin.Context) {
	groupID, ok := pathID(c, "group_id")
	if !ok {
		return
	}
	candidates, err := h.groups.MemberSuggestions(jwt.GetUserID(c), groupID, queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{
		"count":      len(candidates),
		"candidates": candidates,
	})
}
