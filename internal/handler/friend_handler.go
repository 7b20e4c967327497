package handler

import (
	"friendnet/internal/service"
	"friendnet/pkg/jwt"
	"friendnet/pkg/response"

	"github.com/gin-gonic/gin"
)

type FriendHandler struct {
	relationships *service.RelationshipService
	suggestions   *service.SuggestionService
}

func NewFriendHandler(relationships *service.RelationshipService, suggestions *service.SuggestionService) *FriendHandler {
	return &FriendHandler{relationships: relationships, suggestions: suggestions}
}

// List returns the authenticated user's friends.
func (h *FriendHandler) List(c *gin.Context) {
	friends, err := h.relationships.ListFriends(jwt.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	infos := make([]*response.UserInfo, 0, len(friends))
	for _, friend := range friends {
		infos = append(infos, response.FilterUserInfo(friend))
	}
	response.Success(c, gin.H{
		"count":   len(infos),
		"friends": infos,
	})
}

// Suggestions returns ranked friend candidates.
func (h *FriendHandler) Suggestions(c *gin.Context) {
	var filters service.SuggestionFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	suggestions, err := h.suggestions.FriendSuggestions(jwt.GetUserID(c), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{
		"count":       len(suggestions),
		"suggestions": suggestions,
	})
}

// Search ranks users against a search term.
func (h *FriendHandler) Search(c *gin.Context) {
	results, err := h.suggestions.SearchUsers(jwt.GetUserID(c), c.Query("q"), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{
		"count":   len(results),
		"results": results,
	})
}

// Requests returns pending requests in both directions.
func (h *FriendHandler) Requests(c *gin.Context) {
	requests, err := h.relationships.ListRequests(jwt.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, requests)
}

// SendRequest sends a friend request. When a request already exists in
// the opposite direction the pair becomes friends immediately.
func (h *FriendHandler) SendRequest(c *gin.Context) {
	type req struct {
		TargetID uint   `json:"target_id" binding:"required"`
		Message  string `json:"message"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	state, err := h.relationships.SendRequest(jwt.GetUserID(c), r.TargetID, r.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "request sent", gin.H{"state": state})
}

// Accept accepts an incoming friend request.
func (h *FriendHandler) Accept(c *gin.Context) {
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}
	state, err := h.relationships.Accept(jwt.GetUserID(c), requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "request accepted", gin.H{"state": state})
}

// Reject declines an incoming friend request and dismisses the sender.
func (h *FriendHandler) Reject(c *gin.Context) {
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}
	state, err := h.relationships.Reject(jwt.GetUserID(c), requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "request rejected", gin.H{"state": state})
}

// Cancel withdraws an outgoing friend request.
func (h *FriendHandler) Cancel(c *gin.Context) {
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}
	state, err := h.relationships.Cancel(jwt.GetUserID(c), requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "request cancelled", gin.H{"state": state})
}

// Dismiss hides a user from future suggestions.
func (h *FriendHandler) Dismiss(c *gin.Context) {
	targetID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	state, err := h.relationships.Dismiss(jwt.GetUserID(c), targetID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "suggestion dismissed", gin.H{"state": state})
}
