package handler

import (
	"friendnet/internal/service"
	"friendnet/pkg/jwt"
	"friendnet/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service  *service.UserService
	insights *service.InsightService
}

func NewUserHandler(s *service.UserService, insights *service.InsightService) *UserHandler {
	return &UserHandler{service: s, insights: insights}
}

// Register creates an account and returns a signed token.
func (h *UserHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Register(input)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "registered", &response.RegisterResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// Login verifies credentials and returns a signed token.
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Login(r.Email, r.Password)
	if err != nil {
		response.Unauthorized(c, "invalid credentials")
		return
	}

	response.SuccessWithMessage(c, "logged in", &response.LoginResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.GetProfile(jwt.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterUserInfo(user))
}

// GetProfile returns another user's profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	user, err := h.service.GetProfile(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterUserInfo(user))
}

// UpdateProfile applies a partial profile update.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var input service.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.service.UpdateProfile(jwt.GetUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "profile updated", response.FilterUserInfo(user))
}

// Insights returns network statistics for the authenticated user.
func (h *UserHandler) Insights(c *gin.Context) {
	insights, err := h.insights.Insights(jwt.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, insights)
}
