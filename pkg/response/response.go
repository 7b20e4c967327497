package response

import (
	"net/http"

	"friendnet/internal/model"

	"github.com/gin-gonic/gin"
)

// Response is the unified JSON envelope. Code 0 means success.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success writes a success envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage writes a success envelope with a custom message.
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Error writes an error envelope.
func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest writes a 400 envelope.
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}

// Unauthorized writes a 401 envelope.
func Unauthorized(c *gin.Context, message string) {
	Error(c, 401, message)
}

// Forbidden writes a 403 envelope.
func Forbidden(c *gin.Context, message string) {
	Error(c, 403, message)
}

// NotFound writes a 404 envelope.
func NotFound(c *gin.Context, message string) {
	Error(c, 404, message)
}

// Conflict writes a 409 envelope for state-machine violations such as
// duplicate requests or a last-owner leave.
func Conflict(c *gin.Context, message string) {
	Error(c, 409, message)
}

// InternalError writes a 500 envelope.
func InternalError(c *gin.Context, message string) {
	Error(c, 500, message)
}

// Unavailable writes a 503 envelope for graph-store read failures.
func Unavailable(c *gin.Context, message string) {
	Error(c, 503, message)
}

// UserInfo is the public view of a user, with credentials stripped.
type UserInfo struct {
	ID         uint     `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	City       string   `json:"city,omitempty"`
	Headline   string   `json:"headline,omitempty"`
	Workplace  string   `json:"workplace,omitempty"`
	Avatar     string   `json:"avatar,omitempty"`
	About      string   `json:"about,omitempty"`
	Interests  []string `json:"interests,omitempty"`
	LastActive string   `json:"last_active,omitempty"`
	CreatedAt  string   `json:"created_at,omitempty"`
}

// FilterUserInfo converts a user model to its public view.
func FilterUserInfo(user *model.User) *UserInfo {
	if user == nil {
		return nil
	}

	return &UserInfo{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		City:       user.City,
		Headline:   user.Headline,
		Workplace:  user.Workplace,
		Avatar:     user.Avatar,
		About:      user.About,
		Interests:  user.Interests,
		LastActive: user.LastActive.Format("2006-01-02 15:04:05"),
		CreatedAt:  user.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// LoginResponse is the payload returned on login.
type LoginResponse struct {
	User        *UserInfo `json:"user"`
	AccessToken string    `json:"access_token"`
}

// RegisterResponse is the payload returned on registration.
type RegisterResponse struct {
	User        *UserInfo `json:"user"`
	AccessToken string    `json:"access_token"`
}
