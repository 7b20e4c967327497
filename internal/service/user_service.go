package service

import (
	"fmt"
	"strings"
	"time"

	"friendnet/internal/model"
	"friendnet/pkg/jwt"
	"friendnet/pkg/logger"
	"friendnet/pkg/password"

	"go.uber.org/zap"
)

// RegisterInput carries a signup request.
type RegisterInput struct {
	Name      string   `json:"name" binding:"required"`
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required,min=6"`
	City      string   `json:"city"`
	Headline  string   `json:"headline"`
	Workplace string   `json:"workplace"`
	Interests []string `json:"interests"`
}

// ProfileInput carries a profile update. Nil pointers leave the field
// untouched; empty strings clear it.
type ProfileInput struct {
	Name      *string   `json:"name"`
	City      *string   `json:"city"`
	Headline  *string   `json:"headline"`
	Workplace *string   `json:"workplace"`
	Avatar    *string   `json:"avatar"`
	About     *string   `json:"about"`
	Interests *[]string `json:"interests"`
}

// UserService handles accounts: signup, login, profiles.
type UserService struct {
	users      UserStore
	jwtService *jwt.JWTService
}

// NewUserService creates a UserService.
func NewUserService(users UserStore, jwtService *jwt.JWTService) *UserService {
	return &UserService{users: users, jwtService: jwtService}
}

// Register creates an account and signs a token for it.
func (s *UserService) Register(input RegisterInput) (*model.User, string, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" || input.Password == "" {
		return nil, "", fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}

	if existing, err := s.users.GetByEmail(email); err == nil && existing != nil {
		return nil, "", fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		City:         strings.TrimSpace(input.City),
		Headline:     strings.TrimSpace(input.Headline),
		Workplace:    strings.TrimSpace(input.Workplace),
		Interests:    normalizeGroupTopics(input.Interests, ""),
		LastActive:   time.Now(),
	}
	if err := s.users.Create(user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(
		fmt.Sprintf("%d", user.ID),
		map[string]interface{}{"name": user.Name},
	)
	if err != nil {
		return nil, "", err
	}

	logger.Info("user registered", zap.Uint("user_id", user.ID))
	return user, token, nil
}

// Login verifies credentials and signs a token.
func (s *UserService) Login(email, plainPassword string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plainPassword == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(email)
	if err != nil || user == nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrInvalidInput)
	}
	if !password.Verify(plainPassword, user.PasswordHash) {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrInvalidInput)
	}

	token, err := s.jwtService.GenerateToken(
		fmt.Sprintf("%d", user.ID),
		map[string]interface{}{"name": user.Name},
	)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.TouchLastActive(user.ID); err != nil {
		logger.Warn("touch last active failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return user, token, nil
}

// GetProfile returns one user.
func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of input to the user.
func (s *UserService) UpdateProfile(userID uint, input ProfileInput) (*model.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		user.Name = name
	}
	if input.City != nil {
		user.City = strings.TrimSpace(*input.City)
	}
	if input.Headline != nil {
		user.Headline = strings.TrimSpace(*input.Headline)
	}
	if input.Workplace != nil {
		user.Workplace = strings.TrimSpace(*input.Workplace)
	}
	if input.Avatar != nil {
		user.Avatar = strings.TrimSpace(*input.Avatar)
	}
	if input.About != nil {
		user.About = strings.TrimSpace(*input.About)
	}
	if input.Interests != nil {
		user.Interests = normalizeGroupTopics(*input.Interests, "")
	}

	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
