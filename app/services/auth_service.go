package services

import (
	"errors"
	"fmt"

	"github.com/shashiranjanraj/myshop/app/models"
	"github.com/shashiranjanraj/myshop/app/repositories"
	"github.com/shashiranjanraj/myshop/pkg/auth"
	"github.com/shashiranjanraj/myshop/pkg/event"
	"gorm.io/gorm"
)

// EventUserRegistered fires after a successful registration. Payload: models.User.
const EventUserRegistered = "user.registered"

// RegisterInput is the payload for POST /api/auth/register.
type RegisterInput struct {
	Name                 string `json:"name" validate:"required,safe_text,min=2,max=100"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"confirmed"`
}

// LoginInput is the payload for POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is what login and refresh return.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService() *AuthService {
	return &AuthService{users: repositories.NewUserRepository()}
}

// Register creates a new user with a bcrypt-hashed password and fires
// user.registered (which auto-creates the profile).
func (s *AuthService) Register(in RegisterInput) (models.User, error) {
	taken, err := s.users.EmailExists(in.Email)
	if err != nil {
		return models.User{}, fmt.Errorf("auth: check email: %w", err)
	}
	if taken {
		return models.User{}, ErrEmailTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("auth: hash password: %w", err)
	}

	user := models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(&user); err != nil {
		return models.User{}, fmt.Errorf("auth: create user: %w", err)
	}

	event.Fire(EventUserRegistered, user)
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
// Wrong email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(in LoginInput) (TokenPair, models.User, error) {
	user, err := s.users.FindByEmail(in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, models.User{}, ErrInvalidCredentials
		}
		return TokenPair{}, models.User{}, fmt.Errorf("auth: find user: %w", err)
	}

	if !auth.CheckPassword(user.Password, in.Password) {
		return TokenPair{}, models.User{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user)
	return pair, user, err
}

// Refresh exchanges a valid refresh token for a fresh pair. Access tokens
// are rejected here so a leaked one cannot mint pairs indefinitely.
func (s *AuthService) Refresh(refreshToken string) (TokenPair, error) {
	claims, err := auth.ValidateRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByID(claims.UserID)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// Profile returns the caller's user record with profile preloaded.
func (s *AuthService) Profile(userID uint) (models.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("auth: find user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueTokens(user models.User) (TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: sign access token: %w", err)
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: sign refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
