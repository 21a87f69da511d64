package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/bellapacxx/academy-backend/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// ObtainToken checks the credentials and returns the user's token, creating
// it on first login. It returns ErrUnknownUsername when no user has that
// username and ErrInvalidCredentials when the password does not match.
func (s *AuthService) ObtainToken(ctx context.Context, username, password string) (*models.Token, error) {
	db := s.db.WithContext(ctx)

	user, err := findByUsername(db, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnknownUsername
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	var token models.Token
	err = db.Where("user_id = ?", user.ID).First(&token).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		key, err := generateKey()
		if err != nil {
			return nil, err
		}
		token = models.Token{Key: key, UserID: user.ID}
		if err := db.Create(&token).Error; err != nil {
			return nil, fmt.Errorf("create token: %w", err)
		}
	default:
		return nil, fmt.Errorf("load token: %w", err)
	}

	token.User = *user
	return &token, nil
}

// Authenticate resolves a token key to its user.
func (s *AuthService) Authenticate(ctx context.Context, key string) (*models.User, error) {
	if key == "" {
		return nil, ErrInvalidToken
	}

	var token models.Token
	err := s.db.WithContext(ctx).Preload("User").Where(&models.Token{Key: key}).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return &token.User, nil
}

func generateKey() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
