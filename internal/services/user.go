package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"collab-match-backend/internal/models"
	"collab-match-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

const jwtExpDays = 365

// UserInput holds the profile of a new user. ID is the identity provider's user id;
// an empty ID lets the store generate one.
type UserInput struct {
	ID          string  `json:"id"`
	ExternalID  string  `json:"external_id"`
	DisplayName string  `json:"display_name"`
	Bio         string  `json:"bio"`
	AvatarRef   string  `json:"avatar_ref"`
	PushToken   *string `json:"push_token"`
}

// UserPatch is a partial profile update
type UserPatch struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarRef   *string `json:"avatar_ref"`
	PushToken   *string `json:"push_token"`
}

// UserService handles user-related business logic
type UserService struct {
	userRepo  *repository.UserRepository
	jwtSecret string
	limits    Limits
}

// NewUserService creates a new user service
func NewUserService(userRepo *repository.UserRepository, jwtSecret string, limits Limits) *UserService {
	return &UserService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		limits:    limits.withDefaults(),
	}
}

// TokensEnabled reports whether a signing secret is configured
func (s *UserService) TokensEnabled() bool {
	return s.jwtSecret != ""
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	if !s.TokensEnabled() {
		return "", errors.New("jwt secret is not configured")
	}
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// CreateUser registers a profile
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		return nil, invalidf("display name is required")
	}
	if err := s.checkBio(in.Bio); err != nil {
		return nil, err
	}
	if in.ExternalID != "" {
		if _, err := s.userRepo.GetByExternalID(ctx, in.ExternalID); err == nil {
			return nil, fmt.Errorf("external id %s: %w", in.ExternalID, ErrAlreadyExists)
		}
	}

	user := &models.User{
		ID:          strings.TrimSpace(in.ID),
		ExternalID:  in.ExternalID,
		DisplayName: name,
		Bio:         in.Bio,
		AvatarRef:   in.AvatarRef,
		PushToken:   in.PushToken,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound("user", userID)
	}
	return user, nil
}

// GetUserByExternalID retrieves a user by the identity provider's handle
func (s *UserService) GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, notFound("user", externalID)
	}
	return user, nil
}

// UpdateUser applies a profile patch
func (s *UserService) UpdateUser(ctx context.Context, userID string, patch UserPatch) (*models.User, error) {
	var name string
	if patch.DisplayName != nil {
		name = strings.TrimSpace(*patch.DisplayName)
		if name == "" {
			return nil, invalidf("display name is required")
		}
	}
	if patch.Bio != nil {
		if err := s.checkBio(*patch.Bio); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.Update(ctx, userID, func(u *models.User) error {
		if patch.DisplayName != nil {
			u.DisplayName = name
		}
		if patch.Bio != nil {
			u.Bio = *patch.Bio
		}
		if patch.AvatarRef != nil {
			u.AvatarRef = *patch.AvatarRef
		}
		if patch.PushToken != nil {
			token := *patch.PushToken
			if token == "" {
				u.PushToken = nil
			} else {
				u.PushToken = &token
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("user", userID)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *UserService) checkBio(bio string) error {
	if utf8.RuneCountInString(bio) > s.limits.BioMax {
		return invalidf("bio longer than %d characters", s.limits.BioMax)
	}
	return nil
}
