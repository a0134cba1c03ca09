package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrUserDisabled = errors.New("user disabled")
)

const AdminPermission = "admin"

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	ValidateToken(ctx context.Context, token string) (*AuthUser, error)
}

// AuthService asks the external identity service who owns a token.
type AuthService struct {
	authURL string
	client  *http.Client
}

type AuthUser struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
	Login       string   `json:"login"`
	Enabled     bool     `json:"enabled"`
}

func (u *AuthUser) IsAdmin() bool {
	for _, perm := range u.Permissions {
		if perm == AdminPermission {
			return true
		}
	}
	return false
}

func NewAuthService(authURL string) *AuthService {
	return &AuthService{
		authURL: strings.TrimRight(authURL, "/"),
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// ValidateToken calls GET /users/current with the token.
func (a *AuthService) ValidateToken(ctx context.Context, token string) (*AuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/users/current", a.authURL), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidToken
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode auth user: %w", err)
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}
	if !user.Enabled {
		return nil, ErrUserDisabled
	}
	return &user, nil
}
