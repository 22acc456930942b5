package repository

import (
	"time"

	authdomain "mailsweep-backend/internal/auth/domain"
)

// UserRepository defines persistence for users and their session refresh tokens
type UserRepository interface {
	Create(user *authdomain.User) error
	FindByEmail(email string) (*authdomain.User, error)
	FindByID(id string) (*authdomain.User, error)
	Update(user *authdomain.User) error
	// UpdateProviderToken stores a refreshed provider token without touching other columns
	UpdateProviderToken(userID, accessToken, refreshToken string, expiry time.Time) error

	SaveRefreshToken(token *authdomain.RefreshToken) error
	FindRefreshToken(token string) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(token string) error
}
