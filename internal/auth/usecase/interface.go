package usecase

import (
	"context"

	authdomain "mailsweep-backend/internal/auth/domain"
	authdto "mailsweep-backend/internal/auth/dto"
	"mailsweep-backend/pkg/mailbox"
)

// AuthUsecase handles Google sign-in, app sessions and the provider
// credentials stored for signed-in users
type AuthUsecase interface {
	GoogleAuthURL(state string) string
	GoogleSignIn(ctx context.Context, code string) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*authdomain.User, error)

	// ProviderCredentials returns the stored provider token of user, wired to
	// persist refreshed tokens back to the user row
	ProviderCredentials(user *authdomain.User) mailbox.Credentials
	ProviderCredentialsByID(userID string) (mailbox.Credentials, error)
}
