package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "mailsweep-backend/internal/auth/domain"
	authdto "mailsweep-backend/internal/auth/dto"
	"mailsweep-backend/internal/auth/repository"
	"mailsweep-backend/pkg/config"
	"mailsweep-backend/pkg/mailbox"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// CodeExchanger is the subset of *oauth2.Config used for sign-in
type CodeExchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo repository.UserRepository
	oauth    CodeExchanger
	opener   mailbox.Opener
	config   *config.Config
	logger   *zap.Logger
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, oauth CodeExchanger, opener mailbox.Opener, cfg *config.Config, logger *zap.Logger) AuthUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authUsecase{
		userRepo: userRepo,
		oauth:    oauth,
		opener:   opener,
		config:   cfg,
		logger:   logger.Named("auth"),
	}
}

func (u *authUsecase) GoogleAuthURL(state string) string {
	// offline + consent so Google returns a refresh token on every sign-in
	return u.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

func (u *authUsecase) GoogleSignIn(ctx context.Context, code string) (*authdto.TokenResponse, error) {
	token, err := u.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	// The mailbox address is the account identity
	provider, err := u.opener.Open(ctx, mailbox.Credentials{AccessToken: token.AccessToken})
	if err != nil {
		return nil, err
	}
	profile, err := provider.Profile(ctx)
	if err != nil {
		return nil, err
	}

	name, picture := idTokenProfile(token)

	user, err := u.userRepo.FindByEmail(profile.EmailAddress)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &authdomain.User{
			Email:     profile.EmailAddress,
			Name:      name,
			AvatarURL: picture,
			Provider:  "google",
		}
		applyProviderToken(user, token)
		if err := u.userRepo.Create(user); err != nil {
			return nil, err
		}
	} else {
		if name != "" {
			user.Name = name
		}
		if picture != "" {
			user.AvatarURL = picture
		}
		applyProviderToken(user, token)
		if err := u.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	return u.generateTokens(user)
}

func applyProviderToken(user *authdomain.User, token *oauth2.Token) {
	user.ProviderAccessToken = token.AccessToken
	user.ProviderTokenExpiry = token.Expiry
	if token.RefreshToken != "" {
		user.ProviderRefreshToken = token.RefreshToken
	}
}

// idTokenProfile reads display claims from the id_token returned alongside
// the access token. The token comes straight from Google's token endpoint,
// so its signature is not re-verified here.
func idTokenProfile(token *oauth2.Token) (name, picture string) {
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", ""
	}
	name, _ = claims["name"].(string)
	picture, _ = claims["picture"].(string)
	return name, picture
}

func (u *authUsecase) RefreshToken(refreshToken string) (*authdto.TokenResponse, error) {
	claims, err := u.parseClaims(refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	// Check if token exists in repository
	storedToken, err := u.userRepo.FindRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if storedToken == nil || storedToken.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("refresh token expired")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, errors.New("user not found")
	}

	// Rotate: the presented refresh token is single use
	if err := u.userRepo.DeleteRefreshToken(refreshToken); err != nil {
		return nil, err
	}

	return u.generateTokens(user)
}

func (u *authUsecase) Logout(refreshToken string) error {
	return u.userRepo.DeleteRefreshToken(refreshToken)
}

func (u *authUsecase) generateTokens(user *authdomain.User) (*authdto.TokenResponse, error) {
	accessToken, err := u.signToken(jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(u.config.JWTAccessExpiry).Unix(),
		"iat":     time.Now().Unix(),
	})
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.signToken(jwt.MapClaims{
		"user_id":  user.ID,
		"token_id": uuid.New().String(),
		"exp":      time.Now().Add(u.config.JWTRefreshExpiry).Unix(),
		"iat":      time.Now().Unix(),
	})
	if err != nil {
		return nil, err
	}

	refreshTokenEntity := &authdomain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(u.config.JWTRefreshExpiry),
	}
	if err := u.userRepo.SaveRefreshToken(refreshTokenEntity); err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (u *authUsecase) signToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) parseClaims(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.User, error) {
	claims, err := u.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, errors.New("user not found")
	}

	return user, nil
}

func (u *authUsecase) ProviderCredentials(user *authdomain.User) mailbox.Credentials {
	userID := user.ID
	return mailbox.Credentials{
		AccessToken:  user.ProviderAccessToken,
		RefreshToken: user.ProviderRefreshToken,
		Expiry:       user.ProviderTokenExpiry,
		OnRefresh: func(t *oauth2.Token) error {
			u.logger.Debug("persisting refreshed provider token", zap.String("user_id", userID))
			return u.userRepo.UpdateProviderToken(userID, t.AccessToken, t.RefreshToken, t.Expiry)
		},
	}
}

func (u *authUsecase) ProviderCredentialsByID(userID string) (mailbox.Credentials, error) {
	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return mailbox.Credentials{}, err
	}
	if user == nil || (user.ProviderAccessToken == "" && user.ProviderRefreshToken == "") {
		return mailbox.Credentials{}, ErrUnauthenticated
	}
	return u.ProviderCredentials(user), nil
}
