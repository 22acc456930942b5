package gmail

import (
	"context"
	"fmt"
	"time"

	"mailsweep-backend/pkg/mailbox"
	"mailsweep-backend/pkg/retry"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Scopes requested during sign-in. Filters need the settings scope.
var Scopes = []string{
	gmail.GmailModifyScope,
	gmail.GmailSettingsBasicScope,
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

type Service struct {
	clientID     string
	clientSecret string
	policy       retry.Policy
	logger       *zap.Logger
	opts         []option.ClientOption
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback mailbox.TokenUpdateFunc
	logger   *zap.Logger
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			s.logger.Warn("failed to persist refreshed provider token", zap.Error(err))
		}
	}
	return t, nil
}

// NewService creates the Gmail adapter. Extra client options are appended to
// every client it opens.
func NewService(clientID, clientSecret string, policy retry.Policy, logger *zap.Logger, opts ...option.ClientOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.InitialDelay <= 0 {
		policy = retry.DefaultPolicy()
	}
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		policy:       policy,
		logger:       logger.Named("gmail"),
		opts:         opts,
	}
}

// OAuthConfig is the authorization-code configuration for Google sign-in.
func (s *Service) OAuthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}

func (s *Service) tokenSource(ctx context.Context, creds mailbox.Credentials) oauth2.TokenSource {
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       creds.Expiry,
	}

	// Without a refresh token or client credentials the token is used as is.
	if creds.RefreshToken == "" || s.clientID == "" {
		return oauth2.StaticTokenSource(token)
	}
	// An unknown expiry is treated as expired so the first call refreshes.
	if token.Expiry.IsZero() {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}
	return &notifyTokenSource{
		src:      config.TokenSource(ctx, token),
		current:  token,
		callback: creds.OnRefresh,
		logger:   s.logger,
	}
}

// Open creates a Gmail client for the mailbox the credentials belong to.
func (s *Service) Open(ctx context.Context, creds mailbox.Credentials) (mailbox.Provider, error) {
	if creds.AccessToken == "" && creds.RefreshToken == "" {
		return nil, mailbox.ErrUnauthorized
	}

	httpClient := oauth2.NewClient(ctx, s.tokenSource(ctx, creds))
	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, s.opts...)

	srv, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return NewClient(srv, s.policy, s.logger), nil
}
