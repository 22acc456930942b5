package usecase

import (
	"errors"
	"strings"

	"mailsweep-backend/pkg/mailbox"
)

// ErrUnauthenticated is returned when no credential source yields a value.
var ErrUnauthenticated = errors.New("unauthenticated")

// CredentialSources lists the places a provider token may come from, in
// precedence order.
type CredentialSources struct {
	BodyToken     string
	HeaderToken   string
	Session       *mailbox.Credentials
	FallbackToken string
}

// ResolveCredentials picks the provider credential: request body, then the
// Authorization bearer, then the signed-in user's stored token, then the
// configured fallback token.
func ResolveCredentials(src CredentialSources) (mailbox.Credentials, error) {
	if t := strings.TrimSpace(src.BodyToken); t != "" {
		return mailbox.Credentials{AccessToken: t}, nil
	}
	if t := strings.TrimSpace(src.HeaderToken); t != "" {
		return mailbox.Credentials{AccessToken: t}, nil
	}
	if src.Session != nil && (src.Session.AccessToken != "" || src.Session.RefreshToken != "") {
		return *src.Session, nil
	}
	if t := strings.TrimSpace(src.FallbackToken); t != "" {
		return mailbox.Credentials{AccessToken: t}, nil
	}
	return mailbox.Credentials{}, ErrUnauthenticated
}

// UserIDSources lists where a user id may come from, in precedence order.
type UserIDSources struct {
	Explicit    string // query parameter or body field
	Session     string // session cookie
	HeaderToken string // user of a bearer session token
}

func ResolveUserID(src UserIDSources) (string, error) {
	for _, id := range []string{src.Explicit, src.Session, src.HeaderToken} {
		if id = strings.TrimSpace(id); id != "" {
			return id, nil
		}
	}
	return "", ErrUnauthenticated
}
