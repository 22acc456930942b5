package delivery

import (
	"mailsweep-backend/internal/auth/usecase"
	"mailsweep-backend/pkg/mailbox"

	"github.com/gin-gonic/gin"
)

// Resolver turns a request into a provider credential or a user id.
type Resolver struct {
	authUsecase   usecase.AuthUsecase
	fallbackToken string
}

func NewResolver(authUsecase usecase.AuthUsecase, fallbackToken string) *Resolver {
	return &Resolver{
		authUsecase:   authUsecase,
		fallbackToken: fallbackToken,
	}
}

// Credentials resolves the provider credential for the request. bodyToken is
// the token field of the request body, if any.
func (r *Resolver) Credentials(c *gin.Context, bodyToken string) (mailbox.Credentials, error) {
	src := usecase.CredentialSources{
		BodyToken:     bodyToken,
		FallbackToken: r.fallbackToken,
	}
	// A bearer that validated as an app session is not a provider token.
	if contextUser(c, ctxHeaderUser) == nil {
		src.HeaderToken = bearerToken(c)
	}
	if user := SessionUser(c); user != nil {
		creds := r.authUsecase.ProviderCredentials(user)
		src.Session = &creds
	}
	return usecase.ResolveCredentials(src)
}

// UserID resolves the acting user: explicit value, then cookie session, then
// bearer session token.
func (r *Resolver) UserID(c *gin.Context, explicit string) (string, error) {
	src := usecase.UserIDSources{Explicit: explicit}
	if user := contextUser(c, ctxUser); user != nil {
		src.Session = user.ID
	}
	if user := contextUser(c, ctxHeaderUser); user != nil {
		src.HeaderToken = user.ID
	}
	return usecase.ResolveUserID(src)
}
