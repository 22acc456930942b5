package delivery

import (
	"net/http"
	"strings"

	authdomain "mailsweep-backend/internal/auth/domain"
	"mailsweep-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookie carries the app access token for browser clients.
	SessionCookie = "session"

	ctxUser       = "user"
	ctxHeaderUser = "headerUser"
)

// ExpiredCredentialMessage is returned whenever the mail provider rejects the
// stored or supplied token.
const ExpiredCredentialMessage = "Gmail access token has expired. Please reconnect your Google account."

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// SessionMiddleware attaches the session user when one is present and never
// rejects the request. A bearer token that is not an app session token is
// left for provider credential resolution.
func SessionMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
			if user, err := authUsecase.ValidateToken(cookie); err == nil {
				c.Set(ctxUser, user)
			}
		}
		if token := bearerToken(c); token != "" {
			if user, err := authUsecase.ValidateToken(token); err == nil {
				c.Set(ctxHeaderUser, user)
			}
		}
		c.Next()
	}
}

// AuthMiddleware requires a valid session from the cookie or a bearer session token.
func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionUser(c) != nil {
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				token = cookie
			}
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required. Please sign in."})
			c.Abort()
			return
		}

		user, err := authUsecase.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ctxUser, user)
		c.Next()
	}
}

// SessionUser returns the user attached by the session middlewares, cookie
// session first.
func SessionUser(c *gin.Context) *authdomain.User {
	for _, key := range []string{ctxUser, ctxHeaderUser} {
		if v, ok := c.Get(key); ok {
			if user, ok := v.(*authdomain.User); ok && user != nil {
				return user
			}
		}
	}
	return nil
}

func contextUser(c *gin.Context, key string) *authdomain.User {
	if v, ok := c.Get(key); ok {
		if user, ok := v.(*authdomain.User); ok {
			return user
		}
	}
	return nil
}
