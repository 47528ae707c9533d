package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"solarflow/internal/access"
	"solarflow/internal/session"
	"solarflow/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	callerKey = "caller"
	claimsKey = "claims"
)

// Cookies issues the HttpOnly token cookies used by the browser dashboard
type Cookies struct {
	// Secure switches to SameSite=None; Secure for cross-origin production deployments
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Set writes access_token and refresh_token as HttpOnly cookies
func (k Cookies) Set(c *gin.Context, accessToken, refreshToken string) {
	k.sameSite(c)
	c.SetCookie(AccessCookie, accessToken, int(k.AccessTTL.Seconds()), "/", "", k.Secure, true)
	c.SetCookie(RefreshCookie, refreshToken, int(k.RefreshTTL.Seconds()), "/", "", k.Secure, true)
}

// Clear removes access_token and refresh_token cookies
func (k Cookies) Clear(c *gin.Context) {
	k.sameSite(c)
	c.SetCookie(AccessCookie, "", -1, "/", "", k.Secure, true)
	c.SetCookie(RefreshCookie, "", -1, "/", "", k.Secure, true)
}

func (k Cookies) sameSite(c *gin.Context) {
	if k.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
}

// Authenticate verifies the access token (cookie first, then the Authorization
// header) and stores the caller on the context.
func Authenticate(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, cookieErr := c.Cookie(AccessCookie)
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		claims, err := sessions.Verify(c.Request.Context(), tokenString)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, session.ErrRevoked) {
				msg = "Token has been revoked"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, msg))
			return
		}

		id, err := claims.UserID()
		caller := access.Caller{ID: id, Role: claims.Role}
		if err != nil || caller.Validate() != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		c.Set(callerKey, caller)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole checks the authenticated caller's role against allowedRoles.
// It must run after Authenticate.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		for _, role := range allowedRoles {
			if caller.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	}
}

// CallerFrom returns the caller stored by Authenticate
func CallerFrom(c *gin.Context) (access.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return access.Caller{}, false
	}
	caller, ok := v.(access.Caller)
	return caller, ok
}

// ClaimsFrom returns the verified token claims stored by Authenticate
func ClaimsFrom(c *gin.Context) *session.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*session.Claims)
	return claims
}
