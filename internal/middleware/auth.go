package middleware

import (
	"net/http"
	"strings"

	"caisse/internal/model"
	"caisse/internal/service"
	"caisse/pkg/response"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireRole.
const (
	ActorKey  = "actor"
	UserIDKey = "userID"
	RoleKey   = "userRole"
)

// Auth checks access tokens signed with the service secret.
type Auth struct {
	secret   []byte
	secure   bool
	tokenTTL int
}

func NewAuth(secret []byte, release bool, tokenTTLSeconds int) *Auth {
	return &Auth{secret: secret, secure: release, tokenTTL: tokenTTLSeconds}
}

func (a *Auth) Secret() []byte { return a.secret }

// SetTokenCookie stores the access token as an HttpOnly cookie.
func (a *Auth) SetTokenCookie(c *gin.Context, token string) {
	sameSite := http.SameSiteLaxMode
	if a.secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie("access_token", token, a.tokenTTL, "/", "", a.secure, true)
}

func (a *Auth) ClearTokenCookie(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", a.secure, true)
}

// RequireRole validates the token and checks the role against allowedRoles.
// Admins pass every check.
func (a *Auth) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, cookieErr := c.Cookie("access_token")
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		claims, err := service.ParseToken(tokenString, a.secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
			return
		}
		if claims.Name == "" || !model.ValidRole(claims.Role) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		if !roleAllowed(claims.Role, allowedRoles) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Set(ActorKey, claims.Name)
		c.Set(UserIDKey, claims.Subject)
		c.Set(RoleKey, claims.Role)

		c.Next()
	}
}

func roleAllowed(role string, allowed []string) bool {
	if role == model.RoleAdmin || len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Actor returns the username set by RequireRole.
func Actor(c *gin.Context) string {
	return c.GetString(ActorKey)
}
