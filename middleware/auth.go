package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bellapacxx/academy-backend/models"
	"github.com/bellapacxx/academy-backend/services"
	"github.com/bellapacxx/academy-backend/utils/logger"
	"github.com/gin-gonic/gin"
)

const userKey = "academy.user"

// Messages returned by the permission checks.
const (
	MsgNotAuthenticated = "Authentication credentials were not provided."
	MsgPermissionDenied = "You do not have permission to perform this action."
	MsgInvalidToken     = "Invalid token."
)

// TokenAuth reads "Authorization: Token <key>" and stores the user on the
// context. Requests without the header stay anonymous.
func TokenAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, key, _ := strings.Cut(header, " ")
		if !strings.EqualFold(scheme, "Token") {
			c.Next()
			return
		}
		key = strings.TrimSpace(key)
		if key == "" || strings.Contains(key, " ") {
			unauthorized(c, "Invalid token header.")
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, services.ErrInvalidToken) {
				unauthorized(c, MsgInvalidToken)
				return
			}
			logger.Errorf("[Auth] token lookup failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// CreateOrAuthenticated lets anyone create (POST) and read; other methods
// need an authenticated user.
func CreateOrAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodOptions:
			c.Next()
			return
		}
		authenticatedOrReadOnly(c)
	}
}

// IsAuthenticatedOrReadOnly lets anyone read; writes need an authenticated user.
func IsAuthenticatedOrReadOnly() gin.HandlerFunc {
	return authenticatedOrReadOnly
}

// RequireAuthenticated rejects anonymous requests.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			unauthorized(c, MsgNotAuthenticated)
			return
		}
		c.Next()
	}
}

func authenticatedOrReadOnly(c *gin.Context) {
	if isSafeMethod(c.Request.Method) {
		c.Next()
		return
	}
	if _, ok := CurrentUser(c); !ok {
		unauthorized(c, MsgNotAuthenticated)
		return
	}
	c.Next()
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Token")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}
