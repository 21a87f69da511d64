package controllers

import (
	"errors"
	"net/http"

	"github.com/bellapacxx/academy-backend/middleware"
	"github.com/bellapacxx/academy-backend/services"
	"github.com/bellapacxx/academy-backend/utils/logger"
	"github.com/gin-gonic/gin"
)

const (
	msgNotFound       = "Not found."
	msgInvalidPage    = "Invalid page."
	msgGameNotFound   = "Game doesn't exist"
	msgInternalError  = "Internal server error."
	msgUserHasGames   = "A user who has played games cannot be deleted."
	msgBadCredentials = "Unable to log in with provided credentials."
)

// respondError writes the response for an error returned by a service.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var perr errParse

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.As(err, &perr):
		c.JSON(http.StatusBadRequest, gin.H{"detail": perr.Error()})
	case errors.Is(err, services.ErrGameNotFound):
		c.JSON(http.StatusBadRequest, []string{msgGameNotFound})
	case errors.Is(err, services.ErrUserNotFound):
		notFound(c)
	case errors.Is(err, services.ErrNotPlayer), errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": middleware.MsgPermissionDenied})
	case errors.Is(err, services.ErrUserHasGames):
		c.JSON(http.StatusBadRequest, gin.H{"detail": msgUserHasGames})
	case errors.Is(err, services.ErrUnknownUsername):
		c.JSON(http.StatusNotFound, gin.H{services.NonFieldErrors: []string{msgBadCredentials}})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{services.NonFieldErrors: []string{msgBadCredentials}})
	default:
		logger.Errorf("[HTTP] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": msgInternalError})
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": msgNotFound})
}
