package controllers

import (
	"net/http"

	"github.com/bellapacxx/academy-backend/services"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth     *services.AuthService
	mediaURL string
}

func NewAuthController(auth *services.AuthService, mediaURL string) *AuthController {
	return &AuthController{auth: auth, mediaURL: mediaURL}
}

type credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// ObtainToken exchanges a username and password for the user's API token.
func (ac *AuthController) ObtainToken(c *gin.Context) {
	var req credentials
	if err := c.ShouldBind(&req); err != nil && !isEmptyBody(err) {
		respondError(c, bindingError(err))
		return
	}

	verr := &services.ValidationError{}
	if req.Username == "" {
		verr.Add("username", "This field is required.")
	}
	if req.Password == "" {
		verr.Add("password", "This field is required.")
	}
	if err := verr.OrNil(); err != nil {
		respondError(c, err)
		return
	}

	token, err := ac.auth.ObtainToken(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token.Key,
		"id":    token.UserID,
		"image": newSerializer(c, ac.mediaURL).image(&token.User),
	})
}
