package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bellapacxx/academy-backend/middleware"
	"github.com/bellapacxx/academy-backend/models"
	"github.com/bellapacxx/academy-backend/services"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	users    *services.UserService
	mediaURL string
}

func NewUserController(users *services.UserService, mediaURL string) *UserController {
	return &UserController{users: users, mediaURL: mediaURL}
}

type userRequest struct {
	Username *string `json:"username" form:"username"`
	Password *string `json:"password" form:"password"`
	Email    *string `json:"email" form:"email"`
}

// ListUsers returns every user ordered by id.
func (uc *UserController) ListUsers(c *gin.Context) {
	users, err := uc.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSerializer(c, uc.mediaURL).Users(users))
}

// GetUser fetches a user by id.
func (uc *UserController) GetUser(c *gin.Context) {
	user, ok := uc.loadUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSerializer(c, uc.mediaURL).User(user))
}

// RegisterUser creates an account. The body may be JSON or a multipart form
// carrying an optional image.
func (uc *UserController) RegisterUser(c *gin.Context) {
	in, ok := uc.bindUser(c)
	if !ok {
		return
	}

	user, err := uc.users.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSerializer(c, uc.mediaURL).User(user))
}

// UpdateUser handles PUT (full) and PATCH (partial) updates of the caller's
// own account.
func (uc *UserController) UpdateUser(c *gin.Context) {
	user, ok := uc.loadOwnUser(c)
	if !ok {
		return
	}
	in, ok := uc.bindUser(c)
	if !ok {
		return
	}

	partial := c.Request.Method == http.MethodPatch
	if err := uc.users.Update(c.Request.Context(), user, in, partial); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSerializer(c, uc.mediaURL).User(user))
}

// DeleteUser removes the caller's own account.
func (uc *UserController) DeleteUser(c *gin.Context) {
	user, ok := uc.loadOwnUser(c)
	if !ok {
		return
	}
	if err := uc.users.Delete(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (uc *UserController) bindUser(c *gin.Context) (services.UserInput, bool) {
	var req userRequest
	if err := c.ShouldBind(&req); err != nil && !isEmptyBody(err) {
		respondError(c, bindingError(err))
		return services.UserInput{}, false
	}

	in := services.UserInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	}
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		fh, err := c.FormFile("image")
		switch {
		case err == nil:
			in.Image = fh
		case !errors.Is(err, http.ErrMissingFile):
			respondError(c, bindingError(err))
			return services.UserInput{}, false
		}
	}
	return in, true
}

func (uc *UserController) loadUser(c *gin.Context) (*models.User, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		notFound(c)
		return nil, false
	}
	user, err := uc.users.Get(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return user, true
}

// loadOwnUser loads the user in the path and checks it is the caller.
func (uc *UserController) loadOwnUser(c *gin.Context) (*models.User, bool) {
	user, ok := uc.loadUser(c)
	if !ok {
		return nil, false
	}
	current, _ := middleware.CurrentUser(c)
	if current == nil || current.ID != user.ID {
		respondError(c, services.ErrForbidden)
		return nil, false
	}
	return user, true
}
