package adoptionserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/http/mapper"
	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// UsersAPI implements the auth and user sections.
type UsersAPI struct {
	service userports.Service
}

// NewUsersAPI wires dependencies.
func NewUsersAPI(service userports.Service) UsersAPI {
	return UsersAPI{service: service}
}

// Post /auth/register
// Create an account and return a token
func (api *UsersAPI) Register(c *gin.Context) {
	var payload userhttpmapper.Register
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	result, err := api.service.Register(c.Request.Context(), userhttpmapper.ToRegisterInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromAuthResult(result))
}

// Post /auth/login
// Logs user into the system
func (api *UsersAPI) Login(c *gin.Context) {
	var payload userhttpmapper.Login
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	result, err := api.service.Login(c.Request.Context(), usertypes.LoginInput{Email: payload.Email, Password: payload.Password})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromAuthResult(result))
}

// Get /users/profile
// Returns the caller's account
func (api *UsersAPI) GetProfile(c *gin.Context) {
	user, err := api.service.Profile(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromProjection(user))
}

// Patch /users/profile
// Updates the caller's contact and lifestyle details
func (api *UsersAPI) UpdateProfile(c *gin.Context) {
	var payload userhttpmapper.UpdateProfile
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	updated, err := api.service.UpdateProfile(c.Request.Context(), usertypes.UpdateProfileInput{
		Actor:   actorFrom(c),
		Name:    payload.Name,
		Phone:   payload.Phone,
		Address: payload.Address,
		Profile: userhttpmapper.ToProfileInput(payload.Profile),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromProjection(updated))
}

// Get /users
// Lists every account (admin)
func (api *UsersAPI) ListUsers(c *gin.Context) {
	users, err := api.service.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromProjectionList(users))
}

// Get /users/:id
// Get user by id
func (api *UsersAPI) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := api.service.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromProjection(user))
}

// Delete /users/:id
// Delete user
func (api *UsersAPI) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
