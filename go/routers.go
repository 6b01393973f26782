package adoptionserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type access int

const (
	public access = iota
	authenticated
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	access      access
	limited     bool
}

// ApiHandleFunctions groups the handlers and middleware of every API section.
type ApiHandleFunctions struct {
	AdoptionRequestsAPI AdoptionRequestsAPI
	AnimalsAPI          AnimalsAPI
	UsersAPI            UsersAPI
	// Auth verifies bearer tokens. Authenticated routes reject every call when nil.
	Auth *Authenticator
	// Limiter throttles mutating adoption routes. Nil disables throttling.
	Limiter *RateLimiter
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, chain(route, handleFunctions)...)
	}
	return router
}

// DefaultHandleFunc is used when a route has no handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func chain(route Route, handleFunctions ApiHandleFunctions) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, 3)
	if route.access == authenticated {
		handlers = append(handlers, handleFunctions.Auth.Required())
	}
	if route.limited && handleFunctions.Limiter != nil {
		handlers = append(handlers, handleFunctions.Limiter.Middleware())
	}
	return append(handlers, route.HandlerFunc)
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			Name:        "Register",
			Method:      http.MethodPost,
			Pattern:     "/auth/register",
			HandlerFunc: handleFunctions.UsersAPI.Register,
		},
		{
			Name:        "Login",
			Method:      http.MethodPost,
			Pattern:     "/auth/login",
			HandlerFunc: handleFunctions.UsersAPI.Login,
		},
		{
			Name:        "GetProfile",
			Method:      http.MethodGet,
			Pattern:     "/users/profile",
			HandlerFunc: handleFunctions.UsersAPI.GetProfile,
			access:      authenticated,
		},
		{
			Name:        "UpdateProfile",
			Method:      http.MethodPatch,
			Pattern:     "/users/profile",
			HandlerFunc: handleFunctions.UsersAPI.UpdateProfile,
			access:      authenticated,
		},
		{
			Name:        "ListUsers",
			Method:      http.MethodGet,
			Pattern:     "/users",
			HandlerFunc: handleFunctions.UsersAPI.ListUsers,
			access:      authenticated,
		},
		{
			Name:        "GetUser",
			Method:      http.MethodGet,
			Pattern:     "/users/:id",
			HandlerFunc: handleFunctions.UsersAPI.GetUser,
			access:      authenticated,
		},
		{
			Name:        "DeleteUser",
			Method:      http.MethodDelete,
			Pattern:     "/users/:id",
			HandlerFunc: handleFunctions.UsersAPI.DeleteUser,
			access:      authenticated,
		},
		{
			Name:        "CreateAnimal",
			Method:      http.MethodPost,
			Pattern:     "/animals",
			HandlerFunc: handleFunctions.AnimalsAPI.CreateAnimal,
			access:      authenticated,
		},
		{
			Name:        "ListAnimals",
			Method:      http.MethodGet,
			Pattern:     "/animals",
			HandlerFunc: handleFunctions.AnimalsAPI.ListAnimals,
		},
		{
			Name:        "ListShelterAnimals",
			Method:      http.MethodGet,
			Pattern:     "/animals/shelter/:shelterId",
			HandlerFunc: handleFunctions.AnimalsAPI.ListShelterAnimals,
		},
		{
			Name:        "Recommendations",
			Method:      http.MethodPost,
			Pattern:     "/animals/recommendations",
			HandlerFunc: handleFunctions.AnimalsAPI.Recommendations,
			access:      authenticated,
		},
		{
			Name:        "GetAnimal",
			Method:      http.MethodGet,
			Pattern:     "/animals/:id",
			HandlerFunc: handleFunctions.AnimalsAPI.GetAnimal,
		},
		{
			Name:        "Compatibility",
			Method:      http.MethodGet,
			Pattern:     "/animals/:id/compatibility",
			HandlerFunc: handleFunctions.AnimalsAPI.Compatibility,
			access:      authenticated,
		},
		{
			Name:        "UpdateAnimal",
			Method:      http.MethodPatch,
			Pattern:     "/animals/:id",
			HandlerFunc: handleFunctions.AnimalsAPI.UpdateAnimal,
			access:      authenticated,
		},
		{
			Name:        "DeleteAnimal",
			Method:      http.MethodDelete,
			Pattern:     "/animals/:id",
			HandlerFunc: handleFunctions.AnimalsAPI.DeleteAnimal,
			access:      authenticated,
		},
		{
			Name:        "CreateAdoptionRequest",
			Method:      http.MethodPost,
			Pattern:     "/adoption-requests",
			HandlerFunc: handleFunctions.AdoptionRequestsAPI.CreateRequest,
			access:      authenticated,
			limited:     true,
		},
		{
			Name:        "ListAdoptionRequests",
			Method:      http.MethodGet,
			Pattern:     "/adoption-requests",
			HandlerFunc: handleFunctions.AdoptionRequestsAPI.ListRequests,
			access:      authenticated,
		},
		{
			Name:        "ListMyAdoptionRequests",
			Method:      http.MethodGet,
			Pattern:     "/adoption-requests/my-requests",
			HandlerFunc: handleFunctions.AdoptionRequestsAPI.ListMyRequests,
			access:      authenticated,
		},
		{
			Name:        "ListShelterAdoptionRequests",
			Method:      http.MethodGet,
			Pattern:     "/adoption-requests/shelter/:shelterId",
			HandlerFunc: handleFunctions.AdoptionRequestsAPI.ListShelterRequests,
			access:      authenticated,
		},
		{
			Name:        "GetAdoptionRequest",
			Method:      http.MethodGet,
			Pattern:     "/adoption-requests/:id",
			HandlerFunc: handleFunctions.AdoptionRequestsAPI.GetRequest,
			access:      authenticated,
		},
		{
			Name:        "UpdateAdoptionRequestStatus",
			Method:      http.MethodPatch,
			Pattern:     "/adoption-requests/:id/status",
			HandlerFunc: handleFunctions.AdoptionRequestsAPI.UpdateStatus,
			access:      authenticated,
			limited:     true,
		},
		{
			Name:        "DeleteAdoptionRequest",
			Method:      http.MethodDelete,
			Pattern:     "/adoption-requests/:id",
			HandlerFunc: handleFunctions.AdoptionRequestsAPI.DeleteRequest,
			access:      authenticated,
			limited:     true,
		},
	}
}
