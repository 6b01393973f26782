package adoptionserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	adoptionsapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	animalsapp "github.com/Apurer/pet-adoption-api/internal/domains/animals/application"
	animalports "github.com/Apurer/pet-adoption-api/internal/domains/animals/ports"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

var problems = apierrors.NewChainedResponder("", mapAdoptionError, mapAnimalError, mapUserError)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	problems.Respond(c, problem)
}

// respondServiceError maps application errors of every context to RFC 7807 responses.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problems.RespondError(c, err)
}

func mapAdoptionError(err error) (apierrors.ProblemDetail, bool) {
	var stateErr *adoptionsapp.StateError
	if errors.As(err, &stateErr) {
		template := apierrors.ErrInvalidState
		if errors.Is(err, adoptionsapp.ErrConflict) {
			template = apierrors.ErrConflict
		}
		problem := apierrors.NewStateProblem(template, err.Error(), stateErr.Entity, stateErr.ID, stateErr.Expected, stateErr.Actual)
		if stateErr.Entity == "adoption request" {
			problem = problem.WithExtension("requestId", stateErr.ID)
		}
		return problem, true
	}
	switch {
	case errors.Is(err, adoptionsapp.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, adoptionsapp.ErrInvalidState):
		return apierrors.ErrInvalidState.WithDetail(err.Error()), true
	case errors.Is(err, adoptionsapp.ErrDuplicateRequest):
		return apierrors.ErrDuplicateRequest.WithDetail(err.Error()), true
	case errors.Is(err, adoptionsapp.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()).WithExtension("reason", "idempotency-key-reused"), true
	case errors.Is(err, adoptionsapp.ErrConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, adoptionsapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, adoptionsapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapAnimalError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, animalports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, animalports.ErrStaleStatus):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, animalsapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, animalsapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapUserError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, userports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, userapp.ErrEmailTaken):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, userapp.ErrAuthentication), errors.Is(err, userports.ErrInvalidToken):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, userapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, userapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
