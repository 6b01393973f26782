package adoptionserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	requesthttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/http/mapper"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// IdempotencyKeyHeader lets clients retry request creation safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// AdoptionRequestsAPI wires HTTP transport with the adoptions service and decision workflows.
type AdoptionRequestsAPI struct {
	service   adoptionports.Service
	workflows adoptionports.WorkflowOrchestrator
}

// NewAdoptionRequestsAPI creates an AdoptionRequestsAPI backed by the provided service.
func NewAdoptionRequestsAPI(service adoptionports.Service, workflows adoptionports.WorkflowOrchestrator) AdoptionRequestsAPI {
	return AdoptionRequestsAPI{service: service, workflows: workflows}
}

// Post /adoption-requests
// Submit an adoption request for an available animal
func (api *AdoptionRequestsAPI) CreateRequest(c *gin.Context) {
	var payload requesthttpmapper.CreateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	input := requesthttpmapper.ToCreateInput(actorFrom(c), payload, key)
	view, err := api.service.CreateRequest(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, requesthttpmapper.FromView(view))
}

// Get /adoption-requests
// Lists the requests visible to the caller
func (api *AdoptionRequestsAPI) ListRequests(c *gin.Context) {
	views, err := api.service.ListForActor(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, requesthttpmapper.FromViewList(views))
}

// Get /adoption-requests/my-requests
// Lists the caller's own requests
func (api *AdoptionRequestsAPI) ListMyRequests(c *gin.Context) {
	views, err := api.service.ListForUser(c.Request.Context(), actorFrom(c).UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, requesthttpmapper.FromViewList(views))
}

// Get /adoption-requests/shelter/:shelterId
// Lists requests for a shelter's animals
func (api *AdoptionRequestsAPI) ListShelterRequests(c *gin.Context) {
	shelterID, ok := parseIDParam(c, "shelterId")
	if !ok {
		return
	}
	views, err := api.service.ListForShelter(c.Request.Context(), adoptiontypes.ListForShelterInput{
		Actor:     actorFrom(c),
		ShelterID: shelterID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, requesthttpmapper.FromViewList(views))
}

// Get /adoption-requests/:id
// Find adoption request by ID
func (api *AdoptionRequestsAPI) GetRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := api.service.Get(c.Request.Context(), adoptiontypes.GetRequestInput{Actor: actorFrom(c), RequestID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, requesthttpmapper.FromView(view))
}

// Patch /adoption-requests/:id/status
// Approves, rejects or completes a request
func (api *AdoptionRequestsAPI) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload requesthttpmapper.UpdateStatus
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	input := adoptiontypes.UpdateStatusInput{
		Actor:        actorFrom(c),
		RequestID:    id,
		Status:       domain.Status(strings.ToLower(strings.TrimSpace(payload.Status))),
		ShelterNotes: payload.ShelterNotes,
	}
	view, err := api.decide(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, requesthttpmapper.FromView(view))
}

func (api *AdoptionRequestsAPI) decide(ctx context.Context, input adoptiontypes.UpdateStatusInput) (*adoptiontypes.RequestView, error) {
	if api.workflows != nil {
		return api.workflows.DecideRequest(ctx, input)
	}
	return api.service.UpdateStatus(ctx, input)
}

// Delete /adoption-requests/:id
// Withdraws a pending request
func (api *AdoptionRequestsAPI) DeleteRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	err := api.service.RemoveRequest(c.Request.Context(), adoptiontypes.RemoveRequestInput{Actor: actorFrom(c), RequestID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Adoption request deleted successfully"})
}
