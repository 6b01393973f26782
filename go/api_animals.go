package adoptionserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	animalhttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/animals/adapters/http/mapper"
	animaltypes "github.com/Apurer/pet-adoption-api/internal/domains/animals/application/types"
	animalports "github.com/Apurer/pet-adoption-api/internal/domains/animals/ports"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// AnimalsAPI wires HTTP transport with the animals bounded context service.
type AnimalsAPI struct {
	service animalports.Service
}

// NewAnimalsAPI creates an AnimalsAPI backed by the provided service.
func NewAnimalsAPI(service animalports.Service) AnimalsAPI {
	return AnimalsAPI{service: service}
}

// Post /animals
// List a new animal under the calling shelter
func (api *AnimalsAPI) CreateAnimal(c *gin.Context) {
	var payload animalhttpmapper.CreateAnimal
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	saved, err := api.service.Create(c.Request.Context(), animalhttpmapper.ToCreateInput(actorFrom(c), payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, animalhttpmapper.FromProjection(saved))
}

// Get /animals
// Finds animals by species, size, status and temperament
func (api *AnimalsAPI) ListAnimals(c *gin.Context) {
	var input animaltypes.ListAnimalsInput
	if !bindQuery(c, "species", &input.Species) ||
		!bindQuery(c, "size", &input.Size) ||
		!bindQuery(c, "status", &input.Status) ||
		!bindQuery(c, "goodWithChildren", &input.GoodWithChildren) ||
		!bindQuery(c, "goodWithPets", &input.GoodWithPets) {
		return
	}
	result, err := api.service.List(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, animalhttpmapper.FromProjectionList(result))
}

// Get /animals/shelter/:shelterId
// Lists every animal of a shelter
func (api *AnimalsAPI) ListShelterAnimals(c *gin.Context) {
	shelterID, ok := parseIDParam(c, "shelterId")
	if !ok {
		return
	}
	result, err := api.service.ListByShelter(c.Request.Context(), shelterID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, animalhttpmapper.FromProjectionList(result))
}

// Get /animals/:id
// Find animal by ID
func (api *AnimalsAPI) GetAnimal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	animal, err := api.service.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, animalhttpmapper.FromProjection(animal))
}

// Get /animals/:id/compatibility
// Scores the caller against one animal
func (api *AnimalsAPI) Compatibility(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := api.service.Compatibility(c.Request.Context(), animaltypes.CompatibilityInput{Actor: actorFrom(c), AnimalID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, animalhttpmapper.FromCompatibility(result))
}

// Post /animals/recommendations
// Ranks animals by compatibility with the caller
func (api *AnimalsAPI) Recommendations(c *gin.Context) {
	var payload animalhttpmapper.RecommendationsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
			return
		}
	}
	result, err := api.service.Recommendations(c.Request.Context(), animaltypes.RecommendationsInput{
		Actor:     actorFrom(c),
		AnimalIDs: payload.AnimalIDs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, animalhttpmapper.FromRecommendations(result))
}

// Patch /animals/:id
// Updates an animal owned by the caller
func (api *AnimalsAPI) UpdateAnimal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload animalhttpmapper.UpdateAnimal
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	updated, err := api.service.Update(c.Request.Context(), animalhttpmapper.ToUpdateInput(actorFrom(c), id, payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, animalhttpmapper.FromProjection(updated))
}

// Delete /animals/:id
// Deletes an animal owned by the caller
func (api *AnimalsAPI) DeleteAnimal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), animaltypes.DeleteAnimalInput{Actor: actorFrom(c), ID: id}); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Animal deleted successfully"})
}
