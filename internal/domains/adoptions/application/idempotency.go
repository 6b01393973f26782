package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	types "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
)

type normalizedCreateRequestInput struct {
	UserID   string `json:"userId"`
	AnimalID string `json:"animalId"`
	Message  string `json:"message"`
}

// FingerprintCreateRequest builds a deterministic hash of the create payload (excluding the idempotency key).
func FingerprintCreateRequest(input types.CreateRequestInput) (string, error) {
	payload, err := json.Marshal(normalizedCreateRequestInput{
		UserID:   input.Actor.UserID,
		AnimalID: strings.TrimSpace(input.AnimalID),
		Message:  strings.TrimSpace(input.Message),
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
