//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "pet-adoption-api"
	ConsumerName = "adoption-portal"

	StateAnimalAvailable = "animal pact-animal-1 is available"
	StateAnimalMissing   = "no animal with id missing-animal"
	StateAdopterReady    = "adopter pact-adopter and animal pact-animal-1 exist"
)

const (
	AvailableAnimalID = "pact-animal-1"
	MissingAnimalID   = "missing-animal"
	ShelterEmail      = "pact-shelter@example.com"
	AdopterEmail      = "pact-adopter@example.com"
	Password          = "pact-pass"

	// AdopterToken is the placeholder bearer token the provider swaps for a real one.
	AdopterToken = "pact-adopter-token"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the adoption portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleAnimalPayload provides stable test data for animal interactions.
func ExampleAnimalPayload() map[string]any {
	return map[string]any{
		"id":          AvailableAnimalID,
		"name":        "Pact Rex",
		"species":     "dog",
		"breed":       "Labrador",
		"age":         3,
		"size":        "large",
		"energyLevel": 6,
		"status":      "available",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
