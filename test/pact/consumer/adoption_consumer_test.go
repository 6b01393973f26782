//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/pet-adoption-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type animalPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Species   string `json:"species"`
	Status    string `json:"status"`
	ShelterID string `json:"shelterId"`
}

type adoptionRequestPayload struct {
	ID                 string   `json:"id"`
	AnimalID           string   `json:"animalId"`
	Status             string   `json:"status"`
	CompatibilityScore *float64 `json:"compatibilityScore"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestAdoptionPortalContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	example := pacttest.ExampleAnimalPayload()
	animalBodyMatcher := matchers.Map{
		"id":        matchers.Like(example["id"]),
		"name":      matchers.Like(example["name"]),
		"species":   matchers.Term("dog", "cat|dog|bird|rabbit|other"),
		"status":    matchers.Term("available", "available|pending|adopted"),
		"shelterId": matchers.Like("shelter-id"),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateAnimalAvailable).
		UponReceiving("a request to fetch an available animal").
		WithRequest("GET", "/animals/"+pacttest.AvailableAnimalID).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(animalBodyMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateAnimalMissing).
		UponReceiving("a request for a missing animal").
		WithRequest("GET", "/animals/"+pacttest.MissingAnimalID).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateAdopterReady).
		UponReceiving("an adopter submitting a request for an available animal").
		WithRequest("POST", "/adoption-requests", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", matchers.S("Bearer "+pacttest.AdopterToken))
			b.JSONBody(matchers.Map{
				"animalId": matchers.S(pacttest.AvailableAnimalID),
				"message":  matchers.Like("We have a big garden"),
			})
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":                 matchers.Like("request-id"),
				"animalId":           matchers.S(pacttest.AvailableAnimalID),
				"status":             matchers.S("pending"),
				"compatibilityScore": matchers.Like(75.0),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newPortalClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		animal, err := client.GetAnimal(ctx, pacttest.AvailableAnimalID)
		if err != nil {
			return fmt.Errorf("get animal: %w", err)
		}
		if animal.Status != "available" {
			return fmt.Errorf("expected available animal, got %+v", animal)
		}

		if _, err := client.GetAnimal(ctx, pacttest.MissingAnimalID); err == nil {
			return fmt.Errorf("expected 404 for animal %s", pacttest.MissingAnimalID)
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", apiErr.Status())
		}

		request, err := client.RequestAdoption(ctx, pacttest.AdopterToken, pacttest.AvailableAnimalID, "We have a big garden")
		if err != nil {
			return fmt.Errorf("request adoption: %w", err)
		}
		if request.ID == "" || request.Status != "pending" {
			return fmt.Errorf("expected pending request, got %+v", request)
		}
		return nil
	})
	require.NoError(t, err)
}

type portalClient struct {
	baseURL    string
	httpClient *http.Client
}

func newPortalClient(config pactconsumer.MockServerConfig) *portalClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &portalClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *portalClient) GetAnimal(ctx context.Context, id string) (*animalPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/animals/"+id, nil)
	if err != nil {
		return nil, err
	}
	var payload animalPayload
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *portalClient) RequestAdoption(ctx context.Context, token, animalID, message string) (*adoptionRequestPayload, error) {
	body, err := json.Marshal(map[string]string{"animalId": animalID, "message": message})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/adoption-requests", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	var payload adoptionRequestPayload
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *portalClient) do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{
		status: status,
		title:  problem.Title,
		detail: problem.Detail,
	}
}
