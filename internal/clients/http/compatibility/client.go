// Package compatibility is the HTTP client of the adopter/animal compatibility scorer.
package compatibility

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	predictPath      = "/predict"
	predictBatchPath = "/predict/batch"
	maxErrorBody     = 4 << 10
)

// User is the adopter lifestyle sent to the scorer.
type User struct {
	HousingType   string `json:"housing_type"`
	AvailableTime int    `json:"available_time"`
	Experience    string `json:"experience"`
	HasChildren   bool   `json:"has_children"`
	HasOtherPets  bool   `json:"has_other_pets"`
}

// Animal is the animal attributes sent to the scorer. ID is only set in batch calls.
type Animal struct {
	ID               string `json:"id,omitempty"`
	Species          string `json:"species"`
	Age              int    `json:"age"`
	Size             string `json:"size"`
	EnergyLevel      int    `json:"energy_level"`
	GoodWithChildren bool   `json:"good_with_children"`
	GoodWithPets     bool   `json:"good_with_pets"`
}

type PredictRequest struct {
	User   User   `json:"user"`
	Animal Animal `json:"animal"`
}

type PredictResponse struct {
	CompatibilityScore float64 `json:"compatibility_score"`
	Recommendation     string  `json:"recommendation,omitempty"`
}

type BatchRequest struct {
	User    User     `json:"user"`
	Animals []Animal `json:"animals"`
}

// Prediction is one entry of a batch response.
type Prediction struct {
	AnimalID           string  `json:"animal_id"`
	CompatibilityScore float64 `json:"compatibility_score"`
	Recommendation     string  `json:"recommendation,omitempty"`
}

type BatchResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("compatibility scorer returned %d", e.StatusCode)
	}
	return fmt.Sprintf("compatibility scorer returned %d: %s", e.StatusCode, e.Body)
}

// Client calls the scorer over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient validates baseURL and instruments the transport. A nil httpClient
// gets a 3 second timeout.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("compatibility scorer base URL is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid compatibility scorer URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 3 * time.Second}
	}
	instrumented := *httpClient
	transport := instrumented.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	instrumented.Transport = otelhttp.NewTransport(transport)
	return &Client{baseURL: baseURL, httpClient: &instrumented}, nil
}

// Predict scores one pair.
func (c *Client) Predict(ctx context.Context, req PredictRequest) (PredictResponse, error) {
	var out PredictResponse
	if err := c.post(ctx, predictPath, req, &out); err != nil {
		return PredictResponse{}, err
	}
	return out, nil
}

// PredictBatch scores several animals for one adopter.
func (c *Client) PredictBatch(ctx context.Context, req BatchRequest) (BatchResponse, error) {
	var out BatchResponse
	if err := c.post(ctx, predictBatchPath, req, &out); err != nil {
		return BatchResponse{}, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if c == nil || c.httpClient == nil {
		return errors.New("compatibility client not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call compatibility scorer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
