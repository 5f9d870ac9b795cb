package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/riyagarg17/CS520-Team5/internal/models"
)

// Classifier derives a health-risk zone from a metrics snapshot. The model
// itself is external; this core only consumes it as metrics in, zone out.
type Classifier interface {
	Zone(ctx context.Context, hd models.HealthDetails) (string, error)
}

// HTTPClassifier calls the external model endpoint with a bare JSON POST.
type HTTPClassifier struct {
	url        string
	httpClient *http.Client
}

func NewHTTPClassifier(url string) *HTTPClassifier {
	return &HTTPClassifier{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type zoneResponse struct {
	Zone string `json:"zone"`
}

func (c *HTTPClassifier) Zone(ctx context.Context, hd models.HealthDetails) (string, error) {
	if c.url == "" {
		return "", fmt.Errorf("risk model endpoint not configured")
	}
	body, err := json.Marshal(hd)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("risk model request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("risk model error: status %d", resp.StatusCode)
	}

	var out zoneResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Zone, nil
}

// StaticClassifier always answers with one zone. Test double and fallback.
type StaticClassifier struct {
	Result string
}

func (s StaticClassifier) Zone(context.Context, models.HealthDetails) (string, error) {
	return s.Result, nil
}
