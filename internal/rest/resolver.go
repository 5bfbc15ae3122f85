// ABOUTME: REST client that resolves the websocket gateway URL before connecting
// ABOUTME: Single authenticated GET against the platform API, retried per attempt

package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const resolveTimeout = 10 * time.Second

// Resolver looks up the current gateway websocket URL from the REST API.
// Each connection attempt resolves afresh so endpoint rotation is picked up.
type Resolver struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewResolver creates a resolver against the given API base URL.
func NewResolver(baseURL, token string) *Resolver {
	return &Resolver{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: resolveTimeout},
	}
}

// gatewayResponse is the body of GET /gateway.
type gatewayResponse struct {
	URL string `json:"url"`
}

// GatewayURL fetches the websocket base URL for the gateway.
func (r *Resolver) GatewayURL(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/gateway", nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting gateway url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway lookup returned status %d", resp.StatusCode)
	}

	var body gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding gateway response: %w", err)
	}
	if body.URL == "" {
		return "", fmt.Errorf("gateway lookup returned empty url")
	}

	return body.URL, nil
}
