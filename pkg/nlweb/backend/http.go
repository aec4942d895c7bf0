package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

const httpBackendTimeout = 30 * time.Second

// httpBackend queries a remote search API that accepts the query as URL
// parameters and returns a JSON array of results.
type httpBackend struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPBackend creates a backend over a remote JSON search API.
func NewHTTPBackend(baseURL, apiKey string) (DataBackend, error) {
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, fmt.Errorf("%w: invalid backend url %q", nlweb.ErrInvalidArgument, baseURL)
	}
	return &httpBackend{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: httpBackendTimeout},
	}, nil
}

func (b *httpBackend) Search(ctx context.Context, query, site string, maxResults int) ([]nlweb.Result, error) {
	u, err := url.Parse(b.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse backend url: %w", err)
	}
	q := u.Query()
	q.Set("query", query)
	if site != "" {
		q.Set("site", site)
	}
	q.Set("max_results", strconv.Itoa(maxResults))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build backend request: %w", err)
	}
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var results []nlweb.Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode backend response: %w", err)
	}
	return results, nil
}
