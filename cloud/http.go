package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fusionworks/fusioncoder/core"
)

// HTTPBackend talks JSON over HTTP to a real remote code service.
type HTTPBackend struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// HTTPOptions configures an HTTPBackend.
type HTTPOptions struct {
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	// Timeout bounds each call. Defaults to 30s.
	Timeout time.Duration
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// NewHTTPBackend constructs a backend rooted at baseURL.
func NewHTTPBackend(baseURL string, optFns ...func(o *HTTPOptions)) *HTTPBackend {
	opts := HTTPOptions{Timeout: 30 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  opts.APIKey,
		client:  client,
	}
}

// Invoke implements core.CloudBackend. Non-2xx responses become a
// CloudDispatchError carrying the status and a body excerpt.
func (b *HTTPBackend) Invoke(ctx context.Context, endpoint string, payload map[string]any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode cloud payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read cloud response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &core.CloudDispatchError{StatusCode: resp.StatusCode, Body: excerpt(data)}
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode cloud response: %w", err)
	}
	return decoded, nil
}

func excerpt(data []byte) string {
	const max = 256
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		return s[:max]
	}
	return s
}
