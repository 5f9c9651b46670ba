// Package web resolves DIDs through a universal-resolver style HTTP
// endpoint that serves DID documents at GET {base}/{did}.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/gitmujoshi/cms/did"
)

const defaultTimeout = 10 * time.Second

// Resolver is an HTTP client for a DID resolver endpoint.
type Resolver struct {
	baseURL string
	client  *http.Client
}

// NewResolver creates a resolver for the given base URL.
func NewResolver(baseURL string) *Resolver {
	return &Resolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Resolve fetches and parses the DID document for a DID.
func (r *Resolver) Resolve(ctx context.Context, didstr string) (*did.Document, error) {
	apiURL := r.baseURL + "/" + url.PathEscape(didstr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build DID resolver request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: HTTP request to DID resolver: %v", did.ErrResolutionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: DID resolver returned %s for %q", did.ErrResolutionFailed, resp.Status, didstr)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read DID resolver response: %v", did.ErrResolutionFailed, err)
	}

	var doc did.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: unmarshal DID document: %v", did.ErrResolutionFailed, err)
	}

	return &doc, nil
}
