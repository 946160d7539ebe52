package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"credgate/pkg/domain"
	"credgate/pkg/platform/sentinel"
)

// HTTPClient talks to a ledger access node over its REST surface. The node
// fronts the actual chain network and owns all write and consensus concerns;
// this client only reads. A 404 from the node maps to sentinel.ErrNotFound,
// any other non-2xx to sentinel.ErrUnavailable.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// HTTPClientOption configures the HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithHTTPDoer replaces the underlying *http.Client, mainly for tests.
func WithHTTPDoer(c *http.Client) HTTPClientOption {
	return func(h *HTTPClient) {
		h.client = c
	}
}

// NewHTTPClient constructs a ledger client for the given access node URL.
func NewHTTPClient(baseURL string, opts ...HTTPClientOption) *HTTPClient {
	h := &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTPClient) GetCredential(ctx context.Context, id domain.CredentialID) (*CredentialRecord, error) {
	var record CredentialRecord
	path := "/credentials/" + url.PathEscape(id.String())
	if err := h.get(ctx, path, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (h *HTTPClient) GetCredentialsByHolder(ctx context.Context, holderID domain.HolderID) ([]CredentialSummary, error) {
	var summaries []CredentialSummary
	path := "/credentials?holder_id=" + url.QueryEscape(holderID.String())
	if err := h.get(ctx, path, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (h *HTTPClient) GetCredentialsByIssuer(ctx context.Context, issuerID domain.IssuerID) ([]CredentialSummary, error) {
	var summaries []CredentialSummary
	path := "/credentials?issuer_id=" + url.QueryEscape(issuerID.String())
	if err := h.get(ctx, path, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (h *HTTPClient) GetProvenance(ctx context.Context, id domain.CredentialID) (*ProvenanceTrace, error) {
	var trace ProvenanceTrace
	path := "/credentials/" + url.PathEscape(id.String()) + "/provenance"
	if err := h.get(ctx, path, &trace); err != nil {
		return nil, err
	}
	return &trace, nil
}

func (h *HTTPClient) Attest(ctx context.Context, id domain.CredentialID) (*Attestation, error) {
	var attestation Attestation
	path := "/credentials/" + url.PathEscape(id.String()) + "/attest"
	if err := h.get(ctx, path, &attestation); err != nil {
		return nil, err
	}
	return &attestation, nil
}

// get performs one GET against the access node. No retries here: callers'
// context cancellation aborts the request, and retry policy belongs to the
// node, not this client.
func (h *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build ledger request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		// Caller cancellation is not a ledger failure; hand the context
		// error back untouched so it propagates as itself.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("ledger unreachable: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("credential not on ledger: %w", sentinel.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("ledger returned status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode ledger response: %w", err)
	}
	return nil
}
