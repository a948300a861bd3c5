package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"airspace/internal/credential/models"
	id "airspace/pkg/domain"
)

const remoteBackendName = "remote"

// RemoteBackend implements CredentialBackend against the issuer HTTP API.
// Requests carry a bearer API key and JSON bodies; non-2xx responses are
// mapped to categorized backend errors with a best-effort extraction of the
// server's error message.
type RemoteBackend struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// Ensure RemoteBackend implements CredentialBackend
var _ CredentialBackend = (*RemoteBackend)(nil)

// RemoteOption configures the RemoteBackend.
type RemoteOption func(*RemoteBackend)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(b *RemoteBackend) {
		b.httpClient = client
	}
}

// NewRemoteBackend creates an HTTP-backed credential backend.
func NewRemoteBackend(baseURL, apiKey string, timeout time.Duration, opts ...RemoteOption) *RemoteBackend {
	b := &RemoteBackend{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name identifies the backend for logs and metrics.
func (b *RemoteBackend) Name() string { return remoteBackendName }

// errorResponse is the issuer's error body shape.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// doJSON executes one API call and decodes a 200 response into out.
func (b *RemoteBackend) doJSON(ctx context.Context, method, path string, reqBody, out any) error {
	var bodyReader io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return NewBackendError(ErrorInternal, remoteBackendName, "failed to marshal request", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, bodyReader)
	if err != nil {
		return NewBackendError(ErrorInternal, remoteBackendName, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return NewBackendError(ErrorTimeout, remoteBackendName, "request timeout", err)
		}
		return NewBackendError(ErrorOutage, remoteBackendName, "failed to execute request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewBackendError(ErrorInternal, remoteBackendName, "failed to read response body", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Success - continue to parse
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewBackendError(ErrorAuthentication, remoteBackendName, "authentication failed", nil)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return NewBackendError(ErrorBadData, remoteBackendName, extractMessage(body, "bad request"), nil)
	case http.StatusNotFound:
		return NewBackendError(ErrorNotFound, remoteBackendName, extractMessage(body, "not found"), nil)
	case http.StatusTooManyRequests:
		return NewBackendError(ErrorRateLimited, remoteBackendName, "rate limited", nil)
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return NewBackendError(ErrorOutage, remoteBackendName, "service unavailable", nil)
	default:
		return NewBackendError(ErrorInternal, remoteBackendName,
			extractMessage(body, fmt.Sprintf("unexpected status code: %d", resp.StatusCode)), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return NewBackendError(ErrorContractMismatch, remoteBackendName, "failed to parse response", err)
	}
	return nil
}

// extractMessage pulls the server-provided message out of an error body,
// falling back to raw text and finally to the given default.
func extractMessage(body []byte, fallback string) string {
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
		return errResp.Message
	}
	if len(body) > 0 && len(body) <= 256 {
		return string(body)
	}
	return fallback
}

// IssueCredential issues a credential for the given subject.
func (b *RemoteBackend) IssueCredential(ctx context.Context, req models.IssueCredentialRequest) (*models.IssueCredentialResponse, error) {
	var resp models.IssueCredentialResponse
	if err := b.doJSON(ctx, http.MethodPost, "/credentials/issue", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// verifyRequest wraps a credential for the verify endpoint.
type verifyRequest struct {
	Credential models.VerifiableCredential `json:"credential"`
}

// VerifyCredential checks a credential against the issuer.
func (b *RemoteBackend) VerifyCredential(ctx context.Context, cred models.VerifiableCredential) (*models.VerifyCredentialResponse, error) {
	var resp models.VerifyCredentialResponse
	if err := b.doJSON(ctx, http.MethodPost, "/credentials/verify", verifyRequest{Credential: cred}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListCredentials returns one page of the holder's credentials.
func (b *RemoteBackend) ListCredentials(ctx context.Context, holder id.DID, page, pageSize int) (*models.ListCredentialsResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	q := url.Values{
		"holderDid": {holder.String()},
		"page":      {strconv.Itoa(page)},
		"pageSize":  {strconv.Itoa(pageSize)},
	}
	var resp models.ListCredentialsResponse
	if err := b.doJSON(ctx, http.MethodGet, "/credentials?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// revokeRequest identifies the credential to revoke.
type revokeRequest struct {
	CredentialID string `json:"credentialId"`
}

// RevokeCredential revokes a credential by ID.
func (b *RemoteBackend) RevokeCredential(ctx context.Context, credentialID id.CredentialID) (*models.RevokeCredentialResponse, error) {
	var resp models.RevokeCredentialResponse
	if err := b.doJSON(ctx, http.MethodPost, "/credentials/revoke", revokeRequest{CredentialID: credentialID.String()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CredentialStatus reports lifecycle status for one credential.
func (b *RemoteBackend) CredentialStatus(ctx context.Context, credentialID id.CredentialID) (*models.CredentialStatusResponse, error) {
	var resp models.CredentialStatusResponse
	path := "/credentials/status/" + url.PathEscape(credentialID.String())
	if err := b.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IssuerInfo describes the issuing authority.
func (b *RemoteBackend) IssuerInfo(ctx context.Context) (*models.IssuerInfoResponse, error) {
	var resp models.IssuerInfoResponse
	if err := b.doJSON(ctx, http.MethodGet, "/issuer/info", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Schemas lists available credential schemas.
func (b *RemoteBackend) Schemas(ctx context.Context) (*models.SchemaResponse, error) {
	var resp models.SchemaResponse
	if err := b.doJSON(ctx, http.MethodGet, "/schemas", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
