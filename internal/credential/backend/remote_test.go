package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"airspace/internal/credential/backend"
	"airspace/internal/credential/models"
	id "airspace/pkg/domain"
)

// RemoteBackendSuite exercises the issuer HTTP client against a local server.
//
// Justification: the status-code mapping and error-message extraction are
// the contract the composition layer's fallback decisions depend on; they
// must be pinned against real HTTP responses, not stubs.
type RemoteBackendSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *RemoteBackendSuite) SetupTest() {
	s.ctx = context.Background()
}

func TestRemoteBackendSuite(t *testing.T) {
	suite.Run(t, new(RemoteBackendSuite))
}

func (s *RemoteBackendSuite) newBackend(handler http.HandlerFunc) (*backend.RemoteBackend, *httptest.Server) {
	server := httptest.NewServer(handler)
	s.T().Cleanup(server.Close)
	return backend.NewRemoteBackend(server.URL, "test-api-key", 5*time.Second), server
}

func (s *RemoteBackendSuite) TestIssueCredentialSendsBearerAndBody() {
	var gotAuth string
	var gotReq map[string]any

	b, _ := s.newBackend(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("/credentials/issue", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(models.IssueCredentialResponse{
			Message: "issued",
			Credential: models.VerifiableCredential{
				ID:   "urn:uuid:11111111-2222-3333-4444-555555555555",
				Type: []string{models.TypeVerifiableCredential, models.TypeHumanityCredential},
			},
		})
	})

	addr, err := id.ParseWalletAddress("0x1234567890abcdef1234567890abcdef12345678")
	s.Require().NoError(err)

	resp, err := b.IssueCredential(s.ctx, models.IssueCredentialRequest{
		SubjectDID: addr.DID(),
		Type:       models.TypeHumanityCredential,
		Claims:     map[string]any{"isHuman": true},
	})
	s.Require().NoError(err)

	s.Equal("Bearer test-api-key", gotAuth)
	s.Equal(addr.DID().String(), gotReq["subjectDid"])
	s.Equal("urn:uuid:11111111-2222-3333-4444-555555555555", resp.Credential.ID)
}

func (s *RemoteBackendSuite) TestBadRequestExtractsServerMessage() {
	b, _ := s.newBackend(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"message": "subjectDid is malformed"})
	})

	_, err := b.Schemas(s.ctx)
	s.Require().Error(err)

	var be *backend.BackendError
	s.Require().ErrorAs(err, &be)
	s.Equal(backend.ErrorBadData, be.Category)
	s.Equal("subjectDid is malformed", be.Message)
	s.False(be.Retryable)
}

func (s *RemoteBackendSuite) TestUnauthorizedMapsToAuthentication() {
	b, _ := s.newBackend(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := b.IssuerInfo(s.ctx)
	s.Equal(backend.ErrorAuthentication, backend.GetCategory(err))
}

func (s *RemoteBackendSuite) TestServiceUnavailableIsRetryable() {
	b, _ := s.newBackend(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := b.IssuerInfo(s.ctx)
	s.Equal(backend.ErrorOutage, backend.GetCategory(err))
	s.True(backend.IsRetryable(err))
}

func (s *RemoteBackendSuite) TestMalformedResponseIsContractMismatch() {
	b, _ := s.newBackend(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	})

	_, err := b.IssuerInfo(s.ctx)
	s.Equal(backend.ErrorContractMismatch, backend.GetCategory(err))
}

func (s *RemoteBackendSuite) TestListCredentialsQueryShape() {
	b, _ := s.newBackend(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/credentials", r.URL.Path)
		s.Equal("did:ethr:0x1234567890abcdef1234567890abcdef12345678", r.URL.Query().Get("holderDid"))
		s.Equal("2", r.URL.Query().Get("page"))
		s.Equal("25", r.URL.Query().Get("pageSize"))
		json.NewEncoder(w).Encode(models.ListCredentialsResponse{Page: 2, PageSize: 25})
	})

	addr, err := id.ParseWalletAddress("0x1234567890ABCDEF1234567890ABCDEF12345678")
	s.Require().NoError(err)

	resp, err := b.ListCredentials(s.ctx, addr.DID(), 2, 25)
	s.Require().NoError(err)
	s.Equal(2, resp.Page)
}
