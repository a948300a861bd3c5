package backend_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"airspace/internal/credential/backend"
	"airspace/internal/credential/models"
	id "airspace/pkg/domain"
)

// LocalBackendSuite covers the simulated backend used without an API key.
//
// Justification: fallback-issued credentials must be structurally complete
// enough to survive caching, re-parsing and the same-owner verification path.
type LocalBackendSuite struct {
	suite.Suite
	b   *backend.LocalBackend
	ctx context.Context
	now time.Time
}

func (s *LocalBackendSuite) SetupTest() {
	s.now = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	s.b = backend.NewLocalBackend(backend.WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
}

func TestLocalBackendSuite(t *testing.T) {
	suite.Run(t, new(LocalBackendSuite))
}

func (s *LocalBackendSuite) TestIssueFabricatesCompleteCredential() {
	addr, err := id.ParseWalletAddress("0x1234567890abcdef1234567890abcdef12345678")
	s.Require().NoError(err)

	resp, err := s.b.IssueCredential(s.ctx, models.IssueCredentialRequest{
		SubjectDID: addr.DID(),
		Type:       models.TypeHumanityCredential,
		Claims:     map[string]any{"isHuman": true, "walletAddress": addr.String()},
	})
	s.Require().NoError(err)

	cred := resp.Credential
	s.True(strings.HasPrefix(cred.ID, "urn:uuid:"))
	s.Equal([]string{models.TypeVerifiableCredential, models.TypeHumanityCredential}, cred.Type)
	s.Equal(addr.DID().String(), cred.CredentialSubject.ID)
	s.True(cred.CredentialSubject.BoolClaim("isHuman"), "claims must embed verbatim")
	s.Equal(s.now, cred.ValidFrom)
	s.Equal(s.now.AddDate(0, 0, 365), cred.ValidUntil, "default validity is 365 days")
	s.NotEmpty(cred.Proof.ProofValue)
}

func (s *LocalBackendSuite) TestIssueHonorsExplicitValidity() {
	resp, err := s.b.IssueCredential(s.ctx, models.IssueCredentialRequest{
		SubjectDID:   "did:ethr:0xabc",
		Type:         models.TypeAirRights,
		ValidityDays: 30,
	})
	s.Require().NoError(err)
	s.Equal(s.now.AddDate(0, 0, 30), resp.Credential.ValidUntil)
}

func (s *LocalBackendSuite) TestIssuedIDsAreUnique() {
	req := models.IssueCredentialRequest{SubjectDID: "did:ethr:0xabc", Type: models.TypeHumanityCredential}

	first, err := s.b.IssueCredential(s.ctx, req)
	s.Require().NoError(err)
	second, err := s.b.IssueCredential(s.ctx, req)
	s.Require().NoError(err)

	s.NotEqual(first.Credential.ID, second.Credential.ID)
}

func (s *LocalBackendSuite) TestVerifyAlwaysValid() {
	resp, err := s.b.VerifyCredential(s.ctx, models.VerifiableCredential{ID: "urn:uuid:whatever"})
	s.Require().NoError(err)
	s.True(resp.IsValid)
	s.Require().NotNil(resp.Details)
	s.True(resp.Details.SignatureValid)
}

func (s *LocalBackendSuite) TestListIsEmpty() {
	resp, err := s.b.ListCredentials(s.ctx, "did:ethr:0xabc", 0, 0)
	s.Require().NoError(err)
	s.Empty(resp.Credentials)
	s.Equal(1, resp.Page)
	s.Equal(10, resp.PageSize)
}

func (s *LocalBackendSuite) TestSchemaCatalog() {
	resp, err := s.b.Schemas(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(resp.Schemas, 2)
	s.Equal(models.TypePropertyOwnership, resp.Schemas[0].ID)
	s.Equal(models.TypeAirRights, resp.Schemas[1].ID)
	s.Contains(resp.Schemas[1].Required, "propertyAddress")
}
