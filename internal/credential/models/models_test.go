package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"airspace/internal/credential/models"
)

// SubjectSuite covers the custom credentialSubject wire shape.
//
// Justification: claims sit flat beside "id" on the wire, so the custom
// marshaling is the one place a shape regression would silently corrupt
// every cached credential.
type SubjectSuite struct {
	suite.Suite
}

func TestSubjectSuite(t *testing.T) {
	suite.Run(t, new(SubjectSuite))
}

func (s *SubjectSuite) TestClaimsFlattenBesideID() {
	subject := models.CredentialSubject{
		ID: "did:ethr:0xabc",
		Claims: map[string]any{
			"isHuman":       true,
			"walletAddress": "0xabc",
		},
	}

	raw, err := json.Marshal(subject)
	s.Require().NoError(err)

	var flat map[string]any
	s.Require().NoError(json.Unmarshal(raw, &flat))
	s.Equal("did:ethr:0xabc", flat["id"])
	s.Equal(true, flat["isHuman"])
	s.Equal("0xabc", flat["walletAddress"])
}

func (s *SubjectSuite) TestUnmarshalSplitsID() {
	raw := []byte(`{"id":"did:ethr:0xdef","humanityVerified":true,"score":42}`)

	var subject models.CredentialSubject
	s.Require().NoError(json.Unmarshal(raw, &subject))

	s.Equal("did:ethr:0xdef", subject.ID)
	s.True(subject.BoolClaim("humanityVerified"))
	s.NotContains(subject.Claims, "id", "id must not leak into claims")
}

func (s *SubjectSuite) TestBoolClaimToleratesMissingAndMistyped() {
	subject := models.CredentialSubject{Claims: map[string]any{"isHuman": "yes"}}
	s.False(subject.BoolClaim("isHuman"))
	s.False(subject.BoolClaim("absent"))
}
