package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type IDsSuite struct {
	suite.Suite
}

func TestIDsSuite(t *testing.T) {
	suite.Run(t, new(IDsSuite))
}

func (s *IDsSuite) TestNewCredentialIDHasURNForm() {
	id := NewCredentialID()
	s.True(strings.HasPrefix(id.String(), "urn:uuid:"))

	parsed, err := ParseCredentialID(id.String())
	s.Require().NoError(err)
	s.Equal(id, parsed)
}

func (s *IDsSuite) TestParseCredentialIDRejectsBadInput() {
	for _, bad := range []string{"", "  ", "vc_12345", "uuid:abc"} {
		_, err := ParseCredentialID(bad)
		s.Error(err, "input %q must be rejected", bad)
	}
}

func (s *IDsSuite) TestParseAssetID() {
	id, err := ParseAssetID("42")
	s.Require().NoError(err)
	s.Equal("42", id.String())

	_, err = ParseAssetID("  ")
	s.Error(err)
}
