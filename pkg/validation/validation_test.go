package validation

import (
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "airspace/pkg/domain-errors"
)

type ValidationSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationSuite))
}

type sample struct {
	Name  string  `validate:"notblank"`
	Floor float64 `validate:"gte=0"`
	Roof  float64 `validate:"gtefield=Floor"`
}

func (s *ValidationSuite) TestValidPasses() {
	s.NoError(Validate(sample{Name: "ok", Floor: 1, Roof: 2}))
}

func (s *ValidationSuite) TestBlankFieldProducesReadableMessage() {
	err := Validate(sample{Name: "   ", Floor: 1, Roof: 2})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	s.Contains(err.Error(), "name must not be blank")
}

func (s *ValidationSuite) TestCrossFieldMessageUsesSnakeCase() {
	err := Validate(sample{Name: "ok", Floor: 5, Roof: 2})
	s.Require().Error(err)
	s.Contains(err.Error(), "roof must be at least floor")
}
