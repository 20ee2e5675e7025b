package errors_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/active-defence/internal/errors"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) TestValidationError() {
	ve := errors.NewValidationError()
	ve.AddFieldError("Engine", "is required")
	ve.AddFieldError("DiceSessionRepo", "is required")

	s.True(ve.HasErrors())
	s.Equal("validation failed: DiceSessionRepo: is required; Engine: is required", ve.Error())

	err := ve.ToError()
	s.Equal(errors.CodeInvalidArgument, err.Code)
	s.NotNil(err.Meta["validation_errors"])
}

func (s *ValidationTestSuite) TestValidationBuilder() {
	vb := errors.NewValidationBuilder()
	vb.RequiredField("Engine").
		Fieldf("HistoryTTL", "must be positive, got %d", -1)

	err := vb.Build()
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	fields := errors.GetMeta(err)["validation_errors"].(map[string][]string)
	s.Equal([]string{"is required"}, fields["Engine"])
	s.Equal([]string{"must be positive, got -1"}, fields["HistoryTTL"])
}

func (s *ValidationTestSuite) TestValidationBuilderNoErrors() {
	s.NoError(errors.NewValidationBuilder().Build())
}

func (s *ValidationTestSuite) TestValidateRequired() {
	testCases := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{"valid value", "actor-1", false},
		{"empty string", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			vb := errors.NewValidationBuilder()
			errors.ValidateRequired("actor_id", tc.value, vb)
			if tc.shouldErr {
				s.Error(vb.Build())
			} else {
				s.NoError(vb.Build())
			}
		})
	}
}

func (s *ValidationTestSuite) TestValidateRange() {
	vb := errors.NewValidationBuilder()
	errors.ValidateRange("armour_class", 45, 0, 40, vb)
	errors.ValidateRange("history_size", 10, 1, 100, vb)

	err := vb.Build()
	s.Require().Error(err)
	fields := errors.GetMeta(err)["validation_errors"].(map[string][]string)
	s.Contains(fields["armour_class"][0], "must be between 0 and 40")
	s.NotContains(fields, "history_size")
}
