package modifier_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/active-defence/internal/errors"
	"github.com/KirkDiggler/active-defence/internal/modifier"
)

type ValidateTestSuite struct {
	suite.Suite
}

func TestValidateSuite(t *testing.T) {
	suite.Run(t, new(ValidateTestSuite))
}

func (s *ValidateTestSuite) TestEmptyIsNoModifier() {
	for _, raw := range []string{"", "   ", "\t"} {
		s.Run("raw="+raw, func() {
			mod, err := modifier.Validate(raw)
			s.NoError(err)
			s.True(mod.IsNone())
			s.Equal(modifier.None, mod)
		})
	}
}

func (s *ValidateTestSuite) TestSingleTerms() {
	testCases := []struct {
		name     string
		raw      string
		expected modifier.Modifier
	}{
		{name: "bare number gets a plus", raw: "3", expected: "+3"},
		{name: "bare dice gets a plus", raw: "1d4", expected: "+1d4"},
		{name: "signed number kept", raw: "+3", expected: "+3"},
		{name: "negative number kept", raw: "-2", expected: "-2"},
		{name: "multiplied dice kept", raw: "*2d6", expected: "*2d6"},
		{name: "divided number kept", raw: "/2", expected: "/2"},
		{name: "inner spacing preserved", raw: "- 2", expected: "- 2"},
		{name: "bare number with spaces", raw: " 2", expected: "+ 2"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			mod, err := modifier.Validate(tc.raw)
			s.Require().NoError(err)
			s.Equal(tc.expected, mod)
		})
	}
}

func (s *ValidateTestSuite) TestSingleTermsStartWithOperator() {
	for _, raw := range []string{"0", "7", "12", "1d4", "10d10", "+5", "-1d8", "*3", "/2d2"} {
		s.Run(raw, func() {
			mod, err := modifier.Validate(raw)
			s.Require().NoError(err)
			s.Contains("+-*/", mod.String()[:1])
		})
	}
}

func (s *ValidateTestSuite) TestExpressions() {
	testCases := []struct {
		name     string
		raw      string
		expected modifier.Modifier
	}{
		{name: "dice plus constant", raw: "1d4+2", expected: " + 1d4+2"},
		{name: "leading sign", raw: "+1d4+2", expected: "+1d4+2"},
		{name: "leading minus", raw: "-1d4-2", expected: "-1d4-2"},
		{name: "all operators", raw: "2*1d6/2-1+3", expected: " + 2*1d6/2-1+3"},
		{name: "zero constant outside a divisor", raw: "1d4*0-0", expected: " + 1d4*0-0"},
		{name: "maximum dice count", raw: "100d6", expected: "+100d6"},
		{name: "spacing preserved", raw: "1d4 + 2", expected: " + 1d4 + 2"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			mod, err := modifier.Validate(tc.raw)
			s.Require().NoError(err)
			s.Equal(tc.expected, mod)
		})
	}
}

func (s *ValidateTestSuite) TestRejected() {
	testCases := []struct {
		name string
		raw  string
	}{
		{name: "double operator", raw: "1d4++2"},
		{name: "double operator after sign", raw: "+1d4*/2"},
		{name: "missing dice count", raw: "d4"},
		{name: "missing dice faces", raw: "1d"},
		{name: "operator only", raw: "+"},
		{name: "operators only", raw: "+-"},
		{name: "trailing operator", raw: "1d4+"},
		{name: "words", raw: "plus two"},
		{name: "keep qualifier", raw: "2d20kh"},
		{name: "decimal", raw: "1.5"},
		{name: "dice term missing count mid expression", raw: "2+d6"},
		{name: "too many dice", raw: "+200d6"},
		{name: "too many dice mid expression", raw: "1d4+101d6"},
		{name: "zero dice", raw: "0d6"},
		{name: "zero faces", raw: "1d0"},
		{name: "zero faces mid expression", raw: "2+1d0"},
		{name: "divide by zero", raw: "/0"},
		{name: "divide by zero mid expression", raw: "1d4/00"},
		{name: "constant overflows", raw: "99999999999999999999"},
		{name: "dice count overflows", raw: "99999999999999999999d6"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			mod, err := modifier.Validate(tc.raw)
			s.Require().Error(err)
			s.True(errors.IsInvalidModifier(err))
			s.Equal(tc.raw, errors.GetMeta(err)["modifier"])
			s.True(mod.IsNone())
		})
	}
}

func (s *ValidateTestSuite) TestIdempotent() {
	for _, raw := range []string{"3", "-2", "1d4", "1d4+2", "+1d4+2", "1d4 + 2", " 2", "2*1d6/2"} {
		s.Run(raw, func() {
			first, err := modifier.Validate(raw)
			s.Require().NoError(err)

			second, err := modifier.Validate(first.String())
			s.Require().NoError(err)
			s.Equal(first, second)
		})
	}
}
