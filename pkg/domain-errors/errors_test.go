package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// =============================================================================
// Coded Error Test Suite
// =============================================================================

type ErrorsSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsSuite))
}

func (s *ErrorsSuite) TestNewAndNewf() {
	err := New(CodeNotFound, "domain not found")
	s.Equal("domain not found", err.Error())
	s.True(HasCode(err, CodeNotFound))

	err = Newf(CodeConflict, "domain %q version mismatch", "example.org")
	s.Contains(err.Error(), `"example.org"`)
	s.True(HasCode(err, CodeConflict))
}

func (s *ErrorsSuite) TestWrap() {
	s.Run("wraps and exposes the cause", func() {
		cause := fmt.Errorf("connection refused")
		err := Wrap(cause, CodeUnavailable, "store unreachable")
		s.True(HasCode(err, CodeUnavailable))
		s.ErrorIs(err, cause)
		s.Contains(err.Error(), "store unreachable")
		s.Contains(err.Error(), "connection refused")
	})

	s.Run("nil cause returns nil", func() {
		s.Nil(Wrap(nil, CodeInternal, "ignored"))
	})

	s.Run("inner codes remain visible through wrapping", func() {
		inner := New(CodeConflict, "version mismatch")
		outer := Wrap(inner, CodeInternal, "failed to update domain")
		s.True(HasCode(outer, CodeInternal))
		s.True(HasCode(outer, CodeConflict))
		s.False(HasCode(outer, CodeNotFound))
	})
}

func (s *ErrorsSuite) TestCodeOf() {
	s.Equal(CodeValidation, CodeOf(New(CodeValidation, "bad url")))
	s.Equal(CodeInternal, CodeOf(errors.New("plain error")))

	wrapped := Wrap(New(CodeConflict, "inner"), CodeUnavailable, "outer")
	s.Equal(CodeUnavailable, CodeOf(wrapped))
}

func (s *ErrorsSuite) TestHasCodeOnPlainErrors() {
	s.False(HasCode(errors.New("plain"), CodeInternal))
	s.False(HasCode(nil, CodeInternal))
}
