package roomcode

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type RoomCodeTestSuite struct {
	suite.Suite
	generator *DefaultGenerator
}

func (s *RoomCodeTestSuite) SetupTest() {
	s.generator = New()
}

func TestRoomCodeTestSuite(t *testing.T) {
	suite.Run(t, new(RoomCodeTestSuite))
}

func (s *RoomCodeTestSuite) TestNewCodeIsValid() {
	for range 200 {
		code := s.generator.NewCode()
		s.Len(code, Length)
		s.True(Valid(code), "code %q should be valid", code)
	}
}

func (s *RoomCodeTestSuite) TestNormalize() {
	s.Equal("AB12CD", Normalize("  ab12cd "))
}

func (s *RoomCodeTestSuite) TestValid() {
	s.True(Valid("ABC123"))
	s.False(Valid("abc123"))
	s.False(Valid("ABC12"))
	s.False(Valid("ABC1234"))
	s.False(Valid("ABC-12"))
}
