package funcrest

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type JSONInspectorSuite struct {
	suite.Suite
	inspector Inspector
}

func (s *JSONInspectorSuite) SetupTest() {
	s.inspector = JSONInspector()
}

func TestJSONInspectorSuite(t *testing.T) {
	suite.Run(t, new(JSONInspectorSuite))
}

func (s *JSONInspectorSuite) TestReturnsViewForValidJSON() {
	view, err := s.inspector.Inspect([]byte(`{"method": "GET", "url": "/"}`))

	s.Require().NoError(err)
	s.Assert().NotNil(view)
}

func (s *JSONInspectorSuite) TestReturnsErrorForInvalidJSON() {
	_, err := s.inspector.Inspect([]byte(`{"method": GET}`))

	s.Assert().ErrorIs(err, ErrInvalidJSON)
}

func (s *JSONInspectorSuite) TestReturnsErrorForEmptyInput() {
	_, err := s.inspector.Inspect([]byte{})

	s.Assert().ErrorIs(err, ErrInvalidJSON)
}

type JSONViewSuite struct {
	suite.Suite
	view View
}

func (s *JSONViewSuite) SetupTest() {
	raw := []byte(`{
		"method": "POST",
		"url": "https://fn.example.net/api/orders",
		"headers": {"content-type": "application/json"},
		"queryParameters": {},
		"retries": 2,
		"rawBody": null
	}`)

	var err error
	s.view, err = JSONInspector().Inspect(raw)
	s.Require().NoError(err)
}

func TestJSONViewSuite(t *testing.T) {
	suite.Run(t, new(JSONViewSuite))
}

func (s *JSONViewSuite) TestHasField() {
	tests := map[string]struct {
		path   string
		exists bool
	}{
		"method":               {"method", true},
		"nested header":        {"headers.content-type", true},
		"empty object":         {"queryParameters", true},
		"null value":           {"rawBody", true},
		"missing":              {"pathParameters", false},
		"missing nested field": {"headers.accept", false},
	}

	for name, tt := range tests {
		s.Run(name, func() {
			s.Assert().Equal(tt.exists, s.view.HasField(tt.path))
		})
	}
}

func (s *JSONViewSuite) TestGetString() {
	val, ok := s.view.GetString("method")
	s.Require().True(ok)
	s.Assert().Equal("POST", val)

	val, ok = s.view.GetString("headers.content-type")
	s.Require().True(ok)
	s.Assert().Equal("application/json", val)
}

func (s *JSONViewSuite) TestGetStringRejectsOtherTypes() {
	for _, path := range []string{"retries", "rawBody", "headers", "missing"} {
		_, ok := s.view.GetString(path)
		s.Assert().False(ok, path)
	}
}
