package funcrest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type SchemaSuite struct {
	suite.Suite
	schema *Schema
}

func (s *SchemaSuite) SetupTest() {
	schema, err := CompileSchema(`{
		"type": "object",
		"properties": {
			"body": {
				"type": "object",
				"required": ["email"],
				"properties": {
					"email": {"type": "string", "format": "email"},
					"count": {"type": "integer"}
				}
			}
		}
	}`)
	s.Require().NoError(err)
	s.schema = schema
}

func TestSchemaSuite(t *testing.T) {
	suite.Run(t, new(SchemaSuite))
}

func (s *SchemaSuite) TestAcceptsValidDocument() {
	err := s.schema.Validate(map[string]any{
		"body":  map[string]any{"email": "a@example.com", "count": 3.0},
		"query": map[string]any{},
	})

	s.Assert().NoError(err)
}

func (s *SchemaSuite) TestReportsTypeFailure() {
	err := s.schema.Validate(map[string]any{
		"body": map[string]any{"email": "a@example.com", "count": "three"},
	})

	s.Require().ErrorIs(err, ErrValidation)
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Assert().Equal([]string{"properties", "body", "properties", "count", "type"}, verr.SchemaPath)
	s.Assert().Equal("/body/count", verr.InstancePath)
	s.Assert().NotEmpty(verr.Message)
	s.Assert().Contains(verr.Error(), "Schema[properties][body][properties][count][type] with value ")
}

func (s *SchemaSuite) TestAssertsFormats() {
	err := s.schema.Validate(map[string]any{
		"body": map[string]any{"email": "not-an-email"},
	})

	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Assert().Equal("format", verr.SchemaPath[len(verr.SchemaPath)-1])
}

func (s *SchemaSuite) TestReportsMissingRequired() {
	err := s.schema.Validate(map[string]any{"body": map[string]any{}})

	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Assert().Equal("required", verr.SchemaPath[len(verr.SchemaPath)-1])
}

func (s *SchemaSuite) TestCompilesAllDocumentForms() {
	doc := `{"type": "object"}`
	forms := []any{
		doc,
		[]byte(doc),
		json.RawMessage(doc),
		map[string]any{"type": "object"},
	}
	for _, f := range forms {
		schema, err := CompileSchema(f)
		s.Require().NoError(err)
		s.Assert().NoError(schema.Validate(map[string]any{}))
		s.Assert().Error(schema.Validate("nope"))
	}

	same, err := CompileSchema(s.schema)
	s.Require().NoError(err)
	s.Assert().Same(s.schema, same)
}

func (s *SchemaSuite) TestRejectsBadDocuments() {
	_, err := CompileSchema(`{not json`)
	s.Assert().Error(err)

	_, err = CompileSchema(`{"type": "strange"}`)
	s.Assert().Error(err)

	_, err = CompileSchema(func() {})
	s.Assert().Error(err)
}
