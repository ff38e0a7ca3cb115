package funcrest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation error")

// schemaResource is the location schemas are registered under in their
// private compiler.
const schemaResource = "route.schema.json"

// printer renders validation messages.
var printer = message.NewPrinter(language.English)

// Schema is a compiled JSON Schema used to validate the {body, query}
// document of a request. Format assertions (date-time, email, ...) are
// enabled.
type Schema struct {
	schema *jsonschema.Schema
}

// CompileSchema compiles a JSON Schema document. doc may be raw JSON
// ([]byte, json.RawMessage or string), an already compiled *Schema, or any
// value that marshals to a schema document.
func CompileSchema(doc any) (*Schema, error) {
	var raw []byte
	switch d := doc.(type) {
	case *Schema:
		return d, nil
	case []byte:
		raw = d
	case json.RawMessage:
		raw = d
	case string:
		raw = []byte(d)
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}
		raw = b
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid schema JSON: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(schemaResource, parsed); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	s, err := c.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// Validate checks v against the schema. A failure is returned as a
// *ValidationError describing the first failing keyword.
func (s *Schema) Validate(v any) error {
	err := s.schema.Validate(v)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &ValidationError{Message: err.Error()}
	}

	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	out := &ValidationError{
		SchemaPath:   schemaPath(leaf),
		InstancePath: "/" + strings.Join(leaf.InstanceLocation, "/"),
		Message:      leaf.Error(),
	}
	if leaf.ErrorKind != nil {
		out.Message = leaf.ErrorKind.LocalizedString(printer)
	}
	return out
}

// schemaPath returns the keyword location of a leaf error as path tokens,
// e.g. properties, body, properties, count, type.
func schemaPath(e *jsonschema.ValidationError) []string {
	var path []string
	if _, frag, ok := strings.Cut(e.SchemaURL, "#"); ok {
		for _, tok := range strings.Split(frag, "/") {
			if tok != "" {
				path = append(path, tok)
			}
		}
	}
	if e.ErrorKind != nil {
		path = append(path, e.ErrorKind.KeywordPath()...)
	}
	return path
}

// ValidationError describes why a document failed schema validation.
type ValidationError struct {
	// SchemaPath is the keyword location within the schema.
	SchemaPath []string

	// InstancePath is the JSON pointer of the failing value.
	InstancePath string

	// Message describes the failure.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Schema[%s] with value %s", strings.Join(e.SchemaPath, "]["), e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
