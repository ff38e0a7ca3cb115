package funcrest

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when raw invocation bytes or a trigger
// metadata file are not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// Inspector turns raw invocation bytes into a View so the request shape can
// be checked without decoding the whole invocation. Replace it with
// WithInspector when the platform delivers invocations in another encoding.
type Inspector interface {
	Inspect(raw []byte) (View, error)
}

// View answers field queries about one invocation. Paths use dot notation,
// e.g. "headers.content-type".
type View interface {
	HasField(path string) bool

	// GetString reports false for missing fields and non-string values.
	GetString(path string) (string, bool)
}

// JSONInspector returns the default Inspector. The invocation is parsed
// once and queried with gjson paths.
func JSONInspector() Inspector {
	return gjsonInspector{}
}

type gjsonInspector struct{}

func (gjsonInspector) Inspect(raw []byte) (View, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	return gjsonView{root: gjson.ParseBytes(raw)}, nil
}

type gjsonView struct {
	root gjson.Result
}

func (v gjsonView) HasField(path string) bool {
	return v.root.Get(path).Exists()
}

func (v gjsonView) GetString(path string) (string, bool) {
	if f := v.root.Get(path); f.Type == gjson.String {
		return f.Str, true
	}
	return "", false
}
