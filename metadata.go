package funcrest

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// functionFile is the trigger metadata file in a function directory.
const functionFile = "function.json"

// MetadataSource supplies the trigger bindings of a function. The router
// calls Load at the start of every invocation.
type MetadataSource interface {
	Load(ctx context.Context, fc *FunctionContext) (Bindings, error)
}

// MetadataFunc adapts a function to MetadataSource.
type MetadataFunc func(ctx context.Context, fc *FunctionContext) (Bindings, error)

// Load implements MetadataSource.
func (f MetadataFunc) Load(ctx context.Context, fc *FunctionContext) (Bindings, error) {
	return f(ctx, fc)
}

// FileMetadata returns the default MetadataSource. It reads function.json
// from the function directory and adopts the first binding with type
// "httpTrigger" and direction "in". A file without such a binding yields
// empty bindings.
func FileMetadata() MetadataSource {
	return fileMetadata{}
}

type fileMetadata struct{}

func (fileMetadata) Load(_ context.Context, fc *FunctionContext) (Bindings, error) {
	path := filepath.Join(fc.FunctionDirectory, functionFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trigger metadata: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("read trigger metadata %s: %w", path, ErrInvalidJSON)
	}

	var (
		found   gjson.Result
		matched bool
	)
	gjson.GetBytes(raw, "bindings").ForEach(func(_, b gjson.Result) bool {
		if b.Get("type").String() == "httpTrigger" && b.Get("direction").String() == "in" {
			found, matched = b, true
			return false
		}
		return true
	})
	if !matched {
		return Bindings{}, nil
	}

	b := Bindings{}
	if err := json.Unmarshal([]byte(found.Raw), &b); err != nil {
		return nil, fmt.Errorf("decode http trigger binding: %w", err)
	}
	return b, nil
}

// StaticMetadata returns a MetadataSource that always yields a copy of b.
func StaticMetadata(b Bindings) MetadataSource {
	return MetadataFunc(func(context.Context, *FunctionContext) (Bindings, error) {
		return maps.Clone(b), nil
	})
}
