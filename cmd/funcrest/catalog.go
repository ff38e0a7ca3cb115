package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/bjaus/funcrest"
)

type item struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

var itemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"body": map[string]any{
			"type":     "object",
			"required": []string{"name", "price"},
			"properties": map[string]any{
				"name":  map[string]any{"type": "string", "minLength": 1},
				"price": map[string]any{"type": "number", "minimum": 0},
			},
		},
	},
}

// catalog is an in-memory item store served by the demo router.
type catalog struct {
	mu    sync.Mutex
	items []item
}

func newCatalog() *catalog {
	return &catalog{items: []item{
		{ID: 1, Name: "lamp", Price: 24.5},
		{ID: 2, Name: "desk", Price: 180},
	}}
}

// register binds the catalog routes to r.
func (c *catalog) register(r *funcrest.Router) {
	r.MustRegister("GET", "/items", c.list)
	r.MustRegister("GET", "/items/<int:id>", c.get)
	r.MustRegister("POST", "/items", c.create, funcrest.WithSchema(itemSchema))
	r.MustRegister("GET", "/health", func(context.Context, *funcrest.Request, funcrest.Params) (any, error) {
		return "ok", nil
	}, funcrest.WithoutJSON())
	r.MustRegister("GET", "*", c.fallback)
}

func (c *catalog) list(_ context.Context, req *funcrest.Request, _ funcrest.Params) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := slices.Clone(c.items)
	if limit, ok := req.JSON.Query["limit"].(float64); ok && int(limit) < len(out) && limit >= 0 {
		out = out[:int(limit)]
	}
	return out, nil
}

func (c *catalog) get(_ context.Context, _ *funcrest.Request, p funcrest.Params) (any, error) {
	id, _ := p.Int("id")

	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.items, func(it item) bool { return it.ID == id })
	if i < 0 {
		return funcrest.Tuple{fmt.Sprintf("item %d not found", id), http.StatusNotFound}, nil
	}
	return c.items[i], nil
}

func (c *catalog) create(_ context.Context, req *funcrest.Request, _ funcrest.Params) (any, error) {
	var in item
	if err := req.DecodeJSON(&in); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	if in.Name == "" {
		return nil, errors.New("decode item: empty name")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	in.ID = len(c.items) + 1
	c.items = append(c.items, in)
	return funcrest.Tuple{in, http.StatusCreated, map[string]string{"Location": fmt.Sprintf("/items/%d", in.ID)}}, nil
}

func (c *catalog) fallback(_ context.Context, req *funcrest.Request, _ funcrest.Params) (any, error) {
	body := map[string]any{"proxy": req.IsProxy()}
	if req.IsProxy() {
		body["route"] = *req.ProxyRoute
	}
	return funcrest.Tuple{body, http.StatusNotFound}, nil
}
