package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/funcrest"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func invokeWire(t *testing.T, raw string) funcrest.Wire {
	t.Helper()
	out, err := run(t, raw, "invoke", "--dir", t.TempDir())
	require.NoError(t, err)

	var w funcrest.Wire
	require.NoError(t, json.Unmarshal([]byte(out), &w))
	return w
}

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := loadConfig()
		require.NoError(t, err)

		assert.Equal(t, Config{Environment: "production", LogLevel: "info"}, cfg)
		assert.Nil(t, cfg.Headers())
		lvl, err := cfg.Level()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelInfo, lvl)
	})

	t.Run("reads the environment", func(t *testing.T) {
		t.Setenv("FUNCTIONS_ENVIRONMENT", "Development")
		t.Setenv("FUNCREST_LOG_LEVEL", "debug")
		t.Setenv("FUNCREST_RERAISE", "true")

		cfg, err := loadConfig()
		require.NoError(t, err)

		assert.True(t, cfg.Reraise)
		assert.Equal(t, map[string]string{"Access-Control-Allow-Origin": "*"}, cfg.Headers())
		lvl, err := cfg.Level()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelDebug, lvl)

		opts, err := cfg.RouterOptions(&bytes.Buffer{})
		require.NoError(t, err)
		assert.Len(t, opts, 3)
	})

	t.Run("has no flag counterparts", func(t *testing.T) {
		invoke, _, err := rootCmd().Find([]string{"invoke"})
		require.NoError(t, err)

		for _, name := range []string{"log-level", "environment", "reraise"} {
			assert.Nil(t, invoke.Flags().Lookup(name), name)
			assert.Nil(t, invoke.InheritedFlags().Lookup(name), name)
		}
	})

	t.Run("rejects an unknown log level", func(t *testing.T) {
		_, err := Config{LogLevel: "loud"}.RouterOptions(&bytes.Buffer{})
		assert.ErrorContains(t, err, "FUNCREST_LOG_LEVEL")
	})
}

func TestInvokeCommand(t *testing.T) {
	t.Run("gets an item", func(t *testing.T) {
		w := invokeWire(t, `{"method": "GET", "url": "/api/items/2"}`)

		assert.Equal(t, 200, w.StatusCode)
		assert.Equal(t, `{"id": 2, "name": "desk", "price": 180}`, w.Body)
	})

	t.Run("lists items with a coerced limit", func(t *testing.T) {
		w := invokeWire(t, `{"method": "GET", "url": "/api/items", "queryParameters": {"limit": "1"}}`)

		assert.Equal(t, `[{"id": 1, "name": "lamp", "price": 24.5}]`, w.Body)
	})

	t.Run("creates an item", func(t *testing.T) {
		w := invokeWire(t, `{"method": "POST", "url": "/api/items", "rawBody": "{\"name\": \"chair\", \"price\": 40}"}`)

		assert.Equal(t, 201, w.StatusCode)
		assert.Equal(t, "/items/3", w.Headers["Location"])
	})

	t.Run("validates a new item", func(t *testing.T) {
		w := invokeWire(t, `{"method": "POST", "url": "/api/items", "rawBody": "{\"name\": \"chair\"}"}`)

		assert.Equal(t, 400, w.StatusCode)
		assert.Equal(t, `"Validation Error"`, w.Body)
	})

	t.Run("falls back for proxy deliveries", func(t *testing.T) {
		w := invokeWire(t, `{"method": "GET", "url": "/api/elsewhere", "pathParameters": {"restOfPath": "elsewhere"}}`)

		assert.Equal(t, 404, w.StatusCode)
		assert.Equal(t, `{"proxy": true, "route": "/elsewhere"}`, w.Body)
	})

	t.Run("uses trigger metadata for the proxy route", func(t *testing.T) {
		dir := t.TempDir()
		fn := `{"bindings": [{"type": "httpTrigger", "direction": "in", "route": "{*restOfPath}"}]}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "function.json"), []byte(fn), 0o600))

		out, err := run(t, `{"method": "GET", "url": "/api/x", "pathParameters": {"restOfPath": "x"}}`, "invoke", "--dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, `{*restOfPath}`)
	})

	t.Run("answers malformed invocations", func(t *testing.T) {
		w := invokeWire(t, `{"hello": "world"}`)

		assert.Equal(t, 500, w.StatusCode)
		assert.Equal(t, `"Bad request, maybe not using function triggers?"`, w.Body)
	})

	t.Run("adds development headers", func(t *testing.T) {
		t.Setenv("FUNCTIONS_ENVIRONMENT", "development")

		w := invokeWire(t, `{"method": "GET", "url": "/api/health"}`)

		assert.Equal(t, `"ok"`, w.Body)
		assert.Equal(t, "*", w.Headers["Access-Control-Allow-Origin"])
	})

	t.Run("reads from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "req.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"method": "OPTIONS", "url": "/api/items"}`), 0o600))

		out, err := run(t, "", "invoke", path)

		require.NoError(t, err)
		assert.Contains(t, out, `"Access-Control-Allow-Methods": "GET,POST"`)
	})

	t.Run("fails on a missing file", func(t *testing.T) {
		_, err := run(t, "", "invoke", filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorContains(t, err, "read invocation")
	})
}

func TestRoutesCommand(t *testing.T) {
	out, err := run(t, "", "routes")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, []string{"METHOD", "PATTERN", "SCHEMA"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"POST", "/items", "yes"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"GET", "/<path:path>", "-"}, strings.Fields(lines[5]))
}

func TestMetricsCommand(t *testing.T) {
	out, err := run(t, `{"method": "GET", "url": "/api/items/1"}`, "metrics", "--dir", t.TempDir())

	require.NoError(t, err)
	assert.Contains(t, out, `funcrest_requests_total{method="GET",route="/items/<int:id>",status="200"} 1`)
}
