package httprequest_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/nodes/httprequest"
)

func newNode() *httprequest.Node {
	return httprequest.NewNode(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestValidateParameters(t *testing.T) {
	t.Parallel()

	node := newNode()

	assert.NoError(t, node.ValidateParameters(map[string]any{"url": "https://example.com"}))
	assert.NoError(t, node.ValidateParameters(map[string]any{"url": "https://example.com", "method": "post"}))
	assert.Error(t, node.ValidateParameters(map[string]any{}))
	assert.Error(t, node.ValidateParameters(map[string]any{"url": ""}))
	assert.Error(t, node.ValidateParameters(map[string]any{"url": "https://example.com", "method": "TRACE"}))
}

func TestExecuteDecodesJSONResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user": {"name": "ada"}}`))
	}))
	defer server.Close()

	output, err := newNode().Execute(context.Background(), &models.ExecutionContext{}, map[string]any{
		"url": server.URL,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, output.Data["status_code"])

	body, ok := output.Data["body"].(map[string]any)
	require.True(t, ok, "json body should be decoded, got %T", output.Data["body"])
	assert.Equal(t, map[string]any{"name": "ada"}, body["user"])
}

func TestExecutePostsJSONBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "token-123", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "ord-1", payload["order_id"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))
	defer server.Close()

	output, err := newNode().Execute(context.Background(), &models.ExecutionContext{}, map[string]any{
		"url":    server.URL,
		"method": "POST",
		"body":   map[string]any{"order_id": "ord-1"},
		"headers": map[string]any{
			"Authorization": "token-123",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, output.Data["status_code"])
	assert.Equal(t, "created", output.Data["body"])
}

func TestExecuteErrorStatusFailsNode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newNode().Execute(context.Background(), &models.ExecutionContext{}, map[string]any{
		"url": server.URL,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestExecuteUnreachableHostFailsNode(t *testing.T) {
	t.Parallel()

	_, err := newNode().Execute(context.Background(), &models.ExecutionContext{}, map[string]any{
		"url": "http://127.0.0.1:1",
	})
	assert.Error(t, err)
}
