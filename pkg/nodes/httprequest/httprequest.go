// Package httprequest provides the node that performs an HTTP call and
// exposes the response to downstream nodes.
package httprequest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

const nodeType = "http_request"

const defaultClientTimeout = 30 * time.Second

var allowedMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodHead,
}

type Node struct {
	logger *slog.Logger
	client *http.Client
}

func NewNode(logger *slog.Logger) *Node {
	return &Node{
		logger: logger,
		client: &http.Client{Timeout: defaultClientTimeout},
	}
}

func (n *Node) Type() string {
	return nodeType
}

func (n *Node) ValidateParameters(params map[string]any) error {
	url, ok := params["url"].(string)
	if !ok || url == "" {
		return fmt.Errorf("http_request node requires a url")
	}

	if method, ok := params["method"].(string); ok && method != "" {
		if !slices.Contains(allowedMethods, strings.ToUpper(method)) {
			return fmt.Errorf("unsupported http method %q", method)
		}
	}

	return nil
}

// Execute performs the request and returns status_code, headers and body.
// JSON response bodies are decoded so downstream expressions can address
// into them; anything else is passed through as a string. The node deadline
// arrives through ctx, so a slow upstream fails the node as a timeout.
func (n *Node) Execute(ctx context.Context, _ *models.ExecutionContext, params map[string]any) (*models.NodeOutput, error) {
	url := params["url"].(string)

	method := http.MethodGet
	if m, ok := params["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
	}

	body, err := requestBody(params["body"])
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if headers, ok := params["headers"].(map[string]any); ok {
		for name, value := range headers {
			req.Header.Set(name, fmt.Sprintf("%v", value))
		}
	}

	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	n.logger.Debug("http request completed",
		"method", method, "url", url, "status", resp.StatusCode)

	data := map[string]any{
		"status_code": resp.StatusCode,
		"headers":     flattenHeaders(resp.Header),
		"body":        decodeBody(resp.Header.Get("Content-Type"), raw),
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("http request returned status %d", resp.StatusCode)
	}

	return models.SuccessOutput(data), nil
}

func requestBody(value any) (io.Reader, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case string:
		if typed == "" {
			return nil, nil
		}

		return strings.NewReader(typed), nil
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}

		return bytes.NewReader(encoded), nil
	}
}

func decodeBody(contentType string, raw []byte) any {
	if strings.Contains(contentType, "application/json") {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err == nil {
			return decoded
		}
	}

	return string(raw)
}

func flattenHeaders(header http.Header) map[string]any {
	flat := make(map[string]any, len(header))
	for name, values := range header {
		flat[name] = strings.Join(values, ", ")
	}

	return flat
}

type Factory struct {
	deps protocol.Dependencies
}

func NewFactory(deps protocol.Dependencies) *Factory {
	return &Factory{deps: deps}
}

func (f *Factory) Create() protocol.Node {
	return NewNode(f.deps.Logger)
}

func (f *Factory) ID() string {
	return nodeType
}

func (f *Factory) Name() string {
	return "HTTP Request"
}

func (f *Factory) Description() string {
	return "Performs an HTTP call and exposes status, headers and body"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"method": map[string]any{
				"type": "string",
				"enum": []any{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"},
			},
			"headers": map[string]any{
				"type": "object",
			},
			"body": map[string]any{
				"description": "Request body, object values are JSON encoded",
			},
		},
		"required": []any{"url"},
	}
}
