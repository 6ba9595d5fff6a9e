package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/quillsign/quillsign/internal/api"
	"github.com/quillsign/quillsign/internal/config"
)

// apiClient is a thin JSON client for the quillsign server API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(cfg *config.ClientEnvironment) *apiClient {
	return &apiClient{
		baseURL: cfg.ServerURL,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// do sends one JSON request and decodes the response into out (when out is
// non-nil). Error responses are decoded into the server's error format and
// surfaced with their sanitized message.
func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var errResp api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && len(errResp.Errors) > 0 {
			return fmt.Errorf("%s (%s): %s",
				errResp.StatusCodeMessage, errResp.Errors[0].ErrorCode, errResp.Errors[0].ErrorCodeMessage)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	raw, err := jsonIndent(v)
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}

func jsonIndent(v any) ([]byte, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render output: %w", err)
	}
	return raw, nil
}

func unmarshalJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
