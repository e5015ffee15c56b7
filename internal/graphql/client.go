// Package graphql is the transport adapter shared by the catalog and the
// response synchronization engine. It posts a query or mutation document
// plus a variables mapping to a single endpoint and returns the decoded
// response envelope. Network, HTTP and decode failures surface as errors;
// a success:false business result does not — callers inspect the flag.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrEmptyResponse = errors.New("graphql: response carried no data")

// Client talks to one GraphQL endpoint. The survey-scoped, problem-scoped
// and generic endpoints all share this implementation; hosts construct one
// Client per configured endpoint.
type Client struct {
	endpoint string
	token    string
	httpc    *http.Client
}

// NewClient builds a client for endpoint. token may be empty for
// unauthenticated use; when set it is sent as a bearer token.
func NewClient(endpoint, token string) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		httpc:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Response mirrors the envelope {data: {<operation>: {...}}}.
type Response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Decode unmarshals the payload of one operation from the envelope.
func (r *Response) Decode(op string, out any) error {
	raw, ok := r.Data[op]
	if !ok {
		return fmt.Errorf("graphql: response has no %s payload", op)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("graphql: decode %s payload: %w", op, err)
	}
	return nil
}

// Result is the common {success, message} fragment every operation returns.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ServerError is a business-level rejection: the transport round-trip
// succeeded but the server answered success:false.
type ServerError struct {
	Op      string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("graphql: %s rejected: %s", e.Op, e.Message)
}

// Do sends the document and variables and decodes the envelope.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	if variables == nil {
		variables = map[string]any{}
	}
	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return nil, fmt.Errorf("graphql: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("graphql: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graphql: post %s: %w", c.endpoint, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, fmt.Errorf("graphql: endpoint returned %s: %s", res.Status, strings.TrimSpace(string(b)))
	}

	var out Response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("graphql: decode response: %w", err)
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("graphql: server error: %s", out.Errors[0].Message)
	}
	if out.Data == nil {
		return nil, ErrEmptyResponse
	}
	return &out, nil
}
