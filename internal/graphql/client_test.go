package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDoDecodesEnvelope(t *testing.T) {
	var gotAuth string
	var gotBody struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"getAnswers":{"success":true,"message":"ok","answers":[]}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok123")
	resp, err := c.Do(context.Background(), "query GetAnswers { getAnswers { success } }", map[string]any{"surveyId": "S1"})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("authorization header = %q, want bearer token", gotAuth)
	}
	if gotBody.Variables["surveyId"] != "S1" {
		t.Fatalf("variables = %v, want surveyId S1", gotBody.Variables)
	}

	var payload struct {
		Result
		Answers []any `json:"answers"`
	}
	if err := resp.Decode("getAnswers", &payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !payload.Success || payload.Message != "ok" {
		t.Fatalf("payload = %+v, want success ok", payload)
	}
}

func TestDoHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Do(context.Background(), "query {}", nil)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Fatalf("error %q does not mention status", err)
	}
}

func TestDoGraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"unknown operation"}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Do(context.Background(), "query {}", nil)
	if err == nil || !strings.Contains(err.Error(), "unknown operation") {
		t.Fatalf("err = %v, want graphql errors surfaced", err)
	}
}

func TestDecodeMissingOperation(t *testing.T) {
	resp := &Response{Data: map[string]json.RawMessage{"other": []byte(`{}`)}}
	var out Result
	if err := resp.Decode("getAnswers", &out); err == nil {
		t.Fatal("expected error for missing operation payload")
	}
}

func TestServerErrorIsNotTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"deleteSurvey":{"success":false,"message":"not the survey owner"}}}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, "").Do(context.Background(), "mutation {}", nil)
	if err != nil {
		t.Fatalf("business failure must not be a transport error, got %v", err)
	}
	var out Result
	if err := resp.Decode("deleteSurvey", &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Success {
		t.Fatal("expected success=false")
	}
}
