package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CampusFeed/internal/config"
)

func TestClientComplete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "mistral" || req.Stream {
			t.Errorf("unexpected request: %+v", req)
		}
		_, _ = w.Write([]byte(`{"response":"  [3, 1, 2]\n","done":true}`))
	}))
	defer server.Close()

	client := NewClient(config.MLConfig{InferenceURL: server.URL + "/", Model: "mistral"}, time.Second)
	out, err := client.Complete(context.Background(), "rank")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if out != "[3, 1, 2]" {
		t.Fatalf("unexpected completion: %q", out)
	}
}

func TestClientUnexpectedStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(config.MLConfig{InferenceURL: server.URL, Model: "mistral"}, time.Second)
	if _, err := client.Complete(context.Background(), "rank"); err == nil {
		t.Fatalf("expected error on 502")
	}
}
