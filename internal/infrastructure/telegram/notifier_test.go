package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPublishReport(t *testing.T) {
	t.Parallel()

	var gotText, gotChat, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotPath = r.URL.Path
		gotText = r.PostForm.Get("text")
		gotChat = r.PostForm.Get("chat_id")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifier("token123", "-100").WithAPIBase(server.URL)
	if err := n.PublishReport(context.Background(), "*Ingestion* done"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if gotPath != "/bottoken123/sendMessage" || gotChat != "-100" || gotText != "*Ingestion* done" {
		t.Fatalf("unexpected request path=%s chat=%s text=%s", gotPath, gotChat, gotText)
	}
}

func TestPublishReportMisconfigured(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "").PublishReport(context.Background(), "x"); err == nil {
		t.Fatalf("expected error without token")
	}
}
