package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/flashmind/flashmind-backend/internal/config"
)

func testBrevo(t *testing.T, handler http.HandlerFunc) *Brevo {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	b := NewBrevo(&config.Config{
		BrevoAPIKey: "test-key",
		SenderName:  "FlashMind",
		SenderEmail: "flashmindquizz@gmail.com",
		BaseURL:     "https://api.flashmind.example",
		FrontendURL: "https://flashmind.example",
	}, zerolog.Nop())
	b.endpoint = srv.URL
	return b
}

func TestSendVerificationEmail(t *testing.T) {
	var got sendRequest
	var apiKey string

	b := testBrevo(t, func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	if err := b.SendVerificationEmail(context.Background(), "alice@example.com", "alice", "tok-123"); err != nil {
		t.Fatalf("SendVerificationEmail: %v", err)
	}

	if apiKey != "test-key" {
		t.Errorf("api-key header = %q", apiKey)
	}
	if got.Sender.Email != "flashmindquizz@gmail.com" || got.Sender.Name != "FlashMind" {
		t.Errorf("sender = %+v", got.Sender)
	}
	if len(got.To) != 1 || got.To[0].Email != "alice@example.com" {
		t.Errorf("to = %+v", got.To)
	}
	if !strings.Contains(got.HTMLContent, "https://api.flashmind.example/api/auth/verify-email?token=tok-123") {
		t.Errorf("verification link missing from body: %s", got.HTMLContent)
	}
	if !strings.Contains(got.HTMLContent, "alice") {
		t.Error("username missing from body")
	}
}

func TestSendPasswordResetEmail(t *testing.T) {
	var got sendRequest

	b := testBrevo(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	if err := b.SendPasswordResetEmail(context.Background(), "bob@example.com", "bob", "tok-456"); err != nil {
		t.Fatalf("SendPasswordResetEmail: %v", err)
	}

	if !strings.Contains(got.HTMLContent, "https://flashmind.example/reset-password?token=tok-456") {
		t.Errorf("reset link missing from body: %s", got.HTMLContent)
	}
}

func TestSendReportsUpstreamErrors(t *testing.T) {
	b := testBrevo(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"unauthorized"}`, http.StatusUnauthorized)
	})

	err := b.SendVerificationEmail(context.Background(), "alice@example.com", "alice", "tok")
	if err == nil {
		t.Fatal("expected an error on non-2xx response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should carry the status code: %v", err)
	}
}
