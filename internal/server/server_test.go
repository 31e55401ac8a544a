package server

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/donalf/yt2spot/internal/shared"
)

func TestCallbackHandlerDeliversCode(t *testing.T) {
	handler := NewCallbackHandler("state-123")
	server := httptest.NewServer(handler)
	defer server.Close()

	resp, err := http.Get(server.URL + "?state=state-123&code=auth-code")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	result := <-handler.Result()
	if err := result.Error(); err != nil {
		t.Fatalf("unexpected result error: %v", err)
	}
	if result.Code != "auth-code" {
		t.Errorf("code = %q, want auth-code", result.Code)
	}
}

func TestCallbackHandlerRejectsBadState(t *testing.T) {
	handler := NewCallbackHandler("expected-state")
	server := httptest.NewServer(handler)
	defer server.Close()

	resp, err := http.Get(server.URL + "?state=forged&code=auth-code")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	result := <-handler.Result()
	if !errors.Is(result.Error(), shared.ErrAuthFailed) {
		t.Errorf("expected ErrAuthFailed, got %v", result.Error())
	}
}

func TestCallbackHandlerProviderError(t *testing.T) {
	handler := NewCallbackHandler("state-123")
	server := httptest.NewServer(handler)
	defer server.Close()

	resp, err := http.Get(server.URL + "?state=state-123&error=access_denied&error_description=user+denied")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	result := <-handler.Result()
	if !errors.Is(result.Error(), shared.ErrAuthFailed) {
		t.Errorf("expected ErrAuthFailed, got %v", result.Error())
	}
}

func TestCallbackHandlerSecondHitRejected(t *testing.T) {
	handler := NewCallbackHandler("state-123")
	server := httptest.NewServer(handler)
	defer server.Close()

	first, err := http.Get(server.URL + "?state=state-123&code=auth-code")
	if err != nil {
		t.Fatalf("first GET: %v", err)
	}
	io.Copy(io.Discard, first.Body)
	first.Body.Close()

	second, err := http.Get(server.URL + "?state=state-123&code=other-code")
	if err != nil {
		t.Fatalf("second GET: %v", err)
	}
	defer second.Body.Close()

	if second.StatusCode != http.StatusBadRequest {
		t.Errorf("second hit status = %d, want 400", second.StatusCode)
	}

	result := <-handler.Result()
	if result.Code != "auth-code" {
		t.Errorf("code = %q, want the first redirect's code", result.Code)
	}
}
