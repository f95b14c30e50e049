package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestActorFromHeader(t *testing.T) {
	var captured string
	handler := Actor(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = ActorFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Actor", "  mira  ")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if captured != "mira" {
		t.Fatalf("actor = %q, want trimmed header value", captured)
	}
}

func TestActorAbsentHeader(t *testing.T) {
	var captured string
	handler := Actor(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = ActorFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))

	if captured != "" {
		t.Fatalf("actor = %q, want empty so services default to system", captured)
	}
}
