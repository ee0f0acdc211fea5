package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/javajolt/kava/kava-backend/internal/middleware"
	"github.com/javajolt/kava/kava-backend/internal/service"
	"github.com/javajolt/kava/kava-backend/internal/testutil"
)

func newAuthHandler(t *testing.T, store *testutil.MockStore) *AuthHandler {
	t.Helper()
	tracker := startTracker(t, store)
	verifier, err := middleware.NewGoogleVerifier("")
	if err != nil {
		t.Fatalf("Failed to build verifier: %v", err)
	}
	avatars := service.NewAvatarService(nil)
	return NewAuthHandler(tracker, verifier, avatars)
}

func TestSignIn_CreatesUser(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore(true)
	h := newAuthHandler(t, store)

	c, rec := postJSON(e, "/api/v1/auth/signin", `{"name":"Demo User","email":"demo@example.com","picture":"https://example.com/p.jpg"}`)

	if err := h.SignIn(c); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp SignInResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.User.ID != "demo-example-com" {
		t.Errorf("Expected derived id demo-example-com, got %s", resp.User.ID)
	}
	if !resp.User.External {
		t.Error("Expected user to be flagged as external identity")
	}
	if resp.AvatarURL != "" {
		t.Error("Expected no avatar URL when avatar storage is disabled")
	}
}

func TestSignIn_Idempotent(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore(true)
	h := newAuthHandler(t, store)

	body := `{"name":"Demo User","email":"demo@example.com"}`
	for i := 0; i < 2; i++ {
		c, rec := postJSON(e, "/api/v1/auth/signin", body)
		if err := h.SignIn(c); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("Sign-in %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	if _, ok := store.UserByID("demo-example-com"); !ok {
		t.Fatal("Expected demo user in store")
	}
	// The second sign-in resolves from the snapshot without a write
	if store.UpsertCalls != 1 {
		t.Errorf("Expected 1 upsert call, got %d", store.UpsertCalls)
	}
}

func TestSignIn_MissingEmail(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore(true)
	h := newAuthHandler(t, store)

	c, rec := postJSON(e, "/api/v1/auth/signin", `{"name":"Demo User"}`)

	if err := h.SignIn(c); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestSignIn_InvalidBody(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore(true)
	h := newAuthHandler(t, store)

	c, rec := postJSON(e, "/api/v1/auth/signin", `{broken`)

	if err := h.SignIn(c); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}
