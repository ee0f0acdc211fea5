package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/javajolt/kava/kava-backend/internal/service"
	"github.com/javajolt/kava/kava-backend/internal/testutil"
)

func startTracker(t *testing.T, store *testutil.MockStore) *service.Tracker {
	t.Helper()
	tracker := service.NewTracker(store, nil)
	if err := tracker.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(tracker.Close)
	return tracker
}

func TestGetUsers(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore(true)
	tracker := startTracker(t, store)
	h := NewTrackerHandler(tracker)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetUsers(c); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp UsersListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(resp.Users) != 6 {
		t.Errorf("Expected 6 roster users, got %d", len(resp.Users))
	}
	if resp.Loading {
		t.Error("Expected loading to be false after Start")
	}
	for _, u := range resp.Users {
		if u.Badge == "" {
			t.Errorf("User %s has empty badge", u.ID)
		}
	}
}

func TestGetUsers_SortedByCount(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore(true)
	tracker := startTracker(t, store)
	h := NewTrackerHandler(tracker)

	tracker.AddCoffee(context.Background(), "sam-wilson")
	tracker.AddCoffee(context.Background(), "sam-wilson")
	tracker.AddCoffee(context.Background(), "taylor-smith")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetUsers(c); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var resp UsersListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Users[0].ID != "sam-wilson" {
		t.Errorf("Expected sam-wilson first, got %s", resp.Users[0].ID)
	}
	if resp.Users[1].ID != "taylor-smith" {
		t.Errorf("Expected taylor-smith second, got %s", resp.Users[1].ID)
	}
}

func TestGetActivity(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore(true)
	tracker := startTracker(t, store)
	h := NewTrackerHandler(tracker)

	tracker.AddCoffee(context.Background(), "alex-johnson")
	tracker.AddCoffee(context.Background(), "alex-johnson")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetActivity(c); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp []ActivityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("Expected 2 activity entries, got %d", len(resp))
	}
	// Newest first
	if resp[0].CoffeeCount != 2 {
		t.Errorf("Expected newest entry to carry count 2, got %d", resp[0].CoffeeCount)
	}
	if resp[0].Action != "added a coffee" {
		t.Errorf("Unexpected action %q", resp[0].Action)
	}
}

func TestGetActivity_Empty(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore(true)
	tracker := startTracker(t, store)
	h := NewTrackerHandler(tracker)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetActivity(c); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if body := rec.Body.String(); body == "null\n" {
		t.Error("Expected empty array, got null")
	}
}

func TestGetStats(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore(true)
	tracker := startTracker(t, store)
	h := NewTrackerHandler(tracker)

	for i := 0; i < 3; i++ {
		tracker.AddCoffee(context.Background(), "jordan-lee")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetStats(c); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.TotalCoffees != 3 {
		t.Errorf("Expected 3 total coffees, got %d", resp.TotalCoffees)
	}
	if resp.TopDrinker == nil || resp.TopDrinker.ID != "jordan-lee" {
		t.Error("Expected jordan-lee as top drinker")
	}
	if resp.MostRecent == nil || resp.MostRecent.UserID != "jordan-lee" {
		t.Error("Expected most recent activity from jordan-lee")
	}
	if resp.ActiveUsers != 1 {
		t.Errorf("Expected 1 active user, got %d", resp.ActiveUsers)
	}
}

func TestGetStats_Empty(t *testing.T) {
	e := echo.New()
	store := testutil.NewMockStore(true)
	tracker := startTracker(t, store)
	h := NewTrackerHandler(tracker)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetStats(c); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.TotalCoffees != 0 {
		t.Errorf("Expected 0 total coffees, got %d", resp.TotalCoffees)
	}
	if resp.TopDrinker != nil {
		t.Error("Expected no top drinker before any scans")
	}
	if resp.MostRecent != nil {
		t.Error("Expected no recent activity before any scans")
	}
}
