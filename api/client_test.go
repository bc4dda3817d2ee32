package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"

	"synchro/models"
)

func testToken() *oauth2.Token {
	return &oauth2.Token{AccessToken: "test-token", TokenType: "bearer"}
}

func TestListContactsSendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/contacts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		_ = json.NewEncoder(w).Encode([]models.AppContact{
			{ID: "1", Name: "Alice", DeviceContactID: "device_1"},
			{ID: "2", Name: "Bob"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, testToken())
	contacts, err := client.ListContacts(context.Background())
	if err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(contacts))
	}
	if !contacts[0].Linked() || contacts[1].Linked() {
		t.Error("link state decoded incorrectly")
	}
}

func TestCreateContact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/contacts" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}

		var payload models.AppContact
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if payload.PipelineStage != models.StageNew {
			t.Errorf("pipeline_stage = %q, want %q", payload.PipelineStage, models.StageNew)
		}

		payload.ID = "created-1"
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := NewClient(server.URL, testToken())
	created, err := client.CreateContact(context.Background(), &models.AppContact{
		Name:          "Carol",
		PipelineStage: models.StageNew,
	})
	if err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}
	if created.ID != "created-1" {
		t.Errorf("id = %q", created.ID)
	}
}

func TestUpdateContactSendsOnlySetFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/contacts/abc" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}

		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if len(raw) != 1 {
			t.Errorf("expected only device_contact_id in payload, got %v", raw)
		}
		if raw["device_contact_id"] != "device_9" {
			t.Errorf("device_contact_id = %v", raw["device_contact_id"])
		}

		_ = json.NewEncoder(w).Encode(models.AppContact{ID: "abc", Name: "X", DeviceContactID: "device_9"})
	}))
	defer server.Close()

	client := NewClient(server.URL, testToken())
	updated, err := client.UpdateContact(context.Background(), "abc", models.LinkUpdate("device_9"))
	if err != nil {
		t.Fatalf("UpdateContact failed: %v", err)
	}
	if updated.DeviceContactID != "device_9" {
		t.Errorf("device_contact_id = %q", updated.DeviceContactID)
	}
}

func TestErrorIncludesStatusAndDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Contact not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, testToken())
	_, err := client.GetContact(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestMorningBriefing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/morning-briefing" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]models.AppContact{{ID: "1", Name: "Overdue Oscar"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, testToken())
	due, err := client.MorningBriefing(context.Background())
	if err != nil {
		t.Fatalf("MorningBriefing failed: %v", err)
	}
	if len(due) != 1 || due[0].Name != "Overdue Oscar" {
		t.Errorf("unexpected briefing: %+v", due)
	}
}

func TestGroupRoutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/groups":
			_ = json.NewEncoder(w).Encode([]models.Group{
				{ID: "g1", Name: "University"},
				{ID: "g2", Name: "Tennis Club"},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/api/groups":
			var payload models.Group
			_ = json.NewDecoder(r.Body).Decode(&payload)
			payload.ID = "g3"
			_ = json.NewEncoder(w).Encode(payload)
		case r.Method == http.MethodPut && r.URL.Path == "/api/groups/g1":
			var raw map[string]any
			_ = json.NewDecoder(r.Body).Decode(&raw)
			if len(raw) != 1 || raw["description"] != "Alumni" {
				t.Errorf("expected only description in payload, got %v", raw)
			}
			_ = json.NewEncoder(w).Encode(models.Group{ID: "g1", Name: "University", Description: "Alumni"})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/groups/g2":
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Group deleted successfully"})
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, testToken())
	ctx := context.Background()

	groups, err := client.Groups(ctx)
	if err != nil {
		t.Fatalf("Groups failed: %v", err)
	}
	if len(groups) != 2 || groups[0].Name != "University" {
		t.Errorf("unexpected groups: %+v", groups)
	}

	created, err := client.CreateGroup(ctx, &models.Group{Name: "Work"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if created.ID != "g3" {
		t.Errorf("created id = %q", created.ID)
	}

	desc := "Alumni"
	updated, err := client.UpdateGroup(ctx, "g1", &models.GroupUpdate{Description: &desc})
	if err != nil {
		t.Fatalf("UpdateGroup failed: %v", err)
	}
	if updated.Description != "Alumni" {
		t.Errorf("description = %q", updated.Description)
	}

	if err := client.DeleteGroup(ctx, "g2"); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
}

func TestLoginDoesNotRequireToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("login should not send an Authorization header")
		}
		_ = json.NewEncoder(w).Encode(Token{
			AccessToken: "fresh",
			TokenType:   "bearer",
			User:        User{ID: "u1", Email: "a@example.com"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	token, err := client.Login(context.Background(), "a@example.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token.AccessToken != "fresh" || token.User.ID != "u1" {
		t.Errorf("unexpected token: %+v", token)
	}
}
