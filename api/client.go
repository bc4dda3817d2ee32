// ABOUTME: HTTP client for the remote contact store and companion endpoints
// ABOUTME: JSON over HTTP with a bearer token on every authenticated call
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"synchro/models"
)

// Client talks to the backend API. Timeouts are delegated to the underlying
// http.Client; no retries are performed.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  oauth2.TokenSource
}

// NewClient creates an API client for the given server. A nil token produces
// an unauthenticated client, usable only for login and signup.
func NewClient(server string, token *oauth2.Token) *Client {
	c := &Client{
		baseURL: strings.TrimRight(server, "/"),
		http:    &http.Client{},
	}
	if token != nil {
		c.tokens = oauth2.StaticTokenSource(token)
	}
	return c
}

// Token and User are the auth endpoint payloads.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type User struct {
	ID                  string `json:"id"`
	Email               string `json:"email"`
	Name                string `json:"name"`
	HasImportedContacts bool   `json:"has_imported_contacts"`
}

// Login authenticates and returns the session token.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	var token Token
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &token); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return &token, nil
}

// Signup registers a new account and returns the session token.
func (c *Client) Signup(ctx context.Context, email, password, name string) (*Token, error) {
	var token Token
	body := map[string]string{"email": email, "password": password, "name": name}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", body, &token); err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}
	return &token, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateImportStatus marks the account as having completed a contact import.
func (c *Client) UpdateImportStatus(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/api/auth/update-import-status", nil, nil)
}

// ListContacts fetches every contact from the remote store.
func (c *Client) ListContacts(ctx context.Context) ([]models.AppContact, error) {
	var contacts []models.AppContact
	if err := c.do(ctx, http.MethodGet, "/api/contacts", nil, &contacts); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// GetContact fetches a single contact by id.
func (c *Client) GetContact(ctx context.Context, id string) (*models.AppContact, error) {
	var contact models.AppContact
	if err := c.do(ctx, http.MethodGet, "/api/contacts/"+id, nil, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// CreateContact creates a contact remotely and returns the created record.
func (c *Client) CreateContact(ctx context.Context, contact *models.AppContact) (*models.AppContact, error) {
	var created models.AppContact
	if err := c.do(ctx, http.MethodPost, "/api/contacts", contact, &created); err != nil {
		return nil, fmt.Errorf("failed to create contact %q: %w", contact.Name, err)
	}
	return &created, nil
}

// UpdateContact sends a partial update and returns the updated record.
func (c *Client) UpdateContact(ctx context.Context, id string, update *models.ContactUpdate) (*models.AppContact, error) {
	var updated models.AppContact
	if err := c.do(ctx, http.MethodPut, "/api/contacts/"+id, update, &updated); err != nil {
		return nil, fmt.Errorf("failed to update contact %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteContact removes a contact from the remote store.
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/contacts/"+id, nil, nil)
}

// MovePipeline moves a contact to another pipeline stage; the backend
// recalculates the follow-up due date.
func (c *Client) MovePipeline(ctx context.Context, id, stage string) (*models.AppContact, error) {
	var updated models.AppContact
	body := map[string]string{"pipeline_stage": stage}
	if err := c.do(ctx, http.MethodPost, "/api/contacts/"+id+"/move-pipeline", body, &updated); err != nil {
		return nil, fmt.Errorf("failed to move contact %s: %w", id, err)
	}
	return &updated, nil
}

// MorningBriefing returns contacts due today or overdue.
func (c *Client) MorningBriefing(ctx context.Context) ([]models.AppContact, error) {
	var contacts []models.AppContact
	if err := c.do(ctx, http.MethodGet, "/api/morning-briefing", nil, &contacts); err != nil {
		return nil, fmt.Errorf("failed to fetch briefing: %w", err)
	}
	return contacts, nil
}

// GenerateDraft asks the backend for a reconnection message draft.
func (c *Client) GenerateDraft(ctx context.Context, contactID string) (*models.Draft, error) {
	var draft models.Draft
	if err := c.do(ctx, http.MethodPost, "/api/drafts/generate/"+contactID, nil, &draft); err != nil {
		return nil, fmt.Errorf("failed to generate draft: %w", err)
	}
	return &draft, nil
}

// Drafts lists pending drafts.
func (c *Client) Drafts(ctx context.Context) ([]models.Draft, error) {
	var drafts []models.Draft
	if err := c.do(ctx, http.MethodGet, "/api/drafts", nil, &drafts); err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

// DismissDraft marks a draft dismissed.
func (c *Client) DismissDraft(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/api/drafts/"+id+"/dismiss", nil, nil)
}

// MarkDraftSent marks a draft sent; the backend bumps the contact's
// last_contact_date and recalculates next_due.
func (c *Client) MarkDraftSent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/api/drafts/"+id+"/sent", nil, nil)
}

// Groups fetches every contact group.
func (c *Client) Groups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := c.do(ctx, http.MethodGet, "/api/groups", nil, &groups); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// GetGroup fetches a single group by id.
func (c *Client) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	if err := c.do(ctx, http.MethodGet, "/api/groups/"+id, nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// CreateGroup creates a group and returns the created record.
func (c *Client) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	var created models.Group
	if err := c.do(ctx, http.MethodPost, "/api/groups", group, &created); err != nil {
		return nil, fmt.Errorf("failed to create group %q: %w", group.Name, err)
	}
	return &created, nil
}

// UpdateGroup sends a partial update and returns the updated record.
func (c *Client) UpdateGroup(ctx context.Context, id string, update *models.GroupUpdate) (*models.Group, error) {
	var updated models.Group
	if err := c.do(ctx, http.MethodPut, "/api/groups/"+id, update, &updated); err != nil {
		return nil, fmt.Errorf("failed to update group %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteGroup removes a group.
func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/groups/"+id, nil, nil)
}

// GetSettings fetches user settings.
func (c *Client) GetSettings(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings replaces user settings.
func (c *Client) UpdateSettings(ctx context.Context, settings *models.Settings) error {
	return c.do(ctx, http.MethodPut, "/api/settings", settings, nil)
}

// do issues a JSON request. out may be nil when the response body is ignored.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Correlation id for server-side log tracing.
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("failed to get token: %w", err)
		}
		token.SetAuthHeader(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
