// Package clickup is a small REST client for the ClickUp v2 API covering the
// calls the outbound sync and the OAuth flow need.
package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL      = "https://api.clickup.com/api/v2"
	DefaultAuthorizeURL = "https://app.clickup.com/api"
	DefaultTimeout      = 10 * time.Second

	// DefaultTokenLifetime applies when the token endpoint reports no expiry.
	// ClickUp OAuth tokens do not expire in practice.
	DefaultTokenLifetime = 30 * 24 * time.Hour

	maxErrorBody = 2048
)

// Config configures the client
type Config struct {
	BaseURL      string
	AuthorizeURL string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Timeout      time.Duration
}

// Client talks to the ClickUp API
type Client struct {
	httpClient  *http.Client
	config      Config
	credentials CredentialSource

	fieldsMu sync.RWMutex
	fields   map[string]map[string]string
}

// TaskUpdate holds the task attributes the sync writes. Empty values are omitted.
type TaskUpdate struct {
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`
}

// Field is a custom field definition on a list
type Field struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Token is the result of an OAuth code exchange
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// NewClient creates a ClickUp client. Zero config values take their defaults.
func NewClient(cfg Config, credentials CredentialSource) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		config:      cfg,
		credentials: credentials,
		fields:      make(map[string]map[string]string),
	}
}

// OAuthConfigured reports whether the OAuth client id, secret and redirect are set
func (c *Client) OAuthConfigured() bool {
	return c.config.ClientID != "" && c.config.ClientSecret != "" && c.config.RedirectURL != ""
}

// UpdateTask writes the task's name and status
func (c *Client) UpdateTask(ctx context.Context, taskID string, update TaskUpdate) error {
	path := "/task/" + url.PathEscape(taskID)
	return c.do(ctx, http.MethodPut, path, update, nil)
}

// SetCustomField writes one custom field value on a task
func (c *Client) SetCustomField(ctx context.Context, taskID, fieldID string, value any) error {
	path := fmt.Sprintf("/task/%s/field/%s", url.PathEscape(taskID), url.PathEscape(fieldID))
	return c.do(ctx, http.MethodPost, path, map[string]any{"value": value}, nil)
}

// GetTask fetches the raw task document
func (c *Client) GetTask(ctx context.Context, taskID string) (map[string]any, error) {
	var task map[string]any
	if err := c.do(ctx, http.MethodGet, "/task/"+url.PathEscape(taskID), nil, &task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListFields returns the custom field definitions of a list
func (c *Client) ListFields(ctx context.Context, listID string) ([]Field, error) {
	var resp struct {
		Fields []Field `json:"fields"`
	}
	if err := c.do(ctx, http.MethodGet, "/list/"+url.PathEscape(listID)+"/field", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Fields, nil
}

// FieldIDs returns the list's custom field ids keyed by field name. The result
// is cached per list for the lifetime of the client.
func (c *Client) FieldIDs(ctx context.Context, listID string) (map[string]string, error) {
	c.fieldsMu.RLock()
	ids, ok := c.fields[listID]
	c.fieldsMu.RUnlock()
	if ok {
		return ids, nil
	}

	fields, err := c.ListFields(ctx, listID)
	if err != nil {
		return nil, err
	}
	ids = make(map[string]string, len(fields))
	for _, f := range fields {
		ids[f.Name] = f.ID
	}

	c.fieldsMu.Lock()
	c.fields[listID] = ids
	c.fieldsMu.Unlock()
	return ids, nil
}

// oauthConfig describes ClickUp's OAuth app. The token endpoint expects the
// client credentials as request parameters.
func (c *Client) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		RedirectURL:  c.config.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.config.AuthorizeURL,
			TokenURL:  c.config.BaseURL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthorizeURL builds the URL the user is redirected to for OAuth consent
func (c *Client) AuthorizeURL(state string) string {
	return c.oauthConfig().AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for an access token
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauthConfig().Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(DefaultTokenLifetime)
	}
	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// do sends an authenticated request
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	credential, err := c.credentials.Credential(ctx)
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, in, out, credential)
}

func (c *Client) send(ctx context.Context, method, path string, in, out any, credential string) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// ClickUp expects the bare token, without a Bearer prefix
	if credential != "" {
		req.Header.Set("Authorization", credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call ClickUp API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode ClickUp response: %w", err)
	}
	return nil
}
