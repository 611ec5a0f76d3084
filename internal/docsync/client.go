// Package docsync is the HTTP client for the listd sync server: list and
// item CRUD, the sharing sub-API (permissions and invitations), search,
// account info, and the change-notification cursor feed. The server is the
// source of truth; everything local is a projection of what this client
// returns.
package docsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/listd/listd/internal/events"
	"github.com/listd/listd/internal/models"
)

// Sentinel errors for common HTTP error classes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// Client is an HTTP client for the listd server.
type Client struct {
	BaseURL  string
	APIKey   string
	DeviceID string
	HTTP     *http.Client
}

// New creates a new client.
func New(baseURL, apiKey, deviceID string) *Client {
	return &Client{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		DeviceID: deviceID,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

// --- List methods ---

// ListLists fetches all lists visible to the authenticated user, ordered by
// server-assigned position.
func (c *Client) ListLists(ctx context.Context) ([]models.List, error) {
	var resp []models.List
	if err := c.do(ctx, "GET", "/v1/lists", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateList creates a new list owned by the authenticated user.
func (c *Client) CreateList(ctx context.Context, id, title string) (*models.List, error) {
	body := map[string]string{"id": id, "title": title}
	var resp models.List
	if err := c.do(ctx, "POST", "/v1/lists", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateList patches mutable list fields. Only non-nil patch fields are sent.
func (c *Client) UpdateList(ctx context.Context, id string, patch ListPatch) (*models.List, error) {
	var resp models.List
	if err := c.do(ctx, "PATCH", "/v1/lists/"+id, patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteList deletes a list and everything in it.
func (c *Client) DeleteList(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/v1/lists/"+id, nil, nil)
}

// ReorderLists sends the full new list ordering as one request. The server
// reassigns positions and the response is the canonical order.
func (c *Client) ReorderLists(ctx context.Context, ids []string) ([]models.List, error) {
	body := map[string][]string{"ids": ids}
	var resp []models.List
	if err := c.do(ctx, "POST", "/v1/lists/reorder", body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListPatch holds optional list field updates.
type ListPatch struct {
	Title *string `json:"title,omitempty"`
}

// --- Item methods ---

// ItemPatch holds optional item field updates.
type ItemPatch struct {
	Title *string `json:"title,omitempty"`
	Note  *string `json:"note,omitempty"`
	Done  *bool   `json:"done,omitempty"`
}

// ListItems fetches all items in a list, ordered by position.
func (c *Client) ListItems(ctx context.Context, listID string) ([]models.Item, error) {
	var resp []models.Item
	if err := c.do(ctx, "GET", fmt.Sprintf("/v1/lists/%s/items", listID), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateItem creates an item at the end of a list.
func (c *Client) CreateItem(ctx context.Context, listID, id, title string) (*models.Item, error) {
	body := map[string]string{"id": id, "title": title}
	var resp models.Item
	if err := c.do(ctx, "POST", fmt.Sprintf("/v1/lists/%s/items", listID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateItem patches mutable item fields.
func (c *Client) UpdateItem(ctx context.Context, listID, itemID string, patch ItemPatch) (*models.Item, error) {
	var resp models.Item
	if err := c.do(ctx, "PATCH", fmt.Sprintf("/v1/lists/%s/items/%s", listID, itemID), patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteItem deletes a single item.
func (c *Client) DeleteItem(ctx context.Context, listID, itemID string) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/v1/lists/%s/items/%s", listID, itemID), nil, nil)
}

// ReorderItems sends the full new item ordering for a list as one request.
func (c *Client) ReorderItems(ctx context.Context, listID string, ids []string) ([]models.Item, error) {
	body := map[string][]string{"ids": ids}
	var resp []models.Item
	if err := c.do(ctx, "POST", fmt.Sprintf("/v1/lists/%s/items/reorder", listID), body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// --- Sharing sub-API ---

// GetPermissions lists who has access to a list and at what role.
func (c *Client) GetPermissions(ctx context.Context, listID string) ([]models.Permission, error) {
	var resp []models.Permission
	if err := c.do(ctx, "GET", fmt.Sprintf("/v1/lists/%s/permissions", listID), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdatePermission changes a user's role on a list.
func (c *Client) UpdatePermission(ctx context.Context, listID, userID string, role models.Role) (*models.Permission, error) {
	body := map[string]string{"role": string(role)}
	var resp models.Permission
	if err := c.do(ctx, "PATCH", fmt.Sprintf("/v1/lists/%s/permissions/%s", listID, userID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemovePermission revokes a user's access to a list.
func (c *Client) RemovePermission(ctx context.Context, listID, userID string) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/v1/lists/%s/permissions/%s", listID, userID), nil, nil)
}

// ListInvitations lists pending invitations for a list.
func (c *Client) ListInvitations(ctx context.Context, listID string) ([]models.Invitation, error) {
	var resp []models.Invitation
	if err := c.do(ctx, "GET", fmt.Sprintf("/v1/lists/%s/invitations", listID), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateInvitation invites one email address to a list at the given role.
// Each address in a multi-address submission is its own call; there is no
// batch transaction on the server.
func (c *Client) CreateInvitation(ctx context.Context, listID, email string, role models.Role) (*models.Invitation, error) {
	body := map[string]string{"email": email, "role": string(role)}
	var resp models.Invitation
	if err := c.do(ctx, "POST", fmt.Sprintf("/v1/lists/%s/invitations", listID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteInvitation cancels a pending invitation.
func (c *Client) DeleteInvitation(ctx context.Context, listID, invID string) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/v1/lists/%s/invitations/%s", listID, invID), nil, nil)
}

// --- Search ---

// SearchResult is one ranked hit from server-side search.
type SearchResult struct {
	Item       models.Item `json:"item"`
	ListTitle  string      `json:"list_title"`
	Score      int         `json:"score"`
	MatchField string      `json:"match_field"`
}

// Search runs a server-side ranked search. listID narrows the search to one
// list; empty searches everything the user can read.
func (c *Client) Search(ctx context.Context, q, listID string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("q", q)
	if listID != "" {
		params.Set("list_id", listID)
	}
	var resp []SearchResult
	if err := c.do(ctx, "GET", "/v1/search?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// --- Account ---

// GetAccount returns the authenticated user's account and plan limits.
func (c *Client) GetAccount(ctx context.Context) (*models.Account, error) {
	var resp models.Account
	if err := c.do(ctx, "GET", "/v1/account", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Change feed ---

// ChangesResponse is one page of the change-notification cursor feed.
type ChangesResponse struct {
	Changes []events.Change `json:"changes"`
	LastSeq int64           `json:"last_seq"`
	HasMore bool            `json:"has_more"`
}

// Changes fetches change notifications after the given cursor.
func (c *Client) Changes(ctx context.Context, afterSeq int64, limit int) (*ChangesResponse, error) {
	params := url.Values{}
	params.Set("after_seq", strconv.FormatInt(afterSeq, 10))
	params.Set("limit", strconv.Itoa(limit))
	if c.DeviceID != "" {
		params.Set("exclude_device", c.DeviceID)
	}
	var resp ChangesResponse
	if err := c.do(ctx, "GET", "/v1/changes?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthResponse is the response from GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthCheck hits the /healthz endpoint to verify server reachability.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doNoAuth(ctx, "GET", "/healthz", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- HTTP helpers ---

// apiError is the standard error body from the server.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

// do executes an authenticated HTTP request.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	return c.doRequest(ctx, method, path, body, result, true)
}

// doNoAuth executes an unauthenticated HTTP request.
func (c *Client) doNoAuth(ctx context.Context, method, path string, body, result any) error {
	return c.doRequest(ctx, method, path, body, result, false)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result any, auth bool) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Code != "" {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
			case http.StatusForbidden:
				return fmt.Errorf("%w: %s", ErrForbidden, apiErr.Message)
			case http.StatusNotFound:
				return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
			default:
				return &apiErr
			}
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
