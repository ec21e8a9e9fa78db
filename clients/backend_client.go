package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"marketplace-client/models"
)

// BackendClient talks to the marketplace backend over authenticated HTTP. The
// backend owns all persistence and business rules; this client only moves
// requests and decodes success/failure envelopes.
type BackendClient struct {
	baseURL string
	client  *http.Client
}

func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	return &BackendClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// opResult is the backend's envelope for mutating operations.
type opResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (b *BackendClient) do(ctx context.Context, method, path string, query url.Values, userID string, body, out interface{}) error {
	u := b.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-User-ID", userID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upstream error: status=%d body=%s", resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// doOp runs a mutating operation and converts a reported failure into an error.
func (b *BackendClient) doOp(ctx context.Context, method, path string, userID string, body interface{}) error {
	var res opResult
	if err := b.do(ctx, method, path, nil, userID, body, &res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("backend rejected operation: %s", res.Error)
	}
	return nil
}

func (b *BackendClient) GetCart(ctx context.Context, userID string) (*models.CartSnapshot, error) {
	var snap models.CartSnapshot
	if err := b.do(ctx, http.MethodGet, "/cart", nil, userID, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (b *BackendClient) UpdateCartItemQuantity(ctx context.Context, userID, lineID string, quantity int) error {
	body := map[string]int{"quantity": quantity}
	return b.doOp(ctx, http.MethodPut, "/cart/items/"+lineID, userID, body)
}

func (b *BackendClient) RemoveFromCart(ctx context.Context, userID, lineID string) error {
	return b.doOp(ctx, http.MethodDelete, "/cart/items/"+lineID, userID, nil)
}

func (b *BackendClient) ClearCart(ctx context.Context, userID string) error {
	return b.doOp(ctx, http.MethodDelete, "/cart", userID, nil)
}

func (b *BackendClient) GetUserNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	query := url.Values{}
	query.Set("unread", strconv.FormatBool(unreadOnly))

	var items []models.Notification
	if err := b.do(ctx, http.MethodGet, "/notifications", query, userID, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (b *BackendClient) MarkNotificationRead(ctx context.Context, userID string, id int64) error {
	return b.doOp(ctx, http.MethodPost, "/notifications/"+strconv.FormatInt(id, 10)+"/read", userID, nil)
}

func (b *BackendClient) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return b.doOp(ctx, http.MethodPost, "/notifications/read-all", userID, nil)
}
