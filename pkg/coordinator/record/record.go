package record

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnexpectedStatus wraps non-2xx responses from the api service.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Update is the partial-field patch body for a phone call record. Zero
// fields are omitted from the request entirely.
type Update struct {
	EmployeeID  string `json:"employee_id,omitempty"`
	Transcript  string `json:"transcript,omitempty"`
	EndDateTime string `json:"end_date_time,omitempty"`
}

// Client mirrors call lifecycle events into the durable phone-call records
// owned by the api service. Every request carries the service credential in
// the x-api-key header.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: httpClient,
	}
}

// Create registers a new phone call and returns the durable id assigned by
// the api service. The coordinator uses that id for the session's lifetime.
func (c *Client) Create(ctx context.Context, phoneNumber string, startTime time.Time) (string, error) {
	body, err := json.Marshal(map[string]string{
		"phone_number":    phoneNumber,
		"start_date_time": startTime.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/phone-calls", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create phone call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", statusError("create phone call", resp)
	}

	var decoded struct {
		PhoneCallID string `json:"phone_call_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(decoded.PhoneCallID) == "" {
		return "", fmt.Errorf("create phone call: response missing phone_call_id")
	}
	return decoded.PhoneCallID, nil
}

// UpdateCall patches the named record. Callers treat failures as
// observability events only; in-memory state is never rolled back.
func (c *Client) UpdateCall(ctx context.Context, phoneCallID string, update Update) error {
	if strings.TrimSpace(phoneCallID) == "" {
		return fmt.Errorf("phone_call_id is required")
	}

	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/phone-calls/" + url.PathEscape(phoneCallID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update phone call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError("update phone call", resp)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
}

func statusError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	return fmt.Errorf("%s: %w %d: %s", op, ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(b)))
}
