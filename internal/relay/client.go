package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client is the patient device's view of the relay over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a relay client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

// doGetJSON performs a GET request and unmarshals the JSON response.
func doGetJSON[T any](ctx context.Context, c *Client, endpoint string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

// doPostJSON performs a POST request with a JSON body and unmarshals the
// JSON response.
func doPostJSON[T any](ctx context.Context, c *Client, endpoint string, requestBody any) (*T, error) {
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

type submitResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

type approvedResponse struct {
	Success bool             `json:"success"`
	People  []ApprovedPerson `json:"people"`
}

type statusResponse struct {
	Success bool            `json:"success"`
	Status  Status          `json:"status"`
	Person  *ApprovedPerson `json:"person,omitempty"`
}

// Submit sends an enrollment request for caregiver approval and returns the
// new request id.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	resp, err := doPostJSON[submitResponse](ctx, c, "/api/pending", req)
	if err != nil {
		return "", fmt.Errorf("submitting for approval: %w", err)
	}
	return resp.ID, nil
}

// ListApproved fetches the approved people for a subject device.
func (c *Client) ListApproved(ctx context.Context, subjectID string) ([]ApprovedPerson, error) {
	resp, err := doGetJSON[approvedResponse](ctx, c, "/api/approved/"+subjectID)
	if err != nil {
		return nil, fmt.Errorf("listing approved people: %w", err)
	}
	return resp.People, nil
}

// PendingStatus polls the state of an earlier submission. The approved person
// is returned once the request has been promoted.
func (c *Client) PendingStatus(ctx context.Context, id string) (Status, *ApprovedPerson, error) {
	resp, err := doGetJSON[statusResponse](ctx, c, "/api/pending/"+id+"/status")
	if err != nil {
		return "", nil, fmt.Errorf("checking request status: %w", err)
	}
	return resp.Status, resp.Person, nil
}
