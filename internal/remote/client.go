// Package remote is the HTTP client for the weight-log API the offline queue
// drains into.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"weightsync/internal/models"
	"weightsync/internal/structures"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

const (
	createPath        = "/api/weights"
	idempotencyHeader = "Idempotency-Key"
	maxErrorBody      = 4 << 10
)

type ClientInterface interface {
	CreateRecord(ctx context.Context, record models.MeasurementRecord) (*CreatedRecord, error)
}

// CreatedRecord is the server's copy of a measurement.
type CreatedRecord struct {
	ID        string  `json:"_id"`
	UserID    string  `json:"userId"`
	Weight    float64 `json:"weight"`
	Notes     string  `json:"notes"`
	Timestamp string  `json:"timestamp"`
}

type createRequest struct {
	UserID    string  `json:"userId"`
	Weight    float64 `json:"weight"`
	Notes     string  `json:"notes"`
	Timestamp string  `json:"timestamp"`
}

// RemoteError is a non-2xx answer from the API.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote: unexpected status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client that sends conf.Remote.Token as a bearer token on
// every request. Without a token requests go out unauthenticated.
func NewClient(conf *structures.Config) ClientInterface {
	return newClient(conf, http.DefaultClient)
}

func newClient(conf *structures.Config, base *http.Client) *Client {
	httpClient := base
	if conf.Remote.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: conf.Remote.Token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, src)
	} else {
		copied := *base
		httpClient = &copied
	}
	httpClient.Timeout = conf.Remote.Timeout

	return &Client{
		baseURL: strings.TrimRight(conf.Remote.BaseURL, "/"),
		http:    httpClient,
	}
}

// CreateRecord posts one measurement. The record's local id is sent as the
// idempotency key so a retried upload is not stored twice.
func (c *Client) CreateRecord(ctx context.Context, record models.MeasurementRecord) (*CreatedRecord, error) {
	payload, err := json.Marshal(createRequest{
		UserID:    record.UserID,
		Weight:    record.Weight,
		Notes:     record.Notes,
		Timestamp: record.Timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("remote: encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if record.LocalID != "" {
		req.Header.Set(idempotencyHeader, record.LocalID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	created := &CreatedRecord{}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("remote: read response: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return created, nil
	}
	if err := json.Unmarshal(body, created); err != nil {
		return nil, fmt.Errorf("remote: decode response: %w", err)
	}
	return created, nil
}
