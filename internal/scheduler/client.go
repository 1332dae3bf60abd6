// Package scheduler calls the external AI appointment scheduler.
package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const DefaultURL = "https://llama-api-endpoint/schedule"

var ErrScheduler = errors.New("scheduler request failed")

// Client posts scheduling requests to the model endpoint.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a scheduler client for url
func NewClient(url string, httpClient *http.Client) *Client {
	if url == "" {
		url = DefaultURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{url: url, http: httpClient}
}

type scheduleRequest struct {
	UserID             string          `json:"userId"`
	AppointmentDetails json.RawMessage `json:"appointmentDetails"`
}

// Schedule asks the model to schedule an appointment and returns its reply as is.
func (c *Client) Schedule(ctx context.Context, userID string, details json.RawMessage) (json.RawMessage, error) {
	if len(details) == 0 {
		details = json.RawMessage("null")
	}
	payload, err := json.Marshal(scheduleRequest{UserID: userID, AppointmentDetails: details})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScheduler, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScheduler, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScheduler, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScheduler, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithFields(log.Fields{"status": resp.StatusCode, "user_id": userID}).Warn("Scheduler rejected request")
		return nil, fmt.Errorf("%w: status %d", ErrScheduler, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: reply is not JSON", ErrScheduler)
	}
	return body, nil
}
