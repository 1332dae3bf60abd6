// Package vehicles looks up vehicle details by VIN.
package vehicles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const DefaultURL = "https://vehicle-details-api.com/vehicle-details"

var ErrLookup = errors.New("failed to fetch vehicle details")

// Client fetches vehicle details from the lookup service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a lookup client for baseURL
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: httpClient}
}

// Details returns the lookup service's JSON object for vin untouched.
func (c *Client) Details(ctx context.Context, vin string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(vin), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w for VIN %s: %v", ErrLookup, vin, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithFields(log.Fields{"vin": vin, "status": resp.StatusCode}).Warn("Vehicle details lookup failed")
		return nil, fmt.Errorf("%w for VIN %s: status %d", ErrLookup, vin, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w for VIN %s: %v", ErrLookup, vin, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w for VIN %s: reply is not JSON", ErrLookup, vin)
	}
	return body, nil
}
