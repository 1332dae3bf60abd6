// Package domains manages tenant domains on the hosting provider's project.
package domains

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/ratelimit"
)

const (
	DefaultBaseURL = "https://api.vercel.com"

	cacheTTL        = 5 * time.Minute
	requestsAllowed = 100
	requestWindow   = 15 * time.Minute
)

var (
	ErrRateLimited   = errors.New("vercel API rate limit reached")
	ErrRequest       = errors.New("vercel API request failed")
	ErrInvalidReply  = errors.New("vercel API returned an unexpected payload")
	ErrNotConfigured = errors.New("vercel API is not configured")
)

// Domain is a domain attached to the hosting project.
type Domain struct {
	Name               string  `json:"name" validate:"required"`
	ApexName           string  `json:"apexName" validate:"required"`
	ProjectID          string  `json:"projectId" validate:"required"`
	Redirect           *string `json:"redirect"`
	RedirectStatusCode *int    `json:"redirectStatusCode"`
	GitBranch          *string `json:"gitBranch"`
	UpdatedAt          int64   `json:"updatedAt,omitempty"`
	CreatedAt          int64   `json:"createdAt,omitempty"`
	Verified           bool    `json:"verified"`
}

// Config holds the credentials of the hosting project.
type Config struct {
	BaseURL   string
	Token     string
	TeamID    string
	ProjectID string
}

// Client talks to the hosting provider's domain API. Requests are limited to
// 100 per 15 minutes; listings are cached for 5 minutes.
type Client struct {
	cfg      Config
	http     *http.Client
	cache    *cache.Cache
	limiter  *ratelimit.Window
	validate *validator.Validate
}

// NewClient creates a domain client. Token, team and project are required.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.Token == "" || cfg.TeamID == "" || cfg.ProjectID == "" {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		cfg:      cfg,
		http:     httpClient,
		cache:    cache.New(cacheTTL, 2*cacheTTL),
		limiter:  ratelimit.New(requestsAllowed, requestWindow),
		validate: validator.New(),
	}, nil
}

// CreateSubdomain attaches <subdomain>.<domain> to the project.
func (c *Client) CreateSubdomain(ctx context.Context, subdomain, domain string) (*Domain, error) {
	fullDomain := subdomain + "." + domain
	log.WithFields(log.Fields{"subdomain": subdomain, "domain": domain}).Info("Creating subdomain")

	var created Domain
	endpoint := fmt.Sprintf("/v10/projects/%s/domains", url.PathEscape(c.cfg.ProjectID))
	if err := c.do(ctx, http.MethodPost, endpoint, map[string]string{"name": fullDomain}, &created); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(created); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}
	c.cache.Flush()
	return &created, nil
}

// VerifyDomain asks the provider to verify a project domain.
func (c *Client) VerifyDomain(ctx context.Context, domain string) error {
	log.WithField("domain", domain).Info("Verifying domain")

	endpoint := fmt.Sprintf("/v9/projects/%s/domains/%s/verify", url.PathEscape(c.cfg.ProjectID), url.PathEscape(domain))
	if err := c.do(ctx, http.MethodPost, endpoint, nil, nil); err != nil {
		return err
	}
	c.cache.Flush()
	return nil
}

// ListDomains lists the project domains.
func (c *Client) ListDomains(ctx context.Context) ([]Domain, error) {
	endpoint := fmt.Sprintf("/v9/projects/%s/domains", url.PathEscape(c.cfg.ProjectID))
	key := http.MethodGet + ":" + endpoint
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]Domain), nil
	}

	log.Info("Listing domains")
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, err
	}

	domains, err := decodeDomainList(raw)
	if err != nil {
		return nil, err
	}
	for i := range domains {
		if err := c.validate.Struct(domains[i]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidReply, err)
		}
	}

	c.cache.Set(key, domains, cache.DefaultExpiration)
	return domains, nil
}

// DeleteDomain removes a domain from the project.
func (c *Client) DeleteDomain(ctx context.Context, domain string) error {
	log.WithField("domain", domain).Info("Deleting domain")

	endpoint := fmt.Sprintf("/v9/projects/%s/domains/%s", url.PathEscape(c.cfg.ProjectID), url.PathEscape(domain))
	if err := c.do(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return err
	}
	c.cache.Flush()
	return nil
}

// decodeDomainList accepts both a bare array and the {"domains": [...]} envelope.
func decodeDomainList(raw json.RawMessage) ([]Domain, error) {
	var envelope struct {
		Domains []Domain `json:"domains"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Domains != nil {
		return envelope.Domains, nil
	}
	var list []Domain
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}
	return list, nil
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func (e apiError) message() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}
	return e.Message
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	if !c.limiter.Allow(c.cfg.ProjectID) {
		log.WithField("endpoint", endpoint).Warn("Vercel API rate limit reached")
		return ErrRateLimited
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	u, err := url.Parse(c.cfg.BaseURL + endpoint)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("teamId", c.cfg.TeamID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).WithField("endpoint", endpoint).Error("Vercel API request failed")
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		message := apiErr.message()
		if message == "" {
			message = resp.Status
		}
		log.WithFields(log.Fields{"status": resp.StatusCode, "endpoint": endpoint, "error": message}).Error("Vercel API request failed")
		return fmt.Errorf("%w: %s", ErrRequest, message)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}
	return nil
}
