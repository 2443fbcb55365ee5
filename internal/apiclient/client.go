// Package apiclient talks to the site's REST endpoints. It backs the form
// controller when FORM_GATEWAY=http and the portfolio CLI.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ibcoder/portfolio/internal/api"
	"github.com/ibcoder/portfolio/internal/domain"
)

// Client is an HTTP implementation of form.Gateway.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SignUp(ctx context.Context, req api.SignUpRequest) (api.Reply, error) {
	var reply api.Reply
	err := c.do(ctx, http.MethodPost, "/api/users/signup", req, &reply)
	return reply, err
}

func (c *Client) Verify(ctx context.Context, req api.VerifyRequest) (api.Reply, error) {
	var reply api.Reply
	err := c.do(ctx, http.MethodPost, "/api/users/verify", req, &reply)
	return reply, err
}

func (c *Client) Contact(ctx context.Context, req api.ContactRequest) (api.Reply, error) {
	var reply api.Reply
	err := c.do(ctx, http.MethodPost, "/api/users/contact", req, &reply)
	return reply, err
}

func (c *Client) ForgotPassword(ctx context.Context, req api.ForgotPasswordRequest) (api.Reply, error) {
	var reply api.Reply
	err := c.do(ctx, http.MethodPost, "/api/users/forgot-password", req, &reply)
	return reply, err
}

// ListUsers calls GET /api/users.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var body struct {
		Users []domain.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &body); err != nil {
		return nil, err
	}
	return body.Users, nil
}

// CreateUser calls POST /api/users.
func (c *Client) CreateUser(ctx context.Context, req api.SignUpRequest) (*domain.User, error) {
	var body struct {
		User domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users", req, &body); err != nil {
		return nil, err
	}
	return &body.User, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var env api.ErrorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.Error.Message == "" {
			env.Error.Message = http.StatusText(resp.StatusCode)
		}
		return &api.StatusError{Status: resp.StatusCode, Body: env.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
