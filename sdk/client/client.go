// Package client is the Go SDK for the Keyward client-facing verification
// API. It depends only on the standard library so applications embedding a
// license check do not inherit the server's dependency tree.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client calls the verification endpoints of a Keyward server on behalf of
// one team.
type Client struct {
	baseURL    string
	teamID     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client for the given server base URL and team id.
func NewClient(baseURL, teamID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		teamID:     teamID,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify performs a full license verification. The response carries the
// outcome in Result even when the license is rejected; a transport or
// decoding failure is returned as an error instead.
func (c *Client) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	resp, err := c.postVerification(ctx, "verify", req)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	return resp, nil
}

// Heartbeat refreshes an active session.
func (c *Client) Heartbeat(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	resp, err := c.postVerification(ctx, "heartbeat", req)
	if err != nil {
		return nil, fmt.Errorf("heartbeat: %w", err)
	}
	return resp, nil
}

// Classloader downloads a release artifact. On a rejected request the server
// answers with the usual JSON envelope, returned here as a *VerifyResponse
// with a nil file. The caller must close the file body when it is non-nil.
func (c *Client) Classloader(ctx context.Context, q ClassloaderQuery) (*ClassloaderFile, *VerifyResponse, error) {
	u := fmt.Sprintf("%s/v1/client/teams/%s/verification/classloader?%s",
		c.baseURL, url.PathEscape(c.teamID), q.encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("classloader: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("classloader: send request: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		size, _ := strconv.ParseInt(resp.Header.Get("X-File-Size"), 10, 64)
		file := &ClassloaderFile{
			Body:          resp.Body,
			FileSize:      size,
			ProductName:   resp.Header.Get("X-Product-Name"),
			ReleaseStatus: resp.Header.Get("X-Release-Status"),
			Version:       resp.Header.Get("X-Version"),
			LatestVersion: resp.Header.Get("X-Latest-Version"),
			MainClass:     resp.Header.Get("X-Main-Class"),
		}
		return file, nil, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("classloader: read response: %w", err)
	}

	var envelope VerifyResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("classloader: api error: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil, &envelope, nil
}

func (c *Client) postVerification(ctx context.Context, endpoint string, body VerifyRequest) (*VerifyResponse, error) {
	u := fmt.Sprintf("%s/v1/client/teams/%s/verification/%s",
		c.baseURL, url.PathEscape(c.teamID), endpoint)

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var envelope VerifyResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("api error: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return &envelope, nil
}

func (q ClassloaderQuery) encode() string {
	v := url.Values{}
	v.Set("licenseKey", q.LicenseKey)
	v.Set("productId", q.ProductID)
	v.Set("sessionKey", q.SessionKey)
	if q.CustomerID != "" {
		v.Set("customerId", q.CustomerID)
	}
	if q.Version != "" {
		v.Set("version", q.Version)
	}
	if q.Branch != "" {
		v.Set("branch", q.Branch)
	}
	if q.HardwareIdentifier != "" {
		v.Set("hardwareIdentifier", q.HardwareIdentifier)
	}
	return v.Encode()
}
