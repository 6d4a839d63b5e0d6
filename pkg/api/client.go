// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-teamvault.
//
// go-teamvault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package api implements the REST client for the organization's vault
// server. Payloads are JSON wrapped in the server's response envelope; the
// private key and response fields travel as opaque armored blobs and are
// never interpreted here.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config holds the API client configuration.
type Config struct {
	// BaseURL is the server base URL, e.g. https://vault.example.com
	BaseURL string

	// Timeout is the per-request timeout (default: 30s)
	Timeout time.Duration

	// TLSInsecureSkipVerify disables certificate verification. Development
	// use only.
	TLSInsecureSkipVerify bool
}

// Client is the REST client for the vault server.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// ServerError is a non-2xx response from the server. Network and API
// failures propagate to callers unmodified.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server responded %d: %s", e.StatusCode, e.Message)
}

// envelope is the server's response wrapper.
type envelope struct {
	Header struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"header"`
	Body json.RawMessage `json:"body"`
}

// NewClient creates a new vault server client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}

	baseURL := cfg.BaseURL
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{}
	if cfg.TLSInsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
			MinVersion:         tls.VersionTLS12,
		}
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		baseURL: baseURL,
	}, nil
}

// doRequest performs an HTTP request and returns the envelope body.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("api: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: failed to read response body: %w", err)
	}

	var env envelope
	if len(data) > 0 {
		if err := json.Unmarshal(data, &env); err != nil {
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return nil, &ServerError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
			}
			return nil, fmt.Errorf("api: failed to decode response: %w", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := env.Header.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: message}
	}

	return env.Body, nil
}
