// Package gateway is the thin typed client for the authoritative remote
// store. Every call returns a value-or-error pair and never panics across
// the boundary; network and server failures come back as ordinary error
// values for the sync manager to log and retry.
//
// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client issues CRUD calls against the remote store's HTTP surface.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	logger  *slog.Logger
}

// New returns a client for the remote store at baseURL. The request timeout
// bounds every call so a hung server cannot wedge a sync round forever.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
}

// errorEnvelope is the failure body shape: {"error": "<message>"}.
type errorEnvelope struct {
	Error string `json:"error"`
}

// do sends one request and decodes the response into out (when non-nil).
// Non-2xx statuses are turned into errors carrying the server's message.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorEnvelope
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
			return fmt.Errorf("server error: %s", envelope.Error)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
