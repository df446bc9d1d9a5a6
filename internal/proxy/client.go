package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"codesight/internal/apperr"

	"github.com/tidwall/gjson"
)

const DefaultURL = "http://localhost:8787/chat"

// Client calls a remote chat endpoint. It never retries.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{url: url, http: &http.Client{Timeout: timeout}}
}

func (c *Client) Chat(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", apperr.Transport("proxy unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", apperr.Transport("reading proxy response", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(raw, "error").String()
		if msg == "" {
			msg = fmt.Sprintf("proxy returned %d", resp.StatusCode)
		}
		if resp.StatusCode == http.StatusBadRequest {
			return "", apperr.Validation(msg)
		}
		return "", apperr.Upstream(msg, nil)
	}

	content := gjson.GetBytes(raw, "content")
	if !content.Exists() {
		return "", apperr.Upstream("malformed proxy response", nil)
	}
	if content.String() == "" {
		return NoResponse, nil
	}
	return content.String(), nil
}
