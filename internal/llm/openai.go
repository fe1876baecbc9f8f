package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// OpenAICompatConfig configures a client for any server exposing the OpenAI
// legacy completions API (llama.cpp, vLLM, LocalAI and friends). Raw causal
// models like gpt2 are served through this endpoint.
type OpenAICompatConfig struct {
	BaseURL     string
	APIKey      string
	HTTPClient  *http.Client
	MaxRetries  int
	BackoffBase time.Duration
}

type OpenAICompatClient struct {
	cfg OpenAICompatConfig
}

func NewOpenAICompat(cfg OpenAICompatConfig) *OpenAICompatClient {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 400 * time.Millisecond
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &OpenAICompatClient{cfg: cfg}
}

var _ Provider = (*OpenAICompatClient)(nil)

func (c *OpenAICompatClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	body, endpointURL, err := c.buildPayload(req)
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		text, retry, err := c.callOnce(ctx, endpointURL, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retry || attempt == c.cfg.MaxRetries {
			break
		}
		backoff := c.cfg.BackoffBase * (1 << attempt)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	return "", lastErr
}

// Ping lists the served models. A 2xx answer means the server is up and has
// finished loading weights.
func (c *OpenAICompatClient) Ping(ctx context.Context) error {
	pingURL, err := c.buildURL("/models")
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pingURL, nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ping status %d", resp.StatusCode)
	}
	return nil
}

func (c *OpenAICompatClient) buildPayload(req GenerateRequest) ([]byte, string, error) {
	endpointURL, err := c.buildURL("/completions")
	if err != nil {
		return nil, "", err
	}

	payload := map[string]any{
		"model":  req.Model,
		"prompt": req.Prompt,
	}
	if req.MaxLength > 0 {
		payload["max_tokens"] = req.MaxLength
	}
	if req.Temperature > 0 {
		payload["temperature"] = req.Temperature
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("marshal completion payload: %w", err)
	}
	return b, endpointURL, nil
}

func (c *OpenAICompatClient) callOnce(ctx context.Context, endpointURL string, body []byte) (text string, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", false, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return "", true, fmt.Errorf("backend temporary status %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false, fmt.Errorf("backend status %d", resp.StatusCode)
	}

	text, err = parseCompletion(respBody)
	if err != nil {
		return "", false, err
	}
	return text, false, nil
}

func (c *OpenAICompatClient) setAuth(req *http.Request) {
	if strings.TrimSpace(c.cfg.APIKey) != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}

func (c *OpenAICompatClient) buildURL(suffix string) (string, error) {
	base := strings.TrimSpace(c.cfg.BaseURL)
	if base == "" {
		return "", fmt.Errorf("base url is empty")
	}
	if strings.HasSuffix(base, suffix) {
		return base, nil
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + suffix
	return u.String(), nil
}

func parseCompletion(body []byte) (string, error) {
	var resp struct {
		Choices []struct {
			Text string `json:"text"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in completion response")
	}
	return resp.Choices[0].Text, nil
}
