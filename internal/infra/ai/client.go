package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vhoang/mx-sentinel/internal/monitoring"
)

// rateLimitDelay is how long a 429 response pauses before the single
// retry the rate-limit policy allows.
const rateLimitDelay = 5 * time.Second

const systemPrompt = "You are a smart contract security auditor for MultiversX. " +
	"Review the provided contract source and respond with JSON only: " +
	`{"vulnerabilities":[{"type","risk_level","location","explanation","recommendation"}],"risk_score":0-100,"summary"}`

// Client implements Provider against an OpenAI-compatible chat
// completions endpoint.
type Client struct {
	url     string
	apiKey  string
	model   string
	timeout time.Duration
	client  *http.Client
}

// NewClient creates an AI review client. timeout bounds each review
// call and is visible to callers through context errors.
func NewClient(url, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		url:     url,
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// AnalyzeSource asks the provider for a vulnerability report. A 429
// triggers exactly one delayed retry; any other failure is returned to
// the caller, who treats it as "no opinion".
func (c *Client) AnalyzeSource(ctx context.Context, address, code string) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	monitoring.AICallsTotal.Inc()

	body, status, err := c.complete(ctx, address, code)
	if status == http.StatusTooManyRequests {
		monitoring.AIErrorsTotal.WithLabelValues("rate_limit").Inc()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(rateLimitDelay):
		}
		body, status, err = c.complete(ctx, address, code)
	}
	monitoring.AILatency.Observe(time.Since(start).Seconds())

	if err != nil {
		monitoring.AIErrorsTotal.WithLabelValues("network").Inc()
		return nil, fmt.Errorf("ai review failed: %w", err)
	}
	if status != http.StatusOK {
		monitoring.AIErrorsTotal.WithLabelValues("status").Inc()
		return nil, fmt.Errorf("ai provider returned %d", status)
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil || len(completion.Choices) == 0 {
		monitoring.AIErrorsTotal.WithLabelValues("malformed").Inc()
		return nil, nil // unusable response: no opinion
	}

	return Normalize([]byte(completion.Choices[0].Message.Content)), nil
}

func (c *Client) complete(ctx context.Context, address, code string) ([]byte, int, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Contract %s:\n\n%s", address, code)},
		},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(buf))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
