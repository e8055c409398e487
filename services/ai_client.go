package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"macrolog/apperror"
)

// AIClient completes a single system+user exchange and returns the raw text reply.
type AIClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const defaultAITimeout = 60 * time.Second

// GatewayClient talks to an OpenAI-compatible chat completions endpoint.
type GatewayClient struct {
	url    string
	apiKey string
	model  string
	client *http.Client
}

func NewGatewayClient(url, apiKey, model string) *GatewayClient {
	return &GatewayClient{
		url:    url,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: defaultAITimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *GatewayClient) Complete(ctx context.Context, system, user string) (string, error) {
	if g.apiKey == "" {
		return "", apperror.Upstream("AI gateway", fmt.Errorf("AI_API_KEY is not configured"))
	}
	b, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", apperror.Upstream("AI gateway", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperror.Upstream("AI gateway", err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return "", apperror.RateLimited()
	case http.StatusPaymentRequired:
		return "", apperror.PaymentRequired()
	default:
		return "", apperror.Upstream("AI gateway", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", apperror.Upstream("AI gateway", fmt.Errorf("decode chat response: %w", err))
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", apperror.Upstream("AI gateway", fmt.Errorf("empty completion"))
	}
	return cr.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
