package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"slidegen/internal/deck"
	"slidegen/internal/llm"
	"slidegen/pkg/prompts"
)

const (
	baseURL        = "https://api.deepseek.com/v1/chat/completions"
	defaultTimeout = 2 * time.Minute
	roleSystem     = "system"
	roleUser       = "user"
)

var _ llm.Planner = (*Client)(nil)

type Client struct {
	apiKey     string
	httpClient *http.Client
	model      string
	prompts    *prompts.Prompts
	baseURL    string
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Options struct {
	Model      string
	HTTPClient *http.Client
}

type responseFormat struct {
	Type string `json:"type"`
}

type request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type response struct {
	ID      string    `json:"id"`
	Model   string    `json:"model"`
	Choices []choice  `json:"choices"`
	Usage   *usage    `json:"usage,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type choice struct {
	Message Message `json:"message"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func NewClient(apiKey string, opts Options, p *prompts.Prompts) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: httpClient,
		model:      opts.Model,
		prompts:    p,
		baseURL:    baseURL,
	}
}

func (c *Client) GeneratePlan(ctx context.Context, req deck.Request) (*deck.Plan, error) {
	prompt, err := c.prompts.RenderPlan(llm.PlanParams(req))
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	data, err := json.Marshal(request{
		Model: c.model,
		Messages: []Message{
			{Role: roleSystem, Content: c.prompts.System.Planner},
			{Role: roleUser, Content: prompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	body, err := c.doRequest(ctx, data)
	if err != nil {
		return nil, err
	}

	resp, content, err := c.parseResponse(body)
	if err != nil {
		return nil, err
	}

	plan, err := llm.DecodePlan(content)
	if err != nil {
		return nil, err
	}

	if resp.Usage != nil {
		model := resp.Model
		if model == "" {
			model = c.model
		}
		plan.Usage = &deck.Usage{
			Model:        model,
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		}
	}
	return plan, nil
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) doRequest(ctx context.Context, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func (c *Client) parseResponse(data []byte) (*response, string, error) {
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, "", fmt.Errorf("parse response: %w", err)
	}

	if resp.Error != nil {
		return nil, "", fmt.Errorf("deepseek error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return nil, "", fmt.Errorf("no response choices")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, "", fmt.Errorf("empty response")
	}
	return &resp, content, nil
}
