package groq

import (
	"context"
	"fmt"
	"net/http"

	"github.com/conneroisu/groq-go"

	"slidegen/internal/deck"
	"slidegen/internal/llm"
	"slidegen/pkg/prompts"
)

var _ llm.Planner = (*Client)(nil)

// Client plans decks with a Groq chat model. Groq has no image models, so
// images always come from a separate generator.
type Client struct {
	client  *groq.Client
	model   groq.ChatModel
	prompts *prompts.Prompts
}

func NewClient(apiKey, model string, httpClient *http.Client, p *prompts.Prompts) (*Client, error) {
	var opts []groq.Opts
	if httpClient != nil {
		opts = append(opts, groq.WithClient(httpClient))
	}

	client, err := groq.NewClient(apiKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &Client{
		client:  client,
		model:   groq.ChatModel(model),
		prompts: p,
	}, nil
}

func (c *Client) GeneratePlan(ctx context.Context, req deck.Request) (*deck.Plan, error) {
	prompt, err := c.prompts.RenderPlan(llm.PlanParams(req))
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	resp, err := c.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: c.prompts.System.Planner},
			{Role: groq.RoleUser, Content: prompt},
		},
		ResponseFormat: &groq.ChatResponseFormat{
			Type: "json_object",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, fmt.Errorf("empty response")
	}

	plan, err := llm.DecodePlan(content)
	if err != nil {
		return nil, err
	}

	model := string(resp.Model)
	if model == "" {
		model = string(c.model)
	}
	plan.Usage = &deck.Usage{
		Model:        model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	return plan, nil
}
