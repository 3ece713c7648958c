package gemini

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"slidegen/internal/deck"
	"slidegen/internal/llm"
	"slidegen/pkg/prompts"
)

var (
	_ llm.Planner        = (*Client)(nil)
	_ llm.ImageGenerator = (*Client)(nil)
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	models     contentGenerator
	model      string
	imageModel string
	prompts    *prompts.Prompts
	dailyLimit int
	usageFile  string
}

type Options struct {
	APIKey     string
	Model      string
	ImageModel string
	HTTPClient *http.Client
	// DailyLimit caps requests per calendar day; zero disables the cap.
	DailyLimit int
	UsageFile  string
}

var slideSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":        {Type: genai.TypeString, Description: "Slide title"},
		"content":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Bullet points"},
		"layout":       {Type: genai.TypeString, Enum: layoutNames(), Description: "Slide layout"},
		"image_prompt": {Type: genai.TypeString, Description: "English image description, empty when no image is needed"},
	},
	Required: []string{"title", "content", "layout"},
}

var planSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"theme_id":          {Type: genai.TypeString, Enum: deck.ThemeIDs(), Description: "Theme that fits the topic"},
		"background_prompt": {Type: genai.TypeString, Description: "English prompt for a subtle deck background"},
		"slides":            {Type: genai.TypeArray, Items: slideSchema},
	},
	Required: []string{"theme_id", "slides"},
}

func layoutNames() []string {
	names := make([]string, len(deck.Layouts))
	for i, l := range deck.Layouts {
		names[i] = string(l)
	}
	return names
}

func NewClient(ctx context.Context, opts Options, p *prompts.Prompts) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		models:     client.Models,
		model:      opts.Model,
		imageModel: opts.ImageModel,
		prompts:    p,
		dailyLimit: opts.DailyLimit,
		usageFile:  opts.UsageFile,
	}, nil
}

func (c *Client) GeneratePlan(ctx context.Context, req deck.Request) (*deck.Plan, error) {
	prompt, err := c.prompts.RenderPlan(llm.PlanParams(req))
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: c.prompts.System.Planner}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   planSchema,
	}

	resp, err := c.call(ctx, c.model, prompt, config)
	if err != nil {
		return nil, err
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}

	plan, err := llm.DecodePlan(text)
	if err != nil {
		return nil, err
	}
	plan.Usage = usage(c.model, resp)
	return plan, nil
}

func (c *Client) GenerateImage(ctx context.Context, prompt string, kind llm.ImageKind) (*deck.Image, error) {
	params := prompts.ImageParams{Prompt: prompt}

	var rendered string
	var err error
	if kind == llm.ImageKindBackground {
		rendered, err = c.prompts.RenderBackgroundImage(params)
	} else {
		rendered, err = c.prompts.RenderSlideImage(params)
	}
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if c.prompts.System.Image != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: c.prompts.System.Image}},
		}
	}

	resp, err := c.call(ctx, c.imageModel, rendered, config)
	if err != nil {
		return nil, err
	}
	return inlineImage(resp), nil
}

func (c *Client) call(ctx context.Context, model, userPrompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if err := c.checkUsage(); err != nil {
		return nil, err
	}

	resp, err := c.models.GenerateContent(ctx, model, genai.Text(userPrompt), config)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	c.incrementUsage()

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response")
	}
	return resp, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func inlineImage(resp *genai.GenerateContentResponse) *deck.Image {
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &deck.Image{
				Data:     part.InlineData.Data,
				MIMEType: part.InlineData.MIMEType,
			}
		}
	}
	return nil
}

func usage(model string, resp *genai.GenerateContentResponse) *deck.Usage {
	if resp.UsageMetadata == nil {
		return nil
	}
	if resp.ModelVersion != "" {
		model = resp.ModelVersion
	}
	return &deck.Usage{
		Model:        model,
		InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
	}
}

func (c *Client) checkUsage() error {
	if c.dailyLimit <= 0 || c.usageFile == "" {
		return nil
	}

	date, count := c.readUsage()
	today := time.Now().Format("2006-01-02")

	if date != today {
		return nil
	}
	if count >= c.dailyLimit {
		return fmt.Errorf("daily limit of %d requests reached, resets tomorrow", c.dailyLimit)
	}
	return nil
}

func (c *Client) incrementUsage() {
	if c.dailyLimit <= 0 || c.usageFile == "" {
		return
	}

	date, count := c.readUsage()
	today := time.Now().Format("2006-01-02")

	if date != today {
		count = 0
	}
	count++

	_ = os.WriteFile(c.usageFile, []byte(fmt.Sprintf("%s:%d", today, count)), 0644)
}

func (c *Client) readUsage() (string, int) {
	data, err := os.ReadFile(c.usageFile)
	if err != nil {
		return "", 0
	}
	parts := strings.Split(string(data), ":")
	if len(parts) != 2 {
		return "", 0
	}
	count, _ := strconv.Atoi(parts[1])
	return parts[0], count
}
