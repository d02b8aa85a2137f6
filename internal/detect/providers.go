package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	genai "google.golang.org/genai"

	"github.com/odvcencio/via/internal/config"
)

// ollamaAPIKey is sent to Ollama's OpenAI-compatible endpoint, which ignores it.
const ollamaAPIKey = "ollama"

// anthropicMaxTokens bounds a detection answer; the JSON listing of modules is small.
const anthropicMaxTokens = 4096

// NewGenerator returns the Generator for cfg.Provider. Hosted providers need an API key.
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case config.ProviderGoogle:
		return NewGenAIGenerator(ctx, cfg)
	case config.ProviderAnthropic:
		return NewAnthropicGenerator(cfg)
	default:
		return NewOpenAIGenerator(cfg)
	}
}

// GenAIGenerator calls the Gemini API through the official genai client.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAIGenerator builds a Gemini client for cfg. cfg must carry an API key.
func NewGenAIGenerator(ctx context.Context, cfg *config.Config) (*GenAIGenerator, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	clientConfig := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	cli, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIGenerator{client: cli, model: cfg.Model}, nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: user}}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrInvalidResponse)
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// OpenAIGenerator calls a chat completions endpoint. It serves OpenAI and, through the
// OpenAI-compatible /v1 API, a local Ollama server.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator builds a chat completions client for an openai or ollama cfg.
func NewOpenAIGenerator(cfg *config.Config) (*OpenAIGenerator, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	apiKey := cfg.APIKey
	baseURL := cfg.BaseURL
	if cfg.Provider == config.ProviderOllama {
		apiKey = ollamaAPIKey
		baseURL = ollamaEndpoint(baseURL)
	}

	opts := []openaioption.RequestOption{openaioption.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, openaioption.WithBaseURL(withTrailingSlash(baseURL)))
	}
	return &OpenAIGenerator{client: openai.NewClient(opts...), model: cfg.Model}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrInvalidResponse)
	}
	return completion.Choices[0].Message.Content, nil
}

// AnthropicGenerator calls the Anthropic Messages API.
type AnthropicGenerator struct {
	client anthropic.Client
	model  string
}

// NewAnthropicGenerator builds a Messages client for cfg. cfg must carry an API key.
func NewAnthropicGenerator(cfg *config.Config) (*AnthropicGenerator, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	opts := []anthropicoption.RequestOption{anthropicoption.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(withTrailingSlash(cfg.BaseURL)))
	}
	return &AnthropicGenerator{client: anthropic.NewClient(opts...), model: cfg.Model}, nil
}

func (g *AnthropicGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: anthropicMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrInvalidResponse)
	}
	return sb.String(), nil
}

// ollamaEndpoint maps an Ollama server URL onto its OpenAI-compatible /v1 API.
func ollamaEndpoint(baseURL string) string {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = config.DefaultOllamaBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}
	return baseURL
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
