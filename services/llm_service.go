package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/itish2003/searchdoc/config"
	"github.com/itish2003/searchdoc/metrics"
	"github.com/itish2003/searchdoc/models"
)

var (
	ErrProviderNotConfigured = errors.New("llm: provider not configured")
	ErrEmptyCompletion       = errors.New("llm: model returned no content")
)

// LLMService produces a cited answer for a question over search context.
type LLMService interface {
	Answer(ctx context.Context, req models.AnswerRequest) (string, error)
}

// completionProvider is one model backend.
type completionProvider interface {
	Name() string
	Complete(ctx context.Context, model, prompt string, maxTokens int) (string, error)
}

// modelRouter picks a provider by model name: "gemini*" goes to Gemini,
// everything else to OpenAI.
type modelRouter struct {
	defaultModel string
	gemini       completionProvider
	openai       completionProvider
}

func (r modelRouter) route(model string) (completionProvider, string, error) {
	if model == "" {
		model = r.defaultModel
	}
	p := r.openai
	if strings.HasPrefix(strings.ToLower(model), "gemini") {
		p = r.gemini
	}
	if p == nil {
		return nil, model, fmt.Errorf("%w for model %q", ErrProviderNotConfigured, model)
	}
	return p, model, nil
}

// LLMClient implements LLMService over the configured providers.
type LLMClient struct {
	router         modelRouter
	maxTokens      int
	splitter       textsplitter.TextSplitter
	prependContext bool
	log            *zap.Logger
}

// NewLLMClient registers a provider for each API key present. A missing key
// only fails requests routed to that provider.
func NewLLMClient(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (*LLMClient, error) {
	router := modelRouter{defaultModel: cfg.DefaultModel}

	if cfg.OpenAIKey != "" {
		opts := []openai.Option{openai.WithToken(cfg.OpenAIKey)}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai client: %w", err)
		}
		router.openai = &openAIProvider{llm: llm}
	}

	if cfg.GeminiKey != "" {
		cc := &genai.ClientConfig{APIKey: cfg.GeminiKey, Backend: genai.BackendGeminiAPI}
		if cfg.GeminiBaseURL != "" {
			cc.HTTPOptions.BaseURL = cfg.GeminiBaseURL
		}
		client, err := genai.NewClient(ctx, cc)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		router.gemini = &geminiProvider{client: client}
	}

	if router.openai == nil && router.gemini == nil {
		log.Warn("no language model API keys configured; /analyze will fail until one is set")
	}

	return newLLMClient(router, cfg, log), nil
}

func newLLMClient(router modelRouter, cfg config.LLMConfig, log *zap.Logger) *LLMClient {
	return &LLMClient{
		router:    router,
		maxTokens: cfg.MaxTokens,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.MaxContextChars),
			textsplitter.WithChunkOverlap(0),
		),
		prependContext: cfg.PrependContext,
		log:            log,
	}
}

// Answer sends the prompt to the routed provider. When context prepending is
// on, the raw answer starts with the full search context followed by a blank
// line.
func (c *LLMClient) Answer(ctx context.Context, req models.AnswerRequest) (string, error) {
	provider, model, err := c.router.route(req.Model)
	if err != nil {
		return "", err
	}

	bounded, err := c.boundContext(req.Context)
	if err != nil {
		return "", err
	}
	prompt := BuildAnswerPrompt(req.Question, bounded, req.Citations)

	c.log.Info("sending request to language model",
		zap.String("provider", provider.Name()),
		zap.String("model", model),
		zap.Int("prompt_chars", len(prompt)))

	start := time.Now()
	out, err := provider.Complete(ctx, model, prompt, c.maxTokens)
	elapsed := time.Since(start).Seconds()
	if err == nil && strings.TrimSpace(out) == "" {
		err = ErrEmptyCompletion
	}
	if err != nil {
		metrics.RecordLLM(provider.Name(), "error", elapsed)
		c.log.Error("language model request failed", zap.String("model", model), zap.Error(err))
		return "", fmt.Errorf("failed to query %s: %w", provider.Name(), err)
	}
	metrics.RecordLLM(provider.Name(), "success", elapsed)
	c.log.Info("language model request successful", zap.String("model", model), zap.Int("answer_chars", len(out)))

	if c.prependContext {
		return req.Context + "\n\n" + out, nil
	}
	return out, nil
}

// boundContext keeps the first splitter chunk so the prompt stays within
// the configured character budget.
func (c *LLMClient) boundContext(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	chunks, err := c.splitter.SplitText(s)
	if err != nil {
		return "", fmt.Errorf("failed to split search context: %w", err)
	}
	if len(chunks) == 0 {
		return "", nil
	}
	return chunks[0], nil
}

type openAIProvider struct {
	llm llms.Model
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) Complete(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	resp, err := p.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		},
		llms.WithModel(model),
		llms.WithTemperature(0),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Content, nil
}

type geminiProvider struct {
	client *genai.Client
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Complete(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	result, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: GetSystemPrompt(),
		Temperature:       genai.Ptr[float32](0),
		MaxOutputTokens:   int32(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", ErrEmptyCompletion
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}
