package vision

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when Config.Model is empty for the Gemini
// provider.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient asks Gemini through the genai SDK.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient creates a Gemini verifier. A non-empty BaseURL points the
// SDK at a different host, which tests use.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" && cfg.BaseURL != DefaultGLMBaseURL {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := cfg.Model
	if model == "" || model == DefaultGLMModel {
		model = DefaultGeminiModel
	}
	return &GeminiClient{client: client, model: model, timeout: cfg.Timeout}, nil
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.model
}

// Verify implements Verifier.
func (c *GeminiClient) Verify(ctx context.Context, image []byte, mimeType string) (Verdict, error) {
	if len(image) == 0 {
		return Verdict{}, fmt.Errorf("empty image")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(Prompt),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](glmTemperature),
		MaxOutputTokens: glmMaxTokens,
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return Verdict{}, fmt.Errorf("gemini request failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return Verdict{}, fmt.Errorf("no completion returned")
	}
	return ParseVerdict(text)
}
