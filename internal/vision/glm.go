package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GLM defaults.
const (
	DefaultGLMBaseURL = "https://open.bigmodel.cn/api/paas/v4"
	DefaultGLMModel   = "glm-4v-flash"
)

const (
	glmMaxTokens   = 256
	glmTemperature = 0.1
)

// GLMClient talks to an OpenAI-compatible chat-completions endpoint with
// image input.
type GLMClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewGLMClient creates a client. Empty BaseURL and Model fall back to the
// GLM defaults; a zero Timeout means 60 seconds.
func NewGLMClient(cfg Config) *GLMClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultGLMBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGLMModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GLMClient{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Model returns the configured model name.
func (c *GLMClient) Model() string {
	return c.model
}

type glmRequest struct {
	Model       string       `json:"model"`
	Messages    []glmMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature"`
}

type glmMessage struct {
	Role    string       `json:"role"`
	Content []glmContent `json:"content"`
}

type glmContent struct {
	Type     string       `json:"type"`
	Text     string       `json:"text,omitempty"`
	ImageURL *glmImageURL `json:"image_url,omitempty"`
}

type glmImageURL struct {
	URL string `json:"url"`
}

type glmResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Verify implements Verifier.
func (c *GLMClient) Verify(ctx context.Context, image []byte, mimeType string) (Verdict, error) {
	if len(image) == 0 {
		return Verdict{}, fmt.Errorf("empty image")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	reqBody := glmRequest{
		Model: c.model,
		Messages: []glmMessage{{
			Role: "user",
			Content: []glmContent{
				{Type: "image_url", ImageURL: &glmImageURL{URL: dataURL}},
				{Type: "text", Text: Prompt},
			},
		}},
		MaxTokens:   glmMaxTokens,
		Temperature: glmTemperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Verdict{}, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var parsed glmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Verdict{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return Verdict{}, fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return Verdict{}, fmt.Errorf("no completion returned")
	}

	return ParseVerdict(parsed.Choices[0].Message.Content)
}
