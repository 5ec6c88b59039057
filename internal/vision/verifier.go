package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Provider names accepted by New.
const (
	ProviderNone   = "none"
	ProviderGLM    = "glm"
	ProviderGemini = "gemini"
)

// ErrMalformedReply is returned when a model's answer does not say whether
// a signature is present.
var ErrMalformedReply = errors.New("malformed vision reply")

// Prompt is the instruction sent with every image. The reply format is
// parsed by ParseVerdict.
const Prompt = `Analyze this image:
1. Does it contain a handwritten signature? Printed text and dates do not count.
2. What does the signature say?

Answer in exactly this format:
Signature: yes/no
Content: <signature text, or empty>`

// Verdict is a parsed model answer.
type Verdict struct {
	// HasSignature reports whether the model saw a handwritten signature.
	HasSignature bool `json:"has_signature"`

	// Content is the model's transcription of the signature, if any.
	Content string `json:"content,omitempty"`

	// Raw is the unparsed reply.
	Raw string `json:"raw,omitempty"`
}

// Verifier checks an encoded image for a signature.
type Verifier interface {
	// Verify sends the image (PNG or JPEG bytes) to the model. mimeType is
	// "image/png" or "image/jpeg".
	Verify(ctx context.Context, image []byte, mimeType string) (Verdict, error)
}

// Config selects and configures a backend.
type Config struct {
	// Provider is "glm", "gemini" or "none".
	Provider string `yaml:"provider" json:"provider"`

	// APIKey authenticates requests. Usually set from the environment.
	APIKey string `yaml:"api_key" json:"-"`

	// BaseURL overrides the endpoint. Empty means the provider default.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Model overrides the model name. Empty means the provider default.
	Model string `yaml:"model" json:"model"`

	// Timeout bounds one request.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns a GLM configuration without an API key.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGLM,
		BaseURL:  DefaultGLMBaseURL,
		Model:    DefaultGLMModel,
		Timeout:  60 * time.Second,
	}
}

// New creates the verifier described by cfg. It returns nil and no error
// when verification is disabled: provider "none" or no API key.
func New(ctx context.Context, cfg Config) (Verifier, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" || provider == ProviderNone || cfg.APIKey == "" {
		return nil, nil
	}

	switch provider {
	case ProviderGLM:
		return NewGLMClient(cfg), nil
	case ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown vision provider: %q", cfg.Provider)
}

// ParseVerdict reads a reply in the Prompt format. Chinese replies
// ("有签名：是", "签名内容：...") are accepted too.
//
// The first non-empty line decides existence. Its value (after a colon, if
// any) must start with the word yes, true or 是 for a positive answer, or
// no, none, false or 否 for a negative one. Anything else, including hedged
// answers such as "not sure", is ErrMalformedReply.
func ParseVerdict(reply string) (Verdict, error) {
	v := Verdict{Raw: reply}

	lines := strings.Split(strings.TrimSpace(reply), "\n")
	first := ""
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			first = s
			break
		}
	}
	if first == "" {
		return v, fmt.Errorf("%w: empty reply", ErrMalformedReply)
	}

	answer := strings.ToLower(strings.Trim(valueAfterColon(first), " *`\"'"))
	switch {
	case hasAnyWord(answer, "yes", "true", "是的", "是", "有"):
		v.HasSignature = true
	case hasAnyWord(answer, "no", "none", "false", "否", "无", "没有"):
		v.HasSignature = false
	default:
		return v, fmt.Errorf("%w: %q", ErrMalformedReply, first)
	}

	for _, line := range lines {
		s := strings.TrimSpace(line)
		lower := strings.ToLower(s)
		if strings.HasPrefix(lower, "content") || strings.Contains(s, "签名内容") {
			v.Content = strings.TrimSpace(valueAfterColon(s))
			break
		}
	}
	return v, nil
}

// valueAfterColon returns the text after the first ASCII or full-width
// colon, or s itself when there is none.
func valueAfterColon(s string) string {
	idx := strings.IndexAny(s, ":：")
	if idx < 0 {
		return s
	}
	_, size := utf8.DecodeRuneInString(s[idx:])
	return strings.TrimSpace(s[idx+size:])
}

// hasAnyWord reports whether s starts with one of words as a whole word:
// the match must end the string or be followed by a non-letter.
func hasAnyWord(s string, words ...string) bool {
	for _, w := range words {
		if !strings.HasPrefix(s, w) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(s[len(w):])
		if next == utf8.RuneError || !unicode.IsLetter(next) {
			return true
		}
	}
	return false
}
