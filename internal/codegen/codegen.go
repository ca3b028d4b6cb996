// Package codegen generates helper scripts for the current pipeline by
// calling an OpenAI-compatible chat completions endpoint.
package codegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/evrenbal/mlforge/internal/backend"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai"
	DefaultModel   = "mixtral-8x7b-32768"
	DefaultTimeout = 60 * time.Second
)

// Language selects the output language of generated code.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
)

// Valid reports whether l is a supported output language.
func (l Language) Valid() bool {
	switch l {
	case LangPython, LangJavaScript, LangTypeScript:
		return true
	}
	return false
}

// Config holds the completion endpoint settings.
type Config struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the Groq-hosted defaults. The API key must be
// supplied by the caller.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Model:   DefaultModel,
		Timeout: DefaultTimeout,
	}
}

// Validate checks the config for usable values.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return backend.NewPreconditionError("code generation requires an API key; set codegen.api_key or MLFORGE_CODEGEN_API_KEY")
	}
	if c.BaseURL == "" {
		return backend.NewPreconditionError("code generation base URL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return backend.NewPreconditionError(fmt.Sprintf("invalid code generation base URL: %v", err))
	}
	if c.Model == "" {
		return backend.NewPreconditionError("code generation model is required")
	}
	return nil
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
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generator turns a natural-language prompt into code.
type Generator struct {
	config  *Config
	client  *http.Client
	baseURL *url.URL
}

// New creates a generator from the given config. A nil config uses the
// defaults, which fail validation without an API key.
func New(config *Config) (*Generator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, backend.NewPreconditionError(fmt.Sprintf("invalid code generation base URL: %v", err))
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Generator{
		config:  config,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}, nil
}

// Generate produces code in the given language from the prompt. An
// empty prompt fails before any network call.
func (g *Generator) Generate(ctx context.Context, prompt string, lang Language) (string, error) {
	if prompt == "" {
		return "", backend.NewPreconditionError("Please provide a prompt")
	}
	if !lang.Valid() {
		return "", backend.NewPreconditionError(fmt.Sprintf("unsupported language %q", lang))
	}

	req := chatRequest{
		Model: g.config.Model,
		Messages: []chatMessage{
			{
				Role: "system",
				Content: fmt.Sprintf("You are an expert programmer. Generate clean, well-documented %s code based on the user's request. Include comments explaining the code.", lang),
			},
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", backend.NewTransportError("/v1/chat/completions", "failed to encode request", err)
	}

	endpoint := g.baseURL.JoinPath("/v1/chat/completions")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return "", backend.NewTransportError("/v1/chat/completions", "failed to create request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", backend.NewTransportError("/v1/chat/completions", "completion request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var apiErr chatError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return "", backend.NewRemoteError("/v1/chat/completions", apiErr.Error.Message, resp.StatusCode)
		}
		return "", backend.NewRemoteError("/v1/chat/completions", fmt.Sprintf("request failed with status %d", resp.StatusCode), resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", backend.NewTransportError("/v1/chat/completions", "failed to decode response", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", backend.NewRemoteError("/v1/chat/completions", "completion returned no choices", resp.StatusCode)
	}

	return chatResp.Choices[0].Message.Content, nil
}
