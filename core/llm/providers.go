// ABOUTME: Provider implementations for the external text-generation APIs
// ABOUTME: Each provider speaks its own wire format behind the same Generate contract

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	coreerrors "rssfilter-api/core/errors"
	"rssfilter-api/core/interfaces"
)

// ProviderConfig holds the settings one provider needs.
type ProviderConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	DeploymentID string // Azure only
	APIVersion   string // Azure only
}

// Provider generates text from a prompt against one external API.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// chatMessage is the role/content pair used by OpenAI-style APIs
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for OpenAI-compatible chat endpoints
type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// chatResponse is the response body for OpenAI-compatible chat endpoints
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// openAICompatProvider serves the providers that speak the OpenAI chat
// completions dialect: OpenAI itself and DeepSeek.
type openAICompatProvider struct {
	name string
	cfg  ProviderConfig
	http interfaces.HTTPClient
}

// NewOpenAI creates the OpenAI provider.
func NewOpenAI(cfg ProviderConfig, http interfaces.HTTPClient) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &openAICompatProvider{name: "openai", cfg: cfg, http: http}
}

// NewDeepSeek creates the DeepSeek provider.
func NewDeepSeek(cfg ProviderConfig, http interfaces.HTTPClient) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepseek.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	return &openAICompatProvider{name: "deepseek", cfg: cfg, http: http}
}

func (p *openAICompatProvider) Name() string { return p.name }

func (p *openAICompatProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.cfg.APIKey == "" {
		return "", &coreerrors.ProviderError{Provider: p.name, Reason: "API key not set"}
	}

	body := chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful assistant."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + p.cfg.APIKey,
	}

	var resp chatResponse
	if err := postJSON(ctx, p.http, p.name, p.cfg.BaseURL+"/chat/completions", body, headers, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &coreerrors.ProviderError{Provider: p.name, Reason: "response contained no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

// azureProvider speaks the Azure OpenAI deployment dialect.
type azureProvider struct {
	cfg  ProviderConfig
	http interfaces.HTTPClient
}

// NewAzure creates the Azure OpenAI provider.
func NewAzure(cfg ProviderConfig, http interfaces.HTTPClient) Provider {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2023-05-15"
	}
	return &azureProvider{cfg: cfg, http: http}
}

func (p *azureProvider) Name() string { return "azure" }

func (p *azureProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.cfg.APIKey == "" || p.cfg.BaseURL == "" || p.cfg.DeploymentID == "" {
		return "", &coreerrors.ProviderError{Provider: "azure", Reason: "endpoint, deployment id and API key must all be set"}
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		p.cfg.BaseURL, p.cfg.DeploymentID, p.cfg.APIVersion)

	body := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful assistant."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	}

	headers := map[string]string{
		"api-key": p.cfg.APIKey,
	}

	var resp chatResponse
	if err := postJSON(ctx, p.http, "azure", url, body, headers, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &coreerrors.ProviderError{Provider: "azure", Reason: "response contained no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

// geminiProvider speaks the Google Generative Language API dialect.
type geminiProvider struct {
	cfg  ProviderConfig
	http interfaces.HTTPClient
}

// NewGemini creates the Gemini provider.
func NewGemini(cfg ProviderConfig, http interfaces.HTTPClient) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-pro"
	}
	return &geminiProvider{cfg: cfg, http: http}
}

func (p *geminiProvider) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (p *geminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.cfg.APIKey == "" {
		return "", &coreerrors.ProviderError{Provider: "gemini", Reason: "API key not set"}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.cfg.BaseURL, p.cfg.Model, p.cfg.APIKey)

	var body geminiRequest
	body.Contents = []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}
	body.GenerationConfig.Temperature = 0.7

	var resp geminiResponse
	if err := postJSON(ctx, p.http, "gemini", url, body, nil, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &coreerrors.ProviderError{Provider: "gemini", Reason: "response contained no candidates"}
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// claudeProvider speaks the Anthropic messages dialect.
type claudeProvider struct {
	cfg  ProviderConfig
	http interfaces.HTTPClient
}

// NewClaude creates the Claude provider.
func NewClaude(cfg ProviderConfig, http interfaces.HTTPClient) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
	}
	return &claudeProvider{cfg: cfg, http: http}
}

func (p *claudeProvider) Name() string { return "claude" }

type claudeRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (p *claudeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.cfg.APIKey == "" {
		return "", &coreerrors.ProviderError{Provider: "claude", Reason: "API key not set"}
	}

	body := claudeRequest{
		Model:     p.cfg.Model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: 1000,
	}

	headers := map[string]string{
		"x-api-key":         p.cfg.APIKey,
		"anthropic-version": "2023-06-01",
	}

	var resp claudeResponse
	if err := postJSON(ctx, p.http, "claude", p.cfg.BaseURL+"/messages", body, headers, &resp); err != nil {
		return "", err
	}

	if len(resp.Content) == 0 {
		return "", &coreerrors.ProviderError{Provider: "claude", Reason: "response contained no content"}
	}
	return resp.Content[0].Text, nil
}

// ollamaProvider speaks the local Ollama generate dialect. No API key.
type ollamaProvider struct {
	cfg  ProviderConfig
	http interfaces.HTTPClient
}

// NewOllama creates the Ollama provider.
func NewOllama(cfg ProviderConfig, http interfaces.HTTPClient) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434/api"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3"
	}
	return &ollamaProvider{cfg: cfg, http: http}
}

func (p *ollamaProvider) Name() string { return "ollama" }

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (p *ollamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	body := ollamaRequest{Model: p.cfg.Model, Prompt: prompt}

	var resp ollamaResponse
	if err := postJSON(ctx, p.http, "ollama", p.cfg.BaseURL+"/generate", body, nil, &resp); err != nil {
		return "", err
	}

	return resp.Response, nil
}

// postJSON sends a JSON request and decodes a JSON response, mapping
// transport failures and non-2xx statuses to ProviderError.
func postJSON(ctx context.Context, client interfaces.HTTPClient, provider, url string, reqBody interface{}, headers map[string]string, respBody interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return &coreerrors.ProviderError{Provider: provider, Reason: fmt.Sprintf("failed to encode request: %v", err)}
	}

	resp, err := client.Post(ctx, url, bytes.NewReader(payload), headers)
	if err != nil {
		return &coreerrors.ProviderError{Provider: provider, Reason: err.Error()}
	}
	defer resp.Body().Close()

	data, err := io.ReadAll(resp.Body())
	if err != nil {
		return &coreerrors.ProviderError{Provider: provider, Reason: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &coreerrors.ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode(),
			Reason:     truncate(string(data), 200),
		}
	}

	if err := json.Unmarshal(data, respBody); err != nil {
		return &coreerrors.ProviderError{Provider: provider, Reason: fmt.Sprintf("failed to decode response: %v", err)}
	}

	return nil
}

// truncate caps a string for error messages
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
