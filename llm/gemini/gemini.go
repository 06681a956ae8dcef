// Package gemini implements llm.Provider against the Google AI Studio
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/skillsenselab/callinsight/errors"
	"github.com/skillsenselab/callinsight/llm"
)

const (
	// ProviderName is the registered name for the Gemini provider.
	ProviderName = "gemini"

	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 60 * time.Second
)

// Config holds configuration for the Gemini provider.
type Config struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	APIKey  string        `json:"api_key" yaml:"api_key"`
	Model   string        `json:"model" yaml:"model"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements llm.Provider using the Gemini HTTP API.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new Gemini provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Gemini API is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s?key=%s", p.cfg.BaseURL, p.cfg.Model, p.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Complete sends the prompt to generateContent and returns the raw text of
// the first candidate. No JSON validation happens here; that is the
// analysis engine's concern.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
	}
	if req.JSONResponse {
		payload.GenerationConfig = &generationConfig{ResponseMIMEType: "application/json"}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal generate payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.cfg.BaseURL, p.cfg.Model, p.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create generate request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.ExternalServiceError(ProviderName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, apperrors.ExternalServiceError(ProviderName,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode generate response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		// An absent completion is an invalid model output, not a transport
		// fault; callers handle it the same way as unparseable JSON.
		return nil, apperrors.MalformedOutput("",
			fmt.Errorf("response contained no candidates"))
	}

	return &llm.CompletionResponse{
		Content: out.Candidates[0].Content.Parts[0].Text,
		Model:   p.cfg.Model,
	}, nil
}

// --- internal Gemini API types ---

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}
