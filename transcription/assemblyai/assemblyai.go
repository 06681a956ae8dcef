// Package assemblyai implements transcription.Provider against the
// AssemblyAI REST API: upload local audio, submit a transcription job, then
// poll until the provider reaches a terminal status.
package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	apperrors "github.com/skillsenselab/callinsight/errors"
	"github.com/skillsenselab/callinsight/logger"
	"github.com/skillsenselab/callinsight/transcript"
	"github.com/skillsenselab/callinsight/transcription"
)

const (
	// ProviderName is the registered name for the AssemblyAI provider.
	ProviderName = "assemblyai"

	defaultBaseURL        = "https://api.assemblyai.com/v2"
	defaultPollInterval   = 5 * time.Second
	defaultRequestTimeout = 60 * time.Second

	statusCompleted = "completed"
	statusError     = "error"
)

// Config holds configuration for the AssemblyAI transcription provider.
type Config struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	APIKey  string        `json:"api_key" yaml:"api_key"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// PollInterval is the fixed delay between job-status polls.
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
	// PollTimeout bounds the whole poll loop. Zero waits indefinitely;
	// the caller's context is then the only bound.
	PollTimeout time.Duration `json:"poll_timeout" yaml:"poll_timeout"`
}

// Provider implements transcription.Provider using the AssemblyAI HTTP API.
type Provider struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger
}

// NewProvider creates a new AssemblyAI transcription provider.
func NewProvider(cfg Config, log *logger.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.WithComponent("assemblyai"),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the AssemblyAI API is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/transcript", nil)
	if err != nil {
		return false
	}
	req.Header.Set("authorization", p.cfg.APIKey)
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// Transcribe resolves the audio source, submits a transcription job, and
// polls until the provider reports completed or error.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcript.TranscriptionResult, error) {
	audioURL, err := p.resolveSource(ctx, req.AudioSource)
	if err != nil {
		return nil, err
	}

	jobID, err := p.submit(ctx, audioURL, req)
	if err != nil {
		return nil, err
	}
	p.log.Debug("transcription job submitted", logger.Fields("provider_job_id", jobID))

	if p.cfg.PollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.PollTimeout)
		defer cancel()
	}

	result, err := p.poll(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return toTranscriptionResult(result), nil
}

// resolveSource turns a local path or URL into a provider-reachable URL.
func (p *Provider) resolveSource(ctx context.Context, source string) (string, error) {
	if _, err := os.Stat(source); err == nil {
		return p.upload(ctx, source)
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return source, nil
	}
	return "", apperrors.SourceNotFound(source)
}

// upload streams a local file to AssemblyAI storage and returns the URL.
func (p *Provider) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperrors.SourceNotFound(path).WithCause(err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/upload", f)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("authorization", p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", apperrors.ExternalServiceError(ProviderName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return out.UploadURL, nil
}

// submit creates the provider-side transcription job and returns its id.
func (p *Provider) submit(ctx context.Context, audioURL string, req transcription.Request) (string, error) {
	payload := submitRequest{
		AudioURL:      audioURL,
		SpeakerLabels: req.SpeakerLabels,
		LanguageCode:  req.Language,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal submit payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/transcript", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create submit request: %w", err)
	}
	httpReq.Header.Set("authorization", p.cfg.APIKey)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", apperrors.ExternalServiceError(ProviderName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	var out transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	return out.ID, nil
}

// poll fetches job status at a fixed interval until a terminal status.
func (p *Provider) poll(ctx context.Context, jobID string) (*transcriptResponse, error) {
	endpoint := fmt.Sprintf("%s/transcript/%s", p.cfg.BaseURL, jobID)
	for {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create poll request: %w", err)
		}
		httpReq.Header.Set("authorization", p.cfg.APIKey)

		resp, err := p.client.Do(httpReq)
		if err != nil {
			return nil, apperrors.ExternalServiceError(ProviderName, err)
		}
		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			return nil, apiError(resp)
		}

		var out transcriptResponse
		err = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode poll response: %w", err)
		}

		switch out.Status {
		case statusCompleted:
			return &out, nil
		case statusError:
			return nil, apperrors.TranscriptionFailed(out.Error)
		}

		p.log.Debug("transcription pending", logger.Fields("provider_job_id", jobID, "status", out.Status))

		timer := time.NewTimer(p.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return apperrors.ExternalServiceError(ProviderName,
		fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
}

// --- internal AssemblyAI API types ---

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type submitRequest struct {
	AudioURL      string `json:"audio_url"`
	SpeakerLabels bool   `json:"speaker_labels"`
	LanguageCode  string `json:"language_code,omitempty"`
}

type transcriptResponse struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	Text       string         `json:"text"`
	Error      string         `json:"error,omitempty"`
	Utterances []apiUtterance `json:"utterances,omitempty"`
}

type apiUtterance struct {
	Speaker string    `json:"speaker"`
	Start   int64     `json:"start"` // milliseconds
	End     int64     `json:"end"`   // milliseconds
	Text    string    `json:"text"`
	Words   []apiWord `json:"words,omitempty"`
}

type apiWord struct {
	Text  string `json:"text"`
	Start int64  `json:"start"` // milliseconds
	End   int64  `json:"end"`   // milliseconds
}

// toTranscriptionResult converts the AssemblyAI payload into the generic
// model. All timestamps are normalized from milliseconds to seconds.
func toTranscriptionResult(resp *transcriptResponse) *transcript.TranscriptionResult {
	utterances := make([]transcript.Utterance, 0, len(resp.Utterances))
	for _, u := range resp.Utterances {
		words := make([]transcript.Word, 0, len(u.Words))
		for _, w := range u.Words {
			words = append(words, transcript.Word{
				Text:  w.Text,
				Start: float64(w.Start) / 1000.0,
				End:   float64(w.End) / 1000.0,
			})
		}
		utterances = append(utterances, transcript.Utterance{
			Speaker: u.Speaker,
			Start:   float64(u.Start) / 1000.0,
			End:     float64(u.End) / 1000.0,
			Text:    u.Text,
			Words:   words,
		})
	}
	return &transcript.TranscriptionResult{
		FullText:   resp.Text,
		Utterances: utterances,
	}
}
