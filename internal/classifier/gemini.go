package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nisioka/self-money/internal/common"
	"github.com/nisioka/self-money/internal/service"
)

const (
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	geminiTemperature     = 0.1
	geminiMaxOutputTokens = 50
)

// GeminiConfig configures the Gemini classification client.
type GeminiConfig struct {
	APIKey            string
	Model             string
	BaseURL           string
	RequestsPerMinute int
	Timeout           time.Duration
}

// GeminiClient suggests categories via the Gemini generateContent REST API.
type GeminiClient struct {
	httpClient  *http.Client
	rateLimiter *rateLimiter
	logger      *slog.Logger
	apiKey      string
	model       string
	baseURL     string
	retryOpts   retryConfig
}

type retryConfig struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
}

// NewGeminiClient creates a Gemini-backed classifier client.
func NewGeminiClient(cfg GeminiConfig, logger *slog.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", common.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GeminiClient{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: newRateLimiter(cfg.RequestsPerMinute),
		logger:      logger,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		retryOpts: retryConfig{
			maxAttempts:  3,
			initialDelay: time.Second,
			maxDelay:     10 * time.Second,
			multiplier:   2.0,
		},
	}, nil
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Classify asks the model to pick one of the known category names for the
// description. It returns the empty string when the model declines or answers
// with something outside the known set.
func (c *GeminiClient) Classify(ctx context.Context, description string, categories []string) (string, error) {
	if len(categories) == 0 {
		return "", nil
	}

	if err := c.rateLimiter.wait(ctx); err != nil {
		return "", err
	}

	answer, err := c.generateWithRetry(ctx, buildPrompt(description, categories))
	if err != nil {
		return "", err
	}

	return matchCategory(answer, categories), nil
}

// Close releases the rate limiter.
func (c *GeminiClient) Close() {
	c.rateLimiter.Close()
}

func (c *GeminiClient) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var answer string
	err := common.WithRetry(ctx, func() error {
		var genErr error
		answer, genErr = c.generate(ctx, prompt)
		return genErr
	}, service.RetryOptions{
		MaxAttempts:  c.retryOpts.maxAttempts,
		InitialDelay: c.retryOpts.initialDelay,
		MaxDelay:     c.retryOpts.maxDelay,
		Multiplier:   c.retryOpts.multiplier,
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     geminiTemperature,
			MaxOutputTokens: geminiMaxOutputTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		// Client errors other than throttling will not heal on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", &common.RetryableError{Err: statusErr, Retryable: false}
		}
		return "", statusErr
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

func buildPrompt(description string, categories []string) string {
	var b strings.Builder
	b.WriteString("You classify household financial transactions.\n")
	b.WriteString("Pick the single best matching category for the transaction below.\n")
	b.WriteString("Answer with the category name only, nothing else.\n\n")
	b.WriteString("Categories: ")
	b.WriteString(strings.Join(categories, ", "))
	b.WriteString("\n\nTransaction: ")
	b.WriteString(description)
	return b.String()
}

// matchCategory resolves the model's free-text answer against the known
// category names: exact match first, then substring containment either way.
func matchCategory(answer string, categories []string) string {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return ""
	}

	lowered := strings.ToLower(answer)
	for _, category := range categories {
		if strings.ToLower(category) == lowered {
			return category
		}
	}
	for _, category := range categories {
		lc := strings.ToLower(category)
		if strings.Contains(lowered, lc) || strings.Contains(lc, lowered) {
			return category
		}
	}
	return ""
}
