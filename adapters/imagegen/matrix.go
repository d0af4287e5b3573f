// Package imagegen talks to the image-generation backend that renders one
// image per textual description and deducts the user's coin balance.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
)

const (
	generatePath   = "/api/ai-image/generateImageFromDescription"
	defaultTimeout = 35 * time.Second

	// The backend throttles aggressively; cap our own request rate so a
	// burst of parallel requirements does not trip its limiter.
	defaultRequestsPerSecond = 4
	defaultBurst             = 4
)

// Config holds configuration for the image-generation client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client implements ImageGenerator against the HTTP backend.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ repositories.ImageGenerator = (*Client)(nil)

// NewClient creates an image-generation client.
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("image generation base URL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = defaultRequestsPerSecond
	}
	if config.Burst == 0 {
		config.Burst = defaultBurst
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		http:    &http.Client{Timeout: config.Timeout},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		logger:  logger,
	}, nil
}

type generateResponse struct {
	Success       bool   `json:"success"`
	ImageURL      string `json:"imageUrl"`
	ImageID       string `json:"imageId"`
	CoinsDeducted int    `json:"coinsDeducted"`
	Message       string `json:"message"`
	Error         string `json:"error"`
}

// Generate renders one image. The call blocks on the client-side rate
// limiter first, then on the backend; the context deadline bounds both.
func (c *Client) Generate(ctx context.Context, req repositories.GenerationRequest) (repositories.GenerationResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return repositories.GenerationResult{}, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return repositories.GenerationResult{}, fmt.Errorf("encoding generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return repositories.GenerationResult{}, fmt.Errorf("building generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return repositories.GenerationResult{}, fmt.Errorf("image generation request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return repositories.GenerationResult{}, fmt.Errorf("reading generation response: %w", err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return repositories.GenerationResult{}, fmt.Errorf("decoding generation response (%d): %w", resp.StatusCode, err)
	}

	if !decoded.Success {
		message := decoded.Error
		if message == "" {
			message = decoded.Message
		}
		if message == "" {
			message = fmt.Sprintf("generation failed with status %d", resp.StatusCode)
		}
		if isInsufficientBalance(resp.StatusCode, message) {
			return repositories.GenerationResult{}, fmt.Errorf("%w: %s", repositories.ErrInsufficientBalance, message)
		}
		return repositories.GenerationResult{}, fmt.Errorf("image generation: %s", message)
	}

	c.logger.Debug("image generated",
		zap.String("image_id", decoded.ImageID),
		zap.Int("coins_deducted", decoded.CoinsDeducted),
	)
	return repositories.GenerationResult{
		ImageURL:      decoded.ImageURL,
		ImageID:       decoded.ImageID,
		CoinsDeducted: decoded.CoinsDeducted,
	}, nil
}

// isInsufficientBalance recognizes the backend's rejected-deduction answer
// in both its status code and message forms.
func isInsufficientBalance(status int, message string) bool {
	if status == http.StatusPaymentRequired {
		return true
	}
	lower := strings.ToLower(message)
	return strings.Contains(lower, "insufficient") && strings.Contains(lower, "balance") ||
		strings.Contains(lower, "insufficient coins")
}
