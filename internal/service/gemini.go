package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// TextGenerator - generative text endpoint
type TextGenerator interface {
	// GenerateText returns the raw model text; jsonMode asks for a JSON body
	GenerateText(ctx context.Context, prompt string, jsonMode bool) (string, error)
}

var ErrEmptyResponse = errors.New("no response from model")

var _ TextGenerator = (*GeminiClient)(nil)

// GeminiClient calls Google Gemini through the genai SDK
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *logrus.Logger
}

// NewGeminiClient creates the client; an API key is required
func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration, logger *logrus.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{client: client, model: model, timeout: timeout, logger: logger}, nil
}

func (c *GeminiClient) GenerateText(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{}
	if jsonMode {
		config.ResponseMIMEType = "application/json"
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)}
	}

	c.logger.WithFields(logrus.Fields{
		"model":     c.model,
		"json_mode": jsonMode,
	}).Debug("Sending prompt to Gemini")

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.logger.WithField("elapsed", time.Since(start)).Debug("Gemini response received")
	return text, nil
}
