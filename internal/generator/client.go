package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"quiz-trainer/internal/config"
	"quiz-trainer/internal/domain"
)

// Client asks an OpenAI-compatible chat completions API for a quiz document.
type Client struct {
	cfg    config.GeneratorConfig
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg config.GeneratorConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: config.TTLDuration(cfg.Timeout, 2*time.Minute)},
		logger: logger,
	}
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type completionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate returns the raw JSON quiz document produced by the model. The caller
// validates it; an empty reply is reported as an error.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	temperature := c.cfg.Temperature
	if temperature == 0 {
		temperature = 0.4
	}
	body, err := json.Marshal(completionRequest{
		Model:          c.cfg.Model,
		Messages:       []chatMessage{{Role: "user", Content: buildPrompt(req)}},
		Temperature:    temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generator request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("generator returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode generator response: %w", err)
	}
	if payload.Error != nil {
		return nil, errors.New(payload.Error.Message)
	}
	if len(payload.Choices) == 0 {
		return nil, errors.New("generator returned no choices")
	}

	content := stripFence(payload.Choices[0].Message.Content)
	c.logger.Info("quiz generated",
		zap.Int("requested", req.NumberOfQuestions),
		zap.Int("bytes", len(content)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return []byte(content), nil
}

func buildPrompt(req domain.GenerationRequest) []contentPart {
	parts := []contentPart{{Type: "text", Text: fmt.Sprintf(
		"Create a quiz from the study material below. Generate exactly %d unique questions.\n"+
			"Reply with a single JSON object: {\"title\": string, \"questions\": [{\"id\": \"q1\", \"questionText\": string, "+
			"\"options\": [at least %d strings], \"correctAnswers\": [1 to %d distinct 0-based indices into options], "+
			"\"isMultipleChoice\": boolean, \"explanation\": string}]}.\n"+
			"A question with isMultipleChoice false has exactly one correct answer. No markdown.\n---\nStudy Material:\n",
		req.NumberOfQuestions, domain.Generated.MinOptions, domain.Generated.MaxCorrect,
	)}}

	if text := strings.TrimSpace(req.MaterialText); text != "" {
		parts = append(parts, contentPart{Type: "text", Text: "Textual Content:\n" + text + "\n"})
	}
	if images := req.ImageURIs(); len(images) > 0 {
		parts = append(parts, contentPart{Type: "text", Text: "Image Content:"})
		for _, uri := range images {
			parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: uri}})
		}
	}
	parts = append(parts, contentPart{Type: "text", Text: "---End of Study Material---\nGenerate the quiz now."})
	return parts
}

// stripFence removes a surrounding ```json fence that some models add anyway.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
