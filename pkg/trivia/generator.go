package trivia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/quizcast/quizcast/internal/httpc"
)

// DefaultModel is the question generation model.
const DefaultModel = "gemini-2.0-flash"

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config configures the question generator.
type Config struct {
	// APIKey authenticates against the Gemini API. Required.
	APIKey string

	// Model is the generateContent model name.
	Model string

	// BaseURL overrides the API base URL. Used by tests.
	BaseURL string
}

// Generator produces quiz question sets via the Gemini API.
type Generator struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// NewGenerator creates a question generator.
func NewGenerator(cfg Config, logger *slog.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("trivia: missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		cfg:    cfg,
		client: httpc.Client,
		logger: logger,
	}, nil
}

// Generate produces count multiple-choice questions about topic.
// The returned set is validated; a malformed model response is an
// error, never a partial set.
func (g *Generator) Generate(ctx context.Context, topic string, count int) ([]Question, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("trivia: topic is empty")
	}
	if count <= 0 {
		count = 5
	}

	raw, err := g.callGemini(ctx, buildPrompt(topic, count))
	if err != nil {
		return nil, err
	}

	questions, err := parseQuestions(raw)
	if err != nil {
		return nil, err
	}
	if err := ValidateSet(questions); err != nil {
		return nil, err
	}

	g.logger.Info("generated question set", "topic", topic, "count", len(questions))
	return questions, nil
}

// buildPrompt asks for strict JSON so the response parses without
// heuristics beyond fence stripping.
func buildPrompt(topic string, count int) string {
	return fmt.Sprintf(`Generate %d multiple-choice trivia questions about: %s

Respond with ONLY a JSON array, no other text. Each element:
{
  "question": "the question text",
  "options": ["option A", "option B", "option C", "option D"],
  "correctAnswer": "the correct option, verbatim from options",
  "explanation": "one short sentence explaining the answer"
}

Rules:
- Exactly 4 options per question
- correctAnswer must match one option exactly
- Vary which position holds the correct answer
- Questions should range from easy to challenging`, count, topic)
}

// geminiRequest is the generateContent request body.
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

// geminiResponse is the generateContent response body.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// callGemini makes one generateContent request and returns the text
// of the first candidate.
func (g *Generator) callGemini(ctx context.Context, prompt string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.7,
			MaxOutputTokens: 2048,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("trivia: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.cfg.BaseURL, g.cfg.Model, g.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("trivia: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("trivia: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("trivia: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("trivia: API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("trivia: parse response: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("trivia: API error: %s", result.Error.Message)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoQuestions
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}

// parseQuestions decodes a model response into questions, tolerating
// the markdown code fences models habitually wrap JSON in.
func parseQuestions(raw string) ([]Question, error) {
	cleaned := stripJSONFence(raw)

	var questions []Question
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, fmt.Errorf("trivia: decode questions: %w", err)
	}
	return questions, nil
}

// stripJSONFence removes a surrounding markdown code fence, if any.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
