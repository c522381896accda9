package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"remotejobs-engine/internal/domain"
)

const groqURL = "https://api.groq.com/openai/v1/chat/completions"

// GroqClassifier talks to an OpenAI-compatible chat-completions
// endpoint and parses the model's JSON verdict.
type GroqClassifier struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewGroqClassifier(apiKey, model string) *GroqClassifier {
	return &GroqClassifier{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// verdict is the JSON shape the model is instructed to return.
// Confidence arrives as either a float or a tier word depending on how
// literally the model follows instructions.
type verdict struct {
	IsRemote   bool            `json:"is_remote"`
	Confidence json.RawMessage `json:"confidence"`
	Reason     string          `json:"reason"`
}

func buildSystemPrompt() string {
	return "You are an expert job analyst. Respond only with valid JSON."
}

func buildUserPrompt(title, description, location, price string) string {
	return fmt.Sprintf(`You are analyzing a French job listing to determine if it's a genuine remote work opportunity.

JOB LISTING:
Title: %s
Location/Category: %s
Price: %s
Description: %s

YOUR TASK:
Determine if this is a GENUINE remote work opportunity where the worker can perform 100%% of their duties from home/anywhere without needing to be physically present.

RESPOND IN JSON FORMAT ONLY:
{
    "is_remote": true/false,
    "confidence": 0.0-1.0,
    "reason": "clear explanation in French (max 12 words)"
}`, title, location, price, description)
}

// Classify performs one external call. Failures are wrapped in
// ServiceError with Retryable set for rate-limit-class errors only.
func (c *GroqClassifier) Classify(ctx context.Context, title, description, location, price string) (domain.Classification, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: buildSystemPrompt()},
			{Role: "user", Content: buildUserPrompt(title, description, location, price)},
		},
		Temperature: 0.1,
		MaxTokens:   200,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return domain.Classification{}, &ServiceError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, groqURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return domain.Classification{}, &ServiceError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Classification{}, &ServiceError{Err: fmt.Errorf("http request failed: %w", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Classification{}, &ServiceError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return domain.Classification{}, &ServiceError{
			Retryable: true,
			Err:       fmt.Errorf("status 429: %s", string(bodyBytes)),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Classification{}, &ServiceError{
			Retryable: isRateLimitText(string(bodyBytes)),
			Err:       fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes)),
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return domain.Classification{}, &ServiceError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if chatResp.Error != nil {
		return domain.Classification{}, &ServiceError{
			Retryable: isRateLimitText(chatResp.Error.Message),
			Err:       fmt.Errorf("API error: %s", chatResp.Error.Message),
		}
	}
	if len(chatResp.Choices) == 0 {
		return domain.Classification{}, &ServiceError{Err: fmt.Errorf("no choices returned")}
	}

	return parseVerdict(chatResp.Choices[0].Message.Content)
}

// parseVerdict tolerates markdown fences and prose around the JSON
// object; it extracts between the outermost braces before decoding.
func parseVerdict(content string) (domain.Classification, error) {
	content = stripMarkdownFences(content)

	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			content = content[start : end+1]
		}
	}

	var v verdict
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return domain.Classification{}, &ServiceError{Err: fmt.Errorf("unmarshal verdict: %w", err)}
	}

	reason := strings.TrimSpace(v.Reason)
	if reason == "" {
		reason = "No reason provided"
	}

	return domain.Classification{
		IsRemote:   v.IsRemote,
		Confidence: parseConfidence(v.Confidence),
		Reason:     "LLM: " + reason,
		Stage:      domain.StageSemanticLive,
	}, nil
}

// parseConfidence accepts a float or a tier word; anything else maps to
// the neutral 0.5.
func parseConfidence(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0.5
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f < 0 {
			return 0
		}
		if f > 1 {
			return 1
		}
		return f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "high":
			return 0.9
		case "medium":
			return 0.6
		case "low":
			return 0.3
		}
	}
	return 0.5
}

func stripMarkdownFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
