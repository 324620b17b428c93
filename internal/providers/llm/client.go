// internal/providers/llm/client.go
package llm

import (
	"context"
	"strings"
	"time"

	commonerrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/httpx"
	"trip-planner/internal/common/logger"
)

// Completer is the single-turn, stateless text completion capability the
// pipeline depends on.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds the GenAI endpoint settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// Client calls a GenAI text-completion endpoint over HTTP.
type Client struct {
	config *Config
	http   *httpx.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	if config.MaxTokens == 0 {
		config.MaxTokens = 1024
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &Client{
		config: config,
		http:   httpx.NewClient(0, config.MaxRetries), // rely on context for deadlines
		logger: log.WithFields(map[string]interface{}{"provider": "genai"}),
	}
}

type completionRequest struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// Complete performs one completion call and returns the raw response text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req := completionRequest{
		Prompt:      prompt,
		Model:       c.config.Model,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	headers := map[string]string{}
	if c.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.config.APIKey
	}

	var resp completionResponse
	err := c.http.PostJSON(ctx, c.config.BaseURL+"/api/ai/generate", headers, req, &resp)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", commonerrors.NewLLMTimeoutError()
		}
		return "", commonerrors.NewExternalServiceError("genai", err)
	}

	if strings.TrimSpace(resp.Text) == "" {
		return "", commonerrors.NewLLMResponseMalformedError("empty response")
	}

	c.logger.Debug("completion returned", map[string]interface{}{
		"chars": len(resp.Text),
	})

	return resp.Text, nil
}

// StripCodeFences removes markdown code-fence markers that models wrap
// around JSON payloads.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// ExtractJSONObject returns the first top-level {...} block in s, tolerating
// narrative text around it. Returns "" when no object is present.
func ExtractJSONObject(s string) string {
	s = StripCodeFences(s)
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
