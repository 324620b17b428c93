// internal/stages/classify-request/handler.go
package classifyrequest

import (
	"context"
	"fmt"
	"strings"

	"trip-planner/internal/common/logger"
	"trip-planner/internal/models"
	"trip-planner/internal/providers/llm"
)

const StageName = "classify-request"

type Handler struct {
	config    *Config
	completer llm.Completer
	logger    logger.Logger
}

func NewHandler(config *Config, completer llm.Completer, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		completer: completer,
		logger:    log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute labels the request with one of the four research strategies. A
// failed or unrecognized completion degrades to abstract, the safe routing
// default.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	prompt := buildClassificationPrompt(input.Request)

	response, err := h.completer.Complete(ctx, prompt)
	if err != nil {
		h.logger.Warn("classification degraded to abstract", map[string]interface{}{
			"error": err.Error(),
		})
		return &Output{RawLabel: "", Type: models.RequestAbstract}, nil
	}

	raw := strings.ToLower(strings.TrimSpace(response))

	return &Output{
		RawLabel: raw,
		Type:     NormalizeLabel(raw),
	}, nil
}

// NormalizeLabel maps a raw classifier label onto a known RequestType,
// defaulting to abstract.
func NormalizeLabel(raw string) models.RequestType {
	switch models.RequestType(raw) {
	case models.RequestSpecific, models.RequestAbstract, models.RequestMultiLocation, models.RequestConstrained:
		return models.RequestType(raw)
	}
	return models.RequestAbstract
}

func buildClassificationPrompt(request string) string {
	return fmt.Sprintf(`Analyze this travel request and determine the type of destination inquiry:

Request: %q

Classify as one of these types:
1. "specific" - the request names a specific destination (e.g., "Paris", "Tokyo", "New York")
2. "abstract" - the request describes desired characteristics (e.g., "sunny beach", "mountain destination", "cultural city")
3. "multi_location" - the request mentions multiple destinations or wants to compare options
4. "constrained" - the request has specific constraints (time, distance, budget) but is flexible on destination

Respond with just the type: specific, abstract, multi_location, or constrained`, request)
}
