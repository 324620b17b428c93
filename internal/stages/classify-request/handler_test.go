// internal/stages/classify-request/handler_test.go
package classifyrequest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner/internal/common/logger"
	"trip-planner/internal/models"
)

type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return s.response, s.err
}

// ==========================
// Classification Tests
// ==========================

func TestExecute_KnownLabels(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     models.RequestType
	}{
		{"specific", "specific", models.RequestSpecific},
		{"abstract", "abstract", models.RequestAbstract},
		{"multi location", "multi_location", models.RequestMultiLocation},
		{"constrained", "constrained", models.RequestConstrained},
		{"whitespace trimmed", "  specific\n", models.RequestSpecific},
		{"case folded", "CONSTRAINED", models.RequestConstrained},
		{"chatter degrades to abstract", "I would say this is specific.", models.RequestAbstract},
		{"unknown label degrades to abstract", "regional", models.RequestAbstract},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(LoadConfig(), &stubCompleter{response: tt.response}, logger.NewTestLogger(t))

			out, err := h.Execute(context.Background(), &Input{Request: "Weekend trip to Paris"})

			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Type)
		})
	}
}

func TestExecute_CompleterErrorDegradesToAbstract(t *testing.T) {
	h := NewHandler(LoadConfig(), &stubCompleter{err: errors.New("timeout")}, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Request: "Somewhere sunny"})

	require.NoError(t, err, "classification never fails the pipeline")
	assert.Equal(t, models.RequestAbstract, out.Type)
	assert.Empty(t, out.RawLabel)
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, models.RequestSpecific, NormalizeLabel("specific"))
	assert.Equal(t, models.RequestAbstract, NormalizeLabel(""))
	assert.Equal(t, models.RequestAbstract, NormalizeLabel("something else"))
}
