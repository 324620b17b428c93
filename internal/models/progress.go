// internal/models/progress.go
package models

// ProgressEventType identifies the kind of progress event emitted between
// pipeline stages.
type ProgressEventType string

const (
	ProgressStep              ProgressEventType = "step"
	ProgressUpdate            ProgressEventType = "progress_update"
	ProgressUserInputRequired ProgressEventType = "user_input_required"
	ProgressDestinationChoice ProgressEventType = "destination_choice"
	ProgressResults           ProgressEventType = "results"
)

// ProgressEvent is a one-way notification sent to a caller-supplied callback
// between stages. Emitting it must never block or change pipeline behavior.
type ProgressEvent struct {
	Type    ProgressEventType      `json:"type"`
	Step    string                 `json:"step,omitempty"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// ProgressFunc receives progress events. A nil ProgressFunc is valid and
// means no reporting.
type ProgressFunc func(event ProgressEvent)

// Emit invokes the callback if it is non-nil.
func (f ProgressFunc) Emit(event ProgressEvent) {
	if f != nil {
		f(event)
	}
}
