// internal/storage/audit.go
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"trip-planner/internal/common/logger"
)

const auditIndex = "trip-research-audit"

// AuditEvent is one pipeline stage transition recorded for traceability.
type AuditEvent struct {
	RunID     string                 `json:"run_id"`
	Stage     string                 `json:"stage"`
	Outcome   string                 `json:"outcome"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// AuditLog indexes stage transitions into Elasticsearch. Indexing failures
// are logged and swallowed so audit problems never fail a research run.
type AuditLog struct {
	client *elasticsearch.Client
	logger logger.Logger
}

func NewAuditLog(client *elasticsearch.Client, log logger.Logger) *AuditLog {
	return &AuditLog{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "audit-log"}),
	}
}

// Record indexes one event. Best effort.
func (a *AuditLog) Record(ctx context.Context, event AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		a.logger.Warn("audit event marshal failed", map[string]interface{}{
			"stage": event.Stage,
			"error": err.Error(),
		})
		return
	}

	req := esapi.IndexRequest{
		Index:      auditIndex,
		DocumentID: uuid.New().String(),
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, a.client)
	if err != nil {
		a.logger.Warn("audit index request failed", map[string]interface{}{
			"stage": event.Stage,
			"error": err.Error(),
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		a.logger.Warn("audit index rejected", map[string]interface{}{
			"stage":  event.Stage,
			"status": res.Status(),
		})
	}
}
