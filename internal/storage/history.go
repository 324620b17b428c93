// internal/storage/history.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	commonerrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/logger"
	"trip-planner/internal/models"
)

// ResearchRun is one completed pipeline execution persisted for history
// queries.
type ResearchRun struct {
	ID           string    `json:"id"`
	Request      string    `json:"request"`
	RequestType  string    `json:"requestType"`
	Origin       string    `json:"origin"`
	Destinations []string  `json:"destinations"`
	Feasible     bool      `json:"feasible"`
	Backtracked  bool      `json:"backtracked"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HistoryStore persists research runs to Postgres.
type HistoryStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewHistoryStore(db *sql.DB, log logger.Logger) *HistoryStore {
	return &HistoryStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "history-store"}),
	}
}

// SaveRun inserts a run record and returns its generated ID.
func (s *HistoryStore) SaveRun(ctx context.Context, run ResearchRun) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	destinations, err := json.Marshal(run.Destinations)
	if err != nil {
		return "", fmt.Errorf("marshal destinations: %w", err)
	}

	const query = `
		INSERT INTO research_runs (id, request, request_type, origin, destinations, feasible, backtracked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := s.db.ExecContext(ctx, query,
		run.ID, run.Request, run.RequestType, run.Origin,
		destinations, run.Feasible, run.Backtracked, run.CreatedAt,
	); err != nil {
		return "", commonerrors.NewDatabaseInsertFailedError(err)
	}

	s.logger.Debug("research run saved", map[string]interface{}{
		"runId":       run.ID,
		"requestType": run.RequestType,
	})
	return run.ID, nil
}

// RecentRuns returns the newest runs, most recent first.
func (s *HistoryStore) RecentRuns(ctx context.Context, limit int) ([]ResearchRun, error) {
	const query = `
		SELECT id, request, request_type, origin, destinations, feasible, backtracked, created_at
		FROM research_runs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("recent_runs", err)
	}
	defer rows.Close()

	var runs []ResearchRun
	for rows.Next() {
		var run ResearchRun
		var destinations []byte
		if err := rows.Scan(
			&run.ID, &run.Request, &run.RequestType, &run.Origin,
			&destinations, &run.Feasible, &run.Backtracked, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if len(destinations) > 0 {
			if err := json.Unmarshal(destinations, &run.Destinations); err != nil {
				s.logger.Warn("bad destinations payload in history row", map[string]interface{}{
					"runId": run.ID,
					"error": err.Error(),
				})
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunFromResult builds the history record for a finished pipeline run.
func RunFromResult(request string, result *models.ResearchResult, backtracked bool) ResearchRun {
	names := make([]string, 0, len(result.Destinations))
	feasible := false
	for _, d := range result.Destinations {
		names = append(names, d.Name)
		if d.FeasibilityScore >= 0.6 {
			feasible = true
		}
	}
	return ResearchRun{
		Request:      request,
		RequestType:  string(result.RequestType),
		Destinations: names,
		Feasible:     feasible,
		Backtracked:  backtracked,
	}
}
