// internal/pipeline/coordinator.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	commonerrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/logger"
	"trip-planner/internal/common/metrics"
	"trip-planner/internal/models"
	checkfeasibility "trip-planner/internal/stages/check-feasibility"
	classifyrequest "trip-planner/internal/stages/classify-request"
	extractparameters "trip-planner/internal/stages/extract-parameters"
	filterconstraints "trip-planner/internal/stages/filter-constraints"
	generatecandidates "trip-planner/internal/stages/generate-candidates"
	validaterequirements "trip-planner/internal/stages/validate-requirements"
	"trip-planner/internal/storage"
)

const maxBacktrackAlternatives = 5

// Stages bundles the six pipeline stage handlers.
type Stages struct {
	Extractor   *extractparameters.Handler
	Validator   *validaterequirements.Handler
	Classifier  *classifyrequest.Handler
	Generator   *generatecandidates.Handler
	Filter      *filterconstraints.Handler
	Feasibility *checkfeasibility.Handler
}

// Options configures coordinator behavior beyond the stages themselves.
// History and Audit are optional; nil disables them.
type Options struct {
	MaxBacktrackAttempts int
	MinFeasibilityScore  float64
	History              *storage.HistoryStore
	Audit                *storage.AuditLog
}

// Coordinator drives a research request through the full stage pipeline,
// including the single bounded backtracking pass when no candidate proves
// feasible.
type Coordinator struct {
	stages  Stages
	options Options
	logger  logger.Logger
}

func NewCoordinator(stages Stages, options Options, log logger.Logger) *Coordinator {
	if options.MaxBacktrackAttempts < 0 {
		options.MaxBacktrackAttempts = 0
	}
	if options.MinFeasibilityScore == 0 {
		options.MinFeasibilityScore = 0.6
	}
	return &Coordinator{
		stages:  stages,
		options: options,
		logger:  log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// ResearchWithFeasibility runs the complete pipeline for a raw user
// request. The returned result either carries scored destinations or flags
// the missing input that stopped the run early.
func (c *Coordinator) ResearchWithFeasibility(ctx context.Context, request string, progress models.ProgressFunc) (*models.ResearchResult, error) {
	runID := uuid.New().String()
	started := time.Now()
	metrics.ResearchRunsActive.Inc()
	defer metrics.ResearchRunsActive.Dec()

	log := c.logger.WithFields(map[string]interface{}{"runId": runID})
	log.Info("research run started", map[string]interface{}{"request": request})

	// Stage 1: parameter extraction. Never fails.
	progress.Emit(models.ProgressEvent{Type: models.ProgressStep, Step: extractparameters.StageName, Message: "Understanding your request"})
	extracted, err := c.runExtraction(ctx, runID, request)
	if err != nil {
		return nil, err
	}

	// Stage 2: requirement validation. A missing precondition halts the
	// run and asks the user instead of guessing.
	validated, err := c.runValidation(ctx, runID, extracted.Query)
	if err != nil {
		return nil, err
	}
	if validated.Outcome != validaterequirements.OutcomeOK {
		result := resultForMissingInput(validated.Outcome)
		progress.Emit(models.ProgressEvent{
			Type:    models.ProgressUserInputRequired,
			Step:    validaterequirements.StageName,
			Message: missingInputMessage(validated.Outcome),
		})
		c.finishRun(ctx, runID, request, result, false, started)
		return result, nil
	}
	query := validated.Query

	// Stage 3: classification.
	progress.Emit(models.ProgressEvent{Type: models.ProgressStep, Step: classifyrequest.StageName, Message: "Classifying the request"})
	classified, err := c.runClassification(ctx, runID, request)
	if err != nil {
		return nil, err
	}

	// Stages 4-6, with one bounded backtracking pass when nothing is
	// feasible.
	result, backtracked, err := c.researchLoop(ctx, runID, query, classified.Type, progress)
	if err != nil {
		return nil, err
	}
	result.RequestType = classified.Type

	progress.Emit(models.ProgressEvent{Type: models.ProgressResults, Step: "results", Message: "Research complete"})
	c.finishRun(ctx, runID, request, result, backtracked, started)
	return result, nil
}

func (c *Coordinator) researchLoop(ctx context.Context, runID string, query models.TripQuery, requestType models.RequestType, progress models.ProgressFunc) (*models.ResearchResult, bool, error) {
	attemptQuery := query
	backtracked := false

	var lastResult *models.ResearchResult

	for attempt := 0; ; attempt++ {
		progress.Emit(models.ProgressEvent{
			Type:    models.ProgressUpdate,
			Step:    generatecandidates.StageName,
			Message: "Researching destinations",
			Data:    map[string]interface{}{"attempt": attempt + 1},
		})

		generated, err := c.runGeneration(ctx, runID, attemptQuery, requestType)
		if err != nil {
			return nil, backtracked, err
		}

		primary, alternatives := c.runFiltering(ctx, runID, query, generated)

		checked, err := c.runFeasibility(ctx, runID, query, primary)
		if err != nil {
			return nil, backtracked, err
		}

		feasible := checkfeasibility.GetFeasible(checked.Results, c.options.MinFeasibilityScore)
		lastResult = buildResult(primary, alternatives, generated.Recommendation, checked.Results, requestType, c.options.MinFeasibilityScore)

		if len(feasible) > 0 {
			if attempt > 0 {
				metrics.BacktrackAttempts.WithLabelValues("recovered").Inc()
			}
			// Several viable destinations means the final pick is the
			// user's, not the pipeline's.
			lastResult.UserChoiceRequired = len(feasible) > 1
			lastResult.Recommendation = appendFeasibilitySummary(lastResult.Recommendation, len(feasible), len(checked.Results))
			return lastResult, backtracked, nil
		}

		if attempt >= c.options.MaxBacktrackAttempts {
			if backtracked {
				metrics.BacktrackAttempts.WithLabelValues("exhausted").Inc()
			}
			lastResult.UserChoiceRequired = true
			lastResult.Recommendation = appendFeasibilitySummary(lastResult.Recommendation, 0, len(checked.Results))
			return lastResult, backtracked, nil
		}

		substitutes := collectAlternativeNames(checked.Results)
		if len(substitutes) == 0 {
			lastResult.UserChoiceRequired = true
			lastResult.Recommendation = appendFeasibilitySummary(lastResult.Recommendation, 0, len(checked.Results))
			return lastResult, backtracked, nil
		}

		progress.Emit(models.ProgressEvent{
			Type:    models.ProgressDestinationChoice,
			Step:    "backtrack",
			Message: "No feasible option found, trying nearby alternatives",
			Data:    map[string]interface{}{"alternatives": substitutes},
		})
		metrics.BacktrackAttempts.WithLabelValues("started").Inc()

		attemptQuery = backtrackQuery(query, substitutes)
		backtracked = true
	}
}

func (c *Coordinator) runExtraction(ctx context.Context, runID, request string) (*extractparameters.Output, error) {
	out, err := c.timedStage(runID, extractparameters.StageName, func() (interface{}, error) {
		return c.stages.Extractor.Execute(ctx, &extractparameters.Input{Request: request})
	})
	if err != nil {
		return nil, err
	}
	return out.(*extractparameters.Output), nil
}

func (c *Coordinator) runValidation(ctx context.Context, runID string, query models.TripQuery) (*validaterequirements.Output, error) {
	out, err := c.timedStage(runID, validaterequirements.StageName, func() (interface{}, error) {
		return c.stages.Validator.Execute(ctx, &validaterequirements.Input{Query: query})
	})
	if err != nil {
		return nil, err
	}
	return out.(*validaterequirements.Output), nil
}

func (c *Coordinator) runClassification(ctx context.Context, runID, request string) (*classifyrequest.Output, error) {
	out, err := c.timedStage(runID, classifyrequest.StageName, func() (interface{}, error) {
		return c.stages.Classifier.Execute(ctx, &classifyrequest.Input{Request: request})
	})
	if err != nil {
		return nil, err
	}
	return out.(*classifyrequest.Output), nil
}

func (c *Coordinator) runGeneration(ctx context.Context, runID string, query models.TripQuery, requestType models.RequestType) (*generatecandidates.Output, error) {
	out, err := c.timedStage(runID, generatecandidates.StageName, func() (interface{}, error) {
		return c.stages.Generator.Execute(ctx, &generatecandidates.Input{Query: query, Type: requestType})
	})
	if err != nil {
		return nil, err
	}
	return out.(*generatecandidates.Output), nil
}

// runFiltering applies the constraint filter to both candidate sets. The
// filter itself never errors; it passes everything through when it cannot
// apply.
func (c *Coordinator) runFiltering(ctx context.Context, runID string, query models.TripQuery, generated *generatecandidates.Output) (primary, alternatives []models.DestinationCandidate) {
	primaryOut, _ := c.stages.Filter.Execute(ctx, &filterconstraints.Input{Query: query, Candidates: generated.Primary})
	altOut, _ := c.stages.Filter.Execute(ctx, &filterconstraints.Input{Query: query, Candidates: generated.Alternatives})

	if primaryOut.Applied {
		c.audit(ctx, runID, filterconstraints.StageName, "applied", map[string]interface{}{
			"kept":    len(primaryOut.Kept),
			"dropped": len(primaryOut.Dropped),
		})
	}
	return primaryOut.Kept, altOut.Kept
}

func (c *Coordinator) runFeasibility(ctx context.Context, runID string, query models.TripQuery, candidates []models.DestinationCandidate) (*checkfeasibility.Output, error) {
	out, err := c.timedStage(runID, checkfeasibility.StageName, func() (interface{}, error) {
		return c.stages.Feasibility.Execute(ctx, &checkfeasibility.Input{Query: query, Candidates: candidates})
	})
	if err != nil {
		return nil, err
	}
	return out.(*checkfeasibility.Output), nil
}

func (c *Coordinator) timedStage(runID, stage string, fn func() (interface{}, error)) (interface{}, error) {
	started := time.Now()
	out, err := fn()
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.StageExecutionsFailed.WithLabelValues(stage, errorCodeOf(err)).Inc()
		c.audit(context.Background(), runID, stage, "failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("%s: %w", stage, err)
	}
	metrics.StageExecutionsCompleted.WithLabelValues(stage).Inc()
	return out, nil
}

func (c *Coordinator) audit(ctx context.Context, runID, stage, outcome string, detail map[string]interface{}) {
	if c.options.Audit == nil {
		return
	}
	c.options.Audit.Record(ctx, storage.AuditEvent{
		RunID:   runID,
		Stage:   stage,
		Outcome: outcome,
		Detail:  detail,
	})
}

func (c *Coordinator) finishRun(ctx context.Context, runID, request string, result *models.ResearchResult, backtracked bool, started time.Time) {
	c.logger.Info("research run finished", map[string]interface{}{
		"runId":        runID,
		"durationMs":   time.Since(started).Milliseconds(),
		"destinations": len(result.Destinations),
		"needsInput":   result.NeedsInput(),
		"backtracked":  backtracked,
	})
	c.audit(ctx, runID, "pipeline", "finished", map[string]interface{}{
		"destinations": len(result.Destinations),
		"needsInput":   result.NeedsInput(),
		"backtracked":  backtracked,
	})

	if c.options.History == nil || result.NeedsInput() {
		return
	}
	run := storage.RunFromResult(request, result, backtracked)
	run.ID = runID
	if _, err := c.options.History.SaveRun(ctx, run); err != nil {
		c.logger.Warn("history save failed", map[string]interface{}{
			"runId": runID,
			"error": err.Error(),
		})
	}
}

// buildResult annotates candidates with their feasibility scores, ordered
// best first. When any candidate is feasible, only the feasible ones stay
// primary; the checked leftovers are demoted to alternatives alongside the
// generator's own. When nothing is feasible every checked candidate is
// returned so the caller can report what was tried.
func buildResult(primary, alternatives []models.DestinationCandidate, recommendation string, checked []models.CandidateFeasibility, requestType models.RequestType, minScore float64) *models.ResearchResult {
	byName := make(map[string]models.DestinationCandidate, len(primary))
	for _, candidate := range primary {
		byName[strings.ToLower(candidate.Name)] = candidate
	}

	var kept, demoted []models.DestinationCandidate
	for _, cf := range checked {
		candidate, ok := byName[strings.ToLower(cf.Name)]
		if !ok {
			continue
		}
		candidate.FeasibilityScore = cf.Result.Score
		if cf.Result.EstimatedCost > 0 {
			candidate.EstimatedCost = fmt.Sprintf("$%.0f", cf.Result.EstimatedCost)
		}
		if flight, ok := cf.Result.Details["flight"]; ok && flight.Duration != "" {
			candidate.TravelTime = flight.Duration
		}
		if cf.Result.IsFeasible && cf.Result.Score >= minScore {
			kept = append(kept, candidate)
		} else {
			demoted = append(demoted, candidate)
		}
	}

	if len(kept) == 0 {
		kept = demoted
		demoted = nil
	}

	return &models.ResearchResult{
		RequestType:    requestType,
		Destinations:   kept,
		Alternatives:   append(demoted, alternatives...),
		Recommendation: recommendation,
	}
}

func appendFeasibilitySummary(recommendation string, feasible, checked int) string {
	summary := fmt.Sprintf("Feasibility check: %d of %d destinations fit the budget and dates.", feasible, checked)
	if recommendation == "" {
		return summary
	}
	return recommendation + "\n\n" + summary
}

// collectAlternativeNames merges the per-candidate alternative suggestions,
// preserving order, deduplicating case-insensitively, and capping the list.
func collectAlternativeNames(checked []models.CandidateFeasibility) []string {
	seen := make(map[string]bool)
	var names []string
	for _, cf := range checked {
		for _, alt := range cf.Result.Alternatives {
			key := strings.ToLower(alt)
			if seen[key] {
				continue
			}
			seen[key] = true
			names = append(names, alt)
			if len(names) == maxBacktrackAlternatives {
				return names
			}
		}
	}
	return names
}

// backtrackQuery synthesizes the retry query: the substitute destinations
// become the subject while the original budget, origin and travel-time
// constraints carry over unchanged.
func backtrackQuery(original models.TripQuery, substitutes []string) models.TripQuery {
	retry := original.Clone()
	retry.Query = fmt.Sprintf("Trip to %s", strings.Join(substitutes, ", "))
	if original.OriginLocation != "" {
		retry.Query += " from " + original.OriginLocation
	}
	if original.MaxTravelTime != "" {
		retry.Query += " within " + original.MaxTravelTime
	}
	if original.Budget != "" {
		retry.Query += " with budget " + original.Budget
	}
	return retry
}

func resultForMissingInput(outcome validaterequirements.Outcome) *models.ResearchResult {
	result := &models.ResearchResult{}
	switch outcome {
	case validaterequirements.OutcomeMissingDates:
		result.DateRequired = true
	case validaterequirements.OutcomeMissingBudget:
		result.BudgetRequired = true
	case validaterequirements.OutcomeMissingOrigin:
		result.OriginRequired = true
	}
	return result
}

func missingInputMessage(outcome validaterequirements.Outcome) string {
	switch outcome {
	case validaterequirements.OutcomeMissingDates:
		return "When would you like to travel?"
	case validaterequirements.OutcomeMissingBudget:
		return "What is your budget for this trip?"
	case validaterequirements.OutcomeMissingOrigin:
		return "Where will you be traveling from?"
	default:
		return "More information is needed to continue."
	}
}

func errorCodeOf(err error) string {
	var stdErr *commonerrors.StandardError
	if errors.As(err, &stdErr) {
		return string(stdErr.Code)
	}
	return "UNKNOWN"
}
