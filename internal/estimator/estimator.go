// Package estimator orchestrates the material estimation pipeline: template
// lookup, model extraction, confidence scoring, cost aggregation, and
// persistence of the resulting estimate.
package estimator

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fixhub/estimator-cli/internal/extraction"
	"github.com/fixhub/estimator-cli/internal/model"
	"github.com/fixhub/estimator-cli/internal/store"
	"github.com/fixhub/estimator-cli/internal/template"
)

// ErrPersistence marks a store failure during estimation. An estimate that
// was computed but failed to persist is reported as a failure, never
// returned as if saved.
var ErrPersistence = eris.New("persistence failed")

// Extractor is the extraction capability the orchestrator depends on. Any
// backend producing a Result satisfies it (SDK client, rule-based stub,
// recorded fixture).
type Extractor interface {
	Extract(ctx context.Context, req model.ExtractionRequest) (*extraction.Result, error)
	Model() string
}

// Estimator coordinates one estimation per call. Stateless between calls;
// concurrent requests for different jobs are independent, and concurrent
// requests for the same job resolve last-write-wins at the store upsert.
type Estimator struct {
	store     store.Store
	extractor Extractor
	templates *template.Service
}

// New creates an Estimator. All collaborators are injected; there is no
// process-wide store handle.
func New(st store.Store, ex Extractor, templates *template.Service) *Estimator {
	return &Estimator{store: st, extractor: ex, templates: templates}
}

// GenerateEstimate runs the full pipeline for one job and persists the
// result keyed by jobID. It either succeeds fully (estimate persisted and
// returned) or fails without persisting anything.
func (e *Estimator) GenerateEstimate(ctx context.Context, jobID string, req model.ExtractionRequest) (*model.MaterialEstimate, error) {
	if jobID == "" {
		return nil, eris.Wrap(model.ErrValidation, "job id is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Template absence (or a failed lookup) is non-fatal: the pipeline
	// proceeds and the overlap bonus is skipped.
	tpl, err := e.templates.FindByServiceType(ctx, req.ServiceType)
	if err != nil {
		zap.L().Warn("estimator: template lookup failed, proceeding without template",
			zap.String("job_id", jobID),
			zap.String("service_type", req.ServiceType),
			zap.Error(err),
		)
		tpl = nil
	}

	result, err := e.extractor.Extract(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(err, "estimator: extraction for job %s", jobID)
	}

	confidence := Confidence(result.Materials, tpl)
	totalCost := TotalCost(result.Materials)

	est := &model.MaterialEstimate{
		JobID:              jobID,
		Materials:          result.Materials,
		TotalEstimatedCost: totalCost,
		Confidence:         confidence,
		Model:              e.extractor.Model(),
		ProcessingTime:     result.ProcessingTime,
	}

	saved, err := e.store.UpsertEstimate(ctx, est)
	if err != nil {
		return nil, eris.Wrapf(ErrPersistence, "upsert estimate for job %s: %v", jobID, err)
	}

	if tpl != nil {
		// Usage counting is best-effort and not transactionally exact.
		if err := e.store.IncrementTemplateUsage(ctx, tpl.ServiceType); err != nil {
			zap.L().Warn("estimator: template usage increment failed",
				zap.String("service_type", tpl.ServiceType),
				zap.Error(err),
			)
		}
	}

	zap.L().Info("estimator: estimate generated",
		zap.String("job_id", jobID),
		zap.String("service_type", req.ServiceType),
		zap.Int("material_count", len(saved.Materials)),
		zap.Int("confidence", saved.Confidence),
		zap.Float64("total_cost", saved.TotalEstimatedCost),
		zap.Bool("template_matched", tpl != nil),
		zap.String("parse_mode", string(result.Mode)),
	)

	return saved, nil
}

// GetEstimate is a pure lookup; absence returns (nil, nil).
func (e *Estimator) GetEstimate(ctx context.Context, jobID string) (*model.MaterialEstimate, error) {
	est, err := e.store.GetEstimate(ctx, jobID)
	if err != nil {
		return nil, eris.Wrapf(ErrPersistence, "get estimate for job %s: %v", jobID, err)
	}
	return est, nil
}

// InitializeTemplates seeds the built-in template set. Idempotent.
func (e *Estimator) InitializeTemplates(ctx context.Context) (int, error) {
	return e.templates.SeedDefaults(ctx)
}

// ListTemplates returns all stored templates.
func (e *Estimator) ListTemplates(ctx context.Context) ([]model.MaterialTemplate, error) {
	return e.templates.List(ctx)
}
