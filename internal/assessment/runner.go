// Package assessment runs the scoring engine on behalf of a transport and
// records the per-transport metrics every entry point shares.
package assessment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wellness-engine/internal/common/errors"
	"wellness-engine/internal/common/metrics"
	"wellness-engine/internal/common/observability"
	"wellness-engine/internal/models"
	"wellness-engine/internal/scoring"
)

// StatusOK labels successful evaluations in metrics.
const StatusOK = "ok"

// Runner is safe for concurrent use.
type Runner struct {
	engine    *scoring.Engine
	obs       *observability.Observability
	transport string
	newID     func() string
}

// NewRunner binds an engine to a transport label. obs may be nil.
func NewRunner(engine *scoring.Engine, obs *observability.Observability, transport string) *Runner {
	return &Runner{
		engine:    engine,
		obs:       obs,
		transport: transport,
		newID:     uuid.NewString,
	}
}

func (r *Runner) Engine() *scoring.Engine { return r.engine }

// Run evaluates one record and stamps the result with a fresh assessment id.
func (r *Runner) Run(ctx context.Context, record map[string]interface{}) (*models.AssessmentResult, error) {
	start := time.Now()

	result, err := r.evaluate(ctx, record)
	status := StatusOK
	if err != nil {
		status = string(errors.AsStandardError(err).Code)
	}

	elapsed := time.Since(start)
	metrics.ObserveAssessment(r.transport, status, elapsed)
	r.obs.RecordAssessment(ctx, r.transport, status, elapsed)

	if err != nil {
		return nil, err
	}
	result.AssessmentID = r.newID()
	return result, nil
}

// evaluate converts an engine panic into an ASSESSMENT_FAILED error.
func (r *Runner) evaluate(ctx context.Context, record map[string]interface{}) (result *models.AssessmentResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = errors.NewAssessmentFailedError(fmt.Errorf("panic: %v", p))
		}
	}()
	return r.engine.Evaluate(ctx, record)
}
