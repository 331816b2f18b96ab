package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"wellness-engine/internal/common/logger"
)

func TestObservability(t *testing.T) {
	obs := New("wellness-engine-test", logger.NewTestLogger(t))
	assert.NotNil(t, obs)

	assert.NotPanics(t, func() {
		obs.RecordAssessment(context.Background(), "http", "ok", 2*time.Millisecond)
		obs.Shutdown()
	})
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.RecordAssessment(context.Background(), "worker", "MISSING_FIELD", time.Millisecond)
		obs.Shutdown()
	})
}
