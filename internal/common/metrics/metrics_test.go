package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"wellness-engine/internal/models"
)

func TestSubscoreRecorder(t *testing.T) {
	c := SubscoreOutcomes.WithLabelValues(models.SubscoreRetirement, string(models.StatusDegraded))
	before := testutil.ToFloat64(c)

	SubscoreRecorder{}.ObserveSubscore(models.SubscoreRetirement, models.StatusDegraded)

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestObserveAssessment(t *testing.T) {
	c := AssessmentsTotal.WithLabelValues(TransportCLI, "ok")
	before := testutil.ToFloat64(c)

	ObserveAssessment(TransportCLI, "ok", 3*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestSetReferenceRows(t *testing.T) {
	SetReferenceRows(map[string]int{"income_percentiles": 108, "networth_percentiles": 84})

	assert.Equal(t, 108.0, testutil.ToFloat64(ReferenceRows.WithLabelValues("income_percentiles")))
	assert.Equal(t, 84.0, testutil.ToFloat64(ReferenceRows.WithLabelValues("networth_percentiles")))
}
