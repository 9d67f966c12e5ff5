package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"IndicatorsQueue/internal/domain"
)

func TestRecordResult(t *testing.T) {
	before := testutil.ToFloat64(LookupFailures)

	RecordResult(domain.RunResult{
		QueueID:        17,
		Ingested:       100,
		FilteredByCPV:  4,
		LookupFailures: 2,
		Published:      90,
		TopRisk:        9,
	})

	assert.InDelta(t, 100, testutil.ToFloat64(Items.WithLabelValues("ingested")), 1e-9)
	assert.InDelta(t, 90, testutil.ToFloat64(Items.WithLabelValues("published")), 1e-9)
	assert.InDelta(t, 9, testutil.ToFloat64(Items.WithLabelValues("top_risk")), 1e-9)
	assert.InDelta(t, 17, testutil.ToFloat64(LastQueueID), 1e-9)
	assert.InDelta(t, before+2, testutil.ToFloat64(LookupFailures), 1e-9)
}

func TestRecordRunAndSkipped(t *testing.T) {
	success := testutil.ToFloat64(RunsTotal.WithLabelValues(StatusSuccess))
	skipped := testutil.ToFloat64(RunsTotal.WithLabelValues(StatusSkipped))

	RecordRun(StatusSuccess, 1.5)
	RecordSkipped()

	assert.InDelta(t, success+1, testutil.ToFloat64(RunsTotal.WithLabelValues(StatusSuccess)), 1e-9)
	assert.InDelta(t, skipped+1, testutil.ToFloat64(RunsTotal.WithLabelValues(StatusSkipped)), 1e-9)
}
