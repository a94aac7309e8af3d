package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAnalysis(t *testing.T) {
	before := testutil.ToFloat64(AnalysesTotal.WithLabelValues("success"))

	RecordAnalysis("success", 1.5)

	assert.Equal(t, before+1, testutil.ToFloat64(AnalysesTotal.WithLabelValues("success")))
}

func TestRecordSearchFailure(t *testing.T) {
	failures := testutil.ToFloat64(SearchRequests.WithLabelValues("error"))

	RecordSearch("error", 0)

	assert.Equal(t, failures+1, testutil.ToFloat64(SearchRequests.WithLabelValues("error")))
}

func TestRecordLogin(t *testing.T) {
	before := testutil.ToFloat64(LoginsTotal.WithLabelValues("failure"))

	RecordLogin("failure")
	RecordLogin("failure")

	assert.Equal(t, before+2, testutil.ToFloat64(LoginsTotal.WithLabelValues("failure")))
}
