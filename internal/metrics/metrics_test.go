package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, c.Write(metric))
	return metric.GetCounter().GetValue()
}

func counterVecValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	return counterValue(t, vec.WithLabelValues(labels...))
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, h.Write(metric))
	return metric.GetHistogram().GetSampleCount()
}

func TestObserveParse(t *testing.T) {
	tests := []struct {
		name    string
		outcome string
	}{
		{"successful parse", "success"},
		{"malformed line", "malformed"},
		{"schema violation", "schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := counterVecValue(t, parseTotal, tt.outcome)
			samplesBefore := histogramCount(t, parseDuration)

			ObserveParse(tt.outcome, 0.002)

			require.Equal(t, before+1, counterVecValue(t, parseTotal, tt.outcome))
			require.Equal(t, samplesBefore+1, histogramCount(t, parseDuration))
		})
	}
}

func TestRecordValidation(t *testing.T) {
	cleanBefore := counterVecValue(t, validationsTotal, "clean")
	issuesBefore := counterVecValue(t, validationsTotal, "issues")

	RecordValidation(true)
	RecordValidation(false)
	RecordValidation(false)

	require.Equal(t, cleanBefore+1, counterVecValue(t, validationsTotal, "clean"))
	require.Equal(t, issuesBefore+2, counterVecValue(t, validationsTotal, "issues"))
}

func TestIncValidationIssue_KindMapping(t *testing.T) {
	tests := []struct {
		name  string
		kind  string
		label string
	}{
		{"enum kind", "InvalidEnumValue", "invalid_enum_value"},
		{"range kind", "OutOfRange", "out_of_range"},
		{"consistency kind", "ConsistencyViolation", "consistency_violation"},
		{"format kind", "FormatWidth", "format_width"},
		{"unknown kind counted verbatim", "SomethingNew", "SomethingNew"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := counterVecValue(t, validationIssuesTotal, tt.label)
			IncValidationIssue(tt.kind)
			require.Equal(t, before+1, counterVecValue(t, validationIssuesTotal, tt.label))
		})
	}
}

func TestCacheAndStoreCounters(t *testing.T) {
	hitBefore := counterVecValue(t, cacheRequestsTotal, "memory", "hit")
	missBefore := counterVecValue(t, cacheRequestsTotal, "redis", "miss")
	archivedBefore := counterValue(t, reportsArchivedTotal)
	prunedBefore := counterValue(t, reportsPrunedTotal)

	IncCacheRequest("memory", "hit")
	IncCacheRequest("redis", "miss")
	IncReportArchived()
	AddReportsPruned(3)

	require.Equal(t, hitBefore+1, counterVecValue(t, cacheRequestsTotal, "memory", "hit"))
	require.Equal(t, missBefore+1, counterVecValue(t, cacheRequestsTotal, "redis", "miss"))
	require.Equal(t, archivedBefore+1, counterValue(t, reportsArchivedTotal))
	require.Equal(t, prunedBefore+3, counterValue(t, reportsPrunedTotal))
}

func TestWatcherAndCaseCounters(t *testing.T) {
	eventBefore := counterVecValue(t, watchEventsTotal, "write")
	revalBefore := counterVecValue(t, revalidationsTotal, "issues")
	caseBefore := counterVecValue(t, casesGeneratedTotal, "success")
	writtenBefore := counterValue(t, decksWrittenTotal)
	writeErrBefore := counterValue(t, deckWriteErrors)

	IncWatchEvent("write")
	IncRevalidation("issues")
	IncCaseGenerated("success")
	IncDeckWritten()
	IncDeckWriteError()

	require.Equal(t, eventBefore+1, counterVecValue(t, watchEventsTotal, "write"))
	require.Equal(t, revalBefore+1, counterVecValue(t, revalidationsTotal, "issues"))
	require.Equal(t, caseBefore+1, counterVecValue(t, casesGeneratedTotal, "success"))
	require.Equal(t, writtenBefore+1, counterValue(t, decksWrittenTotal))
	require.Equal(t, writeErrBefore+1, counterValue(t, deckWriteErrors))
}

func TestPromhttpExposure(t *testing.T) {
	IncWatchEvent("write")
	RecordValidation(true)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	promhttp.Handler().ServeHTTP(recorder, req)

	body := recorder.Body.String()
	require.Contains(t, body, `fstdeck_watch_events_total{op="write"}`)
	require.Contains(t, body, `fstdeck_validations_total{result="clean"}`)
}
