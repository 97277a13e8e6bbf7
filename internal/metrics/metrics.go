// Package metrics exposes Prometheus instrumentation for the fstdeck
// daemon. Counters and histograms are registered once at package load;
// callers record through the exported helpers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Parser metrics
	parseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fstdeck_parse_total",
		Help: "Deck parse attempts by outcome",
	}, []string{"outcome"}) // outcome=success|malformed|schema

	parseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fstdeck_parse_duration_seconds",
		Help:    "Time spent parsing a deck",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	// Validation metrics
	validationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fstdeck_validations_total",
		Help: "Deck validations by result",
	}, []string{"result"}) // result=clean|issues

	validationIssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fstdeck_validation_issues_total",
		Help: "Validation findings by kind",
	}, []string{"kind"}) // kind=invalid_enum_value|out_of_range|consistency_violation|format_width

	// Writer metrics
	decksWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fstdeck_decks_written_total",
		Help: "Total number of decks written to disk",
	})
	deckWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fstdeck_deck_write_errors_total",
		Help: "Total number of deck write failures",
	})

	// Cache metrics
	cacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fstdeck_cache_requests_total",
		Help: "Validation cache lookups by backend and outcome",
	}, []string{"backend", "outcome"}) // outcome=hit|miss|error

	// Report store metrics
	reportsArchivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fstdeck_reports_archived_total",
		Help: "Total number of validation reports archived",
	})
	reportsPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fstdeck_reports_pruned_total",
		Help: "Total number of archived reports pruned by retention",
	})

	// Watcher metrics
	watchEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fstdeck_watch_events_total",
		Help: "Filesystem events seen by the deck watcher",
	}, []string{"op"}) // op=create|write|remove|rename|chmod

	revalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fstdeck_revalidations_total",
		Help: "Watcher-triggered revalidations by outcome",
	}, []string{"outcome"}) // outcome=clean|issues|parse_error|read_error

	// Case matrix metrics
	casesGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fstdeck_cases_generated_total",
		Help: "Case deck generation attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure
)

func ObserveParse(outcome string, seconds float64) {
	parseTotal.WithLabelValues(outcome).Inc()
	parseDuration.Observe(seconds)
}

func RecordValidation(clean bool) {
	if clean {
		validationsTotal.WithLabelValues("clean").Inc()
		return
	}
	validationsTotal.WithLabelValues("issues").Inc()
}

// issueKindLabels maps validator kind names to their metric label form.
var issueKindLabels = map[string]string{
	"InvalidEnumValue":     "invalid_enum_value",
	"OutOfRange":           "out_of_range",
	"ConsistencyViolation": "consistency_violation",
	"FormatWidth":          "format_width",
}

// IncValidationIssue counts one validation finding by kind. It accepts the
// validator's kind name and records the label form; unknown names are
// counted verbatim.
func IncValidationIssue(kind string) {
	if label, ok := issueKindLabels[kind]; ok {
		kind = label
	}
	validationIssuesTotal.WithLabelValues(kind).Inc()
}

func IncDeckWritten()    { decksWrittenTotal.Inc() }
func IncDeckWriteError() { deckWriteErrors.Inc() }

func IncCacheRequest(backend, outcome string) {
	cacheRequestsTotal.WithLabelValues(backend, outcome).Inc()
}

func IncReportArchived()     { reportsArchivedTotal.Inc() }
func AddReportsPruned(n int) { reportsPrunedTotal.Add(float64(n)) }

func IncWatchEvent(op string)         { watchEventsTotal.WithLabelValues(op).Inc() }
func IncRevalidation(outcome string)  { revalidationsTotal.WithLabelValues(outcome).Inc() }
func IncCaseGenerated(outcome string) { casesGeneratedTotal.WithLabelValues(outcome).Inc() }
