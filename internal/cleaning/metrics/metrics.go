package metrics

import (
	"errors"
	"net/http"

	apperrors "custclean/pkg/errors"
	"custclean/pkg/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "custclean"

const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Collector holds the cleaning run metrics on a private registry.
type Collector struct {
	registry   *prometheus.Registry
	runs       *prometheus.CounterVec
	rowsIn     prometheus.Counter
	rowsOut    prometheus.Counter
	duplicates prometheus.Counter
	duration   prometheus.Histogram
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Cleaning runs by outcome.",
		}, []string{"outcome"}),
		rowsIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_in_total",
			Help:      "Rows received by successful cleaning runs.",
		}),
		rowsOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_out_total",
			Help:      "Rows returned by successful cleaning runs.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_removed_total",
			Help:      "Duplicate rows dropped by cleaning runs.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of successful cleaning runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	c.registry.MustRegister(
		c.runs, c.rowsIn, c.rowsOut, c.duplicates, c.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveRun records one call of the run service. Rejected requests are those
// that would fail again if resubmitted unchanged.
func (c *Collector) ObserveRun(report *model.Report, err error) {
	if err != nil {
		c.runs.WithLabelValues(outcome(err)).Inc()
		return
	}
	c.runs.WithLabelValues(OutcomeSuccess).Inc()
	if report == nil {
		return
	}
	c.rowsIn.Add(float64(report.RowsIn))
	c.rowsOut.Add(float64(report.RowsOut))
	c.duplicates.Add(float64(report.DuplicatesRemoved))
	c.duration.Observe(float64(report.DurationMs) / 1000)
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.StatusCode() < http.StatusInternalServerError {
		return OutcomeRejected
	}
	return OutcomeFailed
}
