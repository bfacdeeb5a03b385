// Package metrics provides Prometheus metrics for synthesis, validation and
// publishing.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	synthesesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shortgen",
		Subsystem: "synthesis",
		Name:      "total",
		Help:      "Videos synthesized by template and result",
	}, []string{"template", "result"})

	encodeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "shortgen",
		Subsystem: "synthesis",
		Name:      "encode_seconds",
		Help:      "Wall time spent encoding one video",
		Buckets:   []float64{1, 2, 5, 10, 20, 40, 80, 160},
	})

	validationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shortgen",
		Subsystem: "validation",
		Name:      "total",
		Help:      "Validated files by verdict",
	}, []string{"result"})

	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shortgen",
		Subsystem: "publish",
		Name:      "uploads_total",
		Help:      "Uploads by platform and result",
	}, []string{"platform", "result"})

	lastRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "shortgen",
		Subsystem: "publish",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last scheduled run",
	})
)

func result(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}

// ObserveSynthesis records one synthesis attempt.
func ObserveSynthesis(template string, ok bool) {
	synthesesTotal.WithLabelValues(template, result(ok)).Inc()
}

// ObserveEncode records the encode duration of a successful synthesis.
func ObserveEncode(d time.Duration) {
	encodeSeconds.Observe(d.Seconds())
}

// ObserveValidation records one validation verdict.
func ObserveValidation(valid bool) {
	validationsTotal.WithLabelValues(result(valid)).Inc()
}

// ObserveUpload records one upload attempt.
func ObserveUpload(platform string, ok bool) {
	uploadsTotal.WithLabelValues(platform, result(ok)).Inc()
}

// MarkRun records the time of a scheduled run.
func MarkRun(t time.Time) {
	lastRunTimestamp.Set(float64(t.Unix()))
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
