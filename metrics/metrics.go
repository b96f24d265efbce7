// Package metrics exposes Prometheus metrics for the inspector.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const namespace = "vnscope"

// Recorder exposes Prometheus metrics for the inspector. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	calls            *prometheus.CounterVec
	callDuration     *prometheus.HistogramVec
	epochPublished   prometheus.Counter
	currentEpoch     prometheus.Gauge
	shardKeyResolved prometheus.Counter
	syncErrors       *prometheus.CounterVec
	viewFanOut       prometheus.Histogram
	views            *prometheus.CounterVec
	substateFailures prometheus.Counter
}

// NewRecorder registers metrics with provided registry.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_calls_total",
			Help:      "Remote node queries grouped by method and result",
		}, []string{"method", "result"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_call_duration_seconds",
			Help:      "Latency of remote node queries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		epochPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "epoch_snapshots_total",
			Help:      "Number of epoch snapshots published",
		}),
		currentEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_epoch",
			Help:      "Epoch of the latest published snapshot",
		}),
		shardKeyResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shard_key_resolutions_total",
			Help:      "Number of successful shard key lookups",
		}),
		syncErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_errors_total",
			Help:      "State synchronization failures grouped by source",
		}, []string{"source"}),
		viewFanOut: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "txview_shards",
			Help:      "Number of shards discovered per transaction view",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
		}),
		views: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txview_loads_total",
			Help:      "Transaction view loads grouped by result",
		}, []string{"result"}),
		substateFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txview_substate_failures_total",
			Help:      "Per-shard substate fetches that failed",
		}),
	}

	reg.MustRegister(
		r.calls,
		r.callDuration,
		r.epochPublished,
		r.currentEpoch,
		r.shardKeyResolved,
		r.syncErrors,
		r.viewFanOut,
		r.views,
		r.substateFailures,
	)
	return r
}

// Handler returns HTTP handler serving /metrics.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveCall records one remote query.
func (r *Recorder) ObserveCall(method string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.calls.WithLabelValues(method, result(err)).Inc()
	r.callDuration.WithLabelValues(method).Observe(d.Seconds())
}

// EpochPublished records a new epoch snapshot.
func (r *Recorder) EpochPublished(epoch uint32) {
	if r == nil {
		return
	}
	r.epochPublished.Inc()
	r.currentEpoch.Set(float64(epoch))
}

// ShardKeyResolved records a successful shard key lookup.
func (r *Recorder) ShardKeyResolved() {
	if r == nil {
		return
	}
	r.shardKeyResolved.Inc()
}

// SyncError records a synchronization failure from source
// ("epoch", "identity" or "shard_key").
func (r *Recorder) SyncError(source string) {
	if r == nil {
		return
	}
	if source == "" {
		source = "unknown"
	}
	r.syncErrors.WithLabelValues(source).Inc()
}

// ObserveView records a transaction view load.
func (r *Recorder) ObserveView(shards, failedShards int, err error) {
	if r == nil {
		return
	}
	r.views.WithLabelValues(result(err)).Inc()
	if err == nil {
		r.viewFanOut.Observe(float64(shards))
	}
	r.substateFailures.Add(float64(failedShards))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log logrus.FieldLogger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("Metrics server started")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
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
