package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level collectors. Helpers are no-ops until Register succeeds.
var (
	regOK atomic.Bool

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "countdown",
			Subsystem: "timer",
			Name:      "transitions_total",
			Help:      "Timer state transitions.",
		}, []string{"from", "to"},
	)
	wakeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "countdown",
			Subsystem: "wake",
			Name:      "events_total",
			Help:      "Deferred wake events by kind (scheduled, cancelled, delivered, ignored, failed).",
		}, []string{"event"},
	)
	reconciliations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "countdown",
			Subsystem: "handoff",
			Name:      "reconciliations_total",
			Help:      "Foreground resume reconciliations by outcome (running, paused, stopped, expired).",
		}, []string{"outcome"},
	)
	secondsRemaining = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "countdown",
			Subsystem: "timer",
			Name:      "seconds_remaining",
			Help:      "Seconds remaining at the last lifecycle boundary.",
		},
	)
)

// Register registers all collectors with r. Calling it again is a no-op.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{transitions, wakeEvents, reconciliations, secondsRemaining}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves the default gatherer.
func Handler() http.Handler { return promhttp.Handler() }

// Serve exposes Handler on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func RecordTransition(from, to string) {
	if regOK.Load() {
		transitions.WithLabelValues(from, to).Inc()
	}
}

func RecordWake(event string) {
	if regOK.Load() {
		wakeEvents.WithLabelValues(event).Inc()
	}
}

func RecordReconciliation(outcome string) {
	if regOK.Load() {
		reconciliations.WithLabelValues(outcome).Inc()
	}
}

func SetSecondsRemaining(n int64) {
	if regOK.Load() {
		secondsRemaining.Set(float64(n))
	}
}
