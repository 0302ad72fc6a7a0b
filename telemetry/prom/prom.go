// Package prom implements telemetry.Sink against github.com/prometheus/client_golang:
// one CounterVec per labelled counter family, one Gauge/Histogram per scalar.
package prom

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry returns a fresh Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Handler returns a Prometheus HTTP handler bound to the registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Sink exports core metrics to Prometheus.
type Sink struct {
	sessionsTotal   *prometheus.CounterVec
	handshakeTotal  *prometheus.CounterVec
	handshakeLat    prometheus.Histogram
	rekeyTotal      *prometheus.CounterVec
	replayRejected  prometheus.Counter

	pathSent      *prometheus.CounterVec
	pathReceived  *prometheus.CounterVec
	pathReordered *prometheus.CounterVec
	pathExpired   *prometheus.CounterVec
	activePaths   prometheus.Gauge
	pathRTT       *prometheus.HistogramVec
	pathJitter    *prometheus.HistogramVec
	pathWeightDev *prometheus.GaugeVec

	coverRate     prometheus.Gauge
	coverRatioDev prometheus.Gauge

	powerTransitions *prometheus.CounterVec
}

// New registers every metric family on reg and returns the bound Sink.
func New(reg *prometheus.Registry) *Sink {
	s := &Sink{
		sessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nyx_sessions_total",
			Help: "Session lifecycle events by outcome.",
		}, []string{"outcome", "reason"}),
		handshakeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nyx_handshake_total",
			Help: "Handshake completions by result.",
		}, []string{"result"}),
		handshakeLat: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nyx_handshake_duration_seconds",
			Help:    "Handshake duration.",
			Buckets: prometheus.DefBuckets,
		}),
		rekeyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nyx_rekey_total",
			Help: "Rekey events by outcome and reason.",
		}, []string{"outcome", "reason"}),
		replayRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nyx_replay_rejected_total",
			Help: "Packets dropped by the anti-replay window.",
		}),
		pathSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nyx_path_sent_bytes_total",
			Help: "Bytes sent per path.",
		}, []string{"path"}),
		pathReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nyx_path_received_bytes_total",
			Help: "Bytes received per path.",
		}, []string{"path"}),
		pathReordered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nyx_path_reordered_total",
			Help: "Out-of-order deliveries per path.",
		}, []string{"path"}),
		pathExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nyx_path_reorder_expired_total",
			Help: "Reorder-timeout force-drains per path.",
		}, []string{"path"}),
		activePaths: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nyx_active_paths",
			Help: "Current count of available, non-failed paths.",
		}),
		pathRTT: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nyx_path_rtt_seconds",
			Help:    "Observed per-path RTT samples.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		pathJitter: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nyx_path_jitter_seconds",
			Help:    "Observed per-path jitter samples.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		pathWeightDev: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nyx_path_weight_ratio_deviation",
			Help: "Per-path deviation of current weight from base weight ratio.",
		}, []string{"path"}),
		coverRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nyx_cover_traffic_pps",
			Help: "Current cover-traffic packets-per-second.",
		}),
		coverRatioDev: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nyx_cover_traffic_ratio_deviation",
			Help: "Deviation of observed cover-traffic ratio from target.",
		}),
		powerTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nyx_power_state_transitions_total",
			Help: "Power-state transitions by from/to state.",
		}, []string{"from", "to"}),
	}
	reg.MustRegister(
		s.sessionsTotal, s.handshakeTotal, s.handshakeLat, s.rekeyTotal, s.replayRejected,
		s.pathSent, s.pathReceived, s.pathReordered, s.pathExpired, s.activePaths,
		s.pathRTT, s.pathJitter, s.pathWeightDev,
		s.coverRate, s.coverRatioDev,
		s.powerTransitions,
	)
	return s
}

func (s *Sink) SessionCreated(role string) { s.sessionsTotal.WithLabelValues("created", role).Inc() }
func (s *Sink) SessionClosed(reason string) {
	s.sessionsTotal.WithLabelValues("closed", reason).Inc()
}
func (s *Sink) SessionFailed(reason string) {
	s.sessionsTotal.WithLabelValues("failed", reason).Inc()
}

func (s *Sink) HandshakeCompleted(ok bool, d time.Duration) {
	result := "ok"
	if !ok {
		result = "fail"
	}
	s.handshakeTotal.WithLabelValues(result).Inc()
	s.handshakeLat.Observe(d.Seconds())
}

func (s *Sink) RekeyInitiated()           { s.rekeyTotal.WithLabelValues("initiated", "").Inc() }
func (s *Sink) RekeyApplied()             { s.rekeyTotal.WithLabelValues("applied", "").Inc() }
func (s *Sink) RekeyGraceUsed()           { s.rekeyTotal.WithLabelValues("grace_used", "").Inc() }
func (s *Sink) RekeyFailed(reason string) { s.rekeyTotal.WithLabelValues("failed", reason).Inc() }

func (s *Sink) ReplayRejected() { s.replayRejected.Inc() }

func (s *Sink) PathSent(pathID uint32, bytes int) {
	s.pathSent.WithLabelValues(pathLabel(pathID)).Add(float64(bytes))
}
func (s *Sink) PathReceived(pathID uint32, bytes int) {
	s.pathReceived.WithLabelValues(pathLabel(pathID)).Add(float64(bytes))
}
func (s *Sink) PathReordered(pathID uint32) { s.pathReordered.WithLabelValues(pathLabel(pathID)).Inc() }
func (s *Sink) PathExpired(pathID uint32)   { s.pathExpired.WithLabelValues(pathLabel(pathID)).Inc() }
func (s *Sink) ActivePaths(n int)           { s.activePaths.Set(float64(n)) }
func (s *Sink) PathRTT(pathID uint32, d time.Duration) {
	s.pathRTT.WithLabelValues(pathLabel(pathID)).Observe(d.Seconds())
}
func (s *Sink) PathJitter(pathID uint32, d time.Duration) {
	s.pathJitter.WithLabelValues(pathLabel(pathID)).Observe(d.Seconds())
}
func (s *Sink) PathWeightDeviation(pathID uint32, deviation float64) {
	s.pathWeightDev.WithLabelValues(pathLabel(pathID)).Set(deviation)
}

func (s *Sink) CoverTrafficRate(pps float64)             { s.coverRate.Set(pps) }
func (s *Sink) CoverTrafficRatioDeviation(deviation float64) { s.coverRatioDev.Set(deviation) }

func (s *Sink) PowerStateTransition(from, to string) {
	s.powerTransitions.WithLabelValues(from, to).Inc()
}

func pathLabel(pathID uint32) string { return strconv.FormatUint(uint64(pathID), 10) }
