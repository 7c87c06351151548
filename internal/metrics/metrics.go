package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/classbell/internal/models"
)

// Service encapsulates Prometheus instrumentation for the notification loop.
// All methods are safe on a nil receiver so instrumentation stays optional.
type Service struct {
	registry *prometheus.Registry
	handler  http.Handler

	eventsDispatched *prometheus.CounterVec
	eventsMissed     *prometheus.CounterVec
	channelErrors    *prometheus.CounterVec
	tracked          prometheus.Gauge
}

// NewService registers the core collectors.
func NewService() *Service {
	registry := prometheus.NewRegistry()

	eventsDispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "classbell_events_dispatched_total",
		Help: "Events handed to the notifier, by phase",
	}, []string{"phase"})

	eventsMissed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "classbell_events_missed_total",
		Help: "Events skipped by the missed-event policy, by phase",
	}, []string{"phase"})

	channelErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "classbell_channel_errors_total",
		Help: "Failed notification channel calls, by operation",
	}, []string{"operation"})

	tracked := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "classbell_tracked_notifications",
		Help: "Notifications currently tracked by course id",
	})

	registry.MustRegister(eventsDispatched, eventsMissed, channelErrors, tracked)

	return &Service{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		eventsDispatched: eventsDispatched,
		eventsMissed:     eventsMissed,
		channelErrors:    channelErrors,
		tracked:          tracked,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *Service) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveDispatch records an event delivered to the notifier.
func (m *Service) ObserveDispatch(phase models.Phase) {
	if m == nil {
		return
	}
	m.eventsDispatched.WithLabelValues(phase.String()).Inc()
}

// ObserveMissed records an event abandoned by the missed-event policy.
func (m *Service) ObserveMissed(phase models.Phase) {
	if m == nil {
		return
	}
	m.eventsMissed.WithLabelValues(phase.String()).Inc()
}

// ObserveChannelError records a failed channel call.
func (m *Service) ObserveChannelError(operation string) {
	if m == nil {
		return
	}
	m.channelErrors.WithLabelValues(operation).Inc()
}

// SetTracked reports how many notifications are currently tracked.
func (m *Service) SetTracked(n int) {
	if m == nil {
		return
	}
	m.tracked.Set(float64(n))
}
