package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	verifications  *prometheus.CounterVec
	vendorDuration *prometheus.HistogramVec
	vendorAttempts *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
	emails         *prometheus.CounterVec
	autosaves      *prometheus.CounterVec
	exports        *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

// Global metrics instance
var Default *Metrics

// Init registers the collectors on the default registry.
func Init() error {
	m, err := New("blueprint", prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	Default = m
	return nil
}

func New(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "blueprint"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{}
	var err error
	if m.verifications, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_verifications_total",
		Help:      "Payment verification outcomes.",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if m.vendorDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "vendor_request_duration_seconds",
		Help:      "Latency of single outbound vendor requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"vendor"})); err != nil {
		return nil, err
	}
	if m.vendorAttempts, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vendor_attempts_total",
		Help:      "Outbound vendor attempts by result.",
	}, []string{"vendor", "result"})); err != nil {
		return nil, err
	}
	if m.webhookEvents, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Webhook deliveries by event and result.",
	}, []string{"event", "result"})); err != nil {
		return nil, err
	}
	if m.emails, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_total",
		Help:      "Confirmation emails by provider and result.",
	}, []string{"service", "result"})); err != nil {
		return nil, err
	}
	if m.autosaves, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "autosave_writes_total",
		Help:      "Debounced autosave writes by result.",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if m.exports, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Generated exports by format and result.",
	}, []string{"format", "result"})); err != nil {
		return nil, err
	}
	if m.activeSessions, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Wizard sessions held in memory.",
	})); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, reusing an identical collector that is already
// registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) RecordVerification(outcome string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(outcome).Inc()
}

// RecordVendorAttempt tracks one outbound request. result is "ok", "retry"
// or "fail".
func (m *Metrics) RecordVendorAttempt(vendor, res string, d time.Duration) {
	if m == nil {
		return
	}
	m.vendorDuration.WithLabelValues(vendor).Observe(d.Seconds())
	m.vendorAttempts.WithLabelValues(vendor, res).Inc()
}

func (m *Metrics) RecordWebhook(event, res string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(event, res).Inc()
}

func (m *Metrics) RecordEmail(service string, err error) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(service, result(err)).Inc()
}

func (m *Metrics) RecordAutosave(ok bool) {
	if m == nil {
		return
	}
	res := "ok"
	if !ok {
		res = "error"
	}
	m.autosaves.WithLabelValues(res).Inc()
}

func (m *Metrics) RecordExport(format string, err error) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format, result(err)).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}
