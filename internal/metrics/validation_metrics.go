package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ValidationMetrics содержит метрики прогонов валидации.
type ValidationMetrics struct {
	// Счётчики прогонов по use case и результату (success/failure).
	runs *prometheus.CounterVec
	// Счётчики нарушений по use case и коду.
	failures *prometheus.CounterVec
	// Гистограммы длительности прогона по use case.
	duration *prometheus.HistogramVec
	// Счётчик проверок остатка по результату.
	stockChecks *prometheus.CounterVec
}

// NewValidationMetrics создаёт метрики в default registerer.
func NewValidationMetrics() *ValidationMetrics {
	return newValidationMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newValidationMetricsWithRegisterer(registerer prometheus.Registerer) *ValidationMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ValidationMetrics{
		runs: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storeguard_validation_runs_total",
			Help: "Total number of validation runs grouped by use case and result",
		}, []string{"use_case", "result"}),
		failures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storeguard_validation_failures_total",
			Help: "Total number of rule violations grouped by use case and code",
		}, []string{"use_case", "code"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "storeguard_validation_duration_seconds",
			Help:    "Duration of validation runs in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"use_case"}),
		stockChecks: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storeguard_stock_checks_total",
			Help: "Total number of stock availability checks grouped by result",
		}, []string{"result"}),
	}
}

// ObserveRun фиксирует итог одного прогона валидации.
func (m *ValidationMetrics) ObserveRun(useCase string, success bool, codes []string, elapsed time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.runs.WithLabelValues(useCase, result).Inc()
	m.duration.WithLabelValues(useCase).Observe(elapsed.Seconds())
	for _, code := range codes {
		m.failures.WithLabelValues(useCase, code).Inc()
	}
}

// ObserveStockCheck фиксирует итог проверки остатка.
func (m *ValidationMetrics) ObserveStockCheck(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.stockChecks.WithLabelValues(result).Inc()
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}
