package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics глобальный контейнер метрик
type Metrics struct {
	// Loader метрики
	DependencyFetchesTotal  *prometheus.CounterVec
	DependencyFetchDuration *prometheus.HistogramVec

	// Resolver метрики
	ResolveOperationsTotal *prometheus.CounterVec
	ResolveDuration        *prometheus.HistogramVec
	CatalogSize            *prometheus.GaugeVec
	GroupsResolved         *prometheus.HistogramVec

	// Live-check метрики
	SamplesProcessedTotal *prometheus.CounterVec
	LiveCheckFindings     *prometheus.CounterVec
	LiveCheckDuration     *prometheus.HistogramVec

	// Policy метрики
	PolicyEvaluationsTotal *prometheus.CounterVec
	PolicyEvalDuration     *prometheus.HistogramVec

	// Системные метрики
	MemoryUsage *prometheus.GaugeVec
	Goroutines  prometheus.Gauge

	// Информация о приложении
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics инициализирует метрики
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		DependencyFetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dependency_fetches_total",
				Help:      "Total number of registry dependency fetches",
			},
			[]string{"source_kind", "status"},
		),

		DependencyFetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dependency_fetch_duration_seconds",
				Help:      "Duration of registry dependency fetches",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"source_kind"},
		),

		ResolveOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resolve_operations_total",
				Help:      "Total number of registry resolution runs",
			},
			[]string{"status"},
		),

		ResolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resolve_duration_seconds",
				Help:      "Duration of registry resolution runs",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{},
		),

		CatalogSize: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "catalog_size",
				Help:      "Number of distinct attributes interned in the last resolved catalog",
			},
			[]string{"stability"},
		),

		GroupsResolved: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "groups_resolved",
				Help:      "Number of groups resolved per run",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
			[]string{"group_type"},
		),

		SamplesProcessedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "samples_processed_total",
				Help:      "Total number of live-check samples processed",
			},
			[]string{"sample_kind"},
		),

		LiveCheckFindings: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "live_check_findings_total",
				Help:      "Total number of live-check findings emitted",
			},
			[]string{"finding_id", "level"},
		),

		LiveCheckDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "live_check_duration_seconds",
				Help:      "Wall-clock duration of a live-check pipeline run",
				Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 300},
			},
			[]string{},
		),

		PolicyEvaluationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "policy_evaluations_total",
				Help:      "Total number of policy engine evaluations",
			},
			[]string{"stage", "status"},
		),

		PolicyEvalDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "policy_eval_duration_seconds",
				Help:      "Duration of individual policy engine evaluations",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5},
			},
			[]string{"stage"},
		),

		MemoryUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage",
			},
			[]string{"type"},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Build and environment information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("weaver", "")
	}
	return defaultMetrics
}

// RecordDependencyFetch записывает метрики загрузки зависимости реестра
func (m *Metrics) RecordDependencyFetch(sourceKind string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.DependencyFetchesTotal.WithLabelValues(sourceKind, status).Inc()
	m.DependencyFetchDuration.WithLabelValues(sourceKind).Observe(duration.Seconds())
}

// RecordResolve записывает метрики операции резолюции
func (m *Metrics) RecordResolve(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ResolveOperationsTotal.WithLabelValues(status).Inc()
	m.ResolveDuration.WithLabelValues().Observe(duration.Seconds())
}

// SetCatalogSize устанавливает текущий размер каталога атрибутов по стабильности
func (m *Metrics) SetCatalogSize(stability string, count int) {
	m.CatalogSize.WithLabelValues(stability).Set(float64(count))
}

// RecordGroupsResolved записывает количество разрешённых групп данного типа
func (m *Metrics) RecordGroupsResolved(groupType string, count int) {
	m.GroupsResolved.WithLabelValues(groupType).Observe(float64(count))
}

// RecordSampleProcessed записывает обработку одного live-check сэмпла
func (m *Metrics) RecordSampleProcessed(sampleKind string) {
	m.SamplesProcessedTotal.WithLabelValues(sampleKind).Inc()
}

// RecordFinding записывает выдачу одного live-check finding
func (m *Metrics) RecordFinding(findingID, level string) {
	m.LiveCheckFindings.WithLabelValues(findingID, level).Inc()
}

// RecordLiveCheckRun записывает продолжительность запуска live-check пайплайна
func (m *Metrics) RecordLiveCheckRun(duration time.Duration) {
	m.LiveCheckDuration.WithLabelValues().Observe(duration.Seconds())
}

// RecordPolicyEval записывает метрики одной оценки политики
func (m *Metrics) RecordPolicyEval(stage string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.PolicyEvaluationsTotal.WithLabelValues(stage, status).Inc()
	m.PolicyEvalDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// SetServiceInfo устанавливает информацию о сборке
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer запускает HTTP сервер для метрик
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		// Игнорируем ошибку записи - response уже отправлен
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
