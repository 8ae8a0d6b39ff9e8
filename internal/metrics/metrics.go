// Package metrics はPrometheusメトリクスの収集と公開を提供します。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はドキュメント操作の成否と所要時間を収集します。
// nilレシーバーでも安全に呼べるため、テストではそのまま省略できます。
type Collector struct {
	processed *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewCollector はメトリクスを登録済みの Collector を作成します。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdfatelier_documents_processed_total",
			Help: "Number of successfully processed document operations.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdfatelier_operation_failures_total",
			Help: "Number of failed document operations by error code.",
		}, []string{"operation", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pdfatelier_operation_duration_seconds",
			Help:    "Duration of successful document operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(c.processed, c.failures, c.duration)
	return c
}

// RecordSuccess は操作の成功と所要時間を記録します。
func (c *Collector) RecordSuccess(operation string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.processed.WithLabelValues(operation).Inc()
	c.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordFailure は操作の失敗をエラーコード付きで記録します。
func (c *Collector) RecordFailure(operation, code string) {
	if c == nil {
		return
	}
	c.failures.WithLabelValues(operation, code).Inc()
}

// Handler は /metrics 用のハンドラーを返します。
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
