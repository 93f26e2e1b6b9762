// Package metrics はPrometheus形式のアプリケーションメトリクスを提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics はアプリケーションのPrometheusメトリクスを保持する。
type Metrics struct {
	registry *prometheus.Registry

	// HTTPStatusTotal はHTTPステータスコード別のレスポンス数。
	HTTPStatusTotal *prometheus.CounterVec

	// RequestDuration はHTTPリクエストの処理時間（秒）。
	RequestDuration *prometheus.HistogramVec

	// LoginTotal はログイン試行数（result: success / failure）。
	LoginTotal *prometheus.CounterVec

	// TokenVerifyFailureTotal はトークン検証の失敗数。
	TokenVerifyFailureTotal prometheus.Counter

	// TodosCreatedTotal は作成されたTodoの総数。
	TodosCreatedTotal prometheus.Counter
}

// New はメトリクスを生成し、専用レジストリに登録する。
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		HTTPStatusTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskdeck_http_status_total",
				Help: "Total HTTP responses by status code.",
			},
			[]string{"status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskdeck_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		LoginTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskdeck_login_total",
				Help: "Total login attempts by result.",
			},
			[]string{"result"},
		),
		TokenVerifyFailureTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "taskdeck_token_verify_failure_total",
				Help: "Total failed bearer token verifications.",
			},
		),
		TodosCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "taskdeck_todos_created_total",
				Help: "Total todos created.",
			},
		),
	}

	registry.MustRegister(
		m.HTTPStatusTotal,
		m.RequestDuration,
		m.LoginTotal,
		m.TokenVerifyFailureTotal,
		m.TodosCreatedTotal,
	)

	return m
}

// Handler は/metricsエンドポイント用のHTTPハンドラーを返す。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordLoginSuccess はログイン成功を記録する。
func (m *Metrics) RecordLoginSuccess() {
	m.LoginTotal.WithLabelValues("success").Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (m *Metrics) RecordLoginFailure() {
	m.LoginTotal.WithLabelValues("failure").Inc()
}
