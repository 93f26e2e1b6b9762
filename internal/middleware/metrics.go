package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/taskdeck/internal/metrics"
)

// NewMetricsMiddleware はHTTPステータスコードとリクエスト処理時間を
// Prometheusメトリクスとして記録するミドルウェアを返す。
func NewMetricsMiddleware(m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			m.HTTPStatusTotal.WithLabelValues(strconv.Itoa(rec.statusCode)).Inc()
			m.RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
