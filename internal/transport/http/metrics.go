package httptransport

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total", Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})
	metricRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_request_duration_seconds", Help: "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	metricWagersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wagers_placed_total", Help: "accepted wagers",
	})
	metricWagerVolume = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wager_volume_total", Help: "currency staked through accepted wagers",
	})
	metricBetsSettled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bets_settled_total", Help: "bets reaching a terminal status",
	}, []string{"outcome"})
	metricLedgerErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_errors_total", Help: "ledger operations rejected, by error code",
	}, []string{"code"})
)

func init() {
	prometheus.MustRegister(
		metricRequests,
		metricRequestDuration,
		metricWagersPlaced,
		metricWagerVolume,
		metricBetsSettled,
		metricLedgerErrors,
	)
}

// MetricsMiddleware records request counts and latency per route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metricRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		metricRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
