package notify

import "github.com/prometheus/client_golang/prometheus"

var (
	metricQueued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notify_queued_total", Help: "notices queued for delivery",
	})
	metricDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_dropped_total", Help: "notices dropped, by cause",
	}, []string{"cause"})
	metricRetry = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_retry_total", Help: "delivery retries per sink",
	}, []string{"sink"})
	metricSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_sent_total", Help: "notices delivered per sink",
	}, []string{"sink"})
	metricFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_failed_total", Help: "failed delivery attempts per sink",
	}, []string{"sink"})
	metricQueueLen = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notify_queue_len", Help: "notices waiting in the dispatch queue",
	})
)

func init() {
	prometheus.MustRegister(metricQueued, metricDropped, metricRetry, metricSent, metricFailed, metricQueueLen)
}
