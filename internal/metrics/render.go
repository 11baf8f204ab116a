package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	renderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cvforge",
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "单次 PDF 渲染耗时分布（秒）。",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	renderBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cvforge",
			Subsystem: "render",
			Name:      "output_bytes",
			Help:      "渲染产物大小分布（字节）。",
			Buckets:   prometheus.ExponentialBuckets(4*1024, 2, 10),
		},
	)
)

// ObserveRender 记录一次成功渲染的耗时与产物大小。
func ObserveRender(elapsed time.Duration, size int) {
	renderDuration.Observe(elapsed.Seconds())
	renderBytes.Observe(float64(size))
}
