package live

import (
	"time"

	"churchadmin/internal/metrics"
)

func observeLoad(name string, items int, err error, d time.Duration) {
	metrics.LiveLoads.WithLabelValues(name, metrics.Result(err)).Inc()
	metrics.LiveItems.WithLabelValues(name).Set(float64(items))
	metrics.LiveLoadDuration.WithLabelValues(name).Observe(d.Seconds())
}
