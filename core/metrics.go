package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dvla",
		Name:      "fetch_total",
		Help:      "Total count of vehicle enquiries",
	}, []string{"vehicle", "result"})

	successMetric = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "dvla",
		Name:      "last_success_timestamp_seconds",
		Help:      "Time of the last successful vehicle enquiry",
	}, []string{"vehicle"})

	availableMetric = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "dvla",
		Name:      "vehicle_available",
		Help:      "Vehicle data availability",
	}, []string{"vehicle"})
)
