package service

import "github.com/prometheus/client_golang/prometheus"

var ratingSubmissions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rating_submissions_total",
		Help: "Rating submissions by outcome",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(ratingSubmissions)
}
