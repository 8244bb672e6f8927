// Package metrics exposes Prometheus counters for the bot's hot paths.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ClassificationsTotal counts classified messages by intent and by
	// which path produced the result (ai or fallback).
	ClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "masroufy_classifications_total",
		Help: "Messages classified, by intent and source.",
	}, []string{"intent", "source"})

	// FallbackTotal counts NLU failures by reason.
	FallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "masroufy_classifier_fallback_total",
		Help: "Regex fallback activations, by failure reason.",
	}, []string{"reason"})

	// ConfirmationsTotal counts pending-action outcomes.
	ConfirmationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "masroufy_confirmations_total",
		Help: "Pending action outcomes.",
	}, []string{"result"})

	// SweptTotal counts records removed by the expiry sweeps.
	SweptTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "masroufy_swept_records_total",
		Help: "Expired records removed by background sweeps.",
	}, []string{"store"})
)

// Serve starts a blocking /metrics listener on addr.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
