// internal/app/system/metrics/metrics.go

// Package metrics registers the Prometheus instruments for the workflow
// layer and exposes the scrape handler mounted at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WorkflowOutcomes counts multi-step workflow completions by result.
	// workflow: create_group, accept_invitation, park_car, delete_car,
	// delete_group, delete_account; outcome: ok, error, partial.
	WorkflowOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tagauto",
		Name:      "workflow_outcomes_total",
		Help:      "Multi-step workflow completions by workflow and outcome.",
	}, []string{"workflow", "outcome"})

	// PushSends counts push notification attempts.
	PushSends = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tagauto",
		Name:      "push_sends_total",
		Help:      "Push notification attempts by outcome (sent, failed, no_token).",
	}, []string{"outcome"})

	// GeocodeLookups counts reverse-geocode lookups by cache result.
	GeocodeLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tagauto",
		Name:      "geocode_lookups_total",
		Help:      "Reverse geocode lookups by result (hit, miss, error).",
	}, []string{"result"})

	// EventsPublished counts websocket event broadcasts by type.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tagauto",
		Name:      "events_published_total",
		Help:      "Websocket events published by type.",
	}, []string{"type"})
)

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
