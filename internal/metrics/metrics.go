// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LLMAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daybrief",
		Name:      "llm_attempts_total",
		Help:      "LLM completion attempts by outcome.",
	}, []string{"outcome"})

	ParseStage = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daybrief",
		Name:      "llm_parse_stage_total",
		Help:      "Which parse stage produced the summary output.",
	}, []string{"stage"})

	Summaries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daybrief",
		Name:      "summaries_total",
		Help:      "Summarize requests by result (cached, created, updated, failed).",
	}, []string{"result"})

	RecapDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daybrief",
		Name:      "recap_deliveries_total",
		Help:      "Recap channel deliveries by channel and outcome.",
	}, []string{"channel", "outcome"})

	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daybrief",
		Name:      "token_refreshes_total",
		Help:      "OAuth access token refreshes by provider and outcome.",
	}, []string{"provider", "outcome"})
)
