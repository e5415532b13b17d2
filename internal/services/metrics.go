package services

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for AccountEvents and ShareResolutions.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AccountEvents counts register, login, reset_request and reset attempts.
var AccountEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cardkeep_account_events_total",
		Help: "Total number of account operations by event and outcome",
	},
	[]string{"event", "outcome"},
)

// EnrichmentMisses counts deck card references the catalog did not know.
var EnrichmentMisses = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "cardkeep_deck_enrichment_misses_total",
		Help: "Total number of deck cards served without catalog display fields",
	},
)

// ShareResolutions counts public share lookups by outcome.
var ShareResolutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cardkeep_share_resolutions_total",
		Help: "Total number of shared collection lookups by outcome",
	},
	[]string{"outcome"},
)

// RegisterMetrics registers the service metrics with reg. Panics if
// registration fails, following the prometheus convention.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AccountEvents, EnrichmentMisses, ShareResolutions)
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
