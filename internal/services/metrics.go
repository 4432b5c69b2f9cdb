package services

import "github.com/prometheus/client_golang/prometheus"

// Domain counters exposed on /metrics next to the HTTP collectors.
var (
	votesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_votes_total",
		Help: "Total number of votes recorded.",
	})

	entriesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_entries_created_total",
		Help: "Total number of catalog entries created.",
	})

	entriesDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_entries_deleted_total",
		Help: "Total number of catalog entries deleted.",
	})

	conflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_conflicts_total",
		Help: "Total number of create requests rejected for a duplicate name.",
	})
)

func init() {
	prometheus.MustRegister(votesTotal, entriesCreatedTotal, entriesDeletedTotal, conflictsTotal)
}
