package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	favoriteTogglesCounter  *prometheus.CounterVec
	papersListedCounter     prometheus.Counter
	graphRendersCounter     *prometheus.CounterVec
	importCandidatesCounter prometheus.Counter
)

func init() {
	favoriteTogglesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paper_archive_favorite_toggles_total",
			Help: "Total number of favorite toggles, by resulting action.",
		},
		[]string{"action"},
	)
	papersListedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "paper_archive_papers_listed_total",
			Help: "Total number of paper list requests served.",
		},
	)
	graphRendersCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paper_archive_graph_renders_total",
			Help: "Total number of relationship graph renders, by format.",
		},
		[]string{"format"},
	)
	importCandidatesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "paper_archive_import_candidates_total",
			Help: "Total number of new catalog proposals written by the arXiv importer.",
		},
	)
	prometheus.MustRegister(favoriteTogglesCounter, papersListedCounter, graphRendersCounter, importCandidatesCounter)
}
