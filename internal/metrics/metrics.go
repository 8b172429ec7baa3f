// Package metrics holds Prometheus collectors of the search pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_scout_search_requests_total",
			Help: "Search requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)
	SearchNewVacancies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_scout_search_new_vacancies_total",
			Help: "Vacancies added by a search mode after deduplication",
		},
		[]string{"mode"},
	)
	SearchModesUsed = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hh_scout_search_modes_used",
			Help:    "Number of search modes run before the cascade stopped",
			Buckets: []float64{1, 2, 3, 4},
		},
	)

	VacancyScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hh_scout_vacancy_score",
			Help:    "Distribution of vacancy relevance scores",
			Buckets: []float64{0, 0.1, 0.15, 0.2, 0.25, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)
	RankingOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_scout_ranking_outcomes_total",
			Help: "Which threshold produced the ranked list",
		},
		[]string{"outcome"},
	)

	ApplicationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_scout_applications_total",
			Help: "Applications sent to hh.ru by outcome",
		},
		[]string{"outcome"},
	)

	DigestUsersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_scout_digest_users_total",
			Help: "Users processed by the daily digest by outcome",
		},
		[]string{"outcome"},
	)
	DigestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hh_scout_digest_duration_seconds",
			Help:    "Duration of a full digest cycle",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)
)

var initOnce sync.Once

// Init registers collectors in the default registry. Safe to call many times.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			SearchRequestsTotal,
			SearchNewVacancies,
			SearchModesUsed,
			VacancyScores,
			RankingOutcomes,
			ApplicationsTotal,
			DigestUsersTotal,
			DigestDuration,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveSearch(mode, outcome string, added int) {
	SearchRequestsTotal.WithLabelValues(mode, outcome).Inc()
	if added > 0 {
		SearchNewVacancies.WithLabelValues(mode).Add(float64(added))
	}
}

func ObserveScore(score float64) {
	VacancyScores.Observe(score)
}
