package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPRequestsTotal counts handled requests by route, method and status.
var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "academy_http_requests_total",
		Help: "Total number of HTTP requests handled",
	},
	[]string{"path", "method", "status"},
)

// HTTPRequestDuration records request latency by route and method.
var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "academy_http_request_duration_seconds",
		Help:    "Latency of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"path", "method"},
)

// Game lifecycle counters
var (
	GamesStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "academy_games_started_total",
			Help: "Number of games created",
		},
	)

	GamesFinished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "academy_games_finished_total",
			Help: "Number of games that transitioned to ended",
		},
	)

	CardsDrawn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "academy_cards_drawn_total",
			Help: "Number of cards recorded, by suit",
		},
		[]string{"suit"},
	)

	ChugsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "academy_chugs_recorded_total",
			Help: "Number of chugs recorded",
		},
	)

	ChugDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "academy_chug_duration_seconds",
			Help:    "Distribution of recorded chug durations",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 60},
		},
	)
)

// Live feed and integrations
var (
	LiveClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "academy_live_clients",
			Help: "Number of connected live game feed clients",
		},
	)

	PagePosts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "academy_page_posts_total",
			Help: "Game announcements posted to the social page, by result",
		},
		[]string{"result"},
	)

	RankingCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "academy_ranking_cache_lookups_total",
			Help: "Ranked face-card cache lookups, by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration)
	prometheus.MustRegister(GamesStarted, GamesFinished, CardsDrawn, ChugsRecorded, ChugDuration)
	prometheus.MustRegister(LiveClients, PagePosts, RankingCacheLookups)
}
