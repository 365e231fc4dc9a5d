package scoreserver

import "time"

const (
	providerName       = "scoreserver"
	defaultBaseURL     = "http://localhost:8080"
	defaultHTTPTimeout = 10 * time.Second
	maxErrorBody       = 512

	pathCourts     = "/api/courts"
	pathPlayers    = "/api/players"
	pathEvents     = "/api/match-events"
	pathStatistics = "/api/match-statistics"
)
