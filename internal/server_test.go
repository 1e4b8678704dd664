package internal

import (
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgriffin/trainloop/internal/config"
	"github.com/kgriffin/trainloop/internal/telemetry/metrics"
)

// routerSetup only wires handlers, no repo call happens until a request
// is actually served, so a nil db pool is fine here
func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		LogRateLimitAllowedPerMin: 60,
		Training:                  config.DefaultTraining(),
	}
	return &Server{
		config:         cfg,
		metricsManager: metrics.NewTestManager(),
	}
}

func TestRouterSetup_routes(t *testing.T) {
	server := newTestServer(t)
	router, err := server.routerSetup()
	require.NoError(t, err)

	cases := []struct {
		method string
		path   string
		name   string
	}{
		{"POST", "/trainlog", "new-log"},
		{"GET", "/trainlog/recent", "recent-logs"},
		{"GET", "/trainlog/42", "get-log"},
		{"PUT", "/trainlog/42", "update-log"},
		{"DELETE", "/trainlog/42", "remove-log"},
		{"POST", "/trainlog/42/intervals", "add-intervals"},
		{"GET", "/trainlog/42/intervals/last", "last-interval"},
		{"PUT", "/trainlog/42/intervals/7", "update-interval"},
		{"DELETE", "/trainlog/42/intervals/7", "remove-interval"},
		{"POST", "/strengthlog", "new-strength-log"},
		{"GET", "/strengthlog/recent", "recent-strength-logs"},
		{"GET", "/strengthlog/42", "get-strength-log"},
		{"POST", "/strengthlog/42/sets", "add-sets"},
		{"GET", "/strengthlog/42/sets/last", "last-set"},
		{"GET", "/plans/programs/3", "get-program"},
		{"GET", "/plans/workouts/10", "get-workout"},
		{"GET", "/plans/units", "list-units"},
		{"GET", "/plans/exercises", "list-exercises"},
		{"POST", "/supplementallog", "new-supplemental-log"},
		{"GET", "/supplementallog/42", "get-supplemental-log"},
		{"DELETE", "/supplementallog/42", "remove-supplemental-log"},
		{"GET", "/recommend/today", "recommend-today"},
		{"POST", "/recommend/backfill", "backfill-sweep"},
		{"GET", "/no-such-path", "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, tc.path, nil)
			require.NoError(t, err)

			var match mux.RouteMatch
			require.True(t, router.Match(req, &match), "no route matched")
			require.NotNil(t, match.Route)
			assert.Equal(t, tc.name, match.Route.GetName())
		})
	}
}
