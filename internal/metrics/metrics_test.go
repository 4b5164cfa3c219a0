package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/cricket-tournament-service/internal/metrics"
)

func TestRecorder_MiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := metrics.NewRecorder("cricket")
	r := gin.New()
	r.Use(rec.Middleware())
	r.GET("/players/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, p := range []string{"/players/1", "/players/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	expected := `
# HELP cricket_http_requests_total HTTP requests by method, route and status.
# TYPE cricket_http_requests_total counter
cricket_http_requests_total{method="GET",route="/players/:id",status="200"} 2
cricket_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "cricket_http_requests_total"))
}

func TestRecorder_RosterChanged(t *testing.T) {
	rec := metrics.NewRecorder("cricket")
	rec.RosterChanged("join")
	rec.RosterChanged("join")
	rec.RosterChanged("leave")

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `cricket_roster_changes_total{action="join"} 2`)
	assert.Contains(t, body, `cricket_roster_changes_total{action="leave"} 1`)
}
