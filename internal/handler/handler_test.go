package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/cricket-tournament-service/internal/handler"
	"github.com/maxviazov/cricket-tournament-service/internal/repository/memory"
	"github.com/maxviazov/cricket-tournament-service/internal/service"
)

// stubPinger implements handler.Pinger for health endpoints.
type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newRouter(t *testing.T, p handler.Pinger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zerolog.New(io.Discard)
	s := memory.NewStore()
	st := service.Stores{Teams: s.Teams(), Players: s.Players(), Matches: s.Matches(), Tx: s, Seq: s}
	roster := service.NewRosterManager(st.Teams, st.Players, nil, logger)

	r := gin.New()
	r.Use(handler.RequestID(), handler.Recovery(logger), handler.AccessLog(logger))
	if p == nil {
		p = s
	}
	handler.Register(r, p,
		service.NewTeamService(st, roster, logger),
		service.NewPlayerService(st, roster, logger),
		service.NewMatchService(st, service.NewResultResolver(st.Players), logger),
	)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, handler.APIV1Prefix+path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	require.NoErrorf(t, json.Unmarshal(w.Body.Bytes(), &env), "body=%s", w.Body.String())
	return w, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

type errorBody struct {
	Error       string               `json:"error"`
	Field       string               `json:"field"`
	FieldErrors []service.FieldError `json:"field_errors"`
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name string
		path string
		err  error
		want int
	}{
		{"live root", "/live", nil, http.StatusOK},
		{"ready root", "/ready", nil, http.StatusOK},
		{"live api", handler.APIV1Prefix + "/health/live", errors.New("db down"), http.StatusOK},
		{"ready api", handler.APIV1Prefix + "/health/ready", nil, http.StatusOK},
		{"ready unavailable", handler.APIV1Prefix + "/health/ready", errors.New("db down"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(t, stubPinger{err: tc.err})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.want, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get(handler.RequestIDHeader))
		})
	}
}

func TestRosterTransferScenario(t *testing.T) {
	r := newRouter(t, nil)

	w, env := do(t, r, http.MethodPost, "/teams", map[string]any{"teamName": "Mumbai Indians"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	mumbai := decode[map[string]any](t, env)

	w, env = do(t, r, http.MethodPost, "/teams", map[string]any{"teamName": "Chennai Super Kings"})
	require.Equal(t, http.StatusCreated, w.Code)
	chennai := decode[map[string]any](t, env)

	w, env = do(t, r, http.MethodPost, "/players", map[string]any{
		"name": "Rohit Sharma", "teamName": "Mumbai Indians", "role": "BATSMAN", "battingStyle": "RIGHT_HANDED",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rohit := decode[map[string]any](t, env)
	assert.Equal(t, "Mumbai Indians", rohit["teamName"])

	_, env = do(t, r, http.MethodGet, "/teams/1", nil)
	assert.Equal(t, []any{rohit["id"]}, decode[map[string]any](t, env)["playerIds"])

	w, env = do(t, r, http.MethodPatch, "/players/update/1", map[string]any{"teamName": "Chennai Super Kings"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Chennai Super Kings", decode[map[string]any](t, env)["teamName"])

	_, env = do(t, r, http.MethodGet, "/teams/1", nil)
	assert.Empty(t, decode[map[string]any](t, env)["playerIds"])
	_, env = do(t, r, http.MethodGet, "/teams/2", nil)
	assert.Equal(t, []any{rohit["id"]}, decode[map[string]any](t, env)["playerIds"])

	assert.Equal(t, float64(1), mumbai["id"])
	assert.Equal(t, float64(2), chennai["id"])
}

func TestMatchScenario(t *testing.T) {
	r := newRouter(t, nil)
	for _, name := range []string{"A", "B"} {
		w, _ := do(t, r, http.MethodPost, "/teams", map[string]any{"teamName": name})
		require.Equal(t, http.StatusCreated, w.Code)
		w, _ = do(t, r, http.MethodPost, "/players", map[string]any{
			"name": name + " Star", "teamName": name, "role": "ALL_ROUNDER", "battingStyle": "LEFT_HANDED",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, env := do(t, r, http.MethodPost, "/matches", map[string]any{
		"venue": "Wankhede", "date": "2024-04-01", "firstTeamName": "A", "secondTeamName": "B",
		"status": "COMPLETED", "result": map[string]any{"winner": "A", "margin": "10 runs", "manOfTheMatch": "A Star"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	m := decode[map[string]any](t, env)
	assert.Equal(t, "A", m["result"].(map[string]any)["winner"])

	w, env = do(t, r, http.MethodPost, "/matches", map[string]any{
		"venue": "Wankhede", "date": "2024-04-02T14:00:00Z", "firstTeamName": "A", "secondTeamName": "B",
		"status": "SCHEDULED", "result": map[string]any{"winner": "A", "margin": "1 run", "manOfTheMatch": "A Star"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	eb := decode[errorBody](t, env)
	assert.Equal(t, "invalid_match", eb.Error)
	assert.Equal(t, "result", eb.Field)

	w, _ = do(t, r, http.MethodPatch, "/matches/update/1", map[string]any{"venue": "Eden Gardens", "date": nil})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestBindingErrors(t *testing.T) {
	r := newRouter(t, nil)
	cases := []struct {
		name      string
		method    string
		path      string
		body      any
		wantField string
	}{
		{"missing name", http.MethodPost, "/players", map[string]any{"role": "BATSMAN", "battingStyle": "RIGHT_HANDED"}, "name"},
		{"nested stats type", http.MethodPost, "/players", `{"name":"X","role":"BATSMAN","battingStyle":"RIGHT_HANDED","stats":{"runsScored":"many"}}`, "stats.runsScored"},
		{"malformed", http.MethodPost, "/teams", `{"teamName":`, "body"},
		{"bad player id in roster", http.MethodPost, "/teams", map[string]any{"teamName": "T", "playerIds": []int{0}}, "playerIds[0]"},
		{"bad date", http.MethodPost, "/matches", map[string]any{"venue": "V", "date": "01/04/2024", "firstTeamName": "A", "secondTeamName": "B", "status": "SCHEDULED"}, "date"},
		{"missing date", http.MethodPost, "/matches", map[string]any{"venue": "V", "firstTeamName": "A", "secondTeamName": "B", "status": "SCHEDULED"}, "date"},
		{"bad id", http.MethodGet, "/players/abc", nil, "id"},
		{"enum checked by service", http.MethodPost, "/players", map[string]any{"name": "X", "role": "KEEPER", "battingStyle": "RIGHT_HANDED"}, "role"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := do(t, r, tc.method, tc.path, tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			eb := decode[errorBody](t, env)
			assert.Equal(t, "invalid_input", eb.Error)
			fields := make([]string, 0, len(eb.FieldErrors))
			for _, fe := range eb.FieldErrors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tc.wantField)
		})
	}
}

func TestNotFound(t *testing.T) {
	r := newRouter(t, nil)
	for _, path := range []string{"/players/7", "/teams/7", "/teams/7/details", "/matches/7"} {
		w, env := do(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, env.Message, "not found with id : '7'")
	}
	w, _ := do(t, r, http.MethodDelete, "/teams/7", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handler.RequestID(), handler.Recovery(zerolog.New(io.Discard)))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "internal server error", env.Message)
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestRequestIDPassthrough(t *testing.T) {
	r := newRouter(t, stubPinger{})
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set(handler.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(handler.RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handler.RateLimit(1, 2))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	off := gin.New()
	off.Use(handler.RateLimit(0, 0))
	off.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		off.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestRegister_RouteTable(t *testing.T) {
	r := newRouter(t, stubPinger{})
	got := map[string]bool{}
	for _, ri := range r.Routes() {
		got[ri.Method+" "+ri.Path] = true
	}
	for _, group := range []string{handler.PlayersPath, handler.TeamsPath, handler.MatchesPath} {
		base := handler.APIV1Prefix + group
		for _, want := range []string{
			http.MethodGet + " " + base,
			http.MethodGet + " " + base + "/:id",
			http.MethodPost + " " + base,
			http.MethodPut + " " + base + "/update/:id",
			http.MethodPatch + " " + base + "/update/:id",
			http.MethodDelete + " " + base + "/:id",
		} {
			assert.True(t, got[want], "missing route %s", want)
		}
	}
	assert.True(t, got[http.MethodGet+" "+handler.APIV1Prefix+handler.TeamsPath+"/:id/details"])
	assert.True(t, got[http.MethodGet+" "+handler.APIV1Prefix+handler.HealthPath+"/ready"])
}
