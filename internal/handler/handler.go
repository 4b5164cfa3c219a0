package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/maxviazov/cricket-tournament-service/internal/service"
)

// Register mounts all public routes on the given engine.
// Accepts service layer dependencies for API endpoints.
func Register(r *gin.Engine, store Pinger, teamSvc service.TeamService, playerSvc service.PlayerService, matchSvc service.MatchService) {
	useJSONFieldNames()
	h := NewHealthHandler(store)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group(HealthPath)
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewTeamHandler(teamSvc).Register(api)
		NewPlayerHandler(playerSvc).Register(api)
		NewMatchHandler(matchSvc).Register(api)
	}
}
