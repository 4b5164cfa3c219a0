package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/service"
	"github.com/maxviazov/cricket-tournament-service/pkg/response"
)

type PlayerHandler struct {
	svc service.PlayerService
}

func NewPlayerHandler(svc service.PlayerService) *PlayerHandler { return &PlayerHandler{svc: svc} }

func (h *PlayerHandler) Register(r *gin.RouterGroup) {
	g := r.Group(PlayersPath)
	{
		g.GET("", h.list)
		g.GET(byIDRoute, h.getByID)
		g.POST("", h.create)
		g.PUT(updateRoute, h.update)
		g.PATCH(updateRoute, h.patch)
		g.DELETE(byIDRoute, h.delete)
	}
}

// playerRequest is the full payload; role and styles are checked against their enums by the service.
type playerRequest struct {
	Name         string              `json:"name" binding:"required,max=100"`
	TeamName     string              `json:"teamName" binding:"max=100"`
	Role         string              `json:"role" binding:"required"`
	BattingStyle string              `json:"battingStyle" binding:"required"`
	BowlingStyle *string             `json:"bowlingStyle"`
	Stats        *service.StatsInput `json:"stats"`
}

func (r playerRequest) input() service.PlayerInput {
	return service.PlayerInput{
		Name:         r.Name,
		TeamName:     r.TeamName,
		Role:         r.Role,
		BattingStyle: r.BattingStyle,
		BowlingStyle: r.BowlingStyle,
		Stats:        r.Stats,
	}
}

// playerPatchRequest keeps absent, null and value apart for every field.
type playerPatchRequest struct {
	Name         model.Optional[string]             `json:"name"`
	TeamName     model.Optional[string]             `json:"teamName"`
	Role         model.Optional[string]             `json:"role"`
	BattingStyle model.Optional[string]             `json:"battingStyle"`
	BowlingStyle model.Optional[string]             `json:"bowlingStyle"`
	Stats        model.Optional[service.StatsInput] `json:"stats"`
}

func (h *PlayerHandler) list(c *gin.Context) {
	players, err := h.svc.ListPlayers(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "players retrieved", players)
}

func (h *PlayerHandler) getByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	player, err := h.svc.GetPlayer(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "player retrieved", player)
}

func (h *PlayerHandler) create(c *gin.Context) {
	var req playerRequest
	if !bindJSON(c, &req) {
		return
	}
	player, err := h.svc.CreatePlayer(c.Request.Context(), req.input())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, "player created", player)
}

func (h *PlayerHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req playerRequest
	if !bindJSON(c, &req) {
		return
	}
	player, err := h.svc.UpdatePlayer(c.Request.Context(), id, req.input())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "player updated", player)
}

func (h *PlayerHandler) patch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req playerPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	player, err := h.svc.PatchPlayer(c.Request.Context(), id, service.PlayerPatch(req))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "player updated", player)
}

func (h *PlayerHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	player, err := h.svc.DeletePlayer(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "player deleted", player)
}
