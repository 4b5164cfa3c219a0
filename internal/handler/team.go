package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/service"
	"github.com/maxviazov/cricket-tournament-service/pkg/response"
)

type TeamHandler struct {
	svc service.TeamService
}

func NewTeamHandler(svc service.TeamService) *TeamHandler { return &TeamHandler{svc: svc} }

func (h *TeamHandler) Register(r *gin.RouterGroup) {
	g := r.Group(TeamsPath)
	{
		g.GET("", h.list)
		g.GET(byIDRoute, h.getByID)
		g.GET(byIDRoute+"/details", h.details)
		g.POST("", h.create)
		g.PUT(updateRoute, h.update)
		g.PATCH(updateRoute, h.patch)
		g.DELETE(byIDRoute, h.delete)
	}
}

type teamRequest struct {
	TeamName   string  `json:"teamName" binding:"required,max=100"`
	HomeGround string  `json:"homeGround" binding:"max=100"`
	Coach      string  `json:"coach" binding:"max=100"`
	CaptainID  *int64  `json:"captainId" binding:"omitempty,gt=0"`
	PlayerIDs  []int64 `json:"playerIds" binding:"omitempty,dive,gt=0"`
}

func (r teamRequest) input() service.TeamInput {
	return service.TeamInput{
		TeamName:   r.TeamName,
		HomeGround: r.HomeGround,
		Coach:      r.Coach,
		CaptainID:  r.CaptainID,
		PlayerIDs:  r.PlayerIDs,
	}
}

type teamPatchRequest struct {
	TeamName   model.Optional[string]  `json:"teamName"`
	HomeGround model.Optional[string]  `json:"homeGround"`
	Coach      model.Optional[string]  `json:"coach"`
	CaptainID  model.Optional[int64]   `json:"captainId"`
	PlayerIDs  model.Optional[[]int64] `json:"playerIds"`
}

func (h *TeamHandler) list(c *gin.Context) {
	teams, err := h.svc.ListTeams(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "teams retrieved", teams)
}

func (h *TeamHandler) getByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	team, err := h.svc.GetTeam(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "team retrieved", team)
}

func (h *TeamHandler) details(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	d, err := h.svc.GetTeamDetails(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "team details retrieved", d)
}

func (h *TeamHandler) create(c *gin.Context) {
	var req teamRequest
	if !bindJSON(c, &req) {
		return
	}
	team, err := h.svc.CreateTeam(c.Request.Context(), req.input())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, "team created", team)
}

func (h *TeamHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req teamRequest
	if !bindJSON(c, &req) {
		return
	}
	team, err := h.svc.UpdateTeam(c.Request.Context(), id, req.input())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "team updated", team)
}

func (h *TeamHandler) patch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req teamPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	team, err := h.svc.PatchTeam(c.Request.Context(), id, service.TeamPatch(req))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "team updated", team)
}

func (h *TeamHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	team, err := h.svc.DeleteTeam(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "team deleted", team)
}
