package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/service"
	"github.com/maxviazov/cricket-tournament-service/pkg/response"
)

// matchDate accepts either a calendar date ("2024-04-01") or an RFC 3339 timestamp.
type matchDate time.Time

func (d *matchDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, raw); err != nil {
			return err
		}
	}
	*d = matchDate(t.UTC())
	return nil
}

func (d matchDate) time() time.Time { return time.Time(d) }

type MatchHandler struct {
	svc service.MatchService
}

func NewMatchHandler(svc service.MatchService) *MatchHandler { return &MatchHandler{svc: svc} }

func (h *MatchHandler) Register(r *gin.RouterGroup) {
	g := r.Group(MatchesPath)
	{
		g.GET("", h.list)
		g.GET(byIDRoute, h.getByID)
		g.POST("", h.create)
		g.PUT(updateRoute, h.update)
		g.PATCH(updateRoute, h.patch)
		g.DELETE(byIDRoute, h.delete)
	}
}

type matchRequest struct {
	Venue          string               `json:"venue" binding:"required,max=200"`
	Date           *matchDate           `json:"date" binding:"required"`
	FirstTeamName  string               `json:"firstTeamName" binding:"required"`
	SecondTeamName string               `json:"secondTeamName" binding:"required"`
	Status         string               `json:"status" binding:"required"`
	Result         *service.ResultInput `json:"result"`
}

func (r matchRequest) input() service.MatchInput {
	in := service.MatchInput{
		Venue:          r.Venue,
		FirstTeamName:  r.FirstTeamName,
		SecondTeamName: r.SecondTeamName,
		Status:         r.Status,
		Result:         r.Result,
	}
	if r.Date != nil {
		in.Date = r.Date.time()
	}
	return in
}

type matchPatchRequest struct {
	Venue          model.Optional[string]              `json:"venue"`
	Date           model.Optional[matchDate]           `json:"date"`
	FirstTeamName  model.Optional[string]              `json:"firstTeamName"`
	SecondTeamName model.Optional[string]              `json:"secondTeamName"`
	Status         model.Optional[string]              `json:"status"`
	Result         model.Optional[service.ResultInput] `json:"result"`
}

func (r matchPatchRequest) patch() service.MatchPatch {
	p := service.MatchPatch{
		Venue:          r.Venue,
		FirstTeamName:  r.FirstTeamName,
		SecondTeamName: r.SecondTeamName,
		Status:         r.Status,
		Result:         r.Result,
	}
	if d, ok := r.Date.Get(); ok {
		p.Date = model.Some(d.time())
	} else if r.Date.Set {
		p.Date = model.Null[time.Time]()
	}
	return p
}

func (h *MatchHandler) list(c *gin.Context) {
	matches, err := h.svc.ListMatches(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "matches retrieved", matches)
}

func (h *MatchHandler) getByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	match, err := h.svc.GetMatch(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "match retrieved", match)
}

func (h *MatchHandler) create(c *gin.Context) {
	var req matchRequest
	if !bindJSON(c, &req) {
		return
	}
	match, err := h.svc.CreateMatch(c.Request.Context(), req.input())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, "match created", match)
}

func (h *MatchHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req matchRequest
	if !bindJSON(c, &req) {
		return
	}
	match, err := h.svc.UpdateMatch(c.Request.Context(), id, req.input())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "match updated", match)
}

func (h *MatchHandler) patch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req matchPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	match, err := h.svc.PatchMatch(c.Request.Context(), id, req.patch())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "match updated", match)
}

func (h *MatchHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	match, err := h.svc.DeleteMatch(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "match deleted", match)
}
