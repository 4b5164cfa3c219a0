// Package response centralizes HTTP response shapes and helpers.
// Handlers rely on it to keep controllers thin and uniform.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
	"github.com/maxviazov/cricket-tournament-service/internal/service"
)

// Envelope wraps every response body.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorPayload is the canonical error body placed under Envelope.Data.
type ErrorPayload struct {
	Error       string               `json:"error"`
	Field       string               `json:"field,omitempty"`
	FieldErrors []service.FieldError `json:"field_errors,omitempty"`
}

// MapError converts a domain / infrastructure error into an HTTP status, a client message and payload.
// Extend here as new domain error categories emerge.
func MapError(err error) (int, string, ErrorPayload) {
	if err == nil {
		return http.StatusOK, "ok", ErrorPayload{Error: "ok"}
	}

	if errors.Is(err, service.ErrInvalidInput) {
		return http.StatusBadRequest, "one or more fields are invalid", ErrorPayload{
			Error:       "invalid_input",
			FieldErrors: service.FieldErrors(err),
		}
	}

	var rule *service.RuleError
	if errors.As(err, &rule) {
		return http.StatusBadRequest, rule.Message, ErrorPayload{Error: ruleCode(rule.Kind), Field: rule.Field}
	}

	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error(), ErrorPayload{Error: "invalid_request"}
	case errors.Is(err, repository.ErrNotFound):
		var nf *service.NotFoundError
		if errors.As(err, &nf) {
			return http.StatusNotFound, nf.Error(), ErrorPayload{Error: "not_found", Field: nf.Field}
		}
		return http.StatusNotFound, "resource not found", ErrorPayload{Error: "not_found"}
	case errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict, "resource already exists", ErrorPayload{Error: "already_exists"}
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "resource was modified concurrently, retry the request", ErrorPayload{Error: "conflict"}
	default:
		return http.StatusInternalServerError, "internal server error", ErrorPayload{Error: "internal_error"}
	}
}

func ruleCode(kind error) string {
	switch {
	case errors.Is(kind, service.ErrInvalidTeam):
		return "invalid_team"
	case errors.Is(kind, service.ErrDuplicateName):
		return "duplicate_name"
	case errors.Is(kind, service.ErrRosterFull):
		return "roster_full"
	case errors.Is(kind, service.ErrInvalidResult):
		return "invalid_result"
	case errors.Is(kind, service.ErrInvalidMatch):
		return "invalid_match"
	default:
		return "invalid_request"
	}
}

// WriteError writes an error envelope and aborts the context.
func WriteError(c *gin.Context, err error) {
	status, msg, payload := MapError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: msg, Data: payload})
}

// WriteData writes a successful envelope.
func WriteData(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, Envelope{Success: true, Message: msg, Data: data})
}
