package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/maxviazov/cricket-tournament-service/internal/service"
	"github.com/maxviazov/cricket-tournament-service/pkg/response"
)

var registerOnce sync.Once

// useJSONFieldNames makes validator report `teamName` instead of `TeamName`.
func useJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON decodes the body into dst and writes a 400 envelope on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.WriteError(c, service.NewInvalidInputError(bindingFieldErrors(err)))
		return false
	}
	return true
}

func bindingFieldErrors(err error) []service.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]service.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, service.FieldError{Field: fieldPath(fe), Message: tagMessage(fe)})
		}
		return out
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return []service.FieldError{{Field: field, Message: "must be a " + typeErr.Type.String()}}
	}
	var timeErr *time.ParseError
	if errors.As(err, &timeErr) {
		return []service.FieldError{{Field: "date", Message: "must be a date (YYYY-MM-DD) or an RFC 3339 timestamp"}}
	}
	if errors.Is(err, io.EOF) {
		return []service.FieldError{{Field: "body", Message: "must not be empty"}}
	}
	// Syntax errors and the like: do not echo parser internals.
	return []service.FieldError{{Field: "body", Message: "must be valid JSON"}}
}

// fieldPath drops the root struct name: "playerRequest.stats.runsScored" becomes "stats.runsScored".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", "|")
	default:
		return "failed '" + fe.Tag() + "' validation"
	}
}

// pathID parses the :id route parameter and writes a 400 envelope when it is not a positive integer.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "id", Message: "must be a positive integer"}}))
		return 0, false
	}
	return id, true
}
