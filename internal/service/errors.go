package service

import (
	"errors"
	"fmt"

	"github.com/maxviazov/cricket-tournament-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// NewInvalidInputError lets the transport layer report binding failures through the same error shape.
func NewInvalidInputError(fe []FieldError) error { return newInvalidInput(fe) }

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// ErrInvalidRequest marks a business-rule violation on otherwise well-formed input (HTTP 400).
var ErrInvalidRequest = errors.New("invalid request")

// Rule kinds; each one also matches ErrInvalidRequest under errors.Is.
var (
	ErrInvalidTeam   = fmt.Errorf("%w: invalid team", ErrInvalidRequest)
	ErrDuplicateName = fmt.Errorf("%w: duplicate name", ErrInvalidRequest)
	ErrRosterFull    = fmt.Errorf("%w: roster full", ErrInvalidRequest)
	ErrInvalidResult = fmt.Errorf("%w: invalid result", ErrInvalidRequest)
	ErrInvalidMatch  = fmt.Errorf("%w: invalid match", ErrInvalidRequest)
)

// RuleError names the offending field of a rejected request.
type RuleError struct {
	Kind    error
	Field   string
	Message string
}

func (e *RuleError) Error() string { return e.Message }
func (e *RuleError) Unwrap() error { return e.Kind }

func ruleErr(kind error, field, format string, args ...any) error {
	return &RuleError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a primary-key miss and unwraps to repository.ErrNotFound.
type NotFoundError struct {
	Resource string
	Field    string
	Value    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s : '%v'", e.Resource, e.Field, e.Value)
}

func (e *NotFoundError) Unwrap() error { return repository.ErrNotFound }

func notFound(resource string, id int64) error {
	return &NotFoundError{Resource: resource, Field: "id", Value: id}
}

// orNotFound upgrades a bare repository miss into a NotFoundError for the given id.
func orNotFound(err error, resource string, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return notFound(resource, id)
		}
	}
	return err
}
