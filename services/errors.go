package services

import (
	"errors"
	"fmt"

	"agrocontrol_app_go/db"
)

var (
	// ErrConnection means the database could not be reached at all
	ErrConnection = db.ErrConnection
	// ErrOperation is any other database failure
	ErrOperation = db.ErrOperation

	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("entity not found")
	ErrInUse      = errors.New("entity in use")
)

// ValidationError names the offending field. Code and Params identify the
// message in the translation catalog; Message is the Spanish default.
type ValidationError struct {
	Field   string
	Label   string
	Code    string
	Params  map[string]interface{}
	Message string
}

func (e *ValidationError) Error() string {
	name := e.Label
	if name == "" {
		name = e.Field
	}
	return fmt.Sprintf("Error en campo '%s': %s", name, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports a missing entity
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s con ID %v no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// EntityInUseError reports a delete blocked by dependent rows
type EntityInUseError struct {
	Entity string
	ID     interface{}
	UsedIn string
	Err    error
}

func (e *EntityInUseError) Error() string {
	return fmt.Sprintf("No se puede eliminar %s con ID %v: está siendo usado en %s", e.Entity, e.ID, e.UsedIn)
}

func (e *EntityInUseError) Is(target error) bool {
	return target == ErrInUse
}

// OperationError wraps a database failure with the entity and action that
// triggered it.
type OperationError struct {
	Entity string
	Action string
	Err    error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("Error %s %s: %v", e.Action, e.Entity, e.Err)
}

func (e *OperationError) Is(target error) bool {
	return target == ErrOperation
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func newValidationError(field FieldRef, code, message string, params map[string]interface{}) *ValidationError {
	return &ValidationError{
		Field:   field.Name,
		Label:   field.Label,
		Code:    code,
		Params:  params,
		Message: message,
	}
}

// FieldRef identifies a field in validation errors
type FieldRef struct {
	Name  string
	Label string
}
