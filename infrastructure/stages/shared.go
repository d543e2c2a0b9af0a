// Package stages provides the concrete pipeline stages that implement
// the ports.Stage interface for the annotation quality-control pipeline.
package stages

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Common errors returned by pipeline stages.
var (
	// ErrEmptyStageName is returned when attempting to create a stage with
	// an empty name.
	ErrEmptyStageName = errors.New("stage name cannot be empty")

	// ErrNoRawRecords is returned when the confidence filter runs before
	// the loader has populated the state.
	ErrNoRawRecords = errors.New("raw records not found in state")

	// ErrNoAnnotations is returned when the grouper runs before the
	// confidence filter has populated the state.
	ErrNoAnnotations = errors.New("accepted annotations not found in state")

	// ErrNoGroups is returned when the agreement resolver runs before the
	// grouper has populated the state.
	ErrNoGroups = errors.New("grouped annotations not found in state")

	// ErrNoResults is returned when the report writer runs before the
	// agreement resolver has populated the state.
	ErrNoResults = errors.New("agreement results not found in state")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()
