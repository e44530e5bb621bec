// Package types defines core domain types shared by the sigsplit pipeline.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"errors"
	"fmt"
)

// RunMeta identifies a single pipeline run.
type RunMeta struct {
	// RunID is the run identifier. Must be unique per invocation.
	RunID string
	// Organism is the organism group passed to the prediction tool.
	Organism Organism
	// InputPath is the source FASTA file.
	InputPath string
	// OutputPath is the final tabular file.
	OutputPath string
}

// Validate checks that run identity is complete.
// The input and output must be distinct files: the output is written via a
// staging file next to it and the input is read until splitting ends.
func (r *RunMeta) Validate() error {
	if r.RunID == "" {
		return errors.New("run_id must be non-empty")
	}
	if !r.Organism.Valid() {
		return &ConfigurationError{Msg: fmt.Sprintf("organism %q is not one of %s", r.Organism, OrganismChoices())}
	}
	if r.InputPath == "" {
		return &ConfigurationError{Msg: "input path must be non-empty"}
	}
	if r.OutputPath == "" {
		return &ConfigurationError{Msg: "output path must be non-empty"}
	}
	if r.InputPath == r.OutputPath {
		return &ConfigurationError{Msg: "input and output must be different files"}
	}
	return nil
}

// OutcomeStatus is the final classification of a run.
type OutcomeStatus string

const (
	// OutcomeSuccess indicates the merged table was written.
	OutcomeSuccess OutcomeStatus = "success"
	// OutcomeConfigError indicates invalid arguments or configuration.
	OutcomeConfigError OutcomeStatus = "config_error"
	// OutcomeMalformedInput indicates the FASTA input could not be parsed.
	OutcomeMalformedInput OutcomeStatus = "malformed_input"
	// OutcomeToolFailure indicates the prediction tool exited non-zero.
	OutcomeToolFailure OutcomeStatus = "tool_failure"
	// OutcomeSchemaViolation indicates the tool output did not match the schema.
	OutcomeSchemaViolation OutcomeStatus = "schema_violation"
	// OutcomeInternalError covers I/O and other unexpected failures.
	OutcomeInternalError OutcomeStatus = "internal_error"
)

// RunOutcome is the final outcome of a run.
type RunOutcome struct {
	// Status is the outcome classification.
	Status OutcomeStatus
	// Message is a single-line human-readable description.
	Message string
}

// ClassifyError maps a run error to its outcome status.
// A nil error is a success.
func ClassifyError(err error) OutcomeStatus {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrConfiguration):
		return OutcomeConfigError
	case errors.Is(err, ErrMalformedInput):
		return OutcomeMalformedInput
	case errors.Is(err, ErrExternalTool):
		return OutcomeToolFailure
	case errors.Is(err, ErrSchemaViolation):
		return OutcomeSchemaViolation
	default:
		return OutcomeInternalError
	}
}
