// Package api provides the HTTP surface of the vibe-rank service.
package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	vibeerrors "github.com/gcbaptista/vibe-rank/internal/errors"
	"github.com/gcbaptista/vibe-rank/internal/rank"
	"github.com/gcbaptista/vibe-rank/model"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateRankInput converts the scorer's field errors into a ValidationResult.
// prefix is prepended to field names, e.g. "inputs[3]."
func ValidateRankInput(input model.RankInput, prefix string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	for _, err := range rank.ValidateRankInputDetailed(input) {
		var fieldErr *vibeerrors.ValidationError
		if errors.As(err, &fieldErr) {
			result.AddError(prefix+fieldErr.Field, fieldErr.Message)
			continue
		}
		result.AddError(prefix+"input", err.Error())
	}
	return result
}

// ValidateLimit parses an optional limit query value.
// Empty means defaultLimit; values above maxLimit are capped.
func ValidateLimit(raw string, defaultLimit, maxLimit int) (int, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	if strings.TrimSpace(raw) == "" {
		return defaultLimit, result
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		result.AddError("limit", "Limit must be an integer")
		return 0, result
	}
	if limit < 1 {
		result.AddError("limit", "Limit must be greater than 0")
		return 0, result
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, result
}

// ValidateBatchSize checks a batch is non-empty and within maxSize
func ValidateBatchSize(field string, size, maxSize int) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if size == 0 {
		result.AddError(field, "At least one item is required")
	} else if size > maxSize {
		result.AddError(field, fmt.Sprintf("Batch of %d exceeds the maximum of %d", size, maxSize))
	}
	return result
}

// ValidateSignals checks every signal names a phrase
func ValidateSignals(signals []model.PhraseSignal) *ValidationResult {
	result := &ValidationResult{Valid: true}

	for i, signal := range signals {
		if strings.TrimSpace(signal.Phrase) == "" {
			result.AddError(fmt.Sprintf("signals[%d].phrase", i), "Phrase cannot be empty or whitespace-only")
		}
	}
	return result
}
