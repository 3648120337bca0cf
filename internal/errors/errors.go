package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrPhraseNotFound is returned when a phrase is not in the phrase table
	ErrPhraseNotFound = errors.New("phrase not found")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrCacheMiss is returned when a cached value is absent or expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrManagerStopped is returned when work is submitted to a stopped job manager
	ErrManagerStopped = errors.New("job manager is shutting down")

	// ErrSnapshotsDisabled is returned when a snapshot is requested without a snapshot path
	ErrSnapshotsDisabled = errors.New("snapshots are disabled")
)

// PhraseNotFoundError represents a phrase not found error with context
type PhraseNotFoundError struct {
	Phrase string
}

func (e *PhraseNotFoundError) Error() string {
	return fmt.Sprintf("phrase '%s' not found", e.Phrase)
}

func (e *PhraseNotFoundError) Is(target error) bool {
	return target == ErrPhraseNotFound
}

// NewPhraseNotFoundError creates a new PhraseNotFoundError
func NewPhraseNotFoundError(phrase string) *PhraseNotFoundError {
	return &PhraseNotFoundError{Phrase: phrase}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// CacheMissError represents a cache miss for a specific key
type CacheMissError struct {
	Key string
}

func (e *CacheMissError) Error() string {
	return fmt.Sprintf("cache miss for key '%s'", e.Key)
}

func (e *CacheMissError) Is(target error) bool {
	return target == ErrCacheMiss
}

// NewCacheMissError creates a new CacheMissError
func NewCacheMissError(key string) *CacheMissError {
	return &CacheMissError{Key: key}
}
