// pkg/svc_err/classification.go
//
// Error classification with exit codes for the macsvc CLI.

package svc_err

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies errors for appropriate handling
type ErrorCategory int

const (
	// CategorySystem - OS/filesystem or launchctl failures (exit 1)
	CategorySystem ErrorCategory = iota
	// CategoryValidation - Input validation failures (exit 2)
	CategoryValidation
	// CategoryInternal - Bugs in macsvc itself (exit 3)
	CategoryInternal
	// CategoryNotFound - Unknown service name (exit 4)
	CategoryNotFound
	// CategoryDependency - Missing binaries such as launchctl (exit 1)
	CategoryDependency
	// CategoryPermission - Permission denied (exit 1)
	CategoryPermission
)

// ClassifiedError wraps an error with category and remediation info
type ClassifiedError struct {
	Category    ErrorCategory
	Message     string
	Cause       error
	Remediation []string
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Message)

	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(fmt.Sprintf("\n\nCause: %v", e.Cause))
	}

	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	return sb.String()
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error category
func (e *ClassifiedError) ExitCode() int {
	switch e.Category {
	case CategoryValidation:
		return 2
	case CategoryInternal:
		return 3
	case CategoryNotFound:
		return 4
	default:
		return 1
	}
}

// ExitCoder is implemented by errors that choose their own process exit code.
type ExitCoder interface {
	ExitCode() int
}

// GetExitCode extracts exit code from any error.
// Returns 0 for nil, the carried code for ExitCoder errors, 1 for others.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}

	return 1
}

// NewValidationError creates an error for input validation failures
func NewValidationError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryValidation,
		Message:     message,
		Remediation: remediation,
	}
}

// NewDependencyError creates an error for missing binaries
func NewDependencyError(dependency, operation string, remediation ...string) error {
	return &ClassifiedError{
		Category: CategoryDependency,
		Message: fmt.Sprintf("%s is required for %s but not found",
			dependency, operation),
		Remediation: remediation,
	}
}

// NewNotFoundError creates an error for lookups that matched nothing
func NewNotFoundError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryNotFound,
		Message:  message,
		Cause:    cause,
	}
}

// NewPermissionError creates an error for operations that need elevated rights
func NewPermissionError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryPermission,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// IsCategory reports whether err carries the given classification.
func IsCategory(err error, category ErrorCategory) bool {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category == category
	}
	return false
}
