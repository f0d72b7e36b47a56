package svc_err

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestExtractSummary(t *testing.T) {
	tests := []struct {
		name   string
		output string
		max    int
		want   string
	}{
		{name: "empty", output: "   ", max: 2, want: "No output provided."},
		{name: "no error lines", output: "\nfirst line\nsecond", max: 2, want: "first line"},
		{
			name:   "error lines capped",
			output: "ok\nBootstrap failed: 5: Input/output error\nerror two\nerror three",
			max:    2,
			want:   "Bootstrap failed: 5: Input/output error - error two",
		},
		{name: "single candidate", output: "Operation not permitted", max: 2, want: "Operation not permitted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSummary(tt.output, tt.max))
		})
	}
}

func TestExpectedError(t *testing.T) {
	assert.Nil(t, NewExpectedError(nil))

	base := errors.New("Service not found: spongebob")
	wrapped := fmt.Errorf("show: %w", NewExpectedError(base))

	assert.True(t, IsExpectedUserError(wrapped))
	assert.ErrorIs(t, wrapped, base)
	assert.False(t, IsExpectedUserError(base))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, 0, GetExitCode(nil))
	assert.Equal(t, 1, GetExitCode(errors.New("boom")))
	assert.Equal(t, 2, GetExitCode(NewValidationError("bad flag")))
	assert.Equal(t, 4, GetExitCode(fmt.Errorf("wrapped: %w", NewNotFoundError("Service not found: x", nil))))
	assert.Equal(t, 1, GetExitCode(NewDependencyError("launchctl", "service start")))
}

func TestClassifiedErrorMessage(t *testing.T) {
	err := &ClassifiedError{
		Category:    CategoryPermission,
		Message:     "cannot bootstrap system domain",
		Cause:       errors.New("Operation not permitted"),
		Remediation: []string{"re-run with sudo"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "cannot bootstrap system domain")
	assert.Contains(t, msg, "Cause: Operation not permitted")
	assert.Contains(t, msg, "1. re-run with sudo")
	assert.True(t, IsCategory(err, CategoryPermission))
	assert.False(t, IsCategory(err, CategoryNotFound))
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, zaptest.NewLogger(t), NewExpectedError(errors.New("Service not found: spongebob")))
	assert.Equal(t, "ERROR: Service not found: spongebob\n", buf.String())

	buf.Reset()
	PrintError(&buf, nil, nil)
	assert.Empty(t, buf.String())
}
