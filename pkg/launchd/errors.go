package launchd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_err"
)

// ErrServiceNotFound matches every NotFoundError through errors.Is.
var ErrServiceNotFound = errors.New("service not found")

// NotFoundError reports a name that matched no label and no descriptor file.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "Service not found: " + e.Name
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrServiceNotFound
}

func (e *NotFoundError) ExitCode() int {
	return 4
}

func newNotFound(name string) error {
	return svc_err.NewExpectedError(&NotFoundError{Name: name})
}

// LaunchctlError is returned when launchctl exits non-zero or reports a
// disabled service on stderr.
type LaunchctlError struct {
	SubCommand string
	Stdout     string
	Stderr     string
	RetCode    int
}

func (e *LaunchctlError) Error() string {
	return fmt.Sprintf("Failed to %s service:\nstdout: %s\nstderr: %s\nretcode: %d",
		e.SubCommand, strings.TrimSpace(e.Stdout), strings.TrimSpace(e.Stderr), e.RetCode)
}
