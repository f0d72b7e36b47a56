package launchd

import (
	"context"
	"strings"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	version "github.com/hashicorp/go-version"
)

// bootstrapMinVersion is the first macOS release with launchctl
// bootstrap/bootout; older systems only understand load/unload.
var bootstrapMinVersion = version.Must(version.NewVersion("10.11"))

func productVersion(ctx context.Context, runner execute.Runner) (*version.Version, error) {
	res, err := runner.Run(ctx, execute.Options{
		Command: "sw_vers",
		Args:    []string{"-productVersion"},
	})
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, cerr.Newf("sw_vers exited with status %d", res.ExitCode)
	}
	v, err := version.NewVersion(strings.TrimSpace(res.Stdout))
	if err != nil {
		return nil, cerr.Wrap(err, "parsing macOS product version")
	}
	return v, nil
}

func usesLegacyLoad(v *version.Version) bool {
	return v != nil && v.LessThan(bootstrapMinVersion)
}
