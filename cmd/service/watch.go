// cmd/service/watch.go

package service

import (
	"fmt"
	"sort"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_io"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print descriptors as they appear or disappear",
	Long: `Watches the launchd search directories and prints "+ label" when a
descriptor appears and "- label" when one is removed. Stops on Ctrl-C.`,
	Args: cli.ExactArgs(0),
	RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		handler := svc_cli.NewSignalHandler(rc.Ctx)
		defer handler.Stop()

		catalog := NewManager().Catalog()
		ctx := handler.Context()
		known := toSet(catalog.Labels(ctx))
		rc.Log.Info("Watching launchd directories",
			zap.Strings("paths", catalog.Paths()),
			zap.Int("services", len(known)))

		out := cmd.OutOrStdout()
		return catalog.Watch(ctx, func(path string) {
			current := toSet(catalog.Labels(ctx))
			for _, label := range diff(current, known) {
				fmt.Fprintln(out, "+ "+label)
			}
			for _, label := range diff(known, current) {
				fmt.Fprintln(out, "- "+label)
			}
			known = current
		})
	}),
}

func toSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return set
}

// diff returns the sorted members of a that are not in b.
func diff(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
