package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/flarebyte/buildstamp/internal/buildinfo"
)

// NewCmd creates `buildstamp version`.
func NewCmd() *cobra.Command {
	var short, asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if short || !asJSON {
				// Exactly one line.
				_, err := fmt.Fprintln(cmd.OutOrStdout(), buildinfo.Summary())
				return err
			}
			v, err := buildinfo.Current()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "buildstamp version: %s\n", v.Summary())
			out := map[string]any{
				"build":        v,
				"reproducible": v.Reproducible(),
				"go":           runtime.Version(),
				"go_os":        runtime.GOOS,
				"go_arch":      runtime.GOARCH,
			}
			return encodeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version string")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the embedded version record as JSON")
	return cmd
}
