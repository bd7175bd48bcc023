package show

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flarebyte/buildstamp/cmd/buildstamp/settings"
	"github.com/flarebyte/buildstamp/internal/metafile"
	"github.com/flarebyte/buildstamp/internal/stage"
)

// NewCmd creates `buildstamp show`.
func NewCmd() *cobra.Command { return NewCmdWith(&settings.Settings{}) }

// NewCmdWith creates `buildstamp show` bound to s.
func NewCmdWith(s *settings.Settings) *cobra.Command {
	var asJSON, asYAML bool
	var outPath string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Capture the version record and print it without emitting directives",
		Long: "Runs capture-version only: the build script is not touched and no directive is printed.\n" +
			"The record is printed as JSON, or YAML with --yaml, and written to --out when given.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON && asYAML {
				return fmt.Errorf("--json and --yaml are mutually exclusive")
			}
			out, err := s.Run(cmd.Context(), cmd, stage.CaptureOnly)
			if err != nil {
				return err
			}
			v := *out.Version
			if outPath != "" {
				if err := metafile.Write(outPath, v); err != nil {
					return err
				}
			}
			if !asYAML {
				return encodeJSON(cmd.OutOrStdout(), v)
			}
			b, err := metafile.Marshal(v)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	s.Bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON (default)")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print YAML instead of JSON")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Also write the record as a YAML file")
	return cmd
}
