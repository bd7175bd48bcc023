package emit

import (
	"github.com/spf13/cobra"

	"github.com/flarebyte/buildstamp/cmd/buildstamp/settings"
	"github.com/flarebyte/buildstamp/internal/directive"
	"github.com/flarebyte/buildstamp/internal/stage"
)

// NewCmd creates `buildstamp emit`.
func NewCmd() *cobra.Command { return NewCmdWith(&settings.Settings{}) }

// NewCmdWith creates `buildstamp emit` bound to s.
func NewCmdWith(s *settings.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Capture provenance and print build driver directives",
		Long: "Runs setup-rerun, capture-version and propagate-env, then prints every directive.\n" +
			"Nothing is printed when any stage fails.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := s.Run(cmd.Context(), cmd, stage.Pipeline)
			if err != nil {
				return err
			}
			return directive.Write(cmd.OutOrStdout(), out.Lines)
		},
	}
	s.Bind(cmd)
	return cmd
}
