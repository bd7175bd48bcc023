package root

import (
	"github.com/flarebyte/buildstamp/cmd/buildstamp/counter"
	"github.com/flarebyte/buildstamp/cmd/buildstamp/emit"
	"github.com/flarebyte/buildstamp/cmd/buildstamp/reconstruct"
	"github.com/flarebyte/buildstamp/cmd/buildstamp/show"
	"github.com/flarebyte/buildstamp/cmd/buildstamp/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for buildstamp.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buildstamp",
		Short: "Capture git and compiler provenance at build time and hand it to the build driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug details to stderr")

	// Subcommands
	cmd.AddCommand(version.NewCmd())
	cmd.AddCommand(emit.NewCmd())
	cmd.AddCommand(emit.NewWatchCmd())
	cmd.AddCommand(show.NewCmd())
	cmd.AddCommand(reconstruct.NewCmd())
	cmd.AddCommand(counter.NewCmd())

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
