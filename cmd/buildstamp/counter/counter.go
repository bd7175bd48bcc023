package counter

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flarebyte/buildstamp/cmd/buildstamp/settings"
	"github.com/flarebyte/buildstamp/internal/buildinfo"
	"github.com/flarebyte/buildstamp/internal/contract"
	"github.com/flarebyte/buildstamp/internal/sim"
)

const (
	contractID = "counter"
	signer     = "alice"
)

// NewCmd creates `buildstamp counter`.
func NewCmd() *cobra.Command {
	var (
		calls       int
		script      string
		showVersion bool
	)
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Deploy the example counter in a local runtime and call it",
		Long: "Deploys the counter contract stamped with this binary's version record.\n" +
			"Without --script it calls increment --calls times and prints each result.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if calls < 0 {
				return fmt.Errorf("--calls must not be negative")
			}
			build, err := buildinfo.Current()
			if err != nil {
				return err
			}
			rt := sim.NewRuntime(settings.Logger(cmd))
			if err := rt.Deploy(contractID, &contract.Counter{Build: build}); err != nil {
				return err
			}
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if script != "" {
				src, err := os.ReadFile(script)
				if err != nil {
					return err
				}
				return sim.RunScript(ctx, rt, signer, string(src), w)
			}
			for i := 0; i < calls; i++ {
				o, err := rt.Call(ctx, signer, contractID, "increment", nil)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(w, string(o.Result)); err != nil {
					return err
				}
			}
			if !showVersion {
				return nil
			}
			o, err := rt.View(ctx, contractID, "version", nil)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(o.Result))
			return err
		},
	}
	cmd.Flags().IntVarP(&calls, "calls", "n", 3, "Number of increment calls")
	cmd.Flags().StringVar(&script, "script", "", "Run a Lua scenario instead (call, view and log are available)")
	cmd.Flags().BoolVar(&showVersion, "show-version", false, "Print the embedded version record after the calls")
	return cmd
}
