package reconstruct

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/flarebyte/buildstamp/cmd/buildstamp/settings"
	"github.com/flarebyte/buildstamp/internal/metafile"
	"github.com/flarebyte/buildstamp/internal/version"
)

type pkgEnv struct {
	Name    string `envconfig:"CARGO_PKG_NAME"`
	Version string `envconfig:"CARGO_PKG_VERSION"`
}

// NewCmd creates `buildstamp reconstruct`.
func NewCmd() *cobra.Command {
	var (
		envFile      string
		record       string
		name, semver string
		requireClean bool
	)
	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: "Rebuild the version record from propagated variables",
		Long: "Reads the eight propagated variables from --env-file, from the process environment,\n" +
			"or a full YAML record from --record, and prints the version record as JSON.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" && record != "" {
				return fmt.Errorf("--env-file and --record are mutually exclusive")
			}
			var v version.Version
			switch {
			case record != "":
				b, err := os.ReadFile(record)
				if err != nil {
					return err
				}
				if v, err = metafile.Unmarshal(b); err != nil {
					return fmt.Errorf("%s: %w", record, err)
				}
			default:
				var pe pkgEnv
				if err := envconfig.Process("", &pe); err != nil {
					return err
				}
				pkg := version.Package{Name: name, Semver: semver}
				if pkg.Name == "" {
					pkg.Name = pe.Name
				}
				if pkg.Semver == "" {
					pkg.Semver = pe.Version
				}
				var err error
				if envFile == "" {
					v, err = version.FromEnv(os.LookupEnv, pkg)
				} else {
					var m map[string]string
					if m, err = godotenv.Read(envFile); err != nil {
						return err
					}
					v, err = version.FromMap(m, pkg)
				}
				if err != nil {
					return err
				}
			}
			if err := settings.CheckClean(&v, requireClean); err != nil {
				return err
			}
			return encodeJSON(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", "", "Read variables from a dotenv file (as written by emit --format dotenv)")
	cmd.Flags().StringVar(&record, "record", "", "Read a YAML record (as written by show --out)")
	cmd.Flags().StringVar(&name, "name", "", "Package name (defaults to CARGO_PKG_NAME)")
	cmd.Flags().StringVar(&semver, "semver", "", "Package version (defaults to CARGO_PKG_VERSION)")
	cmd.Flags().BoolVar(&requireClean, "require-clean", false, "Fail when the record is not reproducible")
	return cmd
}
