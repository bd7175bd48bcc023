// Package settings resolves the flags, config file and driver environment
// shared by the commands that run the pipeline.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/flarebyte/buildstamp/internal/config"
	"github.com/flarebyte/buildstamp/internal/procexec"
	"github.com/flarebyte/buildstamp/internal/stage"
	"github.com/flarebyte/buildstamp/internal/version"
)

// DefaultConfigFile is picked up from the package directory when --config is
// not given.
const DefaultConfigFile = "buildstamp.cue"

// driverEnv is what a cargo build script inherits from the driver.
type driverEnv struct {
	PkgName     string `envconfig:"CARGO_PKG_NAME"`
	PkgVersion  string `envconfig:"CARGO_PKG_VERSION"`
	ManifestDir string `envconfig:"CARGO_MANIFEST_DIR"`
}

// Settings are the flags shared by every command that runs the pipeline.
type Settings struct {
	ConfigPath     string
	Dir            string
	Script         string
	Format         string
	NoRerun        bool
	RequireClean   bool
	Name           string
	Semver         string
	FeaturePrefix  string
	ProfileVar     string
	LdflagsPackage string

	// Runner and Environ are injected by tests; nil means the real process.
	Runner  procexec.Runner
	Environ []string
}

// Bind registers the flags on cmd.
func (s *Settings) Bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&s.ConfigPath, "config", "c", "", "Path to config file (.cue); defaults to "+DefaultConfigFile+" in --dir when present")
	fs.StringVar(&s.Dir, "dir", "", "Package directory (defaults to CARGO_MANIFEST_DIR or the working directory)")
	fs.StringVar(&s.Script, "script", "", "Build script path relative to --dir (default build.rs)")
	fs.StringVar(&s.Format, "format", "", "Output format: cargo|ldflags|dotenv (default cargo)")
	fs.BoolVar(&s.NoRerun, "no-rerun", false, "Skip the re-run trigger stage")
	fs.BoolVar(&s.RequireClean, "require-clean", false, "Fail when the working tree is dirty")
	fs.StringVar(&s.Name, "name", "", "Package name (defaults to CARGO_PKG_NAME)")
	fs.StringVar(&s.Semver, "semver", "", "Package version (defaults to CARGO_PKG_VERSION)")
	fs.StringVar(&s.FeaturePrefix, "feature-prefix", "", "Env var prefix marking active features (default CARGO_FEATURE_)")
	fs.StringVar(&s.ProfileVar, "profile-var", "", "Env var holding the build profile (default PROFILE)")
	fs.StringVar(&s.LdflagsPackage, "ldflags-pkg", "", "Go package receiving -X assignments in ldflags format")
}

// firstNonEmpty returns the first non-empty value, in precedence order.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Resolve layers flags over the config file over the driver environment and
// returns the pipeline input.
func (s *Settings) Resolve(cmd *cobra.Command) (stage.Envelope, stage.Deps, error) {
	var drv driverEnv
	if err := envconfig.Process("", &drv); err != nil {
		return stage.Envelope{}, stage.Deps{}, fmt.Errorf("driver environment: %w", err)
	}
	dir := firstNonEmpty(s.Dir, drv.ManifestDir, ".")

	cfgPath := s.ConfigPath
	if cfgPath == "" {
		p := filepath.Join(dir, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			cfgPath = p
		}
	}
	var cfg config.File
	if cfgPath != "" {
		f, err := config.Parse(cfgPath)
		if err != nil {
			return stage.Envelope{}, stage.Deps{}, err
		}
		cfg = f
	}

	rerunEnabled := !s.NoRerun
	if cfg.Rerun.HasEnabled && !cmd.Flags().Changed("no-rerun") {
		rerunEnabled = cfg.Rerun.Enabled
	}

	meta := &stage.Meta{
		Dir: dir,
		Rerun: &stage.RerunMeta{
			Enabled: rerunEnabled,
			Script:  firstNonEmpty(s.Script, cfg.Script),
		},
		Capture: &stage.CaptureMeta{
			FeaturePrefix: firstNonEmpty(s.FeaturePrefix, cfg.Features.Prefix),
			ProfileKey:    firstNonEmpty(s.ProfileVar, cfg.ProfileVar),
			Compiler:      cfg.Compiler.Argv(),
		},
		Output: &stage.OutputMeta{
			Format:         firstNonEmpty(s.Format, cfg.Format),
			EnvDirective:   cfg.Directives.Env,
			RerunDirective: cfg.Directives.Rerun,
			LdflagsPackage: s.LdflagsPackage,
		},
	}

	logger := Logger(cmd)
	runner := s.Runner
	if runner == nil {
		runner = procexec.Exec{Logger: logger}
	}
	environ := s.Environ
	if environ == nil {
		environ = os.Environ()
	}
	deps := stage.Deps{
		Runner:  runner,
		Environ: environ,
		Package: version.Package{
			Name:   firstNonEmpty(s.Name, cfg.Package.Name, drv.PkgName),
			Semver: firstNonEmpty(s.Semver, cfg.Package.Semver, drv.PkgVersion),
		},
		Logger: logger,
	}
	return stage.Envelope{Meta: meta}, deps, nil
}

// Logger returns a stderr text logger, at debug level when --verbose is set.
func Logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if v, err := cmd.Flags().GetBool("verbose"); err == nil && v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// Run resolves the settings and executes stages. Nothing is written; on
// failure the returned envelope is empty.
func (s *Settings) Run(ctx context.Context, cmd *cobra.Command, stages []string) (stage.Envelope, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	in, deps, err := s.Resolve(cmd)
	if err != nil {
		return stage.Envelope{}, err
	}
	out, err := stage.RunStages(ctx, in, deps, stages)
	if err != nil {
		return stage.Envelope{}, err
	}
	if err := CheckClean(out.Version, s.RequireClean); err != nil {
		return stage.Envelope{}, err
	}
	return out, nil
}
