package emit

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/flarebyte/buildstamp/cmd/buildstamp/settings"
	"github.com/flarebyte/buildstamp/internal/directive"
	"github.com/flarebyte/buildstamp/internal/rerun"
	"github.com/flarebyte/buildstamp/internal/stage"
)

const watchDebounce = 100 * time.Millisecond

// watching is called once every hint directory is watched.
var watching = func() {}

// NewWatchCmd creates `buildstamp watch`.
func NewWatchCmd() *cobra.Command { return NewWatchCmdWith(&settings.Settings{}) }

// NewWatchCmdWith creates `buildstamp watch` bound to s.
func NewWatchCmdWith(s *settings.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Emit directives, then emit again whenever a re-run hint changes",
		Long: "Behaves like emit, then watches the build script and the repository HEAD.\n" +
			"Each change runs the whole pipeline again. Failures after the first run are logged.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Watch(ctx, cmd, s, func(lines []string) error {
				return directive.Write(cmd.OutOrStdout(), lines)
			})
		},
	}
	s.Bind(cmd)
	return cmd
}

// Watch runs the pipeline once, then again after every change to a hint,
// until ctx is done. The first failure is returned; later ones are logged.
func Watch(ctx context.Context, cmd *cobra.Command, s *settings.Settings, emit func([]string) error) error {
	if s.NoRerun {
		return fmt.Errorf("watch needs re-run hints; drop --no-rerun")
	}
	out, err := s.Run(ctx, cmd, stage.Pipeline)
	if err != nil {
		return err
	}
	if err := emit(out.Lines); err != nil {
		return err
	}
	if len(out.Hints) == 0 {
		return fmt.Errorf("watch needs re-run hints; enable rerun in the config")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	targets := watchTargets(out.Meta.Dir, out.Hints)
	dirs := map[string]bool{}
	for t := range targets {
		dirs[filepath.Dir(t)] = true
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	logger := settings.Logger(cmd)
	logger.Debug("watching", "files", len(targets), "dirs", len(dirs))
	watching()

	// touch on the script only changes attributes, so Chmod never counts.
	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
	var pending time.Time
	ticker := time.NewTicker(watchDebounce)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(ev.Name)] || ev.Op&relevant == 0 {
				continue
			}
			logger.Debug("hint changed", "file", ev.Name, "op", ev.Op.String())
			pending = time.Now()
		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < watchDebounce {
				continue
			}
			pending = time.Time{}
			out, err := s.Run(ctx, cmd, stage.Pipeline)
			if err != nil {
				logger.Warn("run failed", "err", err)
				continue
			}
			if err := emit(out.Lines); err != nil {
				return err
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}

// watchTargets resolves hints to canonical absolute paths.
func watchTargets(dir string, hints []string) map[string]bool {
	targets := map[string]bool{}
	for _, h := range hints {
		if !filepath.IsAbs(h) {
			h = filepath.Join(dir, h)
		}
		if c, err := rerun.Canonicalize(h); err == nil {
			h = c
		}
		targets[filepath.Clean(h)] = true
	}
	return targets
}
