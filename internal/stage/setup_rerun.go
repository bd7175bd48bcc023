package stage

import (
	"context"
	"fmt"

	"github.com/flarebyte/buildstamp/internal/rerun"
)

const setupRerunStage = "setup-rerun"

func setupRerunRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta != nil && in.Meta.Rerun != nil && !in.Meta.Rerun.Enabled {
		return in, nil
	}
	script := ""
	if in.Meta != nil && in.Meta.Rerun != nil {
		script = in.Meta.Rerun.Script
	}
	hints, err := rerun.Setup(ctx, rerun.Options{Runner: deps.Runner, Dir: in.dir(), Script: script})
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: %w", setupRerunStage, err)
	}
	deps.logger().Debug("rerun hints", "hints", hints)
	out := in
	out.Hints = append(append([]string(nil), in.Hints...), hints...)
	return out, nil
}

func init() { Register(setupRerunStage, setupRerunRunner) }
