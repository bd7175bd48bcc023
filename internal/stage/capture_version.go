package stage

import (
	"context"
	"fmt"

	"github.com/flarebyte/buildstamp/internal/capture"
)

const captureVersionStage = "capture-version"

func captureVersionRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	opts := capture.Options{
		Runner:  deps.Runner,
		Dir:     in.dir(),
		Environ: deps.Environ,
		Package: deps.Package,
	}
	if in.Meta != nil && in.Meta.Capture != nil {
		opts.FeaturePrefix = in.Meta.Capture.FeaturePrefix
		opts.ProfileKey = in.Meta.Capture.ProfileKey
		opts.Compiler = in.Meta.Capture.Compiler
	}
	v, err := capture.Capture(ctx, opts)
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: %w", captureVersionStage, err)
	}
	deps.logger().Debug("captured version", "summary", v.Summary())
	out := in
	out.Version = &v
	return out, nil
}

func init() { Register(captureVersionStage, captureVersionRunner) }
