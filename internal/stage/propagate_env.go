package stage

import (
	"context"
	"errors"
	"fmt"

	"github.com/flarebyte/buildstamp/internal/directive"
)

const propagateEnvStage = "propagate-env"

var errNoVersion = errors.New("no version captured")

func outputOptions(meta *Meta) (directive.Options, error) {
	var opts directive.Options
	if meta == nil || meta.Output == nil {
		return opts, nil
	}
	f, err := directive.ParseFormat(meta.Output.Format)
	if err != nil {
		return opts, err
	}
	opts.Format = f
	opts.EnvDirective = meta.Output.EnvDirective
	opts.RerunDirective = meta.Output.RerunDirective
	opts.LdflagsPackage = meta.Output.LdflagsPackage
	return opts, nil
}

func propagateEnvRunner(_ context.Context, in Envelope, _ Deps) (Envelope, error) {
	if in.Version == nil {
		return Envelope{}, fmt.Errorf("%s: %w", propagateEnvStage, errNoVersion)
	}
	opts, err := outputOptions(in.Meta)
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: %w", propagateEnvStage, err)
	}
	lines, err := directive.Render(opts, in.Version.Env(), in.Hints)
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: %w", propagateEnvStage, err)
	}
	out := in
	out.Lines = lines
	return out, nil
}

func init() { Register(propagateEnvStage, propagateEnvRunner) }
