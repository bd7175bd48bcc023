package stage

import "context"

// Pipeline is the fixed stage order of one build invocation.
var Pipeline = []string{
	setupRerunStage,
	captureVersionStage,
	propagateEnvStage,
}

// CaptureOnly records the version without touching the tree or rendering.
var CaptureOnly = []string{captureVersionStage}

// RunStages executes the provided list of stage names in order and stops at
// the first failure.
func RunStages(ctx context.Context, in Envelope, deps Deps, stages []string) (Envelope, error) {
	out := in
	var err error
	for _, name := range stages {
		out, err = Run(ctx, name, out, deps)
		if err != nil {
			return Envelope{}, err
		}
	}
	return out, nil
}

// Execute runs the full pipeline. On success the envelope holds the record
// and every rendered line; on failure nothing is returned.
func Execute(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	return RunStages(ctx, in, deps, Pipeline)
}
