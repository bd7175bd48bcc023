package stage

import "github.com/flarebyte/buildstamp/internal/version"

// RerunMeta controls the re-run trigger stage.
type RerunMeta struct {
	Enabled bool   `json:"enabled"`
	Script  string `json:"script,omitempty"`
}

// CaptureMeta overrides capture defaults.
type CaptureMeta struct {
	FeaturePrefix string   `json:"featurePrefix,omitempty"`
	ProfileKey    string   `json:"profileKey,omitempty"`
	Compiler      []string `json:"compiler,omitempty"`
}

// OutputMeta selects the directive rendering.
type OutputMeta struct {
	Format         string `json:"format,omitempty"`
	EnvDirective   string `json:"envDirective,omitempty"`
	RerunDirective string `json:"rerunDirective,omitempty"`
	LdflagsPackage string `json:"ldflagsPackage,omitempty"`
}

// Meta holds pipeline settings with deterministic JSON field order.
type Meta struct {
	Dir     string       `json:"dir,omitempty"`
	Rerun   *RerunMeta   `json:"rerun,omitempty"`
	Capture *CaptureMeta `json:"capture,omitempty"`
	Output  *OutputMeta  `json:"output,omitempty"`
}

// Envelope is passed from stage to stage.
type Envelope struct {
	Version *version.Version `json:"version,omitempty"`
	Hints   []string         `json:"hints,omitempty"`
	Lines   []string         `json:"lines,omitempty"`
	Meta    *Meta            `json:"meta,omitempty"`
}

func (e Envelope) dir() string {
	if e.Meta == nil {
		return ""
	}
	return e.Meta.Dir
}
