// Package metafile writes version records as YAML files.
package metafile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/flarebyte/buildstamp/internal/version"
)

// Marshal returns YAML bytes for v with fields in declaration order.
func Marshal(v version.Version) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	out = append(out, '\n')
	return out, nil
}

// Unmarshal decodes a record written by Marshal. Every field must be present.
func Unmarshal(b []byte) (version.Version, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(b, &n); err != nil {
		return version.Version{}, err
	}
	if len(n.Content) != 1 || n.Content[0].Kind != yaml.MappingNode {
		return version.Version{}, fmt.Errorf("version record must be a mapping")
	}
	seen := map[string]bool{}
	m := n.Content[0]
	for i := 0; i+1 < len(m.Content); i += 2 {
		seen[m.Content[i].Value] = true
	}
	for _, k := range recordKeys {
		if !seen[k] {
			return version.Version{}, fmt.Errorf("%w: %s", version.ErrMissingField, k)
		}
	}
	var v version.Version
	if err := m.Decode(&v); err != nil {
		return version.Version{}, err
	}
	return v, nil
}

var recordKeys = []string{
	"name", "semver", "git_sha", "git_datetime", "git_dirty",
	"cargo_features", "cargo_profile", "rustc_semver", "rustc_llvm", "rustc_sha",
}

// Write writes the YAML record to path, creating parent directories.
func Write(path string, v version.Version) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
