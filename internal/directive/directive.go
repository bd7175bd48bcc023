// Package directive renders propagated key/value pairs and re-run hints in the
// formats build drivers understand.
package directive

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/flarebyte/buildstamp/internal/version"
)

// ErrMalformedDirective reports a key or value that would corrupt the
// directive line.
var ErrMalformedDirective = errors.New("malformed directive")

// Format selects the rendering.
type Format string

const (
	FormatCargo   Format = "cargo"
	FormatLdflags Format = "ldflags"
	FormatDotenv  Format = "dotenv"
)

const (
	DefaultEnvDirective   = "cargo:rustc-env"
	DefaultRerunDirective = "cargo:rerun-if-changed"
	// DefaultLdflagsPackage receives -X assignments for Go builds.
	DefaultLdflagsPackage = "github.com/flarebyte/buildstamp/cli"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCargo, FormatLdflags, FormatDotenv:
		return Format(s), nil
	case "":
		return FormatCargo, nil
	}
	return "", fmt.Errorf("unsupported format: %q (supported: cargo, ldflags, dotenv)", s)
}

// Options tunes rendering.
type Options struct {
	Format         Format
	EnvDirective   string
	RerunDirective string
	LdflagsPackage string
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatCargo
	}
	if o.EnvDirective == "" {
		o.EnvDirective = DefaultEnvDirective
	}
	if o.RerunDirective == "" {
		o.RerunDirective = DefaultRerunDirective
	}
	if o.LdflagsPackage == "" {
		o.LdflagsPackage = DefaultLdflagsPackage
	}
	return o
}

// CheckKey rejects empty keys and keys containing the key/value delimiter or
// whitespace.
func CheckKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrMalformedDirective)
	}
	if strings.Contains(key, "=") {
		return fmt.Errorf("%w: key %q contains '='", ErrMalformedDirective, key)
	}
	if strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: key %q contains whitespace", ErrMalformedDirective, key)
	}
	return nil
}

// CheckValue rejects values that would spill onto another line.
func CheckValue(key, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: value for %s contains a line break", ErrMalformedDirective, key)
	}
	return nil
}

// Render returns every output line, or nothing when any key, value or hint is
// malformed. Hints are only meaningful to the cargo format and are dropped
// otherwise.
func Render(opts Options, pairs []version.KV, hints []string) ([]string, error) {
	opts = opts.withDefaults()
	for _, kv := range pairs {
		if err := CheckKey(kv.Key); err != nil {
			return nil, err
		}
		if err := CheckValue(kv.Key, kv.Value); err != nil {
			return nil, err
		}
	}
	for _, h := range hints {
		if err := CheckValue("re-run hint", h); err != nil {
			return nil, err
		}
	}
	switch opts.Format {
	case FormatCargo:
		return renderCargo(opts, pairs, hints), nil
	case FormatLdflags:
		return renderLdflags(opts, pairs)
	case FormatDotenv:
		return renderDotenv(pairs), nil
	}
	return nil, fmt.Errorf("unsupported format: %q", opts.Format)
}

func renderCargo(opts Options, pairs []version.KV, hints []string) []string {
	lines := make([]string, 0, len(pairs)+len(hints))
	for _, h := range hints {
		lines = append(lines, opts.RerunDirective+"="+h)
	}
	for _, kv := range pairs {
		lines = append(lines, opts.EnvDirective+"="+kv.Key+"="+kv.Value)
	}
	return lines
}

// dotenvEscaper escapes what godotenv.Read interprets inside double quotes.
var dotenvEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`!`, `\!`,
	`$`, `\$`,
	"`", "\\`",
)

// renderDotenv quotes every value, so numeric-looking values read back
// unchanged.
func renderDotenv(pairs []version.KV) []string {
	lines := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		lines = append(lines, kv.Key+`="`+dotenvEscaper.Replace(kv.Value)+`"`)
	}
	return lines
}

// Write writes lines, each terminated by a newline.
func Write(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := io.WriteString(w, l+"\n"); err != nil {
			return err
		}
	}
	return nil
}
