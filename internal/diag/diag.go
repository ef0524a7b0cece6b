// Package diag carries non-fatal findings produced while resolving a registry.
//
// Resolvers never log directly. They return Diagnostics alongside their
// results so they stay pure and safe to run in parallel; the pipeline decides
// how each finding is surfaced (structured log line, metrics counter, CLI
// output).
package diag

import (
	"fmt"
	"strings"
)

// Kind classifies a diagnostic.
type Kind string

const (
	// KindMalformedField marks a reserved or social field with an unexpected shape.
	KindMalformedField Kind = "malformed_field"
	// KindMalformedRecord marks a record that is not a table.
	KindMalformedRecord Kind = "malformed_record"
	// KindUnknownPlatform marks a social key whose platform is not in the catalog.
	KindUnknownPlatform Kind = "unknown_platform"
	// KindMissingTemplate marks a known platform that cannot build profile links.
	KindMissingTemplate Kind = "missing_template"
	// KindURLValue marks a social value given as a URL where a handle is expected.
	KindURLValue Kind = "url_value"
	// KindMissingHandle marks a social field with an empty value.
	KindMissingHandle Kind = "missing_handle"
	// KindAvatarUnsupported marks a handle@platform override for a platform without avatar support.
	KindAvatarUnsupported Kind = "avatar_unsupported"
	// KindAvatarMalformed marks an override that is neither a URL nor handle@platform.
	KindAvatarMalformed Kind = "avatar_malformed"
	// KindInsecureAvatar marks an explicit avatar URL served over plain http.
	KindInsecureAvatar Kind = "insecure_avatar"
	// KindNoAvatar marks an artist that ends up without an avatar.
	KindNoAvatar Kind = "no_avatar"
	// KindDuplicateUsername marks a record whose sanitized identifier is already taken.
	KindDuplicateUsername Kind = "duplicate_username"
	// KindAliasCollision marks an alias dropped because another artist owns it.
	KindAliasCollision Kind = "alias_collision"
	// KindUnsafeName marks an artifact name that cannot be written as a file.
	KindUnsafeName Kind = "unsafe_name"
	// KindPublishFailure marks an artifact that failed to encode or write.
	KindPublishFailure Kind = "publish_failure"
)

// Level is the severity used when the diagnostic is logged.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
)

// Diagnostic is a single non-fatal finding.
type Diagnostic struct {
	Artist  string
	Field   string
	Kind    Kind
	Level   Level
	Message string
	Hint    string
}

// New builds a warning-level diagnostic.
func New(kind Kind, artist, field, message string) Diagnostic {
	return Diagnostic{Artist: artist, Field: field, Kind: kind, Level: LevelWarn, Message: message}
}

// WithHint returns a copy carrying the suggested next step.
func (d Diagnostic) WithHint(hint string) Diagnostic {
	d.Hint = hint
	return d
}

// WithLevel returns a copy with the given level.
func (d Diagnostic) WithLevel(level Level) Diagnostic {
	d.Level = level
	return d
}

func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	if d.Artist != "" {
		b.WriteString(" [")
		b.WriteString(d.Artist)
		if d.Field != "" {
			b.WriteByte('.')
			b.WriteString(d.Field)
		}
		b.WriteByte(']')
	}
	if d.Message != "" {
		fmt.Fprintf(&b, ": %s", d.Message)
	}
	return b.String()
}

// Count tallies diagnostics by kind.
func Count(diags []Diagnostic) map[Kind]int {
	counts := make(map[Kind]int, len(diags))
	for _, d := range diags {
		counts[d.Kind]++
	}
	return counts
}

// Filter returns the diagnostics of the given kind.
func Filter(diags []Diagnostic, kind Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
