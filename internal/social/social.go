package social

import (
	"strings"

	"artistdb/internal/catalog"
	"artistdb/internal/diag"
	"artistdb/internal/textutil"
)

// Resolved is the outcome of resolving one social field. Empty strings mean
// "none".
type Resolved struct {
	Platform *catalog.Platform
	// KeyCode is the platform code as written in the key, lowercased. It is
	// empty when the key matched no platform.
	KeyCode     string
	Key         string
	Value       string
	Note        string
	Handle      string
	ProfileURL  string
	Description string
}

// Code returns the canonical platform code, or "" when unmatched.
func (r Resolved) Code() string {
	if r.Platform == nil {
		return ""
	}
	return r.Platform.Code
}

// SourceKey returns the key as it should appear in a normalized registry:
// lowercased code plus note when matched, the original key otherwise. The
// written code is kept rather than the canonical one because avatar URLs are
// built from it.
func (r Resolved) SourceKey() string {
	if r.Platform == nil {
		return r.Key
	}
	if r.Note == "" {
		return r.KeyCode
	}
	return r.KeyCode + ":" + r.Note
}

// AvatarCandidate reports whether this entry can supply an avatar.
func (r Resolved) AvatarCandidate() bool {
	return r.Platform != nil && r.Platform.AvatarCapable && r.Handle != ""
}

// Resolver resolves social fields against a catalog.
type Resolver struct {
	catalog *catalog.Catalog
}

// NewResolver returns a resolver backed by cat.
func NewResolver(cat *catalog.Catalog) *Resolver {
	return &Resolver{catalog: cat}
}

// Resolve interprets the (key, value) pair of a social field belonging to
// artist. It never fails; problems are reported as diagnostics.
func (r *Resolver) Resolve(key, value, artist string) (Resolved, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	value = strings.TrimSpace(value)
	out := Resolved{Key: key, Value: value}

	code, note, _ := textutil.SplitOnce(key, ":")
	code = strings.ToLower(code)
	platform, matched := r.catalog.Lookup(code)
	var label string
	if matched {
		out.Platform = platform
		out.KeyCode = code
		out.Note = textutil.NormalizeText(note)
	} else {
		label = key
	}

	isURL := textutil.IsURL(value)
	if !isURL && value != "" {
		out.Handle = value
	}

	switch {
	case matched && isURL:
		out.ProfileURL = value
		diags = append(diags, diag.New(diag.KindURLValue, artist, key,
			"value is a URL; a handle lets the link and avatar be derived").
			WithHint("replace the URL with the "+platform.Name+" handle"))
	case matched && out.Handle != "":
		if link, ok := platform.Link(out.Handle); ok {
			out.ProfileURL = link
		} else {
			diags = append(diags, diag.New(diag.KindMissingTemplate, artist, key,
				platform.Name+" has no profile link template").
				WithLevel(diag.LevelInfo))
		}
	case matched:
		diags = append(diags, diag.New(diag.KindMissingHandle, artist, key, "empty value").
			WithHint("fill in the handle or remove the field"))
	case isURL:
		out.ProfileURL = value
	case out.Handle != "" && key != "":
		diags = append(diags, diag.New(diag.KindUnknownPlatform, artist, key,
			"platform "+code+" is not in the catalog; no link built").
			WithHint("use a supported platform code or give the full URL"))
	}

	if matched {
		out.Description = platform.Describe(out.Note)
	} else {
		out.Description = label
	}
	return out, diags
}
