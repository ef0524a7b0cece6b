// Package avatar picks the profile picture URL for an artist.
//
// The fallback chain is: an explicit absolute URL, then a "handle@platform"
// override, then the first social entry on an avatar-capable platform. URLs
// for the last two are built against an unavatar-compatible service; nothing
// is fetched.
package avatar

import (
	"fmt"
	"net/url"
	"strings"

	"artistdb/internal/catalog"
	"artistdb/internal/diag"
	"artistdb/internal/social"
	"artistdb/internal/textutil"
)

const (
	// DefaultBaseURL is the avatar service root.
	DefaultBaseURL = "https://unavatar.io"
	// DefaultSize is the requested square size in pixels.
	DefaultSize = 400
)

// Option customizes a Resolver.
type Option func(*Resolver)

// WithBaseURL points generated URLs at a different avatar service.
func WithBaseURL(base string) Option {
	return func(r *Resolver) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			r.baseURL = base
		}
	}
}

// WithSize overrides the requested avatar size.
func WithSize(size int) Option {
	return func(r *Resolver) {
		if size > 0 {
			r.size = size
		}
	}
}

// Resolver derives avatar URLs.
type Resolver struct {
	catalog *catalog.Catalog
	baseURL string
	size    int
}

// NewResolver returns a resolver backed by cat.
func NewResolver(cat *catalog.Catalog, opts ...Option) *Resolver {
	r := &Resolver{catalog: cat, baseURL: DefaultBaseURL, size: DefaultSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ServiceURL builds the avatar service URL for a handle on code. The handle
// is path-escaped.
func (r *Resolver) ServiceURL(code, handle string) string {
	return fmt.Sprintf("%s/%s/%s?size=%d", r.baseURL, code, url.PathEscape(handle), r.size)
}

// Resolve walks the fallback chain. An empty result means the artist has no
// avatar, which is a valid outcome.
func (r *Resolver) Resolve(override string, socials []social.Resolved, artist string) (string, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	override = strings.TrimSpace(override)

	if override != "" {
		if textutil.IsURL(override) {
			if textutil.IsInsecureURL(override) {
				diags = append(diags, diag.New(diag.KindInsecureAvatar, artist, "__avatar__",
					"avatar served over plain http").WithHint("switch the URL to https"))
			}
			return override, diags
		}

		parts := strings.Split(override, "@")
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			handle, code := parts[0], strings.ToLower(parts[1])
			// The service path uses the code as written: twitter stays twitter.
			if _, ok := r.catalog.LookupAvatar(code); ok {
				return r.ServiceURL(code, handle), diags
			}
			diags = append(diags, diag.New(diag.KindAvatarUnsupported, artist, "__avatar__",
				fmt.Sprintf("platform %q cannot provide avatars", code)).
				WithHint("use an avatar-capable platform or a direct image URL"))
		} else {
			diags = append(diags, diag.New(diag.KindAvatarMalformed, artist, "__avatar__",
				fmt.Sprintf("%q is neither a URL nor handle@platform", override)))
		}
	}

	for _, s := range socials {
		if s.AvatarCandidate() {
			return r.ServiceURL(s.KeyCode, s.Handle), diags
		}
	}

	diags = append(diags, diag.New(diag.KindNoAvatar, artist, "", "no avatar source").WithLevel(diag.LevelDebug))
	return "", diags
}
