package catalog

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Placeholder is substituted with the handle when building profile links.
const Placeholder = "<USERNAME>"

// Platform describes one supported social platform.
type Platform struct {
	Code          string
	Name          string
	URLTemplate   string
	AvatarCapable bool
	// LinkInBio marks aggregator pages that link out to other profiles.
	LinkInBio bool
}

// Link substitutes the path-escaped handle into the platform's URL template.
func (p *Platform) Link(handle string) (string, bool) {
	if p == nil || p.URLTemplate == "" || handle == "" {
		return "", false
	}
	return strings.ReplaceAll(p.URLTemplate, Placeholder, url.PathEscape(handle)), true
}

// HasTemplate reports whether the platform can build profile links.
func (p *Platform) HasTemplate() bool {
	return p != nil && p.URLTemplate != ""
}

// Describe returns "{Name} | {note}", or just the name when note is empty.
func (p *Platform) Describe(note string) string {
	if p == nil {
		return note
	}
	if note == "" {
		return p.Name
	}
	return p.Name + " | " + note
}

// Entry declares a platform together with its alias codes.
type Entry struct {
	Platform Platform
	Aliases  []string
}

// Catalog maps lowercase platform codes to platforms.
type Catalog struct {
	byCode    map[string]*Platform
	platforms []*Platform
}

// New builds a catalog from entries. Codes must be lowercase and unique
// across all entries and aliases.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{byCode: make(map[string]*Platform, len(entries)*2)}
	for i := range entries {
		p := entries[i].Platform
		platform := &p
		codes := append([]string{p.Code}, entries[i].Aliases...)
		for _, code := range codes {
			if code == "" || code != strings.ToLower(code) {
				return nil, fmt.Errorf("platform code %q must be non-empty lowercase", code)
			}
			if _, exists := c.byCode[code]; exists {
				return nil, fmt.Errorf("platform code %q declared twice", code)
			}
			c.byCode[code] = platform
		}
		c.platforms = append(c.platforms, platform)
	}
	sort.Slice(c.platforms, func(i, j int) bool { return c.platforms[i].Code < c.platforms[j].Code })
	return c, nil
}

// MustNew is New for static tables.
func MustNew(entries []Entry) *Catalog {
	c, err := New(entries)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup resolves a code against the extended tier. Codes are matched
// exactly; callers lowercase them first.
func (c *Catalog) Lookup(code string) (*Platform, bool) {
	if c == nil {
		return nil, false
	}
	p, ok := c.byCode[code]
	return p, ok
}

// LookupAvatar resolves a code against the avatar tier only.
func (c *Catalog) LookupAvatar(code string) (*Platform, bool) {
	p, ok := c.Lookup(code)
	if !ok || !p.AvatarCapable {
		return nil, false
	}
	return p, true
}

// IsAvatarCapable reports whether code belongs to the avatar tier.
func (c *Catalog) IsAvatarCapable(code string) bool {
	_, ok := c.LookupAvatar(code)
	return ok
}

// Platforms returns every distinct platform sorted by canonical code.
func (c *Catalog) Platforms() []*Platform {
	if c == nil {
		return nil
	}
	out := make([]*Platform, len(c.platforms))
	copy(out, c.platforms)
	return out
}

// Codes returns every accepted code, aliases included, sorted.
func (c *Catalog) Codes() []string {
	if c == nil {
		return nil
	}
	codes := make([]string, 0, len(c.byCode))
	for code := range c.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// AliasesOf returns the non-canonical codes that resolve to p.
func (c *Catalog) AliasesOf(p *Platform) []string {
	var aliases []string
	for code, candidate := range c.byCode {
		if candidate == p && code != p.Code {
			aliases = append(aliases, code)
		}
	}
	sort.Strings(aliases)
	return aliases
}
