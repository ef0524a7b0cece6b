package registry

import (
	"sort"

	"artistdb/internal/document"
	"artistdb/internal/social"
)

// DuplicatePrefix marks the synthesized key of a record whose username was
// already taken.
const DuplicatePrefix = "__duplicated__"

// Artist is one resolved registry entry. Empty strings mean "none".
type Artist struct {
	Username       string
	SourceKey      string
	DisplayName    string
	Flag           string
	Avatar         string
	AvatarOverride string
	// DeclaredAliases are the explicitly listed aliases that survived
	// sanitization and ownership filtering, in source order.
	DeclaredAliases []string
	// Aliases is the final sorted alias set, handle-derived ones included.
	Aliases []string
	Socials []social.Resolved
}

// Registry is the normalized set of artists, keyed by username.
type Registry struct {
	artists   map[string]*Artist
	usernames []string
	owners    map[string]string
}

// New indexes artists by username. Later entries replace earlier ones with
// the same username.
func New(artists []*Artist) *Registry {
	r := &Registry{
		artists: make(map[string]*Artist, len(artists)),
		owners:  make(map[string]string),
	}
	for _, a := range artists {
		if a == nil {
			continue
		}
		r.artists[a.Username] = a
	}
	r.usernames = make([]string, 0, len(r.artists))
	for name, a := range r.artists {
		r.usernames = append(r.usernames, name)
		for _, alias := range a.Aliases {
			r.owners[alias] = name
		}
	}
	sort.Strings(r.usernames)
	return r
}

// Len returns the number of artists.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.artists)
}

// Get returns the artist with the given username.
func (r *Registry) Get(username string) (*Artist, bool) {
	if r == nil {
		return nil, false
	}
	a, ok := r.artists[username]
	return a, ok
}

// Lookup resolves a username or an alias.
func (r *Registry) Lookup(name string) (*Artist, bool) {
	if a, ok := r.Get(name); ok {
		return a, true
	}
	if owner, ok := r.Owner(name); ok {
		return r.Get(owner)
	}
	return nil, false
}

// Owner returns the username owning alias.
func (r *Registry) Owner(alias string) (string, bool) {
	if r == nil {
		return "", false
	}
	owner, ok := r.owners[alias]
	return owner, ok
}

// Usernames returns all usernames in ascending order.
func (r *Registry) Usernames() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.usernames...)
}

// Artists returns all artists ordered by username.
func (r *Registry) Artists() []*Artist {
	if r == nil {
		return nil
	}
	out := make([]*Artist, 0, len(r.usernames))
	for _, name := range r.usernames {
		out = append(out, r.artists[name])
	}
	return out
}

// AliasCount returns the total number of published aliases.
func (r *Registry) AliasCount() int {
	if r == nil {
		return 0
	}
	return len(r.owners)
}

// SourceDocument renders the registry back into registry-document form:
// records sorted by username, reserved fields first, socials in order.
func (r *Registry) SourceDocument() *document.Document {
	doc := &document.Document{}
	for _, a := range r.Artists() {
		rec := document.Record{Key: a.Username}
		if a.DisplayName != "" {
			rec.Fields = append(rec.Fields, document.Field{Key: document.FieldName, Value: document.String(a.DisplayName)})
		}
		if a.AvatarOverride != "" {
			rec.Fields = append(rec.Fields, document.Field{Key: document.FieldAvatar, Value: document.String(a.AvatarOverride)})
		}
		if a.Flag != "" {
			rec.Fields = append(rec.Fields, document.Field{Key: document.FieldFlag, Value: document.String(a.Flag)})
		}
		if len(a.DeclaredAliases) > 0 {
			rec.Fields = append(rec.Fields, document.Field{Key: document.FieldAlias, Value: document.StringList(a.DeclaredAliases...)})
		}
		for i, key := range sourceKeys(a.Socials) {
			rec.Fields = append(rec.Fields, document.Field{Key: key, Value: document.String(a.Socials[i].Value)})
		}
		doc.Records = append(doc.Records, rec)
	}
	return doc
}

// sourceKeys assigns each social its normalized key, falling back to the
// original key when two socials normalize to the same one. Keys that are
// already normalized are reserved first so the fallback never collides.
func sourceKeys(socials []social.Resolved) []string {
	keys := make([]string, len(socials))
	used := make(map[string]bool, len(socials))
	for i, s := range socials {
		if k := s.SourceKey(); k == s.Key && !used[k] {
			keys[i] = k
			used[k] = true
		}
	}
	for i, s := range socials {
		if keys[i] != "" || (s.Key == "" && s.SourceKey() == "") {
			continue
		}
		k := s.SourceKey()
		if used[k] {
			k = s.Key
		}
		keys[i] = k
		used[k] = true
	}
	return keys
}
