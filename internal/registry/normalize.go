package registry

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"artistdb/internal/avatar"
	"artistdb/internal/diag"
	"artistdb/internal/document"
	"artistdb/internal/social"
	"artistdb/internal/textutil"
)

// Sanitize maps a name onto the username/alias alphabet.
func Sanitize(name string) string {
	return textutil.SanitizeIdentifier(name)
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithWorkers bounds the number of records resolved concurrently.
func WithWorkers(workers int) Option {
	return func(n *Normalizer) {
		if workers > 0 {
			n.workers = workers
		}
	}
}

// Normalizer turns documents into registries.
type Normalizer struct {
	social  *social.Resolver
	avatar  *avatar.Resolver
	workers int
}

// NewNormalizer wires the resolvers used for every record.
func NewNormalizer(socials *social.Resolver, avatars *avatar.Resolver, opts ...Option) *Normalizer {
	n := &Normalizer{social: socials, avatar: avatars, workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type slot struct {
	record   *document.Record
	username string
	artist   *Artist
	// candidates is the deduplicated alias candidate list.
	candidates []string
	declared   []string
	diags      []diag.Diagnostic
}

// Normalize resolves doc. Diagnostics are returned in document order,
// followed by alias ownership findings in username order. The only error is
// context cancellation.
func (n *Normalizer) Normalize(ctx context.Context, doc *document.Document) (*Registry, []diag.Diagnostic, error) {
	if doc == nil || doc.Len() == 0 {
		return New(nil), nil, nil
	}

	slots := n.assignUsernames(doc)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.workers)
	for i := range slots {
		s := &slots[i]
		if s.username == "" {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n.resolve(s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("normalize registry: %w", err)
	}

	var diags []diag.Diagnostic
	for i := range slots {
		diags = append(diags, slots[i].diags...)
	}
	artists, ownership := enforceAliasOwnership(slots)
	diags = append(diags, ownership...)
	return New(artists), diags, nil
}

// assignUsernames runs sequentially so duplicate detection follows document
// order.
func (n *Normalizer) assignUsernames(doc *document.Document) []slot {
	slots := make([]slot, len(doc.Records))
	taken := make(map[string]bool, len(doc.Records))
	for i := range doc.Records {
		rec := &doc.Records[i]
		s := &slots[i]
		s.record = rec
		if rec.Malformed != "" {
			s.diags = append(s.diags, diag.New(diag.KindMalformedRecord, rec.Key, "", rec.Malformed+"; record skipped").
				WithHint("declare the artist as a [table]"))
			continue
		}
		username := Sanitize(rec.Key)
		if username == "" {
			s.diags = append(s.diags, diag.New(diag.KindMalformedRecord, rec.Key, "", "empty identifier; record skipped"))
			continue
		}
		if taken[username] {
			// Built from the sanitized form so the stored key survives a
			// rewrite and re-normalization unchanged.
			collision := DuplicatePrefix + username
			for suffix := 2; taken[collision]; suffix++ {
				collision = fmt.Sprintf("%s%s_%d", DuplicatePrefix, username, suffix)
			}
			s.diags = append(s.diags, diag.New(diag.KindDuplicateUsername, rec.Key, "",
				fmt.Sprintf("username %q already taken; stored as %q", username, collision)).
				WithHint("rename or merge the duplicate records"))
			username = collision
		}
		taken[username] = true
		s.username = username
	}
	return slots
}

// resolve fills one slot. It reads only its own record and writes only its
// own slot.
func (n *Normalizer) resolve(s *slot) {
	a := &Artist{Username: s.username, SourceKey: s.record.Key}
	var handles []string

	for _, f := range s.record.Fields {
		switch f.Key {
		case document.FieldName:
			if v, ok := s.expectString(f); ok {
				a.DisplayName = textutil.NormalizeText(v)
			}
		case document.FieldAvatar:
			if v, ok := s.expectString(f); ok {
				a.AvatarOverride = strings.TrimSpace(v)
			}
		case document.FieldFlag:
			if v, ok := s.expectString(f); ok {
				a.Flag = textutil.NormalizeText(v)
			}
		case document.FieldAlias:
			s.declared = append(s.declared, s.declaredAliases(f)...)
		default:
			v, ok := s.expectString(f)
			if !ok {
				continue
			}
			resolved, diags := n.social.Resolve(f.Key, v, s.username)
			s.diags = append(s.diags, diags...)
			a.Socials = append(a.Socials, resolved)
			if resolved.Handle != "" {
				handles = append(handles, Sanitize(resolved.Handle))
			}
		}
	}

	avatarURL, diags := n.avatar.Resolve(a.AvatarOverride, a.Socials, s.username)
	a.Avatar = avatarURL
	s.diags = append(s.diags, diags...)

	s.declared = dedupe(s.declared)
	s.candidates = dedupe(append(append([]string(nil), s.declared...), handles...))
	s.artist = a
}

func (s *slot) expectString(f document.Field) (string, bool) {
	if f.Value.Kind == document.KindString {
		return f.Value.Str, true
	}
	s.diags = append(s.diags, diag.New(diag.KindMalformedField, s.username, f.Key,
		fmt.Sprintf("expected string, got %s; field skipped", f.Value.TypeName())))
	return "", false
}

func (s *slot) declaredAliases(f document.Field) []string {
	if f.Value.Kind != document.KindStringList {
		s.diags = append(s.diags, diag.New(diag.KindMalformedField, s.username, f.Key,
			fmt.Sprintf("expected array of strings, got %s; field skipped", f.Value.TypeName())))
		return nil
	}
	if f.Value.Skipped > 0 {
		s.diags = append(s.diags, diag.New(diag.KindMalformedField, s.username, f.Key,
			fmt.Sprintf("%d non-string alias entries skipped", f.Value.Skipped)))
	}
	out := make([]string, 0, len(f.Value.List))
	for _, item := range f.Value.List {
		if alias := Sanitize(strings.TrimSpace(item)); alias != "" {
			out = append(out, alias)
		}
	}
	return out
}

// enforceAliasOwnership is the barrier phase. It reads the global username
// and alias sets and filters each artist's candidates against them.
func enforceAliasOwnership(slots []slot) ([]*Artist, []diag.Diagnostic) {
	usernames := make(map[string]bool, len(slots))
	claims := make(map[string]int)
	var resolved []*slot
	for i := range slots {
		s := &slots[i]
		if s.artist == nil {
			continue
		}
		usernames[s.username] = true
		for _, alias := range s.candidates {
			claims[alias]++
		}
		resolved = append(resolved, s)
	}
	sort.Slice(resolved, func(i, j int) bool { return resolved[i].username < resolved[j].username })

	var diags []diag.Diagnostic
	artists := make([]*Artist, 0, len(resolved))
	for _, s := range resolved {
		kept := make(map[string]bool, len(s.candidates))
		for _, alias := range s.candidates {
			switch {
			case alias == s.username:
			case usernames[alias]:
				diags = append(diags, diag.New(diag.KindAliasCollision, s.username, document.FieldAlias,
					fmt.Sprintf("alias %q is another artist's username; dropped", alias)))
			case claims[alias] > 1:
				diags = append(diags, diag.New(diag.KindAliasCollision, s.username, document.FieldAlias,
					fmt.Sprintf("alias %q is claimed by more than one artist; dropped", alias)).
					WithHint("keep the alias on one artist only"))
			default:
				kept[alias] = true
			}
		}
		a := s.artist
		for _, alias := range s.declared {
			if kept[alias] {
				a.DeclaredAliases = append(a.DeclaredAliases, alias)
			}
		}
		for alias := range kept {
			a.Aliases = append(a.Aliases, alias)
		}
		sort.Strings(a.Aliases)
		artists = append(artists, a)
	}
	return artists, diags
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
