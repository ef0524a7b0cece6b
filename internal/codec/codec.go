// Package codec encodes the per-artist artifact published for consumers.
//
// The artifact format is opaque to the rest of the pipeline: anything that
// implements Codec can be selected by name in the configuration. Encoders
// must be deterministic so identical content yields identical bytes.
package codec

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"artistdb/internal/registry"
)

// ErrUnknownCodec is returned by ByName for unregistered names.
var ErrUnknownCodec = errors.New("unknown codec")

// Social is one published social entry. Empty fields are omitted.
type Social struct {
	Code string `json:"code,omitempty"`
	Desc string `json:"desc,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Artifact is the logical content published per artist.
type Artifact struct {
	Flag    string   `json:"flag,omitempty"`
	Name    string   `json:"name,omitempty"`
	Avatar  string   `json:"avatar,omitempty"`
	Alias   []string `json:"alias,omitempty"`
	Socials []Social `json:"socials"`
}

// FromArtist projects a resolved artist onto its artifact.
func FromArtist(a *registry.Artist) Artifact {
	art := Artifact{
		Flag:    a.Flag,
		Name:    a.DisplayName,
		Avatar:  a.Avatar,
		Socials: make([]Social, 0, len(a.Socials)),
	}
	if len(a.Aliases) > 0 {
		art.Alias = append([]string(nil), a.Aliases...)
	}
	for _, s := range a.Socials {
		art.Socials = append(art.Socials, Social{Code: s.Code(), Desc: s.Description, URL: s.ProfileURL})
	}
	return art
}

// Codec converts artifacts to and from bytes.
type Codec interface {
	Name() string
	Encode(Artifact) ([]byte, error)
	Decode([]byte) (Artifact, error)
}

var registered = map[string]Codec{
	ProtobufName: Protobuf{},
	JSONName:     JSON{},
}

// ByName returns the codec registered under name (case-insensitive).
func ByName(name string) (Codec, error) {
	c, ok := registered[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownCodec, name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names lists the registered codec names.
func Names() []string {
	names := make([]string, 0, len(registered))
	for name := range registered {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
