// Package catalog holds the fixed table of social platforms an artist entry
// may reference.
//
// A Catalog has two tiers. The avatar tier lists platforms the avatar service
// can derive a profile picture from; the extended tier is a superset that adds
// platforms usable only for profile links. Several codes are aliases of one
// platform (x and twitter, fb and facebook, bsky and bluesky) and resolve to
// the same *Platform value.
//
// Catalogs are immutable after construction and safe for concurrent use.
package catalog
