// Package registry normalizes a parsed registry document into the set of
// resolved artists.
//
// Normalization runs in three phases. Usernames are assigned sequentially in
// document order so duplicate detection is deterministic. Each record is then
// resolved independently (reserved fields, socials, avatar, alias candidates)
// on a bounded worker pool. Finally, after every record is resolved, a single
// pass enforces registry-wide alias ownership: an alias survives only if it
// is not any artist's username and no other artist claims it.
package registry
