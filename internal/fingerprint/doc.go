// Package fingerprint computes content fingerprints for registries and
// registry documents, and decides from them whether a run must publish.
//
// A fingerprint is a 64-bit xxhash over a canonical, length-prefixed
// serialization. Artists are visited in username order and alias sets are
// sorted, so map iteration order never leaks into the hash. Social entries
// keep their authored order: reordering socials is a real change.
//
// Zero is reserved as the "unknown" sentinel. Empty inputs hash to Zero and
// a computed value of zero is remapped, so Zero never equals a real
// fingerprint.
package fingerprint
