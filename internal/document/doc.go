// Package document reads and writes the TOML registry file while keeping the
// author's ordering.
//
// Each top-level table is one artist record. Inside a record, fields named
// with double underscores (__name__, __avatar__, __alias__, __flag__) are
// reserved; every other field is a social entry whose position matters, so
// the parser walks TOML expressions in order instead of decoding into maps.
// Values this model cannot carry (numbers, nested tables, ...) are kept as
// KindOther so later stages can report them instead of silently dropping them.
package document
