// Package social turns one raw social field of an artist record into a
// Resolved entry: matched platform, free-text note, handle, profile link and
// display description.
//
// Field keys follow "code[:note]". The code segment is matched against the
// platform catalog case-insensitively; an unmatched key is kept verbatim as a
// label so nothing the registry author wrote is lost. Values are either a
// handle or an absolute http(s) URL.
package social
