// Package textutil provides the small string helpers shared by the registry
// resolvers: identifier sanitization, Unicode normalization of free text, URL
// scheme detection, and filesystem-safe name checks.
package textutil
