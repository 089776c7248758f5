// Package requirement parses line-oriented requirement files into a
// normalized model. Names are canonicalized (lower-case, runs of dashes,
// underscores and dots collapsed to a single dash) so that two spellings of
// the same package compare equal, and each requirement carries its version
// specifiers, extras and an optional environment marker.
package requirement
