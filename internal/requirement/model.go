package requirement

import (
	"strings"
)

// Spec is a single version constraint clause, e.g. {">=", "1.0"}.
type Spec struct {
	Op      string
	Version string
}

func (s Spec) String() string {
	return s.Op + s.Version
}

// Requirement is one parsed requirement line.
type Requirement struct {
	Raw    string // original line, trimmed
	Name   string // name as written
	Key    string // canonical name
	Extras []string
	Specs  []Spec
	Marker string // raw environment marker, empty if none
}

// Canonicalize normalizes a package name: lower-case with every run of
// dashes, underscores and dots collapsed to a single dash.
func Canonicalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	sep := false
	for _, r := range strings.ToLower(name) {
		if r == '-' || r == '_' || r == '.' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('-')
		}
		sep = false
		b.WriteRune(r)
	}
	return b.String()
}

// String renders the requirement in file syntax using the canonical name.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Key)
	if len(r.Extras) > 0 {
		b.WriteByte('[')
		b.WriteString(strings.Join(r.Extras, ","))
		b.WriteByte(']')
	}
	for i, s := range r.Specs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.String())
	}
	if r.Marker != "" {
		b.WriteString(" ; ")
		b.WriteString(r.Marker)
	}
	return b.String()
}

// PinnedVersion returns the version of the single equality clause, if the
// requirement has one. Extra exclusion clauses (!=) do not disqualify it.
func (r Requirement) PinnedVersion() (string, bool) {
	version := ""
	count := 0
	for _, s := range r.Specs {
		if s.Op == "==" || s.Op == "===" {
			version = s.Version
			count++
		}
	}
	if count != 1 {
		return "", false
	}
	return version, true
}

// SameKey reports whether two requirements name the same logical package.
func (r Requirement) SameKey(other Requirement) bool {
	return r.Key == other.Key
}
