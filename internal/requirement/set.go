package requirement

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Role tags a requirement set with the file it came from.
type Role string

const (
	RoleProdMinimal Role = "prod-minimal"
	RoleProdLocked  Role = "prod-locked"
	RoleDevMinimal  Role = "dev-minimal"
	RoleDevLocked   Role = "dev-locked"
)

// Set is an ordered sequence of requirements parsed from one file.
// It is immutable after creation.
type Set struct {
	Role Role
	File string
	Reqs []Requirement
}

// LoadSet reads and parses a requirements file.
func LoadSet(role Role, path string) (*Set, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is a project requirements file
	if err != nil {
		return nil, fmt.Errorf("reading %s requirements: %w", role, err)
	}
	return ParseSet(role, path, data)
}

// ParseSet parses requirements file content. Blank lines, comments and
// installer directives are dropped; any other unparsable line fails the
// whole set with a *ParseError carrying file and line number.
func ParseSet(role Role, file string, data []byte) (*Set, error) {
	s := &Set{Role: role, File: file}
	for i, line := range strings.Split(string(data), "\n") {
		if skippable(line) {
			continue
		}
		req, err := Parse(line)
		if err != nil {
			return nil, &ParseError{File: file, Line: i + 1, Err: err}
		}
		s.Reqs = append(s.Reqs, req)
	}
	return s, nil
}

// NewSet builds a set from already-parsed requirements.
func NewSet(role Role, reqs ...Requirement) *Set {
	return &Set{Role: role, Reqs: reqs}
}

// ByKey returns a canonical-name index of the set. Later entries win when a
// file lists the same package twice.
func (s *Set) ByKey() map[string]Requirement {
	m := make(map[string]Requirement, len(s.Reqs))
	for _, r := range s.Reqs {
		m[r.Key] = r
	}
	return m
}

// Keys returns the canonical names in the set, sorted.
func (s *Set) Keys() []string {
	m := s.ByKey()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of requirements in the set.
func (s *Set) Len() int { return len(s.Reqs) }

// Lines renders the set back to file syntax, one requirement per line,
// sorted by canonical name.
func (s *Set) Lines() string {
	if len(s.Reqs) == 0 {
		return ""
	}
	reqs := make([]Requirement, len(s.Reqs))
	copy(reqs, s.Reqs)
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Key < reqs[j].Key })
	var b strings.Builder
	for _, r := range reqs {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}
