package requirement

import (
	"fmt"
	"strings"
)

// ParseError reports an unparsable requirement line with its location.
// It aborts the whole run: a file that cannot be parsed cannot be checked.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var specOps = []string{"===", "==", "!=", "~=", ">=", "<=", ">", "<"}

// Parse parses a single requirement line. The caller is expected to have
// filtered out blank lines, comments and installer directives already;
// ParseSet does that for whole files.
func Parse(line string) (Requirement, error) {
	raw := strings.TrimSpace(line)
	if raw == "" {
		return Requirement{}, fmt.Errorf("empty requirement")
	}

	rest := raw
	marker := ""
	if i := strings.IndexByte(rest, ';'); i != -1 {
		marker = strings.TrimSpace(rest[i+1:])
		rest = strings.TrimSpace(rest[:i])
		if marker == "" {
			return Requirement{}, fmt.Errorf("empty marker after %q", rest)
		}
	}

	name, rest := splitName(rest)
	if name == "" {
		return Requirement{}, fmt.Errorf("cannot parse package name from %q", raw)
	}

	extras, rest, err := splitExtras(rest)
	if err != nil {
		return Requirement{}, err
	}

	specs, err := parseSpecs(rest)
	if err != nil {
		return Requirement{}, fmt.Errorf("%q: %w", raw, err)
	}

	return Requirement{
		Raw:    raw,
		Name:   name,
		Key:    Canonicalize(name),
		Extras: extras,
		Specs:  specs,
		Marker: marker,
	}, nil
}

// splitName consumes the leading package name.
func splitName(s string) (string, string) {
	i := 0
	for i < len(s) && isNameByte(s[i]) {
		i++
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func isNameByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.':
		return true
	}
	return false
}

// splitExtras consumes an optional [extra1,extra2] group.
func splitExtras(s string) ([]string, string, error) {
	if s == "" || s[0] != '[' {
		return nil, s, nil
	}
	end := strings.IndexByte(s, ']')
	if end == -1 {
		return nil, "", fmt.Errorf("unclosed extras bracket in %q", s)
	}
	var extras []string
	for _, e := range strings.Split(s[1:end], ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			return nil, "", fmt.Errorf("empty extra in %q", s[:end+1])
		}
		extras = append(extras, strings.ToLower(e))
	}
	return extras, strings.TrimSpace(s[end+1:]), nil
}

// parseSpecs parses a comma-separated specifier set, e.g. ">=1.0,<2".
// A surrounding parenthesis pair, as allowed by requirement syntax, is
// stripped first.
func parseSpecs(s string) ([]Spec, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return nil, nil
	}
	var specs []Spec
	for _, clause := range strings.Split(s, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			return nil, fmt.Errorf("empty specifier clause")
		}
		spec, err := parseClause(clause)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseClause(clause string) (Spec, error) {
	for _, op := range specOps {
		if strings.HasPrefix(clause, op) {
			version := strings.TrimSpace(clause[len(op):])
			if version == "" {
				return Spec{}, fmt.Errorf("specifier %q is missing a version", clause)
			}
			if !validVersion(version) {
				return Spec{}, fmt.Errorf("invalid version %q", version)
			}
			return Spec{Op: op, Version: version}, nil
		}
	}
	return Spec{}, fmt.Errorf("invalid specifier clause %q", clause)
}

func validVersion(v string) bool {
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '_' || c == '*' || c == '+' || c == '!':
		default:
			return false
		}
	}
	return len(v) > 0
}

// skippable reports whether a requirement-file line carries no requirement:
// blanks, comments, and installer directives such as -e, -r or -i.
func skippable(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-")
}
