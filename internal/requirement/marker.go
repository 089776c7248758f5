package requirement

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Environment supplies the variable values an environment marker is
// evaluated against, e.g. {"sys_platform": "linux"}.
type Environment map[string]string

// DefaultEnvironment describes the current platform. The Python-specific
// variables default to a recent interpreter; callers probing a real
// environment should overwrite them.
func DefaultEnvironment() Environment {
	env := Environment{
		"python_version":      "3.12",
		"python_full_version": "3.12.0",
		"implementation_name": "cpython",
		"platform_machine":    runtime.GOARCH,
		"extra":               "",
	}
	switch runtime.GOOS {
	case "windows":
		env["sys_platform"] = "win32"
		env["platform_system"] = "Windows"
		env["os_name"] = "nt"
	case "darwin":
		env["sys_platform"] = "darwin"
		env["platform_system"] = "Darwin"
		env["os_name"] = "posix"
	default:
		env["sys_platform"] = runtime.GOOS
		env["platform_system"] = strings.ToUpper(runtime.GOOS[:1]) + runtime.GOOS[1:]
		env["os_name"] = "posix"
	}
	return env
}

// EvalMarker evaluates a marker expression such as
// `python_version >= "3.8" and sys_platform != "win32"` against env.
// The grammar is comparisons joined by "and"/"or" with parentheses;
// "and" binds tighter than "or".
func EvalMarker(expr string, env Environment) (bool, error) {
	p := &markerParser{toks: tokenizeMarker(expr), env: env}
	v, err := p.parseOr()
	if err != nil {
		return false, fmt.Errorf("marker %q: %w", expr, err)
	}
	if p.pos != len(p.toks) {
		return false, fmt.Errorf("marker %q: unexpected %q", expr, p.toks[p.pos])
	}
	return v, nil
}

func tokenizeMarker(expr string) []string {
	var toks []string
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(' || c == ')':
			toks = append(toks, string(c))
			i++
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(expr) && expr[j] != c {
				j++
			}
			if j >= len(expr) {
				// Unterminated string; emit as-is and let the parser fail.
				toks = append(toks, expr[i:])
				return toks
			}
			toks = append(toks, `"`+expr[i+1:j]+`"`)
			i = j + 1
		case strings.ContainsRune("<>=!~", rune(c)):
			j := i
			for j < len(expr) && strings.ContainsRune("<>=!~", rune(expr[j])) {
				j++
			}
			toks = append(toks, expr[i:j])
			i = j
		default:
			j := i
			for j < len(expr) && expr[j] != ' ' && expr[j] != '\t' &&
				expr[j] != '(' && expr[j] != ')' &&
				!strings.ContainsRune("<>=!~", rune(expr[j])) {
				j++
			}
			toks = append(toks, expr[i:j])
			i = j
		}
	}
	return toks
}

type markerParser struct {
	toks []string
	pos  int
	env  Environment
}

func (p *markerParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *markerParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *markerParser) parseOr() (bool, error) {
	v, err := p.parseAnd()
	if err != nil {
		return false, err
	}
	for p.peek() == "or" {
		p.next()
		rhs, err := p.parseAnd()
		if err != nil {
			return false, err
		}
		v = v || rhs
	}
	return v, nil
}

func (p *markerParser) parseAnd() (bool, error) {
	v, err := p.parseTerm()
	if err != nil {
		return false, err
	}
	for p.peek() == "and" {
		p.next()
		rhs, err := p.parseTerm()
		if err != nil {
			return false, err
		}
		v = v && rhs
	}
	return v, nil
}

func (p *markerParser) parseTerm() (bool, error) {
	if p.peek() == "(" {
		p.next()
		v, err := p.parseOr()
		if err != nil {
			return false, err
		}
		if p.next() != ")" {
			return false, fmt.Errorf("missing closing parenthesis")
		}
		return v, nil
	}
	return p.parseComparison()
}

func (p *markerParser) parseComparison() (bool, error) {
	lhs, err := p.parseValue()
	if err != nil {
		return false, err
	}
	op := p.next()
	if op == "not" {
		if p.next() != "in" {
			return false, fmt.Errorf(`expected "in" after "not"`)
		}
		op = "not in"
	}
	rhs, err := p.parseValue()
	if err != nil {
		return false, err
	}
	return compareMarker(lhs, op, rhs)
}

func (p *markerParser) parseValue() (string, error) {
	t := p.next()
	if t == "" {
		return "", fmt.Errorf("unexpected end of expression")
	}
	if strings.HasPrefix(t, `"`) {
		if !strings.HasSuffix(t, `"`) || len(t) < 2 {
			return "", fmt.Errorf("unterminated string")
		}
		return t[1 : len(t)-1], nil
	}
	if !isMarkerVar(t) {
		return "", fmt.Errorf("invalid value %q", t)
	}
	v, ok := p.env[t]
	if !ok {
		return "", fmt.Errorf("unknown marker variable %q", t)
	}
	return v, nil
}

func isMarkerVar(t string) bool {
	for i := 0; i < len(t); i++ {
		c := t[i]
		if (c < 'a' || c > 'z') && c != '_' {
			return false
		}
	}
	return len(t) > 0
}

func compareMarker(lhs, op, rhs string) (bool, error) {
	switch op {
	case "in":
		return strings.Contains(rhs, lhs), nil
	case "not in":
		return !strings.Contains(rhs, lhs), nil
	case "==":
		return compareDotted(lhs, rhs) == 0, nil
	case "!=":
		return compareDotted(lhs, rhs) != 0, nil
	case "<":
		return compareDotted(lhs, rhs) < 0, nil
	case "<=":
		return compareDotted(lhs, rhs) <= 0, nil
	case ">":
		return compareDotted(lhs, rhs) > 0, nil
	case ">=":
		return compareDotted(lhs, rhs) >= 0, nil
	case "~=":
		// Compatible release: same as >= for marker purposes.
		return compareDotted(lhs, rhs) >= 0, nil
	default:
		return false, fmt.Errorf("unsupported operator %q", op)
	}
}

// compareDotted compares two values segment-wise, numerically where both
// segments are integers and lexically otherwise. Plain strings degrade to a
// single-segment lexical comparison.
func compareDotted(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		sa, sb := "0", "0"
		if i < len(as) {
			sa = as[i]
		}
		if i < len(bs) {
			sb = bs[i]
		}
		na, errA := strconv.Atoi(sa)
		nb, errB := strconv.Atoi(sb)
		switch {
		case errA == nil && errB == nil:
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
		default:
			if sa != sb {
				if sa < sb {
					return -1
				}
				return 1
			}
		}
	}
	return 0
}
