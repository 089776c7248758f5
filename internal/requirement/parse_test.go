package requirement

import (
	"errors"
	"testing"
)

func TestParse_simple(t *testing.T) {
	req, err := Parse("requests==2.31.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Name != "requests" || req.Key != "requests" {
		t.Errorf("name = %q key = %q", req.Name, req.Key)
	}
	if len(req.Specs) != 1 || req.Specs[0].Op != "==" || req.Specs[0].Version != "2.31.0" {
		t.Errorf("specs = %v", req.Specs)
	}
}

func TestParse_full(t *testing.T) {
	req, err := Parse(`Flask_Login[oauth, cli]>=0.5,<1.0 ; python_version >= "3.8"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Name != "Flask_Login" {
		t.Errorf("name = %q, want original spelling preserved", req.Name)
	}
	if req.Key != "flask-login" {
		t.Errorf("key = %q, want flask-login", req.Key)
	}
	if len(req.Extras) != 2 || req.Extras[0] != "oauth" || req.Extras[1] != "cli" {
		t.Errorf("extras = %v", req.Extras)
	}
	if len(req.Specs) != 2 {
		t.Fatalf("specs = %v, want 2 clauses", req.Specs)
	}
	if req.Marker != `python_version >= "3.8"` {
		t.Errorf("marker = %q", req.Marker)
	}
}

func TestParse_bareName(t *testing.T) {
	req, err := Parse("requests")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Specs) != 0 {
		t.Errorf("specs = %v, want none", req.Specs)
	}
}

func TestParse_parenthesizedSpecs(t *testing.T) {
	req, err := Parse("requests (>=2.0)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Specs) != 1 || req.Specs[0].Op != ">=" {
		t.Errorf("specs = %v", req.Specs)
	}
}

func TestParse_malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"no name", "==1.0"},
		{"bad operator", "requests=1.0"},
		{"missing version", "requests=="},
		{"unclosed extras", "requests[security"},
		{"empty extra", "requests[security,]"},
		{"empty clause", "requests==1.0,"},
		{"junk after name", "foo bar==1.0"},
		{"empty marker", "requests==1.0 ;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.line); err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.line)
			}
		})
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"requests", "requests"},
		{"Flask_Login", "flask-login"},
		{"FOO.BAR", "foo-bar"},
		{"foo-bar", "foo-bar"},
		{"zope.interface", "zope-interface"},
		{"a__--..b", "a-b"},
	}
	for _, tt := range tests {
		if got := Canonicalize(tt.in); got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalize_idempotent(t *testing.T) {
	for _, name := range []string{"Flask_Login", "FOO.BAR", "a_b-c.d"} {
		once := Canonicalize(name)
		if twice := Canonicalize(once); twice != once {
			t.Errorf("Canonicalize(%q): %q then %q, want fixed point", name, once, twice)
		}
	}
}

func TestParseSet_skipsNoise(t *testing.T) {
	data := []byte(`
# a comment
requests==2.31.0

-e git+https://example.com/pkg.git#egg=pkg
-r other-requirements.txt
urllib3==2.0.0
`)
	s, err := ParseSet(RoleProdLocked, "requirements.txt", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
}

func TestParseSet_malformedLineNumber(t *testing.T) {
	data := []byte("requests==2.31.0\n===nonsense\n")
	_, err := ParseSet(RoleProdLocked, "requirements.txt", data)
	if err == nil {
		t.Fatal("expected error")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error %T is not *ParseError", err)
	}
	if perr.File != "requirements.txt" || perr.Line != 2 {
		t.Errorf("location = %s:%d, want requirements.txt:2", perr.File, perr.Line)
	}
}

func TestSet_Lines(t *testing.T) {
	s := &Set{Role: RoleProdLocked, Reqs: []Requirement{
		mustParse(t, "urllib3==2.0.0"),
		mustParse(t, "Requests==2.31.0"),
	}}
	want := "requests==2.31.0\nurllib3==2.0.0\n"
	if got := s.Lines(); got != want {
		t.Errorf("Lines() = %q, want %q", got, want)
	}
}

func TestRequirement_PinnedVersion(t *testing.T) {
	tests := []struct {
		line   string
		want   string
		pinned bool
	}{
		{"a==1.0", "1.0", true},
		{"a===1.0", "1.0", true},
		{"a==1.2,!=1.2.1", "1.2", true},
		{"a>=1.0", "", false},
		{"a", "", false},
		{"a==1.0,==2.0", "", false},
	}
	for _, tt := range tests {
		req := mustParse(t, tt.line)
		got, ok := req.PinnedVersion()
		if ok != tt.pinned || got != tt.want {
			t.Errorf("PinnedVersion(%q) = (%q, %v), want (%q, %v)", tt.line, got, ok, tt.want, tt.pinned)
		}
	}
}

func mustParse(t *testing.T, line string) Requirement {
	t.Helper()
	req, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	return req
}
