package upgrade

import (
	"testing"

	"github.com/fbkclanna/reqcheck/internal/requirement"
)

func parseSet(t *testing.T, role requirement.Role, lines string) *requirement.Set {
	t.Helper()
	s, err := requirement.ParseSet(role, "", []byte(lines))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCompute_identicalIsEmpty(t *testing.T) {
	s := parseSet(t, requirement.RoleProdLocked, "a==1.0\nb==2.0\n")
	if d := Compute(s, s); !d.Empty() {
		t.Errorf("diff of a set with itself = %+v, want empty", d)
	}
}

func TestCompute_addRemoveChange(t *testing.T) {
	old := parseSet(t, requirement.RoleProdLocked, "a==1.0\nb==2.0\n")
	fresh := parseSet(t, requirement.RoleProdLocked, "a==1.1\nc==3.0\n")
	d := Compute(old, fresh)

	if len(d.Added) != 1 || d.Added[0].Key != "c" {
		t.Errorf("added = %v, want c==3.0", d.Added)
	}
	if len(d.Removed) != 1 || d.Removed[0].Key != "b" {
		t.Errorf("removed = %v, want b==2.0", d.Removed)
	}
	if len(d.Changed) != 1 {
		t.Fatalf("changed = %v, want one entry", d.Changed)
	}
	c := d.Changed[0]
	if c.Key != "a" || c.Old != "1.0" || c.New != "1.1" {
		t.Errorf("change = %+v, want a: 1.0 -> 1.1", c)
	}
}

func TestCompute_singleAddition(t *testing.T) {
	old := parseSet(t, requirement.RoleProdLocked, "a==1.0\n")
	fresh := parseSet(t, requirement.RoleProdLocked, "a==1.0\nnew==0.1\n")
	d := Compute(old, fresh)
	if len(d.Added) != 1 || len(d.Removed) != 0 || len(d.Changed) != 0 {
		t.Errorf("diff = %+v, want exactly one addition", d)
	}
}

func TestCompute_caseVariantsAreSamePackage(t *testing.T) {
	old := parseSet(t, requirement.RoleProdLocked, "Flask_Login==0.5.0\n")
	fresh := parseSet(t, requirement.RoleProdLocked, "flask-login==0.6.2\n")
	d := Compute(old, fresh)
	if len(d.Added) != 0 || len(d.Removed) != 0 {
		t.Errorf("diff = %+v, spelling variants must diff as one package", d)
	}
	if len(d.Changed) != 1 || d.Changed[0].Key != "flask-login" {
		t.Errorf("changed = %v", d.Changed)
	}
}

func TestChange_Direction(t *testing.T) {
	tests := []struct {
		old, new, want string
	}{
		{"1.0.0", "1.1.0", "upgrade"},
		{"2.0.0", "1.9.0", "downgrade"},
		{"1.0", "1.1", "upgrade"},
		{"1.0.post1", "1.1", ""},
		{"abc", "def", ""},
	}
	for _, tt := range tests {
		c := Change{Key: "x", Old: tt.old, New: tt.new}
		if got := c.Direction(); got != tt.want {
			t.Errorf("Direction(%s -> %s) = %q, want %q", tt.old, tt.new, got, tt.want)
		}
	}
}

func TestDevLock_subtractsProd(t *testing.T) {
	frozenDev := parseSet(t, requirement.RoleDevLocked, "pytest==8.0.0\nrequests==2.31.0\nurllib3==2.0.0\n")
	prodLocked := parseSet(t, requirement.RoleProdLocked, "requests==2.31.0\nurllib3==2.0.0\n")
	out := DevLock(frozenDev, prodLocked)
	if out.Len() != 1 || out.Reqs[0].Key != "pytest" {
		t.Errorf("dev lock = %v, want only pytest", out.Reqs)
	}
	if out.Role != requirement.RoleDevLocked {
		t.Errorf("role = %s", out.Role)
	}
}

func TestDevLock_keepsDivergentVersion(t *testing.T) {
	frozenDev := parseSet(t, requirement.RoleDevLocked, "requests==2.32.0\n")
	prodLocked := parseSet(t, requirement.RoleProdLocked, "requests==2.31.0\n")
	out := DevLock(frozenDev, prodLocked)
	if out.Len() != 1 {
		t.Errorf("a dev pin at a different version must be kept, got %v", out.Reqs)
	}
}
