package requirement

import "testing"

func testEnv() Environment {
	return Environment{
		"python_version":      "3.12",
		"python_full_version": "3.12.1",
		"sys_platform":        "linux",
		"platform_system":     "Linux",
		"platform_machine":    "x86_64",
		"os_name":             "posix",
		"implementation_name": "cpython",
		"extra":               "",
	}
}

func TestEvalMarker(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{`python_version >= "3.8"`, true},
		{`python_version < "3.8"`, false},
		{`python_version == "3.12"`, true},
		{`python_version >= "3"`, true},
		{`sys_platform == "win32"`, false},
		{`sys_platform != "win32"`, true},
		{`sys_platform == "win32" or sys_platform == "linux"`, true},
		{`sys_platform == "win32" and python_version >= "3.8"`, false},
		{`(sys_platform == "win32" or os_name == "posix") and python_version >= "3.8"`, true},
		{`"linux" in sys_platform`, true},
		{`"bsd" not in sys_platform`, true},
		{`extra == "security"`, false},
		{`python_version ~= "3.8"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := EvalMarker(tt.expr, testEnv())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("EvalMarker(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvalMarker_andBindsTighterThanOr(t *testing.T) {
	// true or (false and false), not (true or false) and false.
	got, err := EvalMarker(`os_name == "posix" or os_name == "nt" and sys_platform == "win32"`, testEnv())
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("expected and to bind tighter than or")
	}
}

func TestEvalMarker_errors(t *testing.T) {
	tests := []string{
		``,
		`python_version >=`,
		`python_version >= "3.8" and`,
		`(python_version >= "3.8"`,
		`nonsense_variable == "x"`,
		`python_version like "3.8"`,
	}
	for _, expr := range tests {
		if _, err := EvalMarker(expr, testEnv()); err == nil {
			t.Errorf("EvalMarker(%q) succeeded, want error", expr)
		}
	}
}

func TestDefaultEnvironment(t *testing.T) {
	env := DefaultEnvironment()
	for _, key := range []string{"python_version", "sys_platform", "platform_system", "os_name"} {
		if env[key] == "" {
			t.Errorf("DefaultEnvironment missing %s", key)
		}
	}
}

func TestCompareDotted(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"3.12", "3.8", 1},
		{"3.8", "3.12", -1},
		{"3.12", "3.12", 0},
		{"3.12", "3.12.0", 0},
		{"2.0.1", "2.0.2", -1},
		{"linux", "win32", -1},
	}
	for _, tt := range tests {
		if got := compareDotted(tt.a, tt.b); got != tt.want {
			t.Errorf("compareDotted(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
