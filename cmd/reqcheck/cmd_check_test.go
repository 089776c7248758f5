package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fbkclanna/reqcheck/internal/check"
	"github.com/fbkclanna/reqcheck/internal/testutil"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRunCheck_clean(t *testing.T) {
	dir := testutil.CreateProject(t, map[string]string{
		"requirements-minimal.txt":     "requests\n",
		"requirements.txt":             "requests==2.31.0\n",
		"requirements-dev-minimal.txt": "pytest\n",
		"requirements-dev.txt":         "pytest==8.0.0\n",
	})

	out, err := runCmd(t, "--project", dir, "check")
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, out)
	}
	if strings.Contains(out, "EXTRA_IN_LOCKED") {
		t.Errorf("unexpected finding in output:\n%s", out)
	}
}

func TestRunCheck_findings(t *testing.T) {
	dir := testutil.CreateProject(t, map[string]string{
		"requirements-minimal.txt":     "requests\n",
		"requirements.txt":             "requests==2.31.0\nsix==1.16.0\n",
		"requirements-dev-minimal.txt": "",
		"requirements-dev.txt":         "",
	})

	out, err := runCmd(t, "--project", dir, "check")
	if err == nil {
		t.Fatal("expected error for findings")
	}
	if !strings.Contains(err.Error(), "1 finding(s)") {
		t.Errorf("error = %v, want finding count", err)
	}
	if !strings.Contains(out, "EXTRA_IN_LOCKED(six)") {
		t.Errorf("output missing finding:\n%s", out)
	}
	if exitCode(err) != 1 {
		t.Errorf("exit code = %d, want 1", exitCode(err))
	}
}

func TestRunCheck_json(t *testing.T) {
	dir := testutil.CreateProject(t, map[string]string{
		"requirements-minimal.txt":     "requests\nsix>=1.16\n",
		"requirements.txt":             "requests==2.31.0\n",
		"requirements-dev-minimal.txt": "",
		"requirements-dev.txt":         "",
	})

	out, err := runCmd(t, "--project", dir, "check", "--json")
	if err == nil {
		t.Fatal("expected error for findings")
	}
	var findings []check.Finding
	if jerr := json.Unmarshal([]byte(out), &findings); jerr != nil {
		t.Fatalf("invalid JSON output: %v\n%s", jerr, out)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	if findings[0].Kind != check.MissingFromLocked || findings[0].Key != "six" {
		t.Errorf("finding = %+v", findings[0])
	}
}

func TestRunCheck_devWarning(t *testing.T) {
	dir := testutil.CreateProject(t, map[string]string{
		"requirements-minimal.txt": "requests\n",
		"requirements.txt":         "requests==2.31.0\n",
	})

	out, err := runCmd(t, "--project", dir, "check")
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "dev dependencies are not being checked") {
		t.Errorf("missing dev warning:\n%s", out)
	}
}

func TestRunCheck_missingProdLocked(t *testing.T) {
	dir := testutil.CreateProject(t, map[string]string{
		"requirements-minimal.txt": "requests\n",
	})

	_, err := runCmd(t, "--project", dir, "check")
	if err == nil || !strings.Contains(err.Error(), "requirements.txt not found") {
		t.Fatalf("error = %v, want missing requirements.txt", err)
	}
}

func TestRunCheck_malformedFile(t *testing.T) {
	dir := testutil.CreateProject(t, map[string]string{
		"requirements-minimal.txt": "requests\n",
		"requirements.txt":         "requests ===\n",
	})

	_, err := runCmd(t, "--project", dir, "check")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if exitCode(err) != 2 {
		t.Errorf("exit code = %d, want 2", exitCode(err))
	}
}

func TestRunCheck_fileOverrides(t *testing.T) {
	dir := testutil.CreateProject(t, map[string]string{
		"reqcheck.yaml":    "files:\n  prod_minimal: deps.txt\n  prod_locked: deps.lock.txt\n",
		"deps.txt":         "requests\n",
		"deps.lock.txt":    "requests==2.31.0\n",
		"requirements.txt": "stale==0.0.1\n",
	})

	out, err := runCmd(t, "--project", dir, "check")
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, out)
	}
}
