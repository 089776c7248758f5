package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fbkclanna/reqcheck/internal/requirement"
	"github.com/fbkclanna/reqcheck/internal/testutil"
)

func TestSdistOnly(t *testing.T) {
	dest := t.TempDir()
	for _, name := range []string{
		"requests-2.31.0-py3-none-any.whl",
		"PyYAML-6.0.tar.gz",
		"Flask_Login-0.6.2-py3-none-any.whl",
		"simplejson-3.19.1.tar.gz",
	} {
		if err := os.WriteFile(filepath.Join(dest, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	locked, err := requirement.ParseSet(requirement.RoleProdLocked, "requirements.txt",
		[]byte("requests==2.31.0\npyyaml==6.0\nflask-login==0.6.2\nsimplejson==3.19.1\n"))
	if err != nil {
		t.Fatal(err)
	}

	missing, err := sdistOnly(dest, []*requirement.Set{locked})
	if err != nil {
		t.Fatal(err)
	}
	if len(missing) != 2 {
		t.Fatalf("missing = %+v, want 2 entries", missing)
	}
	if missing[0].key != "pyyaml" || missing[0].artifact != "PyYAML-6.0.tar.gz" {
		t.Errorf("missing[0] = %+v", missing[0])
	}
	if missing[1].key != "simplejson" {
		t.Errorf("missing[1] = %+v", missing[1])
	}
}

func TestSdistOnly_dedupAcrossSets(t *testing.T) {
	dest := t.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "PyYAML-6.0.tar.gz"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	prod, err := requirement.ParseSet(requirement.RoleProdLocked, "requirements.txt",
		[]byte("pyyaml==6.0\n"))
	if err != nil {
		t.Fatal(err)
	}
	dev, err := requirement.ParseSet(requirement.RoleDevLocked, "requirements-dev.txt",
		[]byte("pyyaml==6.0\n"))
	if err != nil {
		t.Fatal(err)
	}

	missing, err := sdistOnly(dest, []*requirement.Set{prod, dev})
	if err != nil {
		t.Fatal(err)
	}
	if len(missing) != 1 {
		t.Fatalf("missing = %+v, want 1 entry", missing)
	}
}

func TestRunWheels_missingLocked(t *testing.T) {
	dir := testutil.CreateProject(t, nil)

	_, err := runCmd(t, "--project", dir, "wheels")
	if err == nil || !strings.Contains(err.Error(), "requirements.txt not found") {
		t.Fatalf("error = %v, want missing requirements.txt", err)
	}
}
