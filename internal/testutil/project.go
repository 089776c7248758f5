// Package testutil builds throwaway project and site-packages fixtures for
// tests: requirement files in a temp directory and fake *.dist-info
// metadata trees.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateProject writes the given requirement files (name -> content) into a
// temp directory and returns its path.
func CreateProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil { //nolint:gosec // test file
			t.Fatal(err)
		}
	}
	return dir
}

// CreateSitePackages builds a fake site-packages directory containing a
// *.dist-info entry per distribution.
func CreateSitePackages(t *testing.T, dists ...DistInfo) string {
	t.Helper()
	dir := t.TempDir()
	for _, d := range dists {
		WriteDistInfo(t, dir, d)
	}
	return dir
}

// DistInfo describes one fake installed distribution.
type DistInfo struct {
	Name     string
	Version  string
	Requires []string // Requires-Dist lines
}

// WriteDistInfo writes a single *.dist-info/METADATA file under site.
func WriteDistInfo(t *testing.T, site string, d DistInfo) {
	t.Helper()
	dirName := fmt.Sprintf("%s-%s.dist-info", strings.ReplaceAll(d.Name, "-", "_"), d.Version)
	dir := filepath.Join(site, dirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	b.WriteString("Metadata-Version: 2.1\n")
	fmt.Fprintf(&b, "Name: %s\n", d.Name)
	fmt.Fprintf(&b, "Version: %s\n", d.Version)
	for _, r := range d.Requires {
		fmt.Fprintf(&b, "Requires-Dist: %s\n", r)
	}
	if err := os.WriteFile(filepath.Join(dir, "METADATA"), []byte(b.String()), 0644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
}
