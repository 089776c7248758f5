// Package pydist reads installed-distribution metadata from a site-packages
// directory. Each installed package leaves a *.dist-info directory whose
// METADATA file carries RFC 822 style headers; the interesting ones are
// Name, Version and the repeated Requires-Dist lines.
package pydist

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fbkclanna/reqcheck/internal/requirement"
)

// Distribution is one installed package and its declared requirements.
type Distribution struct {
	Name     string // canonical
	Version  string
	Requires []requirement.Requirement
}

// Scan reads every *.dist-info/METADATA under dir and returns the installed
// distributions sorted by name. The result is a snapshot: scanning the same
// directory again yields the same distributions.
func Scan(dir string) ([]Distribution, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading site-packages %s: %w", dir, err)
	}

	var dists []Distribution
	for _, e := range entries {
		if !e.IsDir() || !strings.HasSuffix(e.Name(), ".dist-info") {
			continue
		}
		path := filepath.Join(dir, e.Name(), "METADATA")
		data, err := os.ReadFile(path) //nolint:gosec // path is under the scanned site-packages
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		dist, err := ParseMetadata(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		dists = append(dists, dist)
	}

	sort.Slice(dists, func(i, j int) bool { return dists[i].Name < dists[j].Name })
	return dists, nil
}

// ParseMetadata parses the header block of a METADATA file. Headers end at
// the first blank line; everything after it is the package description.
func ParseMetadata(data []byte) (Distribution, error) {
	var dist Distribution
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			// Continuation lines and malformed headers carry nothing we need.
			continue
		}
		value = strings.TrimSpace(value)
		switch name {
		case "Name":
			dist.Name = requirement.Canonicalize(value)
		case "Version":
			dist.Version = value
		case "Requires-Dist":
			req, err := requirement.Parse(value)
			if err != nil {
				return Distribution{}, fmt.Errorf("Requires-Dist %q: %w", value, err)
			}
			dist.Requires = append(dist.Requires, req)
		}
	}
	if err := sc.Err(); err != nil {
		return Distribution{}, err
	}
	if dist.Name == "" {
		return Distribution{}, fmt.Errorf("metadata has no Name header")
	}
	return dist, nil
}
