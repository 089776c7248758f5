// Package project integrates requirement-file locations with the optional
// reqcheck.yaml configuration. It provides the Context type that holds the
// resolved file paths and loaded settings for one project.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fbkclanna/reqcheck/internal/pip"
	"github.com/fbkclanna/reqcheck/internal/requirement"
	"gopkg.in/yaml.v3"
)

// Standard requirement file names. reqcheck.yaml may override them.
const (
	DefaultProdMinimal = "requirements-minimal.txt"
	DefaultProdLocked  = "requirements.txt"
	DefaultDevMinimal  = "requirements-dev-minimal.txt"
	DefaultDevLocked   = "requirements-dev.txt"
)

// Files names the four requirement files, relative to the project root.
type Files struct {
	ProdMinimal string `yaml:"prod_minimal,omitempty"`
	ProdLocked  string `yaml:"prod_locked,omitempty"`
	DevMinimal  string `yaml:"dev_minimal,omitempty"`
	DevLocked   string `yaml:"dev_locked,omitempty"`
}

// Config is the optional reqcheck.yaml in the project root. Flags override
// anything set here.
type Config struct {
	IndexURL      string `yaml:"index_url,omitempty"`
	ExtraIndexURL string `yaml:"extra_index_url,omitempty"`
	PipTool       string `yaml:"pip_tool,omitempty"`
	InstallDeps   string `yaml:"install_deps,omitempty"`
	Python        string `yaml:"python,omitempty"`
	SitePackages  string `yaml:"site_packages,omitempty"`
	Files         Files  `yaml:"files,omitempty"`
}

// Context holds the resolved paths and loaded config for a project.
type Context struct {
	Root   string
	Config Config
}

// Load resolves the project root and reads reqcheck.yaml when present.
func Load(root string) (*Context, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	ctx := &Context{Root: root}

	cfgPath := filepath.Join(root, "reqcheck.yaml")
	data, err := os.ReadFile(cfgPath) //nolint:gosec // project config path
	if err != nil {
		if os.IsNotExist(err) {
			return ctx, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &ctx.Config); err != nil {
		return nil, fmt.Errorf("parsing reqcheck.yaml: %w", err)
	}
	for _, f := range []string{
		ctx.Config.Files.ProdMinimal, ctx.Config.Files.ProdLocked,
		ctx.Config.Files.DevMinimal, ctx.Config.Files.DevLocked,
	} {
		if f != "" && filepath.IsAbs(f) {
			return nil, fmt.Errorf("reqcheck.yaml: file override %q must be relative to the project root", f)
		}
	}
	return ctx, nil
}

// Path returns the absolute path of the requirement file for a role.
func (c *Context) Path(role requirement.Role) string {
	name := ""
	switch role {
	case requirement.RoleProdMinimal:
		name = orDefault(c.Config.Files.ProdMinimal, DefaultProdMinimal)
	case requirement.RoleProdLocked:
		name = orDefault(c.Config.Files.ProdLocked, DefaultProdLocked)
	case requirement.RoleDevMinimal:
		name = orDefault(c.Config.Files.DevMinimal, DefaultDevMinimal)
	case requirement.RoleDevLocked:
		name = orDefault(c.Config.Files.DevLocked, DefaultDevLocked)
	}
	return filepath.Join(c.Root, name)
}

// Has reports whether the requirement file for a role exists.
func (c *Context) Has(role requirement.Role) bool {
	_, err := os.Stat(c.Path(role))
	return err == nil
}

// LoadSet parses the requirement file for a role. A missing file yields an
// empty set rather than an error; callers that care use Has first.
func (c *Context) LoadSet(role requirement.Role) (*requirement.Set, error) {
	path := c.Path(role)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &requirement.Set{Role: role, File: filepath.Base(path)}, nil
	}
	s, err := requirement.LoadSet(role, path)
	if err != nil {
		return nil, err
	}
	// Findings read better with the file name, not the absolute path.
	s.File = filepath.Base(path)
	return s, nil
}

// PipConfig merges the config file with flag overrides into an immutable
// installer configuration. Non-empty flag values win.
func (c *Context) PipConfig(indexURL, extraIndexURL, pipTool, installDeps string) pip.Config {
	cfg := pip.Config{
		IndexURL:      orDefault(indexURL, c.Config.IndexURL),
		ExtraIndexURL: orDefault(extraIndexURL, c.Config.ExtraIndexURL),
		PipTool:       orDefault(pipTool, c.Config.PipTool),
		InstallDeps:   orDefault(installDeps, c.Config.InstallDeps),
		Python:        c.Config.Python,
	}
	return cfg.WithDefaults()
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
