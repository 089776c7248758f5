// Package pip wraps the pip and python CLIs used by reqcheck. It owns every
// slow, side-effecting step: creating throwaway virtualenvs, installing
// requirement files into them, and downloading distributions from an index.
// Failures surface verbatim; retries are the caller's problem, not ours.
package pip

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Config carries the installer settings threaded through every call.
// It is immutable; nothing in this package reads ambient state.
type Config struct {
	IndexURL      string
	ExtraIndexURL string
	PipTool       string // freeze/download tool, e.g. "pip" or "pip-custom-platform"
	InstallDeps   string // package(s) installed before the pip tool itself
	Python        string // interpreter used to create virtualenvs
}

// WithDefaults fills unset fields with the stock pip toolchain.
func (c Config) WithDefaults() Config {
	if c.PipTool == "" {
		c.PipTool = "pip"
	}
	if c.InstallDeps == "" {
		c.InstallDeps = "pip"
	}
	if c.Python == "" {
		c.Python = "python3"
	}
	return c
}

// indexArgs renders the index flags shared by install and download.
func (c Config) indexArgs() []string {
	var args []string
	if c.IndexURL != "" {
		args = append(args, "-i", c.IndexURL)
	}
	if c.ExtraIndexURL != "" {
		args = append(args, "--extra-index-url", c.ExtraIndexURL)
	}
	return args
}

// Env is a handle on a created virtualenv.
type Env struct {
	Dir string
}

// CreateEnv creates a virtualenv under dir and bootstraps the configured
// pip tool into it.
func CreateEnv(dir string, cfg Config) (*Env, error) {
	cfg = cfg.WithDefaults()
	venv := filepath.Join(dir, "venv")
	if err := run(".", cfg.Python, "-m", "venv", venv); err != nil {
		return nil, fmt.Errorf("creating virtualenv: %w", err)
	}
	e := &Env{Dir: venv}
	if err := e.pipInstall(cfg, "--upgrade", "pip", "setuptools"); err != nil {
		return nil, err
	}
	if err := e.pipInstall(cfg, strings.Fields(cfg.InstallDeps)...); err != nil {
		return nil, err
	}
	return e, nil
}

// InstallRequirements installs requirement files into the env using the
// configured pip tool.
func (e *Env) InstallRequirements(cfg Config, files ...string) error {
	cfg = cfg.WithDefaults()
	args := append([]string{"install"}, cfg.indexArgs()...)
	for _, f := range files {
		args = append(args, "-r", f)
	}
	tool := strings.Fields(cfg.PipTool)
	tool[0] = e.bin(tool[0])
	return run(".", tool[0], append(tool[1:], args...)...)
}

// Install installs packages into the env with plain pip.
func (e *Env) Install(cfg Config, packages ...string) error {
	return e.pipInstall(cfg.WithDefaults(), packages...)
}

func (e *Env) pipInstall(cfg Config, packages ...string) error {
	args := append([]string{"install"}, cfg.indexArgs()...)
	args = append(args, packages...)
	return run(".", e.bin("pip"), args...)
}

// SitePackages locates the env's site-packages directory.
func (e *Env) SitePackages() (string, error) {
	out, err := output(".", e.bin("python"),
		"-c", "import sysconfig; print(sysconfig.get_paths()['purelib'])")
	if err != nil {
		return "", fmt.Errorf("locating site-packages: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// MarkerEnvironment probes the env's own interpreter for its marker
// variables.
func (e *Env) MarkerEnvironment() (map[string]string, error) {
	out, err := output(".", e.bin("python"), "-c", markerProbe)
	if err != nil {
		return nil, fmt.Errorf("probing interpreter environment: %w", err)
	}
	return parseMarkerProbe(out), nil
}

// bin resolves an executable inside the env.
func (e *Env) bin(name string) string {
	sub := "bin"
	if runtime.GOOS == "windows" {
		sub = "Scripts"
	}
	return filepath.Join(e.Dir, sub, name)
}

// Download runs pip download for the given requirement files into dest,
// using the pip tool installed in the env. Used by the wheel probe: whatever
// lands in dest that is not a wheel had no prebuilt distribution on the index.
func (e *Env) Download(cfg Config, dest string, files ...string) error {
	cfg = cfg.WithDefaults()
	args := append([]string{"download", "--dest", dest}, cfg.indexArgs()...)
	for _, f := range files {
		args = append(args, "-r", f)
	}
	tool := strings.Fields(cfg.PipTool)
	tool[0] = e.bin(tool[0])
	return run(".", tool[0], append(tool[1:], args...)...)
}

// SitePackages locates the current interpreter's site-packages directory.
func SitePackages(cfg Config) (string, error) {
	cfg = cfg.WithDefaults()
	out, err := output(".", cfg.Python,
		"-c", "import sysconfig; print(sysconfig.get_paths()['purelib'])")
	if err != nil {
		return "", fmt.Errorf("locating site-packages: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// MarkerEnvironment asks the interpreter for its marker variables, so that
// edges are filtered against the real environment rather than a guess.
// The fallback on error is the caller's choice.
func MarkerEnvironment(cfg Config) (map[string]string, error) {
	cfg = cfg.WithDefaults()
	out, err := output(".", cfg.Python, "-c", markerProbe)
	if err != nil {
		return nil, fmt.Errorf("probing interpreter environment: %w", err)
	}
	return parseMarkerProbe(out), nil
}

func parseMarkerProbe(out string) map[string]string {
	env := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if key, value, ok := strings.Cut(line, "="); ok {
			env[key] = value
		}
	}
	return env
}

const markerProbe = `import os, platform, sys
v = sys.version_info
print("python_version=%d.%d" % v[:2])
print("python_full_version=%d.%d.%d" % v[:3])
print("sys_platform=" + sys.platform)
print("platform_system=" + platform.system())
print("platform_machine=" + platform.machine())
print("os_name=" + os.name)
print("implementation_name=" + sys.implementation.name)
print("extra=")
`

// IsInstalled reports whether the configured python interpreter is on PATH.
func IsInstalled(cfg Config) bool {
	_, err := exec.LookPath(cfg.WithDefaults().Python)
	return err == nil
}

// ArtifactName extracts the canonical-ish project name from a downloaded
// distribution filename, e.g. "PyYAML-6.0.tar.gz" or
// "requests-2.31.0-py3-none-any.whl".
func ArtifactName(filename string) string {
	base := filename
	for _, suffix := range []string{".whl", ".tar.gz", ".tar.bz2", ".zip", ".tgz"} {
		if strings.HasSuffix(base, suffix) {
			base = strings.TrimSuffix(base, suffix)
			break
		}
	}
	// The version is the first dash-separated segment starting with a
	// digit; everything before it is the project name (sdist names may
	// themselves contain dashes, e.g. Flask-Login-0.6.2.tar.gz).
	parts := strings.Split(base, "-")
	for i, part := range parts {
		if i > 0 && part != "" && part[0] >= '0' && part[0] <= '9' {
			return strings.Join(parts[:i], "-")
		}
	}
	return base
}

// run executes a command, streaming its output to the console.
func run(dir string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

// output executes a command and returns its stdout. Stderr is captured and
// included in the error message on failure.
func output(dir string, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}
