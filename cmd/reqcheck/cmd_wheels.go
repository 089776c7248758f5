package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fbkclanna/reqcheck/internal/pip"
	"github.com/fbkclanna/reqcheck/internal/project"
	"github.com/fbkclanna/reqcheck/internal/requirement"
	"github.com/fbkclanna/reqcheck/internal/ui"
	"github.com/spf13/cobra"
)

func newWheelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wheels",
		Short: "Verify every locked requirement has a prebuilt wheel",
		Long: "Wheels downloads the locked requirements from the index and reports\n" +
			"every package that only shipped a source distribution.",
		RunE: runWheels,
	}
	cmd.Flags().StringP("index-url", "i", "", "Package index URL")
	cmd.Flags().String("extra-index-url", "", "Additional package index URL")
	cmd.Flags().String("pip-tool", "", "Tool used to download (default pip)")
	cmd.Flags().String("install-deps", "", "Package(s) to install before the pip tool")
	return cmd
}

func runWheels(cmd *cobra.Command, _ []string) error {
	root, _ := cmd.Flags().GetString("project")
	indexURL, _ := cmd.Flags().GetString("index-url")
	extraIndexURL, _ := cmd.Flags().GetString("extra-index-url")
	pipTool, _ := cmd.Flags().GetString("pip-tool")
	installDeps, _ := cmd.Flags().GetString("install-deps")

	ctx, err := project.Load(root)
	if err != nil {
		return err
	}
	if !ctx.Has(requirement.RoleProdLocked) {
		return fmt.Errorf("%s not found", project.DefaultProdLocked)
	}

	var files []string
	var locked []*requirement.Set
	for _, role := range []requirement.Role{requirement.RoleProdLocked, requirement.RoleDevLocked} {
		if !ctx.Has(role) {
			continue
		}
		s, err := ctx.LoadSet(role)
		if err != nil {
			return err
		}
		files = append(files, ctx.Path(role))
		locked = append(locked, s)
	}

	cfg := ctx.PipConfig(indexURL, extraIndexURL, pipTool, installDeps)
	tmp, err := os.MkdirTemp("", "reqcheck-wheels-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp) //nolint:errcheck // best-effort cleanup

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Creating virtualenv ...")
	env, err := pip.CreateEnv(tmp, cfg)
	if err != nil {
		return err
	}

	dest := filepath.Join(tmp, "downloads")
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	fmt.Fprintln(out, "Downloading locked requirements ...")
	if err := env.Download(cfg, dest, files...); err != nil {
		return err
	}

	missing, err := sdistOnly(dest, locked)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		fmt.Fprintln(out, ui.Styled(ui.Good, "All requirements have wheels."))
		return nil
	}

	fmt.Fprintln(out, ui.Styled(ui.Bad, "These packages have no wheel:"))
	tbl := ui.NewTable(out, "PACKAGE", "ARTIFACT")
	for _, m := range missing {
		tbl.Row(m.key, m.artifact)
	}
	if err := tbl.Flush(); err != nil {
		return err
	}
	return fmt.Errorf("%d package(s) without wheels", len(missing))
}

type sdist struct {
	key      string
	artifact string
}

// sdistOnly maps the downloaded artifacts back to locked package names and
// returns the locked packages whose only artifact is a source distribution.
func sdistOnly(dest string, locked []*requirement.Set) ([]sdist, error) {
	entries, err := os.ReadDir(dest)
	if err != nil {
		return nil, err
	}
	wheel := make(map[string]bool)
	source := make(map[string]string)
	for _, e := range entries {
		name := requirement.Canonicalize(pip.ArtifactName(e.Name()))
		if strings.HasSuffix(e.Name(), ".whl") {
			wheel[name] = true
		} else {
			source[name] = e.Name()
		}
	}

	var missing []sdist
	seen := make(map[string]bool)
	for _, s := range locked {
		for _, key := range s.Keys() {
			if wheel[key] || seen[key] {
				continue
			}
			if artifact, ok := source[key]; ok {
				missing = append(missing, sdist{key: key, artifact: artifact})
				seen[key] = true
			}
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].key < missing[j].key })
	return missing, nil
}
