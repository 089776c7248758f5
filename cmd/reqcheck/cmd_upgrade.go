package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fbkclanna/reqcheck/internal/depgraph"
	"github.com/fbkclanna/reqcheck/internal/pip"
	"github.com/fbkclanna/reqcheck/internal/project"
	"github.com/fbkclanna/reqcheck/internal/pydist"
	"github.com/fbkclanna/reqcheck/internal/requirement"
	"github.com/fbkclanna/reqcheck/internal/ui"
	"github.com/fbkclanna/reqcheck/internal/upgrade"
	"github.com/spf13/cobra"
)

// maxInstallRounds bounds the freeze/install loop. Each round installs at
// least one previously-unmet package, so hitting the bound means the index
// keeps handing back new unmet dependencies.
const maxInstallRounds = 10

func newUpgradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Recompute the locked files from the minimal requirements",
		Long: "Upgrade installs the minimal requirements into a throwaway virtualenv,\n" +
			"freezes the result and rewrites the locked requirement files.",
		RunE: runUpgrade,
	}
	cmd.Flags().StringP("index-url", "i", "", "Package index URL")
	cmd.Flags().String("extra-index-url", "", "Additional package index URL")
	cmd.Flags().String("pip-tool", "", "Tool used to install and freeze (default pip)")
	cmd.Flags().String("install-deps", "", "Package(s) to install before the pip tool")
	cmd.Flags().Bool("yes", false, "Do not ask before removing packages from the locked files")
	return cmd
}

func runUpgrade(cmd *cobra.Command, _ []string) error {
	root, _ := cmd.Flags().GetString("project")
	indexURL, _ := cmd.Flags().GetString("index-url")
	extraIndexURL, _ := cmd.Flags().GetString("extra-index-url")
	pipTool, _ := cmd.Flags().GetString("pip-tool")
	installDeps, _ := cmd.Flags().GetString("install-deps")
	yes, _ := cmd.Flags().GetBool("yes")

	ctx, err := project.Load(root)
	if err != nil {
		return err
	}
	if !ctx.Has(requirement.RoleProdMinimal) {
		return fmt.Errorf("%s not found", project.DefaultProdMinimal)
	}

	prodMinimal, err := ctx.LoadSet(requirement.RoleProdMinimal)
	if err != nil {
		return err
	}
	devMinimal, err := ctx.LoadSet(requirement.RoleDevMinimal)
	if err != nil {
		return err
	}
	oldProdLocked, err := ctx.LoadSet(requirement.RoleProdLocked)
	if err != nil {
		return err
	}
	oldDevLocked, err := ctx.LoadSet(requirement.RoleDevLocked)
	if err != nil {
		return err
	}

	cfg := ctx.PipConfig(indexURL, extraIndexURL, pipTool, installDeps)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Creating virtualenv ...")
	tmp, err := os.MkdirTemp("", "reqcheck-upgrade-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp) //nolint:errcheck // best-effort cleanup

	env, err := pip.CreateEnv(tmp, cfg)
	if err != nil {
		return err
	}

	files := []string{ctx.Path(requirement.RoleProdMinimal)}
	if ctx.Has(requirement.RoleDevMinimal) {
		files = append(files, ctx.Path(requirement.RoleDevMinimal))
	}
	fmt.Fprintln(out, "Installing minimal requirements ...")
	if err := env.InstallRequirements(cfg, files...); err != nil {
		return err
	}

	fr, err := newFreezer(env, cfg, out)
	if err != nil {
		return err
	}

	frozenProd, err := fr.freeze(prodMinimal.Reqs, requirement.RoleProdLocked)
	if err != nil {
		return err
	}

	// Dev is frozen from both minimal sets so shared dependencies resolve
	// once; the prod pins are subtracted afterwards.
	devRoots := append(append([]requirement.Requirement(nil), devMinimal.Reqs...), prodMinimal.Reqs...)
	frozenDev, err := fr.freeze(devRoots, requirement.RoleDevLocked)
	if err != nil {
		return err
	}
	devLocked := upgrade.DevLock(frozenDev, frozenProd)

	prodDiff := upgrade.Compute(oldProdLocked, frozenProd)
	devDiff := upgrade.Compute(oldDevLocked, devLocked)

	if prodDiff.Empty() && devDiff.Empty() {
		fmt.Fprintln(out, "Already up to date.")
		return nil
	}

	removed := len(prodDiff.Removed) + len(devDiff.Removed)
	if removed > 0 && !yes && ui.IsTTY() {
		ok, err := promptConfirm(fmt.Sprintf("Remove %d package(s) from the locked files?", removed))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("upgrade aborted")
		}
	}

	if err := writeLocked(ctx, requirement.RoleProdLocked, frozenProd); err != nil {
		return err
	}
	printDiff(out, oldProdLocked.File, prodDiff)
	if ctx.Has(requirement.RoleDevMinimal) {
		if err := writeLocked(ctx, requirement.RoleDevLocked, devLocked); err != nil {
			return err
		}
		printDiff(out, oldDevLocked.File, devDiff)
	}
	return nil
}

// freezer turns graph reachability into pin sets, installing unmet
// dependencies and rescanning until the closure is fully installed.
type freezer struct {
	env       *pip.Env
	cfg       pip.Config
	out       io.Writer
	site      string
	markerEnv requirement.Environment
	graph     *depgraph.Graph
}

func newFreezer(env *pip.Env, cfg pip.Config, out io.Writer) (*freezer, error) {
	site, err := env.SitePackages()
	if err != nil {
		return nil, err
	}
	markerEnv, err := env.MarkerEnvironment()
	if err != nil {
		return nil, err
	}
	f := &freezer{env: env, cfg: cfg, out: out, site: site, markerEnv: markerEnv}
	if err := f.rescan(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *freezer) rescan() error {
	dists, err := pydist.Scan(f.site)
	if err != nil {
		return err
	}
	f.graph = depgraph.Build(dists, f.markerEnv)
	return nil
}

func (f *freezer) freeze(roots []requirement.Requirement, role requirement.Role) (*requirement.Set, error) {
	for round := 0; ; round++ {
		set, err := depgraph.Freeze(f.graph, roots, role)
		if err == nil {
			return set, nil
		}
		var unmet *depgraph.UnmetError
		if !errors.As(err, &unmet) || round >= maxInstallRounds {
			return nil, err
		}
		fmt.Fprintf(f.out, "Installing missing dependencies: %v\n", unmet.Unmet)
		if err := f.env.Install(f.cfg, unmet.Unmet...); err != nil {
			return nil, err
		}
		if err := f.rescan(); err != nil {
			return nil, err
		}
	}
}

func writeLocked(ctx *project.Context, role requirement.Role, set *requirement.Set) error {
	path := ctx.Path(role)
	if err := os.WriteFile(path, []byte(set.Lines()), 0644); err != nil { //nolint:gosec // requirements file
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func printDiff(out io.Writer, file string, d upgrade.Diff) {
	if d.Empty() {
		fmt.Fprintf(out, "%s: no changes\n", file)
		return
	}
	fmt.Fprintf(out, "%s:\n", file)
	for _, req := range d.Added {
		fmt.Fprintln(out, ui.Styled(ui.Good, "  + "+req.String()))
	}
	for _, req := range d.Removed {
		fmt.Fprintln(out, ui.Styled(ui.Bad, "  - "+req.String()))
	}
	for _, c := range d.Changed {
		fmt.Fprintln(out, "  "+c.String())
	}
}
