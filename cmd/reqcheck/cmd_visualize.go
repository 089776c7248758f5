package main

import (
	"fmt"

	"github.com/fbkclanna/reqcheck/internal/depgraph"
	"github.com/fbkclanna/reqcheck/internal/pip"
	"github.com/fbkclanna/reqcheck/internal/project"
	"github.com/fbkclanna/reqcheck/internal/pydist"
	"github.com/fbkclanna/reqcheck/internal/requirement"
	"github.com/fbkclanna/reqcheck/internal/ui"
	"github.com/spf13/cobra"
)

func newVisualizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visualize [requirements file]",
		Short: "Render the dependency tree of a requirements file",
		Long: "Visualize reads installed package metadata from site-packages and\n" +
			"prints the dependency tree under each listed requirement. With --why\n" +
			"it prints every path leading to a single package instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: runVisualize,
	}
	cmd.Flags().String("why", "", "Show every path leading to this package")
	cmd.Flags().String("site", "", "site-packages directory to scan (default: current interpreter's)")
	cmd.Flags().Int("max-depth", 0, "Limit tree depth (0 is unlimited)")
	return cmd
}

func runVisualize(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("project")
	why, _ := cmd.Flags().GetString("why")
	site, _ := cmd.Flags().GetString("site")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")

	ctx, err := project.Load(root)
	if err != nil {
		return err
	}

	roots, err := visualizeRoots(ctx, args)
	if err != nil {
		return err
	}

	cfg := ctx.PipConfig("", "", "", "")
	if site == "" {
		site = ctx.Config.SitePackages
	}
	if site == "" {
		site, err = pip.SitePackages(cfg)
		if err != nil {
			return err
		}
	}
	dists, err := pydist.Scan(site)
	if err != nil {
		return err
	}

	// Edges are filtered against the real interpreter when one is around;
	// a missing interpreter still gets a usable tree.
	markerEnv, err := pip.MarkerEnvironment(cfg)
	if err != nil {
		markerEnv = requirement.DefaultEnvironment()
	}
	g := depgraph.Build(dists, markerEnv)

	out := cmd.OutOrStdout()
	if why != "" {
		_, err := depgraph.WhyInstalled(out, g, roots.Reqs, why)
		return err
	}

	opts := depgraph.RenderOptions{MaxDepth: maxDepth}
	if ui.IsTTY() {
		opts.Unmet = func(s string) string { return ui.Styled(ui.Bad, s) }
	}
	return depgraph.Render(out, g, roots.Reqs, opts)
}

// visualizeRoots loads the requirements whose trees are drawn: an explicit
// file argument, or the prod locked file by default.
func visualizeRoots(ctx *project.Context, args []string) (*requirement.Set, error) {
	if len(args) == 1 {
		return requirement.LoadSet(requirement.RoleProdLocked, args[0])
	}
	if !ctx.Has(requirement.RoleProdLocked) {
		return nil, fmt.Errorf("%s not found; pass a requirements file", project.DefaultProdLocked)
	}
	return ctx.LoadSet(requirement.RoleProdLocked)
}
