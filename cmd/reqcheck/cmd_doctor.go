package main

import (
	"fmt"
	"os/exec"

	"github.com/fbkclanna/reqcheck/internal/pip"
	"github.com/fbkclanna/reqcheck/internal/project"
	"github.com/fbkclanna/reqcheck/internal/pydist"
	"github.com/fbkclanna/reqcheck/internal/requirement"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the environment for common issues",
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	root, _ := cmd.Flags().GetString("project")
	ok := true

	ctx, err := project.Load(root)
	if err != nil {
		return err
	}
	cfg := ctx.PipConfig("", "", "", "")

	// Check the interpreter.
	fmt.Printf("Checking %s... ", cfg.Python)
	if !pip.IsInstalled(cfg) {
		fmt.Println("NOT FOUND")
		fmt.Println("  a python interpreter is required for upgrade and visualize")
		ok = false
	} else {
		path, _ := exec.LookPath(cfg.Python)
		fmt.Printf("found at %s\n", path)
	}

	// Check the requirement files parse.
	for _, role := range []requirement.Role{
		requirement.RoleProdMinimal, requirement.RoleProdLocked,
		requirement.RoleDevMinimal, requirement.RoleDevLocked,
	} {
		name := ctx.Path(role)
		fmt.Printf("Checking %s... ", name)
		if !ctx.Has(role) {
			fmt.Println("missing")
			if role == requirement.RoleProdMinimal || role == requirement.RoleProdLocked {
				ok = false
			}
			continue
		}
		s, err := ctx.LoadSet(role)
		if err != nil {
			fmt.Printf("PARSE ERROR: %v\n", err)
			ok = false
			continue
		}
		fmt.Printf("%d requirement(s)\n", s.Len())
	}

	// Check installed versions against the locked file.
	if ctx.Has(requirement.RoleProdLocked) && pip.IsInstalled(cfg) {
		stale, err := staleInstalls(ctx, cfg)
		if err != nil {
			fmt.Printf("Checking installed versions... %v\n", err)
		} else if len(stale) > 0 {
			fmt.Println("Checking installed versions... OUT OF DATE")
			for _, s := range stale {
				fmt.Println("  " + s)
			}
			fmt.Println("  Rebuild your virtualenv to match " + project.DefaultProdLocked)
			ok = false
		} else {
			fmt.Println("Checking installed versions... OK")
		}
	}

	if ok {
		fmt.Println("\nAll checks passed.")
		return nil
	}
	fmt.Println("\nSome checks failed. See above for details.")
	return fmt.Errorf("doctor checks failed")
}

// staleInstalls compares the interpreter's site-packages against the locked
// pins and describes every mismatch.
func staleInstalls(ctx *project.Context, cfg pip.Config) ([]string, error) {
	site := ctx.Config.SitePackages
	if site == "" {
		var err error
		site, err = pip.SitePackages(cfg)
		if err != nil {
			return nil, err
		}
	}
	dists, err := pydist.Scan(site)
	if err != nil {
		return nil, err
	}
	installed := make(map[string]string, len(dists))
	for _, d := range dists {
		installed[d.Name] = d.Version
	}

	locked, err := ctx.LoadSet(requirement.RoleProdLocked)
	if err != nil {
		return nil, err
	}

	byKey := locked.ByKey()
	var stale []string
	for _, key := range locked.Keys() {
		req := byKey[key]
		want, strict := req.PinnedVersion()
		if !strict {
			continue
		}
		got, present := installed[key]
		switch {
		case !present:
			stale = append(stale, fmt.Sprintf("%s==%s is not installed", key, want))
		case got != want:
			stale = append(stale, fmt.Sprintf("%s: locked %s, installed %s", key, want, got))
		}
	}
	return stale, nil
}
