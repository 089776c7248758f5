package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fbkclanna/reqcheck/internal/check"
	"github.com/fbkclanna/reqcheck/internal/project"
	"github.com/fbkclanna/reqcheck/internal/requirement"
	"github.com/fbkclanna/reqcheck/internal/ui"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check requirement files for inconsistencies",
		RunE:  runCheck,
	}
	cmd.Flags().Bool("json", false, "Output findings as JSON")
	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	root, _ := cmd.Flags().GetString("project")
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx, err := project.Load(root)
	if err != nil {
		return err
	}

	findings, err := collectFindings(ctx, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(findings); err != nil {
			return err
		}
	} else {
		for _, f := range findings {
			fmt.Fprintln(out, f)
		}
	}

	if len(findings) > 0 {
		return fmt.Errorf("%d finding(s)", len(findings))
	}
	return nil
}

// collectFindings runs the checker over the prod pair and, when a dev
// minimal file exists, the dev pair. Findings are accumulated across both
// pairs; nothing short-circuits.
func collectFindings(ctx *project.Context, out io.Writer) ([]check.Finding, error) {
	if !ctx.Has(requirement.RoleProdLocked) {
		return nil, fmt.Errorf(
			"%s not found: reqcheck is designed for applications; create it (or touch it) first",
			project.DefaultProdLocked)
	}
	if !ctx.Has(requirement.RoleProdMinimal) {
		return nil, fmt.Errorf("%s not found", project.DefaultProdMinimal)
	}

	prodMinimal, err := ctx.LoadSet(requirement.RoleProdMinimal)
	if err != nil {
		return nil, err
	}
	prodLocked, err := ctx.LoadSet(requirement.RoleProdLocked)
	if err != nil {
		return nil, err
	}
	findings := check.Check(prodMinimal, prodLocked)

	if ctx.Has(requirement.RoleDevMinimal) {
		devMinimal, err := ctx.LoadSet(requirement.RoleDevMinimal)
		if err != nil {
			return nil, err
		}
		devLocked, err := ctx.LoadSet(requirement.RoleDevLocked)
		if err != nil {
			return nil, err
		}
		findings = append(findings, check.Check(devMinimal, devLocked)...)
	} else {
		fmt.Fprintln(out, ui.Styled(ui.Warn,
			"Warning: dev dependencies are not being checked.\n"+
				"Create "+project.DefaultDevMinimal+" listing your minimal dev dependencies to enable it."))
	}

	return findings, nil
}
