package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fbkclanna/reqcheck/internal/project"
	"github.com/fbkclanna/reqcheck/internal/requirement"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [package...]",
		Short: "Create the requirement files interactively or from arguments",
		Long: "Init scaffolds requirements-minimal.txt from the given packages (or an\n" +
			"interactive prompt) and touches the locked file. Run `reqcheck upgrade`\n" +
			"afterwards to pin everything.",
		RunE: runInit,
	}
	cmd.Flags().Bool("force", false, "Overwrite existing requirement files")
	cmd.Flags().Bool("dev", false, "Also create the dev requirement files")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("project")
	force, _ := cmd.Flags().GetBool("force")
	dev, _ := cmd.Flags().GetBool("dev")

	ctx, err := project.Load(root)
	if err != nil {
		return err
	}
	if ctx.Has(requirement.RoleProdMinimal) && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", project.DefaultProdMinimal)
	}

	reqs, err := initialRequirements(args)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("# Minimal requirements: list only what this project imports directly.\n")
	b.WriteString("# Pin nothing here unless a version genuinely matters; `reqcheck upgrade`\n")
	b.WriteString("# maintains the exact pins in " + project.DefaultProdLocked + ".\n")
	for _, r := range reqs {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	if err := os.WriteFile(ctx.Path(requirement.RoleProdMinimal), []byte(b.String()), 0644); err != nil { //nolint:gosec // requirements file
		return err
	}
	if err := touch(ctx.Path(requirement.RoleProdLocked), force); err != nil {
		return err
	}
	if dev {
		if err := touch(ctx.Path(requirement.RoleDevMinimal), force); err != nil {
			return err
		}
		if err := touch(ctx.Path(requirement.RoleDevLocked), force); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s with %d requirement(s).\n", project.DefaultProdMinimal, len(reqs))
	fmt.Fprintln(out, "Run `reqcheck upgrade` to pin them.")
	return nil
}

// initialRequirements parses the packages given as arguments, or prompts for
// them one at a time when there are none and stdin is a terminal.
func initialRequirements(args []string) ([]requirement.Requirement, error) {
	var reqs []requirement.Requirement
	seen := make(map[string]bool)

	add := func(line string) error {
		req, err := requirement.Parse(line)
		if err != nil {
			return err
		}
		if seen[req.Key] {
			return fmt.Errorf("%s is already listed", req.Key)
		}
		seen[req.Key] = true
		reqs = append(reqs, req)
		return nil
	}

	if len(args) > 0 {
		for _, arg := range args {
			if err := add(arg); err != nil {
				return nil, err
			}
		}
	} else if term.IsTerminal(int(os.Stdin.Fd())) {
		for {
			line, err := promptInput(
				"Package (empty to finish)",
				"requests",
				func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					req, err := requirement.Parse(strings.TrimSpace(s))
					if err != nil {
						return err
					}
					if seen[req.Key] {
						return fmt.Errorf("%s is already listed", req.Key)
					}
					return nil
				},
			)
			if err != nil {
				return nil, err
			}
			line = strings.TrimSpace(line)
			if line == "" {
				break
			}
			if err := add(line); err != nil {
				return nil, err
			}
		}
	}

	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Key < reqs[j].Key })
	return reqs, nil
}

// touch creates an empty file unless it already exists.
func touch(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return nil
	}
	return os.WriteFile(path, nil, 0644) //nolint:gosec // requirements file
}
