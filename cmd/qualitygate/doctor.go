package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/agentgate/qualitygate/internal/config"
	"github.com/agentgate/qualitygate/internal/toolversion"
)

type doctorCheck struct {
	name   string
	passed bool
	detail string
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the environment qualitygate will run in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd)
		},
	}
}

func runDoctor(cmd *cobra.Command) error {
	root, err := config.FindProjectRoot()
	checks := []doctorCheck{}

	if err != nil {
		checks = append(checks, doctorCheck{name: "project root", passed: false, detail: err.Error()})
	} else {
		checks = append(checks, doctorCheck{name: "project root", passed: true, detail: root})
	}

	cfg, cfgErr := config.Load(root)
	if cfgErr != nil {
		checks = append(checks, doctorCheck{name: "config", passed: false, detail: cfgErr.Error()})
		cfg = config.DefaultConfig()
	} else if err := cfg.Validate(); err != nil {
		checks = append(checks, doctorCheck{name: "config", passed: false, detail: err.Error()})
	} else {
		checks = append(checks, doctorCheck{name: "config", passed: true, detail: "valid"})
	}

	ctx := context.Background()
	flVersion, flSource := toolversion.Detect(ctx, root, "formatterlint", cfg.Validators.FormatterLinter.Version)
	checks = append(checks, doctorCheck{
		name:   "formatter/linter",
		passed: flSource != toolversion.SourceDefault,
		detail: fmt.Sprintf("%s (source: %s)", flVersion.String(), flSource),
	})

	tcVersion, tcSource := toolversion.Detect(ctx, root, "typechecker", config.VersionAuto)
	checks = append(checks, doctorCheck{
		name:   "type-checker",
		passed: tcSource != toolversion.SourceDefault,
		detail: fmt.Sprintf("%s (source: %s)", tcVersion.String(), tcSource),
	})

	renderDoctorReport(cmd, checks)
	return nil
}

func renderDoctorReport(cmd *cobra.Command, checks []doctorCheck) {
	out := cmd.OutOrStdout()
	for _, c := range checks {
		marker := successStyle.Render("✓")
		if !c.passed {
			marker = warnStyle.Render("!")
		}
		fmt.Fprintf(out, "%s %s: %s\n", marker, lipgloss.NewStyle().Bold(true).Render(c.name), c.detail)
	}
}
