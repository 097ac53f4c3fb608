package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// managedMarker lets install recognize a hook it wrote itself (which it
// rewrites freely) and leave any other script at that path alone unless
// --force is given, mirroring the teacher's git-hook installer
// (internal/hooks.go sdpManagedMarker).
const managedMarker = "# QUALITYGATE-MANAGED-HOOK"

const hookScriptTemplate = managedMarker + `
#!/bin/sh
# Installed by 'qualitygate install'. Safe to delete; re-run install to restore.
exec qualitygate-hook
`

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

func installCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Write the qualitygate hook script into .claude/hooks/",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing hook script that qualitygate did not write")
	return cmd
}

func runInstall(cmd *cobra.Command, force bool) error {
	hooksDir := filepath.Join(".claude", "hooks")
	if err := os.MkdirAll(hooksDir, 0755); err != nil {
		return fmt.Errorf("create hooks dir: %w", err)
	}

	scriptPath := filepath.Join(hooksDir, "qualitygate-post-write.sh")

	if existing, err := os.ReadFile(scriptPath); err == nil {
		if !strings.Contains(string(existing), managedMarker) && !force {
			fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render("A hook already exists at "+scriptPath+" and isn't qualitygate-managed; pass --force to overwrite."))
			return nil
		}
	}

	if err := os.WriteFile(scriptPath, []byte(hookScriptTemplate), 0755); err != nil {
		return fmt.Errorf("write hook script: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Installed ")+pathStyle.Render(scriptPath))
	fmt.Fprintln(cmd.OutOrStdout(), "Register it as a PostToolUse hook for Write/Edit/MultiEdit in your agent settings to activate the gate.")
	return nil
}
