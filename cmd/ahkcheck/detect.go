package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahktools/ahkcheck/internal/config"
)

var detectConfigPath string

func detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Locate the AutoHotkey interpreter",
		Long: `Probe the well-known AutoHotkey install locations and report which
interpreter ahkcheck would use.`,
		RunE:          runDetect,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&detectConfigPath, "config", "c", "",
		"Path to config file")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string) error {
	manager, err := config.NewManager(".", detectConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Println("Detection candidates:")
	for _, candidate := range manager.DetectionCandidates() {
		marker := " "
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, candidate)
	}

	if configured := manager.Config().InterpreterPath; configured != "" {
		fmt.Printf("\nConfigured interpreter: %s\n", configured)
	}

	resolved := manager.InterpreterPath()
	if resolved == "" {
		fmt.Println("\nNo interpreter found. Install AutoHotkey or set interpreter_path.")
		return &ExitError{Code: 1}
	}
	fmt.Printf("\nResolved interpreter: %s\n", resolved)
	return nil
}
