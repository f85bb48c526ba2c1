package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahktools/ahkcheck/internal/version"
)

var (
	// Version information (set via ldflags during build)
	Version = version.Version
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ahkcheck",
		Short: "ahkcheck - AutoHotkey script validator",
		Long: `ahkcheck validates AutoHotkey scripts by driving the interpreter in
check-only mode, parsing its diagnostics, and merging them with
auxiliary checks. Results are cached and invalidated on file change.`,
		Version: Version,
	}

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(detectCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		// Handle custom exit codes from the validate command
		if exitErr, ok := err.(*ExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Println(version.GetFullVersion())
			} else {
				fmt.Printf("ahkcheck version %s\n", version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
