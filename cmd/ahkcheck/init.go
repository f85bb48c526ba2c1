package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ahktools/ahkcheck/internal/config"
	"github.com/ahktools/ahkcheck/internal/constants"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate an ahkcheck configuration file",
		Long: `Generate a documented ahkcheck configuration file with sensible defaults.

By default, creates ahkcheck.yaml in the current directory. Use
--interactive for a guided setup wizard.

Examples:
  # Create ahkcheck.yaml in current directory
  ahkcheck init

  # Custom output path
  ahkcheck init --config custom.yaml

  # Overwrite existing file
  ahkcheck init --force

  # Interactive setup wizard
  ahkcheck init --interactive
  ahkcheck init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	interactive, _ := cmd.Flags().GetBool("interactive")

	cfg := config.Default()

	if interactive {
		var err error
		cfg, err = runInteractiveSetup(cfg)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	if err := os.WriteFile(configPath, []byte(config.Template(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	return nil
}

// runInteractiveSetup walks the user through the common settings
func runInteractiveSetup(cfg config.Config) (config.Config, error) {
	manager, err := config.NewManager(".", "")
	if err != nil {
		return cfg, err
	}

	// Interpreter selection: detected candidates plus manual entry
	type interpreterChoice struct {
		Label string
		Path  string
	}
	choices := []interpreterChoice{
		{"Auto-detect at runtime (recommended)", ""},
	}
	for _, candidate := range manager.DetectionCandidates() {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			choices = append(choices, interpreterChoice{candidate, candidate})
		}
	}
	choices = append(choices, interpreterChoice{"Enter a path manually", "manual"})

	interpreterTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }}",
		Inactive: "   {{ .Label | white }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}
	interpreterPrompt := promptui.Select{
		Label:     "Which AutoHotkey interpreter should be used?",
		Items:     choices,
		Templates: interpreterTemplates,
	}
	idx, _, err := interpreterPrompt.Run()
	if err != nil {
		return cfg, fmt.Errorf("interpreter selection cancelled: %w", err)
	}

	switch choices[idx].Path {
	case "manual":
		pathPrompt := promptui.Prompt{
			Label: "Interpreter path",
			Validate: func(input string) error {
				if info, err := os.Stat(input); err != nil || info.IsDir() {
					return fmt.Errorf("not an executable file: %s", input)
				}
				return nil
			},
		}
		path, err := pathPrompt.Run()
		if err != nil {
			return cfg, fmt.Errorf("interpreter entry cancelled: %w", err)
		}
		cfg.InterpreterPath = path
	default:
		cfg.InterpreterPath = choices[idx].Path
	}

	fmt.Println()

	timeoutPrompt := promptui.Prompt{
		Label:   "Per-file timeout in milliseconds",
		Default: strconv.Itoa(cfg.TimeoutMs),
		Validate: func(input string) error {
			n, err := strconv.Atoi(input)
			if err != nil || n < config.MinTimeoutMs {
				return fmt.Errorf("must be an integer >= %d", config.MinTimeoutMs)
			}
			return nil
		},
	}
	timeoutStr, err := timeoutPrompt.Run()
	if err != nil {
		return cfg, fmt.Errorf("timeout entry cancelled: %w", err)
	}
	cfg.TimeoutMs, _ = strconv.Atoi(timeoutStr)

	fmt.Println()

	cachePrompt := promptui.Select{
		Label: "Cache validation results?",
		Items: []string{"Yes (recommended)", "No"},
	}
	cacheIdx, _, err := cachePrompt.Run()
	if err != nil {
		return cfg, fmt.Errorf("cache selection cancelled: %w", err)
	}
	cfg.CacheEnabled = cacheIdx == 0

	return cfg, nil
}
