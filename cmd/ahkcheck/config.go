package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ahktools/ahkcheck/internal/config"
)

var configPathFlag string

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify the resolved configuration",
		Long: `Print the effective configuration after merging defaults, the config
file, and environment variables, along with any validation problems.

Examples:
  # Show the resolved configuration
  ahkcheck config

  # Read a single setting
  ahkcheck config get timeout_ms

  # Change a setting (persisted when a config file is in use)
  ahkcheck config set timeout_ms 60000`,
		RunE:          runConfigShow,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPathFlag, "config", "c", "",
		"Path to config file")

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newConfigManager()
			if err != nil {
				return err
			}
			value := manager.Get(args[0])
			if value == nil {
				return fmt.Errorf("unknown configuration key: %s", args[0])
			}
			fmt.Println(value)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newConfigManager()
			if err != nil {
				return err
			}
			if err := manager.Set(args[0], args[1]); err != nil {
				return err
			}
			if file := manager.ConfigFileUsed(); file != "" {
				fmt.Printf("Updated %s\n", file)
			} else {
				fmt.Println("Updated in-memory configuration (no config file in use)")
			}
			return nil
		},
	})

	return cmd
}

func newConfigManager() (*config.Manager, error) {
	manager, err := config.NewManager(".", configPathFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return manager, nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	manager, err := newConfigManager()
	if err != nil {
		return err
	}

	if file := manager.ConfigFileUsed(); file != "" {
		fmt.Printf("# Config file: %s\n", file)
	} else {
		fmt.Println("# Config file: (none, defaults + environment)")
	}

	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	if err := encoder.Encode(manager.Config()); err != nil {
		return err
	}

	validation := manager.Validate()
	if !validation.Valid {
		fmt.Println("\n# Problems:")
		for _, problem := range validation.Errors {
			fmt.Printf("#   - %s\n", problem)
		}
		return &ExitError{Code: 1}
	}
	return nil
}
