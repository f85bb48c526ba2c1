package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ahktools/ahkcheck/domain"
	"github.com/ahktools/ahkcheck/internal/config"
	"github.com/ahktools/ahkcheck/service"
)

var (
	watchConfigPath string
	watchRecursive  bool
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path...]",
		Short: "Re-validate scripts on file change",
		Long: `Watch AutoHotkey scripts and re-validate them when they change.
Rapid write bursts are coalesced into one validation per quiet period.

Examples:
  # Watch the current directory
  ahkcheck watch

  # Watch a specific directory tree
  ahkcheck watch src/`,
		RunE:          runWatch,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&watchConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().BoolVarP(&watchRecursive, "recursive", "r", true,
		"Watch directories recursively")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	manager, err := config.NewManager(".", watchConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := manager.Config()

	uc, diagnosticCache := buildUseCase(manager, &service.NoOpProgressManager{})
	formatter := service.NewOutputFormatter()

	revalidate := func(ctx context.Context, files []string) {
		for _, f := range files {
			if diagnosticCache != nil {
				diagnosticCache.Invalidate(f)
			}
		}
		report, err := uc.Execute(ctx, domain.ValidationRequest{
			Paths:     files,
			Recursive: false,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		_ = formatter.Write(report, domain.OutputFormatText, os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial pass over everything being watched
	report, err := uc.Execute(ctx, domain.ValidationRequest{
		Paths:           paths,
		Recursive:       watchRecursive,
		IncludePatterns: cfg.IncludePatterns,
		ExcludePatterns: cfg.ExcludePatterns,
	})
	if err != nil {
		return err
	}
	if err := formatter.Write(report, domain.OutputFormatText, os.Stdout); err != nil {
		return err
	}

	watcher, err := service.NewWatcher(cfg.Debounce(), func(changed []string) {
		revalidate(ctx, changed)
	})
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := addWatchTree(watcher, path, watchRecursive); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "Watching %v for changes (Ctrl-C to stop)\n", paths)
	if err := watcher.Watch(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// addWatchTree registers path and, when recursive, its subdirectories
func addWatchTree(watcher *service.WatcherImpl, path string, recursive bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return domain.NewFileNotFoundError(path, err)
	}
	if !info.IsDir() || !recursive {
		return watcher.Add(path)
	}

	return walkDirs(path, func(dir string) error {
		return watcher.Add(dir)
	})
}

func walkDirs(root string, fn func(dir string) error) error {
	if err := fn(root); err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := walkDirs(root+string(os.PathSeparator)+entry.Name(), fn); err != nil {
			return err
		}
	}
	return nil
}
