package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/session"
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Watch a dataset file and re-upload on change",
		Long: `Monitor a dataset file for changes and re-upload it to the service
whenever it is rewritten. Writes are debounced so a burst of saves
results in a single upload. Press Ctrl+C to stop watching.

Examples:
  mlforge watch data/churn.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	filename := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sess, err := newSession(cfg, newConsoleBus())
	if err != nil {
		return err
	}

	watcher, cleanup, err := setupFileWatcher(filename)
	if err != nil {
		return err
	}
	defer cleanup()

	// Upload once on start so the session matches the file.
	if err := uploadDataset(cmd.Context(), sess, filename); err != nil {
		return err
	}

	return runWatchLoop(cmd.Context(), watcher, sess, filename, cfg.Watch.Debounce)
}

// uploadDataset re-uploads the watched file as the active session.
func uploadDataset(ctx context.Context, sess *session.Session, filename string) error {
	// #nosec G304 - path is validated by setupFileWatcher
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := sess.Load(ctx, filepath.Base(filename), file); err != nil {
		return err
	}

	fmt.Printf("%s Dataset uploaded: %s\n", emoji.GetEmoji("upload"), filepath.Base(filename))
	return nil
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}

// createWatcher creates and configures a new file system watcher
func createWatcher(filename string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filename); err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch file: %w", err)
	}

	return watcher, nil
}

// setupFileWatcher creates and configures the file watcher
func setupFileWatcher(filename string) (*fsnotify.Watcher, func(), error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("file does not exist: %s", filename)
	}

	if err := validateWatchFilePath(filename); err != nil {
		return nil, nil, fmt.Errorf("invalid file path: %w", err)
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Watching file: %s\n", filename)
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop...\n\n")
	}

	watcher, err := createWatcher(filename)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		cleanupWatcher(watcher)
	}

	return watcher, cleanup, nil
}

// runWatchLoop runs the main watch loop with signal handling and
// debounced uploads
func runWatchLoop(parent context.Context, watcher *fsnotify.Watcher, sess *session.Session, filename string, debounce time.Duration) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	// The timer fires once the file has been quiet for the debounce
	// window.
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-signals:
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
			}
			return nil

		case <-timer.C:
			pending = false
			if err := uploadDataset(ctx, sess, filename); err != nil {
				fmt.Fprintf(os.Stderr, "%s Re-upload failed: %v\n", emoji.GetEmoji("error"), err)
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(debounce)
			pending = true

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
			}
		}
	}
}

// validateWatchFilePath validates that a file path is safe to watch
func validateWatchFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}

	return nil
}
