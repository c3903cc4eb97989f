package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pairgen/pairgen/pkg/logger"
	"github.com/pairgen/pairgen/pkg/presenter"
	"github.com/pairgen/pairgen/pkg/render"
	"github.com/pairgen/pairgen/pkg/telemetry"
)

// WatchConfig holds configuration for the watch command
type WatchConfig struct {
	DebounceTime int
	Format       string
	Output       string
	Ceiling      int
}

// NewWatchConfig creates a new WatchConfig with default values
func NewWatchConfig() *WatchConfig {
	return &WatchConfig{
		DebounceTime: 500,
		Format:       string(render.FormatTable),
	}
}

// Validate validates the WatchConfig and returns an error if invalid
func (c *WatchConfig) Validate() error {
	if c.DebounceTime < 0 {
		return errors.Errorf("debounce time cannot be negative: %d", c.DebounceTime)
	}
	return nil
}

// FileEvent represents a file system event with additional metadata
type FileEvent struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

var watchCmd = &cobra.Command{
	Use:   "watch [model file]",
	Short: "Regenerate the suite whenever the model file changes",
	Long: `Watch a model file and regenerate its covering suite on every change.

The suite is generated once at startup and again after each save,
debounced so editors that write in bursts trigger one regeneration.
Model errors are reported without stopping the watch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Create a cancellable context that listens for signals
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		config := getWatchConfigFromFlags(cmd)
		if err := config.Validate(); err != nil {
			return err
		}

		// Set up signal handling
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			presenter.Warning("\n[pairgen]: Cancellation requested, shutting down...")
			cancel()
		}()

		return runWatchMode(ctx, args[0], config)
	},
}

func init() {
	defaults := NewWatchConfig()
	watchCmd.Flags().IntP("debounce", "d", defaults.DebounceTime, "Debounce time in milliseconds for file change events")
	watchCmd.Flags().String("format", defaults.Format, "Output format: table, markdown, csv, or json")
	watchCmd.Flags().StringP("output", "o", defaults.Output, "Write each rendered suite to a file instead of stdout")
	watchCmd.Flags().Int("ceiling", defaults.Ceiling, "Maximum pair combinations the model may produce")
}

// getWatchConfigFromFlags extracts watch configuration from command flags
func getWatchConfigFromFlags(cmd *cobra.Command) *WatchConfig {
	config := NewWatchConfig()

	if debounceTime, err := cmd.Flags().GetInt("debounce"); err == nil {
		config.DebounceTime = debounceTime
	}
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	if output, err := cmd.Flags().GetString("output"); err == nil {
		config.Output = output
	}
	if ceiling, err := cmd.Flags().GetInt("ceiling"); err == nil {
		config.Ceiling = ceiling
	}

	return config
}

func runWatchMode(ctx context.Context, path string, config *WatchConfig) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer watcher.Close()

	// Editors typically replace files via rename, which drops a watch on
	// the file itself, so the parent directory is watched instead.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "watching %s", filepath.Dir(target))
	}

	// Setup debouncing mechanism
	events := make(chan FileEvent)
	debouncedEvents := make(chan FileEvent)
	go debounceFileEvents(ctx, events, debouncedEvents, time.Duration(config.DebounceTime)*time.Millisecond)

	// Process debounced events
	go func() {
		for {
			select {
			case event, ok := <-debouncedEvents:
				if !ok {
					return
				}
				presenter.Info(fmt.Sprintf("Change detected: %s (%s)", event.Path, event.Op))
				logger.G(ctx).WithFields(map[string]interface{}{
					"file":      event.Path,
					"operation": event.Op.String(),
					"timestamp": event.Time,
				}).Debug("model file changed")
				telemetry.AddEvent(ctx, "watch.regenerate")
				regenerate(ctx, path, config)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Watch for events
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, err := filepath.Abs(event.Name)
				if err != nil || name != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					events <- FileEvent{
						Path: path,
						Op:   event.Op,
						Time: time.Now(),
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				presenter.Error(err, "File watcher error")
				logger.G(ctx).WithError(err).Error("error watching model file")
			case <-ctx.Done():
				return
			}
		}
	}()

	// Initial generation so the current suite is visible immediately
	regenerate(ctx, path, config)

	presenter.Info(fmt.Sprintf("Watching %s for changes... Press Ctrl+C to stop", path))
	logger.G(ctx).WithField("model", path).Info("model watcher initialized")

	<-ctx.Done()
	return nil
}

// Debounce file events to prevent processing multiple rapid changes to the same file
func debounceFileEvents(ctx context.Context, input <-chan FileEvent, output chan<- FileEvent, delay time.Duration) {
	var pending = make(map[string]*time.Timer)

	for {
		select {
		case event, ok := <-input:
			if !ok {
				for _, timer := range pending {
					timer.Stop()
				}
				return
			}
			// Cancel any pending timers for this file
			if timer, exists := pending[event.Path]; exists {
				timer.Stop()
				delete(pending, event.Path)
			}

			eventCopy := event
			pending[event.Path] = time.AfterFunc(delay, func() {
				select {
				case output <- eventCopy:
				case <-ctx.Done():
				}
			})
		case <-ctx.Done():
			for _, timer := range pending {
				timer.Stop()
			}
			return
		}
	}
}

// regenerate runs one generation pass, reporting errors without ending the
// watch.
func regenerate(ctx context.Context, path string, config *WatchConfig) {
	genConfig := &GenerateConfig{
		Options:   generatorOptionsFromViper(),
		Ceiling:   config.Ceiling,
		Format:    config.Format,
		Output:    config.Output,
		NoHistory: true,
	}
	if err := generateOne(ctx, path, genConfig, render.Format(config.Format)); err != nil {
		presenter.Error(err, fmt.Sprintf("Failed to generate suite for %s", path))
	}
}
