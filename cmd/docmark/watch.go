package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-docmark/pkg/docmark"
)

var watchFlags struct {
	data     string
	out      string
	debounce time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch TEMPLATE",
	Short: "Re-render whenever the template or the data changes",
	Long: `Render once, then watch the template and the data file and render again
after every change. Bursts of events (editors often write a file several
times when saving) are collapsed into one render. Render errors are logged
and watching continues; stop with Ctrl-C.

Examples:
  docmark watch invoice.docx --data invoice.yaml --out out.docx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := watchConfig{
			templatePath: args[0],
			dataPath:     watchFlags.data,
			outPath:      watchFlags.out,
			debounce:     watchFlags.debounce,
		}
		return watch(ctx, cfg, docmark.GetLogger(), func() error {
			return renderFile(cmd.OutOrStdout(), cfg.templatePath, cfg.dataPath, cfg.outPath)
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.data, "data", "d", "", "YAML or JSON data file")
	watchCmd.Flags().StringVarP(&watchFlags.out, "out", "o", "", "output file")
	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", 200*time.Millisecond, "quiet period before re-rendering")
	_ = watchCmd.MarkFlagRequired("out")
}

type watchConfig struct {
	templatePath string
	dataPath     string
	outPath      string
	debounce     time.Duration
}

// watch renders once and then again after changes to the watched files
// until ctx is done. Directories are watched rather than files so that
// editors which save by renaming a temporary file are still seen.
func watch(ctx context.Context, cfg watchConfig, logger *docmark.Logger, render func() error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	targets := make(map[string]bool)
	for _, p := range []string{cfg.templatePath, cfg.dataPath} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		if targets[abs] {
			continue
		}
		targets[abs] = true
		if err := fw.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %q: %w", filepath.Dir(abs), err)
		}
	}

	var mu sync.Mutex
	run := func() {
		mu.Lock()
		defer mu.Unlock()

		start := time.Now()
		if err := render(); err != nil {
			logger.Error("Render failed: %v", err)
			return
		}
		logger.WithFields(docmark.Fields{
			"out":      cfg.outPath,
			"duration": time.Since(start).Round(time.Millisecond),
		}).Info("Rendered %s", cfg.templatePath)
	}

	run()

	debounce := newDebouncer(cfg.debounce)
	defer debounce.Stop()

	logger.WithField("debounce", cfg.debounce).Info("Watching %s", cfg.templatePath)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op == fsnotify.Chmod || !targets[filepath.Clean(event.Name)] {
				continue
			}
			logger.WithField("op", event.Op.String()).Debug("Change detected in %s", event.Name)
			debounce.Trigger(run)

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("File watcher error: %v", err)
		}
	}
}

// debouncer runs the last triggered callback once no trigger arrived for
// interval.
type debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

func (d *debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			callback()
		}
	})
}

// Stop cancels a pending callback. A callback already running is not
// interrupted.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
