package cmd

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tokrex/tokrex/rule"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>...",
	Short: "Watch directories and re-apply rules on file changes",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rules, err := rule.Load(rulesFile)
		if err != nil {
			logger.Fatal("Failed to load rules", zap.String("file", rulesFile), zap.Error(err))
		}
		applier, err := rule.NewApplier(rules, logger)
		if err != nil {
			logger.Fatal("Failed to compile rules", zap.Error(err))
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			logger.Fatal("Failed to create watcher", zap.Error(err))
		}
		defer watcher.Close()

		for _, dir := range args {
			err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					return watcher.Add(path)
				}
				return nil
			})
			if err != nil {
				logger.Fatal("Failed to watch directory", zap.String("dir", dir), zap.Error(err))
			}
		}

		logger.Info("Watching for changes", zap.Strings("dirs", args))

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				handleFileEvent(applier, event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("Watcher error", zap.Error(err))
			case <-sig:
				logger.Info("Stopping watcher")
				return
			}
		}
	},
}

func handleFileEvent(applier *rule.Applier, event fsnotify.Event) {
	if event.Op&fsnotify.Write != fsnotify.Write {
		return
	}
	if !sourceExts[filepath.Ext(event.Name)] {
		return
	}
	// wait for a while after file change to consider multiple changes as one
	time.Sleep(100 * time.Millisecond)
	changed, err := applier.ApplyFile(event.Name, false)
	if err != nil {
		logger.Error("Failed to transform", zap.String("file", event.Name), zap.Error(err))
		return
	}
	if changed {
		logger.Info("Rewrote file", zap.String("file", event.Name))
	}
}
