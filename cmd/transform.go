package cmd

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tokrex/tokrex/rule"
)

var transformDryRun bool

var transformCmd = &cobra.Command{
	Use:   "transform <path>...",
	Short: "Apply the rewrite rules from the rule file to source files",
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

		files, err := collectFiles(args)
		if err != nil {
			logger.Fatal("Failed to collect files", zap.Error(err))
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		changed := transformFiles(ctx, applier, files)
		if transformDryRun {
			fmt.Printf("%d of %d files would change\n", changed, len(files))
		} else {
			fmt.Printf("rewrote %d of %d files\n", changed, len(files))
		}
	},
}

// transformFiles rewrites files concurrently, bounded by the CPU count,
// and returns how many changed.
func transformFiles(ctx context.Context, applier *rule.Applier, files []string) int {
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("transform"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	maxWorkers := runtime.NumCPU()
	sem := make(chan struct{}, maxWorkers)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		changed int
	)
	for _, path := range files {
		select {
		case <-ctx.Done():
			logger.Warn("Timed out", zap.Error(ctx.Err()))
			wg.Wait()
			return changed
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			did, err := applier.ApplyFile(fp, transformDryRun)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Error("Failed to transform", zap.String("file", fp), zap.Error(err))
			} else if did {
				changed++
			}
			_ = bar.Add(1)
		}(path)
	}
	wg.Wait()
	fmt.Println()
	return changed
}

func init() {
	transformCmd.Flags().BoolVar(&transformDryRun, "dry-run", false, "Report what would change without writing")
}
