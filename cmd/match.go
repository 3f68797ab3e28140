package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tokrex/tokrex"
	"github.com/tokrex/tokrex/formatter"
	"github.com/tokrex/tokrex/lexer"
)

var matchCmd = &cobra.Command{
	Use:   "match <pattern> <path>...",
	Short: "Find occurrences of a token pattern in source files",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		pat, err := tokrex.Compile(args[0])
		if err != nil {
			logger.Fatal("Invalid pattern", zap.Error(err))
		}

		files, err := collectFiles(args[1:])
		if err != nil {
			logger.Fatal("Failed to collect files", zap.Error(err))
		}

		var reports []formatter.MatchReport
		for _, path := range files {
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Error("Failed to read file", zap.String("file", path), zap.Error(err))
				continue
			}
			toks, err := lexer.Tokenize(string(data), lexer.Options{})
			if err != nil {
				logger.Error("Failed to tokenize", zap.String("file", path), zap.Error(err))
				continue
			}
			for _, m := range tokrex.FindAll(pat, toks) {
				reports = append(reports, formatter.MatchReport{
					File:   path,
					Rule:   args[0],
					Match:  m,
					Tokens: toks,
				})
			}
		}

		if len(reports) == 0 {
			return
		}
		fmt.Print(formatter.FormatMatches(reports))
	},
}
