package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tokrex/tokrex/formatter"
	"github.com/tokrex/tokrex/lexer"
)

var (
	tokenizeWhitespace bool
	tokenizeComments   bool
	tokenizeJSON       bool
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [file]",
	Short: "Dump the token stream of a source file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			logger.Fatal("Failed to read file", zap.Error(err))
		}
		toks, err := lexer.Tokenize(string(data), lexer.Options{
			IncludeWhitespace: tokenizeWhitespace,
			IncludeComments:   tokenizeComments,
		})
		if err != nil {
			logger.Fatal("Failed to tokenize", zap.String("file", args[0]), zap.Error(err))
		}

		if tokenizeJSON {
			out, err := json.MarshalIndent(toks, "", "  ")
			if err != nil {
				logger.Fatal("Failed to encode tokens", zap.Error(err))
			}
			fmt.Println(string(out))
			return
		}
		fmt.Print(formatter.FormatTokens(toks))
	},
}

func init() {
	tokenizeCmd.Flags().BoolVar(&tokenizeWhitespace, "whitespace", false, "Keep whitespace tokens")
	tokenizeCmd.Flags().BoolVar(&tokenizeComments, "comments", false, "Keep comment tokens")
	tokenizeCmd.Flags().BoolVar(&tokenizeJSON, "json", false, "Output tokens as JSON")
}
