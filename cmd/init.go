package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tokrex/tokrex/rule"
)

// initCmd: tokrex init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new rule file",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initRuleFile(rulesFile); err != nil {
			logger.Error("Error initializing rule file", zap.Error(err))
			return
		}
		fmt.Printf("Rule file created: %s\n", rulesFile)
	},
}

func initRuleFile(path string) error {
	if path == "" {
		path = ".tokrex.yaml"
	}

	config := rule.Config{
		Rules: []rule.Rule{
			{
				Name:    "var-to-let",
				Pattern: `\k"var" (?<name>\i)`,
				Rewrite: "let :[name]",
			},
		},
	}
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}
