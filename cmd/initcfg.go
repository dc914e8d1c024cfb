package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ballotwatch/candidate-sync/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml",
	Long:  "Writes a config.yaml with the default settings to the current directory. Refuses to overwrite an existing file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("out")
		return writeStarterConfig(path, cfg)
	},
}

func init() {
	initCmd.Flags().String("out", "config.yaml", "output path")
	rootCmd.AddCommand(initCmd)
}

// writeStarterConfig serializes the effective configuration, which at
// this point is the defaults plus whatever the environment overrides.
func writeStarterConfig(path string, c *config.Config) error {
	if _, err := os.Stat(path); err == nil {
		return eris.Errorf("init: %s already exists, refusing to overwrite", path)
	}

	out, err := yaml.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "init: marshal config")
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return eris.Wrapf(err, "init: write %s", path)
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}
