// Package main provides genrectl, an operator CLI for the genre taxonomy.
//
// Usage:
//
//	genrectl seed                      # merge the default taxonomy into an empty store
//	genrectl seed taxonomy.yaml --force
//	genrectl tree <correction-id>
//	genrectl merge <correction-id>
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/genrewiki/genrewiki-server/internal/config"
	"github.com/genrewiki/genrewiki-server/internal/di"
)

var (
	storeBackend string
	dataPath     string
	logLevel     string
	envFile      string

	injector *do.RootScope

	rootCmd = &cobra.Command{
		Use:   "genrectl",
		Short: "Operate on the genre taxonomy without going through the HTTP API",
		Long: `genrectl opens the configured store directly to seed taxonomies,
inspect corrections and merge them.`,
		SilenceUsage:       true,
		PersistentPreRunE:  openContainer,
		PersistentPostRunE: closeContainer,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Store backend: sqlite or badger")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data-path", "", "Directory holding the database files")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")

	rootCmd.AddCommand(seedCmd, treeCmd, mergeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves configuration the same way the server does, with the
// CLI flags taking precedence.
func loadConfig() (*config.Config, error) {
	args := []string{"-env-file", envFile, "-log-level", logLevel}
	if storeBackend != "" {
		args = append(args, "-store", storeBackend)
	}
	if dataPath != "" {
		args = append(args, "-data-path", dataPath)
	}
	return config.Load(flag.NewFlagSet("genrectl", flag.ContinueOnError), args)
}

func openContainer(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	injector = di.NewContainerWithConfig(cfg)
	return nil
}

func closeContainer(_ *cobra.Command, _ []string) error {
	if injector == nil {
		return nil
	}
	_ = injector.Shutdown()
	injector = nil
	return nil
}
