package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pathsift/ignore"
	"pathsift/scan"
)

var rootCmd = &cobra.Command{
	Use:   "pathsift",
	Short: "Ignore-driven directory indexer",
	Long: `pathsift walks a directory tree, applies the .codexignore rules found
at its root, and maintains a queryable index of everything kept.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		scan.InitLogger(viper.GetString("log-dir"))
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("root", "r", ".", "root of the tree to scan")
	pf.String("db", "", "index database path (default <root>/.pathsift/index.db)")
	pf.String("log-dir", "", "directory for rotating log files (console only when empty)")

	cobra.CheckErr(viper.BindPFlags(pf))
}

// loadConfig layers an optional .pathsift.yaml in the scan root under the
// flags and PATHSIFT_* environment variables.
func loadConfig() error {
	viper.SetEnvPrefix("pathsift")
	viper.AutomaticEnv()

	viper.SetConfigName(".pathsift")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(viper.GetString("root"))
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// scanRoot returns the absolute scan root from configuration.
func scanRoot() (string, error) {
	root, err := filepath.Abs(viper.GetString("root"))
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	return root, nil
}

// dbPath returns the configured index database path, defaulting to a
// .pathsift directory under the scan root.
func dbPath(root string) string {
	if p := viper.GetString("db"); p != "" {
		return p
	}
	return filepath.Join(root, scan.IndexDirName, "index.db")
}

// loadMatcher compiles the ignore file under root. A nil matcher means no
// ignore file is present and nothing is filtered.
func loadMatcher(root string) (*ignore.Matcher, error) {
	m, err := ignore.Load(root)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ignore.IgnoreFile, err)
	}
	return m, nil
}
