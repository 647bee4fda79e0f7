package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pathsift/ignore"
	"pathsift/scan"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Walk the tree once and rebuild the index",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := scanRoot()
		if err != nil {
			return err
		}

		matcher, err := loadMatcher(root)
		if err != nil {
			return err
		}
		if matcher == nil {
			fmt.Fprintf(os.Stderr, "no %s at %s, keeping everything\n", ignore.IgnoreFile, root)
		}

		path := dbPath(root)
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return fmt.Errorf("create index dir: %w", err)
		}
		db, err := scan.OpenDB(path)
		if err != nil {
			return err
		}
		defer db.Close()

		store := scan.NewStore(db)
		daemon := scan.NewDaemon(store, root, matcher)
		if err := daemon.Seed(); err != nil {
			return err
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		if quiet {
			n, err := store.Count()
			if err != nil {
				return err
			}
			fmt.Printf("%d entries indexed\n", n)
			return nil
		}

		entries, err := store.ListAll()
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.IsDir {
				fmt.Printf("%s/\n", e.Path)
			} else {
				fmt.Println(e.Path)
			}
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolP("quiet", "q", false, "print only the entry count")
	rootCmd.AddCommand(scanCmd)
}
