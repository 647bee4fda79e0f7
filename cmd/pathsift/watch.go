package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"pathsift/scan"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the scan daemon and stream index changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := scanRoot()
		if err != nil {
			return err
		}

		matcher, err := loadMatcher(root)
		if err != nil {
			return err
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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		daemon := scan.NewDaemon(scan.NewStore(db), root, matcher)

		events := daemon.Events().Subscribe()
		go func() {
			for ev := range events {
				suffix := ""
				if ev.IsDir {
					suffix = "/"
				}
				fmt.Printf("%-7s %s%s\n", ev.Type, ev.Path, suffix)
			}
		}()

		daemon.Run(ctx)
		daemon.Events().Unsubscribe(events)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
