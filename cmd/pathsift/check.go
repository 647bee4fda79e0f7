package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check PATH...",
	Short: "Report the ignore verdict for one or more paths",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := scanRoot()
		if err != nil {
			return err
		}

		matcher, err := loadMatcher(root)
		if err != nil {
			return err
		}

		anyIgnored := false
		for _, arg := range args {
			if matcher == nil {
				fmt.Printf("kept     %s\n", arg)
				continue
			}

			rel, ok := matcher.RelativePath(arg)
			if !ok {
				fmt.Printf("outside  %s\n", arg)
				continue
			}

			ignored := false
			if isDirArg(matcher.Root(), arg) {
				ignored = matcher.IsDirIgnored(arg)
			} else {
				ignored = matcher.IsFileIgnored(arg)
			}

			if ignored {
				anyIgnored = true
				fmt.Printf("ignored  %s\n", rel)
			} else {
				fmt.Printf("kept     %s\n", rel)
			}
		}

		// Mirror `git check-ignore`: exit 1 when nothing was ignored.
		if !anyIgnored {
			os.Exit(1)
		}
		return nil
	},
}

// isDirArg decides whether a query path names a directory: a trailing
// separator forces it, otherwise the filesystem is consulted when possible.
func isDirArg(root, arg string) bool {
	if strings.HasSuffix(arg, "/") || strings.HasSuffix(arg, string(filepath.Separator)) {
		return true
	}
	abs := arg
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, arg)
	}
	info, err := os.Stat(abs)
	return err == nil && info.IsDir()
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
