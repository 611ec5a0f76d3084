package cmd

import (
	"os"

	"github.com/listd/listd/internal/output"
	"github.com/listd/listd/internal/session"
	"github.com/spf13/cobra"
)

var version string

// SetVersion sets the version string shown by `listd version`.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "listd",
	Short: "Shared todo lists from the terminal",
	Long: `listd - shared todo lists with real-time sync.

Every mutation is applied locally first and reconciled against the server
when the call settles, so the view never waits on the network to feel done.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openSession opens the composition root or exits with a styled error.
func openSession() (*session.Session, error) {
	s, err := session.Open()
	if err != nil {
		output.Error("%v", err)
		return nil, err
	}
	return s, nil
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "sharing", Title: "Sharing Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")
}
