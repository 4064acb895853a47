// Package cli holds the bookcatalog command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/entrypoint"
)

// NewRootCommand builds the command tree. Running it without a subcommand
// serves the API.
func NewRootCommand(info entrypoint.BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:           "bookcatalog",
		Short:         "Book catalog REST service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(config.NewConfig(), info)
		},
	}

	root.AddCommand(newServeCommand(info))
	root.AddCommand(NewCreateUserCommand().Command())
	root.AddCommand(newVersionCommand(info))
	return root
}

func newServeCommand(info entrypoint.BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default if no command given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(config.NewConfig(), info)
		},
	}
}

func newVersionCommand(info entrypoint.BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and commit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("bookcatalog %s (%s)\n", info.Version, info.Commit)
		},
	}
}
