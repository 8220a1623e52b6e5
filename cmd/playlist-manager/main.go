package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alorle/playlist-manager/internal/config"
)

// rootOptions carries the flags shared by every command.
type rootOptions struct {
	configPath string
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.configPath)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "playlist-manager",
		Short: "Import, clean and re-export M3U playlists",
		Long: `playlist-manager merges M3U playlists from files and URLs into one
working list, lets you edit, filter, dedupe and regroup its channels,
checks which streams are reachable and exports the result.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (default $CONFIG_FILE or "+config.DefaultPath+")")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newCleanCmd(opts),
		newConfigCmd(opts),
	)

	return rootCmd
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			cfg.Print(cmd.OutOrStdout())
			return nil
		},
	}
}

// newLogger creates the structured logger used by every command.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
