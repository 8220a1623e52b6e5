package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/alorle/playlist-manager/internal/adapter/driven"
	"github.com/alorle/playlist-manager/internal/application"
	"github.com/alorle/playlist-manager/internal/bulk"
	"github.com/alorle/playlist-manager/internal/channel"
	"github.com/alorle/playlist-manager/internal/config"
	"github.com/alorle/playlist-manager/internal/m3u"
	"github.com/alorle/playlist-manager/internal/playlist"
)

var errNoChannels = errors.New("no channels imported")

// cleanOptions are the steps applied by the clean command, in this order:
// dedupe, sort, regroup, check, drop offline.
type cleanOptions struct {
	output      string
	dedupe      bool
	sort        string
	regroup     string
	check       bool
	dropOffline bool
}

func newCleanCmd(root *rootOptions) *cobra.Command {
	opts := cleanOptions{}

	cmd := &cobra.Command{
		Use:   "clean [flags] INPUT...",
		Short: "Merge, clean and export playlists without starting the server",
		Long: `clean imports every INPUT into one playlist, applies the requested
steps and writes the result. An INPUT is a playlist file, a glob such as
'lists/**/*.m3u' or an http(s) URL. The output format follows the output
file extension (.m3u8 or .m3u); standard output gets m3u.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.SlogLevel())
			return runClean(cmd.Context(), cfg, logger, opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "-", "output file, - for standard output")
	flags.BoolVar(&opts.dedupe, "dedupe", false, "remove channels whose URL already appeared")
	flags.StringVar(&opts.sort, "sort", "", "sort by field, e.g. name or group:desc")
	flags.StringVar(&opts.regroup, "regroup", "", "rewrite groups from a template using {tag} and {group}")
	flags.Lookup("regroup").NoOptDefVal = bulk.DefaultRegroupTemplate
	flags.BoolVar(&opts.check, "check", false, "probe every channel and record its status")
	flags.BoolVar(&opts.dropOffline, "drop-offline", false, "probe every channel and remove the offline ones")

	return cmd
}

func runClean(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts cleanOptions, inputs []string, stdout, stderr io.Writer) error {
	sortField, sortDir, err := parseSortSpec(opts.sort)
	if err != nil {
		return err
	}
	format := outputFormat(opts.output)

	paths, urls, err := expandInputs(inputs)
	if err != nil {
		return err
	}

	fileSource := driven.NewFileSource()
	httpSource := driven.NewHTTPSource(cfg.Fetch.Timeout, nil, false, cfg.Fetch.UserAgent, logger)
	workspace := application.NewWorkspaceService(fileSource, httpSource, cfg.History.Size, logger)

	imported := 0
	if len(paths) > 0 {
		result, err := workspace.ImportFiles(ctx, paths)
		for _, f := range result.Failures {
			fmt.Fprintf(stderr, "skipped %s: %s\n", f.Location, f.Error)
		}
		if err == nil {
			imported += result.Channels
		}
	}
	for _, url := range urls {
		result, err := workspace.ImportURL(ctx, url)
		if err != nil {
			fmt.Fprintf(stderr, "skipped %s: %v\n", url, err)
			continue
		}
		imported += result.Channels
	}
	if imported == 0 {
		return errNoChannels
	}
	fmt.Fprintf(stderr, "imported %d channels\n", imported)

	if opts.dedupe {
		fmt.Fprintf(stderr, "removed %d duplicates\n", workspace.RemoveDuplicates())
	}

	if sortField != "" {
		if _, err := workspace.SortBy(sortField, sortDir); err != nil {
			return err
		}
	}

	if opts.regroup != "" {
		workspace.SelectVisible(true)
		workspace.Regroup(opts.regroup)
		workspace.SelectVisible(false)
	}

	if opts.check || opts.dropOffline {
		checker := driven.NewReachabilityHTTPChecker(cfg.Fetch.UserAgent)
		prober := application.NewProbeService(workspace, checker, nil, logger, cfg.Probe.Timeout, cfg.Probe.BatchSize)

		workspace.SelectVisible(true)
		summary, err := prober.CheckSelected(ctx, cfg.Probe.SecureContext)
		workspace.SelectVisible(false)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "checked %d channels: %d online, %d offline, %d unknown\n",
			summary.Total, summary.Online, summary.Offline, summary.Unknown)

		if opts.dropOffline {
			workspace.SelectByStatus(channel.StatusOffline)
			fmt.Fprintf(stderr, "dropped %d offline channels\n", workspace.DeleteSelected())
		}
	}

	file, err := workspace.Export(application.ExportAll, format)
	if err != nil {
		return err
	}

	if opts.output == "" || opts.output == "-" {
		_, err = io.WriteString(stdout, file.Content)
		return err
	}
	if err := os.WriteFile(opts.output, []byte(file.Content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.output, err)
	}
	fmt.Fprintf(stderr, "wrote %d channels to %s\n", file.Channels, opts.output)
	return nil
}

// parseSortSpec splits "field[:asc|desc]". An empty spec means no sort.
func parseSortSpec(spec string) (string, playlist.Direction, error) {
	if spec == "" {
		return "", playlist.Asc, nil
	}
	field, dir, _ := strings.Cut(spec, ":")
	direction, err := playlist.ParseDirection(dir)
	if err != nil {
		return "", "", err
	}
	return field, direction, nil
}

func outputFormat(output string) m3u.Format {
	if strings.EqualFold(filepath.Ext(output), ".m3u8") {
		return m3u.FormatM3U8
	}
	return m3u.FormatM3U
}

// expandInputs separates URLs from local inputs and expands globs.
// Plain paths are kept even when missing so the import reports them.
func expandInputs(inputs []string) (paths []string, urls []string, err error) {
	for _, in := range inputs {
		lower := strings.ToLower(in)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			urls = append(urls, in)
			continue
		}
		if !strings.ContainsAny(in, "*?[{") {
			paths = append(paths, in)
			continue
		}

		matches, err := doublestar.FilepathGlob(in)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pattern %q: %w", in, err)
		}
		n := 0
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && !info.IsDir() {
				paths = append(paths, m)
				n++
			}
		}
		if n == 0 {
			return nil, nil, fmt.Errorf("pattern %q matched no files", in)
		}
	}
	return paths, urls, nil
}
