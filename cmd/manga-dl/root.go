package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/handiism/manga-downloader/internal/config"
	"github.com/handiism/manga-downloader/internal/download"
	"github.com/handiism/manga-downloader/internal/model"
	"github.com/handiism/manga-downloader/internal/publish"
)

type options struct {
	reverse    bool
	listPath   string
	saveDir    string
	configPath string
	verbose    bool
	rendered   bool
	dryRun     bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "manga-dl [flags] <work name>",
		Short: "Download a manga into a single PDF",
		Long: `manga-dl looks a work up by name, downloads every page of every
chapter and assembles them into <save location>/<name>.pdf.

The words of the name are joined, so quoting is optional:

  manga-dl one piece
  manga-dl --reverse "one piece"
  manga-dl --path works.txt
  manga-dl --save ~/manga

For interactive mode, use: manga-tui`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.reverse, "reverse", "r", false, "assemble pages in reverse order")
	flags.StringVarP(&opts.listPath, "path", "p", "", "file listing one work name per line")
	flags.StringVarP(&opts.saveDir, "save", "s", "", "persist the directory documents are saved to")
	flags.StringVar(&opts.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "show per-page progress and debug logs")
	flags.BoolVar(&opts.rendered, "rendered", false, "look works up through a headless browser")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "resolve and discover only, download nothing")

	return cmd
}

func run(ctx context.Context, opts options, args []string, stdout, stderr io.Writer) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	configPath := opts.configPath
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if opts.saveDir != "" {
		if err := settings.SetSaveLocation(opts.saveDir); err != nil {
			return err
		}
		if err := settings.Save(configPath); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(stdout, "Save location set to %s\n", settings.SaveLocation)
		if opts.listPath == "" && len(args) == 0 {
			return nil
		}
	}

	names, err := workNames(opts, args)
	if err != nil {
		return err
	}
	if opts.rendered {
		settings.ResolveMode = config.ResolveRendered
	}

	var mu sync.Mutex
	onProgress := func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !opts.verbose {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(stdout, prefix(event.Level)+event.Message)
	}

	managerOpts := []download.Option{download.WithLogger(logger)}
	if settings.PublishBucket != "" && !opts.dryRun {
		pub, err := publish.NewS3Publisher(ctx, settings.PublishBucket, settings.PublishPrefix, settings.PublishRegion)
		if err != nil {
			return err
		}
		managerOpts = append(managerOpts, download.WithPublisher(pub))
	}
	manager := download.NewManager(settings, onProgress, managerOpts...)

	if opts.dryRun {
		return inspect(ctx, manager, names, stdout)
	}

	if err := config.ValidateSaveLocation(settings.SaveLocation); err != nil {
		return fmt.Errorf("%w (set one with --save <dir>)", err)
	}
	manager.Prepare()

	order := model.OrderForward
	if opts.reverse {
		order = model.OrderReverse
	}

	results := download.NewBatch(manager, order, logger, onProgress).Run(ctx, names)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		fmt.Fprintln(stdout, r.Output)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d works failed", failed, len(results))
	}
	return nil
}

// workNames returns the names to process: the batch list when given,
// otherwise the positional words joined into one name.
func workNames(opts options, args []string) ([]string, error) {
	if opts.listPath != "" {
		f, err := os.Open(opts.listPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		names, err := download.ReadWorkList(f)
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("%s lists no works", opts.listPath)
		}
		return names, nil
	}

	name := strings.Join(args, " ")
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("no work name given")
	}
	return []string{name}, nil
}

func inspect(ctx context.Context, manager *download.Manager, names []string, stdout io.Writer) error {
	failed := 0
	for _, name := range names {
		work, err := model.NewWorkRequest(name)
		if err == nil {
			var inv *download.Inventory
			inv, err = manager.Inspect(ctx, work)
			if err == nil {
				fmt.Fprintf(stdout, "%s: %s, %d chapters, %d pages\n", work.Name, inv.Root.URL, len(inv.Chapters), inv.PageCount())
				continue
			}
		}
		failed++
		fmt.Fprintf(stdout, "%s%s: %v\n", prefix(download.LevelError), name, err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d works failed", failed, len(names))
	}
	return nil
}

func prefix(level download.ProgressLevel) string {
	switch level {
	case download.LevelError:
		return "✗ "
	case download.LevelWarning:
		return "! "
	case download.LevelSuccess:
		return "✓ "
	case download.LevelInfo:
		return "› "
	default:
		return "  "
	}
}
