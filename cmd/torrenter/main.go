package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"torrenter/internal/bypass"
	"torrenter/internal/config"
	"torrenter/internal/console"
	"torrenter/internal/download"
	"torrenter/internal/httpx"
	"torrenter/internal/indexer"
	"torrenter/internal/janitor"
	"torrenter/internal/pipeline"
	"torrenter/internal/prompt"
	"torrenter/internal/resolve"
	"torrenter/internal/store"
	"torrenter/internal/update"
	"torrenter/internal/version"
	"torrenter/pkg/types"
)

const donateURL = "https://sayem.eu.org/donate"

var (
	flagPath          string
	flagNoBanner      bool
	flagNoUpdateCheck bool
	flagVerbose       bool
	flagHistory       bool
)

var rootCmd = &cobra.Command{
	Use:           "torrenter [query]",
	Short:         "Search, pick and download torrents from the terminal",
	Args:          cobra.ArbitraryArgs,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&flagPath, "path", "", "download directory (default $DOWNLOAD_DIR or downloads)")
	rootCmd.Flags().BoolVar(&flagNoBanner, "no-banner", false, "do not print the banner")
	rootCmd.Flags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "skip the release check")
	rootCmd.Flags().BoolVar(&flagHistory, "history", false, "list recent downloads and exit")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "write the diagnostic log to stderr")
}

func main() {
	_ = godotenv.Load(".env")
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, types.ErrCancelled) {
			os.Exit(1)
		}
	}
}

func run(cmd *cobra.Command, args []string) error {
	config.Load()
	if flagPath != "" {
		config.SetDownloadDir(flagPath)
	}
	config.SetNoBanner(flagNoBanner)
	config.SetVerbose(flagVerbose)
	if flagNoUpdateCheck {
		config.DisableUpdateCheck()
	}
	config.SetupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := console.New(os.Stdout)
	if !config.NoBanner() {
		out.Banner(version.Version, "github.com/"+config.UpdateRepo(), donateURL)
	}

	st := openStore(ctx)
	if st != nil {
		defer st.Close()
		janitor.Sweep(ctx, st, janitor.Policy{CacheTTL: config.SearchCacheTTL(), HistoryKeep: config.HistoryKeep()})
	}
	if flagHistory {
		return showHistory(ctx, out, st)
	}

	api := httpx.New(httpx.Options{Timeout: config.HTTPTimeout(), UserAgent: config.UserAgent()})

	var notifier *update.Notifier
	if config.UpdateCheck() {
		notifier = &update.Notifier{
			Repo:     config.UpdateRepo(),
			Current:  version.Version,
			Interval: config.UpdateCheckInterval(),
			HTTP:     api,
		}
		if st != nil {
			notifier.Store = st
		}
		notifier.Start(ctx)
	}

	ix, err := indexer.New(indexer.Options{
		Kind:    config.IndexerKind(),
		BaseURL: config.IndexerURL(),
		APIKey:  config.IndexerAPIKey(),
		Path:    config.IndexerPath(),
		HTTP:    api,
	})
	if err != nil {
		out.Fatal(err)
		return err
	}
	if ttl := config.SearchCacheTTL(); ttl > 0 && st != nil {
		ix = &indexer.Cached{Indexer: ix, Cache: st, TTL: ttl}
	}

	browser := httpx.New(httpx.Options{Timeout: config.HTTPTimeout(), UserAgent: config.UserAgent(), Cookies: true})
	var solver bypass.Solver
	if u := config.SolverURL(); u != "" {
		solver = &bypass.FlareSolverr{
			Endpoint: u,
			Timeout:  config.SolverTimeout(),
			HTTP:     httpx.New(httpx.Options{Timeout: config.SolverTimeout() + 10*time.Second}),
		}
	}

	dl := &download.Downloader{
		TrackersMode:     config.TrackersMode(),
		ListenPort:       config.ListenPort(),
		ProgressInterval: config.ProgressInterval(),
		HTTP:             api,
		OnProgress:       func(p download.Progress) { out.Progress(p.String()) },
	}

	p := &pipeline.Pipeline{
		Indexer:    ix,
		Prompter:   prompt.New(os.Stdin, os.Stdout),
		Resolver:   &resolve.Resolver{Sites: ix, Bypass: bypass.New(browser, solver)},
		Downloader: dl,
		Console:    out,
	}
	if st != nil {
		p.History = st
	}

	log.Printf("[init] %s indexer=%s(%s) dest=%s trackers=%s", version.Version,
		config.IndexerKind(), config.IndexerURL(), config.DownloadDir(), config.TrackersMode())

	_, err = p.Run(ctx, strings.Join(args, " "), config.DownloadDir())

	if notifier != nil {
		if latest, ok := notifier.Available(); ok {
			out.Blank()
			out.Info("Update available %s → %s: https://github.com/%s/releases/latest", version.Version, latest, config.UpdateRepo())
		}
	}
	return err
}

// openStore returns nil when the state database is disabled or unusable; the run goes on without it.
func openStore(ctx context.Context) *store.Store {
	dsn := config.StateDSN()
	if dsn == "" || strings.EqualFold(dsn, "off") {
		return nil
	}
	st, err := store.Open(ctx, dsn)
	if err != nil {
		log.Printf("[store] disabled: %v", err)
		return nil
	}
	log.Printf("[store] opened %s", st.Driver())
	return st
}
