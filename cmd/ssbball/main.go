package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aknowles/ssbball/internal/config"
	"github.com/aknowles/ssbball/internal/fetch"
	appLog "github.com/aknowles/ssbball/internal/log"
	"github.com/aknowles/ssbball/internal/pipeline"
	"github.com/aknowles/ssbball/internal/rollover"
	"github.com/aknowles/ssbball/internal/web"
)

var (
	configPath string
	outputDir  string
	baseURL    string
	dryRun     bool
	applyRoll  bool
	keepAdhoc  bool
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	appLog.SetLevel(appLog.ParseLevel(os.Getenv("LOG_LEVEL")))

	root := &cobra.Command{
		Use:   "ssbball",
		Short: "Youth basketball schedule scraper and calendar publisher",
		Long: "ssbball discovers a town's teams across its basketball leagues, " +
			"merges their schedules with configured practices, publishes " +
			"subscribable iCalendar feeds, and pushes change notifications.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")

	scrapeCmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one fetch-reconcile-publish pass and exit",
		RunE:  runScrape,
	}
	scrapeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "override output directory")
	scrapeCmd.Flags().StringVar(&baseURL, "base-url", "", "override public base URL")
	scrapeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "skip notifications and the snapshot write")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve calendars over HTTP and refresh them on a schedule",
		RunE:  runServe,
	}

	rolloverCmd := &cobra.Command{
		Use:   "rollover [year]",
		Short: "Reset season dates and blackouts for a new season",
		Long: "rollover previews (or with --apply, writes) a new season window " +
			"and the school-vacation blackout dates for the given year. " +
			"Recurring practice rules are kept; dated modifications are cleared.",
		Args: cobra.MaximumNArgs(1),
		RunE: runRollover,
	}
	rolloverCmd.Flags().BoolVar(&applyRoll, "apply", false, "write the rolled config back to disk")
	rolloverCmd.Flags().BoolVar(&keepAdhoc, "keep-adhoc", false, "keep ad-hoc practice entries")

	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "List the teams the current config would track",
		RunE:  runDiscover,
	}

	root.AddCommand(scrapeCmd, serveCmd, rolloverCmd, discoverCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	if token := os.Getenv("NTFY_TOKEN"); token != "" {
		cfg.Notify.Token = token
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	sum, err := pipeline.Run(ctx, cfg, pipeline.Options{
		DryRun:    dryRun,
		OutputDir: outputDir,
		BaseURL:   baseURL,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d teams, %d games, %d practices, %d calendars\n",
		sum.Teams, sum.Games, sum.Practices, len(sum.Calendars))
	fmt.Fprintf(cmd.OutOrStdout(), "changes: %d new, %d deleted, %d modified\n",
		len(sum.Changes.New), len(sum.Changes.Deleted), len(sum.Changes.Modified))
	return nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	srv := web.NewServer(cfg, func(ctx context.Context) error {
		_, err := pipeline.Run(ctx, cfg, pipeline.Options{})
		return err
	})
	return srv.Start(ctx)
}

func runRollover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	year := time.Now().Year() + 1
	if len(args) == 1 {
		year, err = strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("bad year %q: %w", args[0], err)
		}
	}

	rollover.Apply(cfg, year, keepAdhoc)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "season %d: %s through %s\n", year, cfg.Season.Start, cfg.Season.End)
	for _, b := range cfg.Season.Blackouts {
		fmt.Fprintf(out, "  blackout %s to %s: %s\n", b.Start, b.End, b.Reason)
	}

	if !applyRoll {
		fmt.Fprintln(out, "preview only; re-run with --apply to write")
		return nil
	}
	if err := cfg.Save(configPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", configPath)
	return nil
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("bad timezone %q: %w", cfg.Timezone, err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	teams, _ := fetch.DiscoverAndFetch(ctx, fetch.NewClient(0), cfg, loc)
	if len(teams) == 0 {
		return fmt.Errorf("no teams discovered in any league")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "season %s\n", fetch.Season(time.Now().In(loc)))
	for _, tc := range teams {
		fmt.Fprintf(out, "  %-40s %s team #%s\n", tc.Name, tc.League.Name, tc.TeamNo)
	}
	return nil
}
