package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tweetgate/internal/analytics"
	"tweetgate/internal/bot"
	"tweetgate/internal/cmdlog"
	"tweetgate/internal/config"
	"tweetgate/internal/jobs"
	"tweetgate/internal/logging"
	"tweetgate/internal/metrics"
	"tweetgate/internal/schedule"
	"tweetgate/internal/sentiment"
	"tweetgate/internal/store"
	"tweetgate/internal/theme"
	"tweetgate/internal/util"
	"tweetgate/internal/xclient"
)

const defaultConfigPath = "./tweetgate.yaml"

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	commands := map[string]func(args []string) error{
		"init":      cmdInit,
		"run":       cmdRun,
		"search":    cmdSearch,
		"rate":      cmdRate,
		"followers": cmdFollowers,
		"monitor":   cmdMonitor,
		"schedule":  cmdSchedule,
	}
	f, ok := commands[cmd]
	if !ok {
		printHelp()
		return
	}
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := cmdlog.Run(log, cmd, func() error { return f(os.Args[2:]) }); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printHelp() {
	theme.PrintBanner(os.Stdout)
	fmt.Println("Usage: tweetgate <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./tweetgate.yaml")
	fmt.Println("  run         Run the bot until interrupted")
	fmt.Println("  search      Run one search poll and print verdicts without acting")
	fmt.Println("  rate        Print the rating bars for a text or comparative score")
	fmt.Println("  followers   Print the latest followers of the configured account")
	fmt.Println("  monitor     Show hourly action counts from the journal")
	fmt.Println("  schedule    Show the configured job schedules")
}

// loadConfig reads the config file and builds the configured logger.
func loadConfig(path string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

func newClient(cfg config.Config, log *slog.Logger) *xclient.HTTPClient {
	c := cfg.Credentials
	if c.ConsumerKey == "" || c.AccessToken == "" {
		log.Warn("missing X_CONSUMER_KEY or X_ACCESS_TOKEN; API calls will fail")
	}
	return xclient.NewHTTPClient(xclient.Credentials{
		ConsumerKey:    c.ConsumerKey,
		ConsumerSecret: c.ConsumerSecret,
		AccessToken:    c.AccessToken,
		AccessSecret:   c.AccessSecret,
	})
}

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", defaultConfigPath, "path to write config")
	_ = fs.Parse(args)
	if err := config.Save(*path, config.Default()); err != nil {
		return err
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner(os.Stdout)
	fmt.Println("Config written to:", abs)
	return nil
}

func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	_ = fs.Parse(args)
	cfg, log, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	client := newClient(cfg, log)
	b := bot.New(bot.Options{
		Config:   cfg,
		Executor: xclient.NewExecutor(client),
		Journal:  db,
		Logger:   log,
	})
	runner, err := jobs.NewRunner(cfg, client, db, b, log)
	if err != nil {
		return err
	}

	sched := schedule.New(time.UTC, log)
	for _, j := range []struct {
		name string
		spec string
		job  schedule.Job
	}{
		{"whitelist", cfg.Schedule.Whitelist, runner.RefreshWhitelist},
		{"blacklist", cfg.Schedule.Blacklist, runner.RefreshBlacklist},
		{"search", cfg.Schedule.Search, runner.Search},
		{"mentions", cfg.Schedule.Mentions, runner.LikeMentions},
		{"followers", cfg.Schedule.Followers, runner.GreetFollowers},
		{"rollover", cfg.Schedule.Rollover, func(context.Context) error { b.Rollover(); return nil }},
	} {
		if err := sched.Add(j.name, j.spec, j.job); err != nil {
			return err
		}
	}
	for _, j := range sched.Jobs() {
		log.Info("job scheduled", "job", j.Name, "spec", j.Spec, "next", j.NextRun.Format(time.RFC3339))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// reputation lists must be in place before the first search
	for _, name := range []string{"whitelist", "blacklist"} {
		if err := sched.RunNow(ctx, name); err != nil {
			log.Warn("initial refresh failed", "job", name, "err", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if srv := metrics.NewServer(cfg.Metrics.Addr); srv != nil {
		g.Go(func() error {
			log.Info("metrics listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error { return sched.Run(gctx) })

	log.Info("tweetgate running", "mode", cfg.Bot.Mode, "account", cfg.Account.Username)
	err = g.Wait()
	b.Wait()
	log.Info("tweetgate stopped")
	return err
}

func cmdSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	query := fs.String("q", "", "search query (defaults to filters.searchQuery)")
	_ = fs.Parse(args)
	cfg, log, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *query != "" {
		cfg.Filters.SearchQuery = *query
	}
	client := newClient(cfg, log)
	b := bot.New(bot.Options{Config: cfg, Logger: log, DryRun: true})
	ctx := context.Background()
	if friends, err := client.Friends(ctx, cfg.Account.Username, 200); err == nil {
		b.ReplaceWhitelist(friends)
	} else {
		log.Warn("whitelist unavailable", "err", err)
	}
	tweets, err := client.Search(ctx, xclient.SearchParams{
		Query:    cfg.Filters.SearchQuery,
		Language: cfg.Filters.Language,
		Count:    cfg.Bot.SearchLimit,
	})
	if err != nil {
		return err
	}
	for _, t := range tweets {
		v := b.Evaluate(t)
		outcome := "reject:" + string(v.Reason)
		if v.Accepted() {
			outcome = v.Kind.String()
		}
		fmt.Printf("%-16s @%-16s %s\n", outcome, t.Author.Handle, util.Preview(v.Item.FullText))
		if len(v.Item.TrackMatches) > 0 {
			fmt.Printf("%16s track=%s\n", "", strings.Join(v.Item.TrackMatches, ","))
		}
	}
	return nil
}

func cmdRate(args []string) error {
	fs := flag.NewFlagSet("rate", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path (optional)")
	text := fs.String("text", "", "text to score")
	comparative := fs.Float64("comparative", 0, "comparative score, used when -text is empty")
	_ = fs.Parse(args)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		cfg = config.Default()
	}
	score := *comparative
	if *text != "" {
		score = sentiment.NewLexicon(nil).Comparative(*text)
	}
	rater := sentiment.NewRater(cfg.Rating.Scale, sentiment.Glyphs{
		Positive: cfg.Rating.Positive,
		Negative: cfg.Rating.Negative,
		Neutral:  cfg.Rating.Neutral,
	})
	r := rater.Rate(score)
	fmt.Printf("comparative=%.3f rating=%d\n%s\n%s\n", r.Comparative, r.Value, r.SymbolicBar, r.TextBar)
	return nil
}

func cmdFollowers(args []string) error {
	fs := flag.NewFlagSet("followers", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	limit := fs.Int("limit", 20, "followers to print")
	_ = fs.Parse(args)
	cfg, log, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	followers, err := newClient(cfg, log).Followers(context.Background(), cfg.Account.Username, *limit)
	if err != nil {
		return err
	}
	for _, f := range followers {
		fmt.Printf("@%-16s followers=%d tweets=%d\n", f.Handle, f.FollowersCount, f.TweetCount)
	}
	return nil
}

func cmdMonitor(args []string) error {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	hours := fs.Int("hours", 24, "hours to look back")
	_ = fs.Parse(args)
	cfg, _, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	end := time.Now().UTC()
	actions, err := db.LoadActionsRange(context.Background(), end.Add(-time.Duration(*hours)*time.Hour), end)
	if err != nil {
		return err
	}
	for _, b := range analytics.HourlyActions(actions) {
		fmt.Printf("%s -> %v failed=%d\n", b.Hour.Format("2006-01-02 15:00"), b.ByKind, b.Failed)
	}
	lastHour, err := db.CountActionsWithin(context.Background(), end.Add(-time.Hour), end, "")
	if err != nil {
		return err
	}
	fmt.Printf("successful actions in the last hour: %d\n", lastHour)
	for _, h := range analytics.TopHandles(actions, 5) {
		fmt.Printf("@%s %d\n", h.Handle, h.Count)
	}
	return nil
}

func cmdSchedule(args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	_ = fs.Parse(args)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		cfg = config.Default()
	}
	now := time.Now().UTC()
	s := cfg.Schedule
	for _, j := range [][2]string{
		{"search", s.Search}, {"whitelist", s.Whitelist}, {"blacklist", s.Blacklist},
		{"mentions", s.Mentions}, {"followers", s.Followers}, {"rollover", s.Rollover},
	} {
		if j[1] == "" {
			fmt.Printf("%-10s disabled\n", j[0])
			continue
		}
		next, err := schedule.Next(j[1], now)
		if err != nil {
			return fmt.Errorf("%s: %w", j[0], err)
		}
		fmt.Printf("%-10s %-12s next=%s\n", j[0], j[1], next.Format(time.RFC3339))
	}
	return nil
}
