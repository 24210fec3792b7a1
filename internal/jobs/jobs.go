// Package jobs holds the bodies of the periodic tasks: the search poll,
// reputation refreshes, mention likes and follower greetings.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tweetgate/internal/config"
	"tweetgate/internal/dispatch"
	"tweetgate/internal/metrics"
	"tweetgate/internal/model"
	"tweetgate/internal/xclient"
)

const (
	searchCursor   = "search:since_id"
	mentionsCursor = "mentions:since_id"
)

// Client is the part of the platform API the jobs read from.
type Client interface {
	Search(ctx context.Context, p xclient.SearchParams) ([]model.RawTweet, error)
	Friends(ctx context.Context, screenName string, limit int) ([]model.Account, error)
	ListMembers(ctx context.Context, listID string, limit int) ([]model.Account, error)
	Mentions(ctx context.Context, sinceID string, limit int) ([]model.RawTweet, error)
	FollowerIDs(ctx context.Context, screenName string) ([]string, error)
}

// Cursors persists polling positions between runs.
type Cursors interface {
	LoadCursor(ctx context.Context, key string) (string, error)
	SaveCursor(ctx context.Context, key, value string) error
}

// Bot is the coordinating context the jobs feed.
type Bot interface {
	Process(ctx context.Context, raw model.RawTweet) *dispatch.Task
	Like(ctx context.Context, raw model.RawTweet) *dispatch.Task
	Greet(ctx context.Context, follower model.Account) *dispatch.Task
	ReplaceWhitelist(accounts []model.Account)
	ReplaceBlacklist(accounts []model.Account)
}

type Runner struct {
	client  Client
	cursors Cursors
	bot     Bot
	cfg     config.Config
	log     *slog.Logger
	greeter *Greeter
}

func NewRunner(cfg config.Config, client Client, cursors Cursors, bot Bot, log *slog.Logger) (*Runner, error) {
	g, err := NewGreeter(0)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{client: client, cursors: cursors, bot: bot, cfg: cfg, log: log, greeter: g}, nil
}

// Poll fetches statuses newer than the stored search cursor, oldest first,
// and advances the cursor past them.
func (r *Runner) Poll(ctx context.Context) ([]model.RawTweet, error) {
	since, err := r.cursors.LoadCursor(ctx, searchCursor)
	if err != nil {
		return nil, fmt.Errorf("load search cursor: %w", err)
	}
	tweets, err := r.client.Search(ctx, xclient.SearchParams{
		Query:    r.cfg.Filters.SearchQuery,
		Language: r.cfg.Filters.Language,
		SinceID:  since,
		Count:    r.cfg.Bot.SearchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	tweets = oldestFirst(tweets)
	if latest := maxID(since, tweets); latest != since {
		if err := r.cursors.SaveCursor(ctx, searchCursor, latest); err != nil {
			return nil, fmt.Errorf("save search cursor: %w", err)
		}
	}
	return tweets, nil
}

// Search runs one poll and hands every new status to the bot in arrival
// order.
func (r *Runner) Search(ctx context.Context) error {
	tweets, err := r.Poll(ctx)
	if err != nil {
		return err
	}
	for _, t := range tweets {
		r.bot.Process(ctx, t)
	}
	r.log.Debug("search poll", "new", len(tweets))
	return nil
}

// RefreshWhitelist replaces the friends snapshot with the accounts the bot
// follows. On error the previous snapshot stays in place.
func (r *Runner) RefreshWhitelist(ctx context.Context) error {
	accounts, err := r.client.Friends(ctx, r.cfg.Account.Username, 200)
	if err != nil {
		metrics.RefreshErrors.WithLabelValues("whitelist").Inc()
		return fmt.Errorf("refresh whitelist: %w", err)
	}
	r.bot.ReplaceWhitelist(accounts)
	r.log.Info("whitelist refreshed", "accounts", len(accounts))
	return nil
}

// RefreshBlacklist replaces the blacklist with the members of the configured
// list. Without a list id it does nothing.
func (r *Runner) RefreshBlacklist(ctx context.Context) error {
	listID := r.cfg.Filters.BlacklistListID
	if listID == "" {
		return nil
	}
	accounts, err := r.client.ListMembers(ctx, listID, 5000)
	if err != nil {
		metrics.RefreshErrors.WithLabelValues("blacklist").Inc()
		return fmt.Errorf("refresh blacklist: %w", err)
	}
	r.bot.ReplaceBlacklist(accounts)
	r.log.Info("blacklist refreshed", "accounts", len(accounts))
	return nil
}

// LikeMentions likes statuses that mention the bot since the last run.
func (r *Runner) LikeMentions(ctx context.Context) error {
	if !r.cfg.Bot.LikeMentions {
		return nil
	}
	since, err := r.cursors.LoadCursor(ctx, mentionsCursor)
	if err != nil {
		return fmt.Errorf("load mentions cursor: %w", err)
	}
	mentions, err := r.client.Mentions(ctx, since, 200)
	if err != nil {
		return fmt.Errorf("mentions: %w", err)
	}
	for _, m := range oldestFirst(mentions) {
		if strings.EqualFold(m.Author.Handle, r.cfg.Account.Username) {
			continue
		}
		r.bot.Like(ctx, m)
	}
	if latest := maxID(since, mentions); latest != since {
		if err := r.cursors.SaveCursor(ctx, mentionsCursor, latest); err != nil {
			return fmt.Errorf("save mentions cursor: %w", err)
		}
	}
	return nil
}

// GreetFollowers greets accounts that started following since the last run.
// The first run only learns the current followers.
func (r *Runner) GreetFollowers(ctx context.Context) error {
	if r.cfg.Bot.Greeting == "" {
		return nil
	}
	ids, err := r.client.FollowerIDs(ctx, r.cfg.Account.Username)
	if err != nil {
		return fmt.Errorf("follower ids: %w", err)
	}
	fresh := r.greeter.Observe(ids)
	for _, id := range fresh {
		r.bot.Greet(ctx, model.Account{ID: id})
	}
	if len(fresh) > 0 {
		r.log.Info("new followers", "count", len(fresh))
	}
	return nil
}

// oldestFirst reverses the platform's newest-first ordering.
func oldestFirst(in []model.RawTweet) []model.RawTweet {
	out := make([]model.RawTweet, len(in))
	for i, t := range in {
		out[len(in)-1-i] = t
	}
	return out
}

// maxID returns the largest status id among cur and tweets. Ids are decimal
// strings, so longer means larger.
func maxID(cur string, tweets []model.RawTweet) string {
	latest := cur
	for _, t := range tweets {
		if idLess(latest, t.ID) {
			latest = t.ID
		}
	}
	return latest
}

func idLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
