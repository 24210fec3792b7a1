// Package bot wires the decision engine to the dispatcher. A Bot owns all
// process-wide state: reputation snapshots, the quota budget and the dedup
// cache.
package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"tweetgate/internal/config"
	"tweetgate/internal/dispatch"
	"tweetgate/internal/engage"
	"tweetgate/internal/enrich"
	"tweetgate/internal/keyword"
	"tweetgate/internal/metrics"
	"tweetgate/internal/model"
	"tweetgate/internal/reputation"
	"tweetgate/internal/sentiment"
	"tweetgate/internal/util"
)

type Options struct {
	Config   config.Config
	Executor dispatch.Executor
	Journal  dispatch.Journal
	// Scorer overrides the lexicon built from the rating config.
	Scorer sentiment.Scorer
	Clock  clockwork.Clock
	Logger *slog.Logger
	// DryRun evaluates items without dispatching anything.
	DryRun bool
}

type Bot struct {
	cfg      config.Config
	registry *reputation.Registry
	budget   *engage.Budget
	dedup    *engage.Dedup
	enricher *enrich.Enricher
	gate     *engage.Gate
	disp     *dispatch.Dispatcher
	log      *slog.Logger
	dryRun   bool
}

func New(opts Options) *Bot {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	scorer := opts.Scorer
	if scorer == nil {
		scorer = sentiment.NewLexicon(lexicon(cfg.Rating.Lexicon))
	}
	rater := sentiment.NewRater(cfg.Rating.Scale, sentiment.Glyphs{
		Positive: cfg.Rating.Positive,
		Negative: cfg.Rating.Negative,
		Neutral:  cfg.Rating.Neutral,
	})

	b := &Bot{
		cfg:      cfg,
		registry: reputation.NewRegistry(),
		budget: engage.NewBudget(engage.BudgetConfig{
			PerAccountHourly: cfg.Quota.HourlyUser,
			GlobalHourly:     cfg.Quota.HourlyGlobal,
		}),
		dedup:  engage.NewDedup(),
		log:    log,
		dryRun: opts.DryRun,
	}
	f := cfg.Filters
	track := keyword.NewMatcher(f.Track)
	muteTweet := keyword.NewMatcher(f.MuteTweetKeywords)
	muteLink := keyword.NewMatcher(f.MuteLinkDomains)
	muteUser := keyword.NewMatcher(f.MuteUserKeywords)
	if track.Len() == 0 {
		log.Warn("no track keywords configured; every item fails the keyword gate")
	}
	log.Debug("filters loaded",
		"track", track.Keywords(),
		"mute_tweet", muteTweet.Len(),
		"mute_link", muteLink.Len(),
		"mute_user", muteUser.Len())
	b.enricher = enrich.New(enrich.Options{
		Track:      track,
		MuteTweet:  muteTweet,
		MuteLink:   muteLink,
		MuteUser:   muteUser,
		Reputation: b.registry,
		Quota:      b.budget,
		Scorer:     scorer,
		Rater:      rater,
	})
	b.gate = engage.NewGate(engage.GateConfig{
		MinFollowers:   f.MinFollowers,
		MaxFriends:     f.MaxFriends,
		MinPosts:       f.MinUserPosts,
		MaxPosts:       f.MaxUserPosts,
		MaxHashtags:    f.MaxTweetHashtags,
		FilterReposts:  f.FilterReposts,
		FilterReplies:  f.FilterReplies,
		Language:       f.Language,
		HashtagsFilter: f.HashtagsFilter,
		RateMode:       cfg.RateMode(),
	}, b.dedup)
	b.disp = dispatch.New(dispatch.Options{
		Executor: opts.Executor,
		Quota:    b.budget,
		Dedup:    b.dedup,
		Journal:  opts.Journal,
		Clock:    opts.Clock,
		Logger:   log,
	})
	return b
}

// lexicon overlays configured word scores on the default list.
func lexicon(extra map[string]int) map[string]float64 {
	out := make(map[string]float64, len(sentiment.DefaultLexicon)+len(extra))
	for w, s := range sentiment.DefaultLexicon {
		out[w] = s
	}
	for w, s := range extra {
		out[strings.ToLower(w)] = float64(s)
	}
	return out
}

// Evaluate enriches raw and decides what to do with it. It changes no state.
func (b *Bot) Evaluate(raw model.RawTweet) model.Verdict {
	item := b.enricher.Enrich(raw)
	return b.gate.Evaluate(&item)
}

// Process evaluates raw and dispatches the verdict without waiting for the
// outcome.
func (b *Bot) Process(ctx context.Context, raw model.RawTweet) *dispatch.Task {
	v := b.Evaluate(raw)
	metrics.ItemsProcessed.Inc()
	b.logVerdict(v)
	return b.dispatch(ctx, v)
}

func (b *Bot) logVerdict(v model.Verdict) {
	item := v.Item
	attrs := []any{
		"tweet", item.Raw.ID,
		"author", item.Author.Handle,
		"friend", item.Author.IsFriend,
		"track", strings.Join(item.TrackMatches, ","),
		"text", util.Preview(item.FullText),
	}
	if !v.Accepted() {
		metrics.IncVerdict("reject", string(v.Reason))
		b.log.Debug("item rejected", append(attrs, "reason", string(v.Reason))...)
		return
	}
	metrics.IncVerdict("accept", v.Kind.String())
	if v.Kind == model.ActionQuote {
		attrs = append(attrs, "rating", item.Sentiment.Value, "bar", item.Sentiment.TextBar)
	}
	b.log.Info("item accepted", append(attrs, "action", v.Kind.String())...)
}

func (b *Bot) dispatch(ctx context.Context, v model.Verdict) *dispatch.Task {
	metrics.Fingerprints.Set(float64(b.dedup.Len()))
	if b.dryRun || !v.Accepted() {
		return dispatch.Resolved(dispatch.Result{Verdict: v, Status: dispatch.StatusRejected, Reason: v.Reason})
	}
	return b.disp.Dispatch(ctx, v)
}

// Like favorites a status that mentioned the bot. Likes are not gated by the
// filters and do not consume quota.
func (b *Bot) Like(ctx context.Context, raw model.RawTweet) *dispatch.Task {
	item := b.enricher.Enrich(raw)
	fps := []string{engage.LikeFingerprint(raw.ID)}
	switch {
	case item.Author.IsBlacklisted:
		return b.dispatch(ctx, model.Reject(model.ReasonUserGate, &item))
	case b.dedup.IsDuplicate(fps):
		return b.dispatch(ctx, model.Reject(model.ReasonDuplicate, &item))
	}
	v := model.Act(model.ActionLike, &item)
	v.Fingerprints = fps
	return b.dispatch(ctx, v)
}

// Greet sends the configured greeting to a new follower.
func (b *Bot) Greet(ctx context.Context, follower model.Account) *dispatch.Task {
	item := &model.Item{Author: model.AuthorView{
		Account:       follower,
		IsBlacklisted: b.registry.IsBlacklistedAccount(follower),
	}}
	fps := []string{engage.GreetFingerprint(follower.ID)}
	switch {
	case b.cfg.Bot.Greeting == "" || item.Author.IsBlacklisted:
		return b.dispatch(ctx, model.Reject(model.ReasonUserGate, item))
	case b.dedup.IsDuplicate(fps):
		return b.dispatch(ctx, model.Reject(model.ReasonDuplicate, item))
	}
	v := model.Act(model.ActionGreet, item)
	if v.Target == "" {
		v.Target = follower.ID
	}
	v.Fingerprints = fps
	v.Commentary = b.cfg.Bot.Greeting
	return b.dispatch(ctx, v)
}

// Rollover starts a new quota window.
func (b *Bot) Rollover() {
	b.budget.Rollover()
	metrics.Rollovers.Inc()
	b.log.Info("quota window rolled over")
}

// ReplaceWhitelist swaps in a new friends snapshot.
func (b *Bot) ReplaceWhitelist(accounts []model.Account) {
	b.registry.ReplaceWhitelist(accounts)
	metrics.ListSize.WithLabelValues("whitelist").Set(float64(b.registry.Whitelist().Len()))
}

// ReplaceBlacklist swaps in a new blacklist snapshot.
func (b *Bot) ReplaceBlacklist(accounts []model.Account) {
	b.registry.ReplaceBlacklist(accounts)
	metrics.ListSize.WithLabelValues("blacklist").Set(float64(b.registry.Blacklist().Len()))
}

// Wait blocks until in-flight dispatches finished.
func (b *Bot) Wait() { b.disp.Wait() }

func (b *Bot) Budget() *engage.Budget { return b.budget }

func (b *Bot) Dedup() *engage.Dedup { return b.dedup }

func (b *Bot) Registry() *reputation.Registry { return b.registry }
