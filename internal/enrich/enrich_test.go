package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetgate/internal/engage"
	"tweetgate/internal/keyword"
	"tweetgate/internal/model"
	"tweetgate/internal/reputation"
	"tweetgate/internal/sentiment"
)

func strp(s string) *string { return &s }

func newEnricher(reg *reputation.Registry, budget *engage.Budget) *Enricher {
	return New(Options{
		Track:      keyword.NewMatcher([]string{"cybersec", "hacking"}),
		MuteTweet:  keyword.NewMatcher([]string{"giveaway"}),
		MuteLink:   keyword.NewMatcher([]string{"spam.example"}),
		MuteUser:   keyword.NewMatcher([]string{"crypto"}),
		Reputation: reg,
		Quota:      budget,
		Scorer:     sentiment.NewLexicon(nil),
		Rater:      sentiment.NewRater(5, sentiment.Glyphs{}),
	})
}

func TestFullTextPrecedence(t *testing.T) {
	raw := model.RawTweet{Text: "short…", Truncated: true, ExtendedText: strp("extended body"), FullText: strp("full body")}
	assert.Equal(t, "extended body", FullText(raw))

	raw.Truncated = false
	assert.Equal(t, "full body", FullText(raw))

	// truncated but the extended field is missing: fall back, never fail
	raw = model.RawTweet{Text: "short…", Truncated: true, FullText: strp("full body")}
	assert.Equal(t, "full body", FullText(raw))

	raw = model.RawTweet{Text: "short…", Truncated: true}
	assert.Equal(t, "short…", FullText(raw))
}

func TestRepostDetection(t *testing.T) {
	e := newEnricher(reputation.NewRegistry(), engage.NewBudget(engage.BudgetConfig{PerAccountHourly: engage.Unlimited, GlobalHourly: engage.Unlimited}))
	assert.True(t, e.Enrich(model.RawTweet{Text: "RT @x: hacking news"}).IsRepost)
	assert.True(t, e.Enrich(model.RawTweet{Text: "hacking news", RetweetedStatusID: strp("9")}).IsRepost)
	assert.False(t, e.Enrich(model.RawTweet{Text: "ART @x"}).IsRepost)
	assert.True(t, e.Enrich(model.RawTweet{Text: "x", InReplyToStatusID: strp("1")}).IsReply)
}

func TestLinksSkipStatusPages(t *testing.T) {
	links := Links([]model.URLEntity{
		{URL: "https://t.co/a", ExpandedURL: "https://example.com/article"},
		{URL: "https://t.co/b", ExpandedURL: "https://twitter.com/someone/status/123"},
		{URL: "https://t.co/c", ExpandedURL: "https://x.com/i/web/status/456"},
		{URL: "https://t.co/d"},
		{URL: "https://t.co/e", ExpandedURL: "https://twitter.com/someone"},
	})
	assert.Equal(t, []string{"https://example.com/article", "https://t.co/d", "https://twitter.com/someone"}, links)
}

func TestTextHashtags(t *testing.T) {
	assert.Equal(t, []string{"#go", "#infosec"}, TextHashtags("#go is fun, see #infosec but not a#b or &#123"))
	assert.Empty(t, TextHashtags("no tags"))
}

func TestEnrichDerivedFields(t *testing.T) {
	reg := reputation.NewRegistry()
	reg.ReplaceWhitelist([]model.Account{{Handle: "friend"}})
	reg.ReplaceBlacklist([]model.Account{{Handle: "banned"}})
	budget := engage.NewBudget(engage.BudgetConfig{PerAccountHourly: 1, GlobalHourly: engage.Unlimited})
	budget.RecordAction("busy")
	e := newEnricher(reg, budget)

	raw := model.RawTweet{
		ID:       "1",
		Author:   model.Account{Handle: "friend", Description: "Crypto enthusiast"},
		Text:     "Great #hacking giveaway https://t.co/x",
		Hashtags: []string{"hacking"},
		URLs:     []model.URLEntity{{URL: "https://t.co/x", ExpandedURL: "https://spam.example/win"}},
	}
	item := e.Enrich(raw)
	assert.True(t, item.Author.IsFriend)
	assert.False(t, item.Author.IsBlacklisted)
	assert.False(t, item.Author.QuotaExceeded)
	assert.True(t, item.Author.IsMuted)
	assert.Equal(t, []string{"crypto"}, item.Author.MuteMatches)
	assert.Equal(t, 1, item.HashtagCount)
	assert.Equal(t, []string{"#hacking"}, item.TextHashtags)
	assert.Equal(t, []string{"hacking"}, item.TrackMatches)
	assert.Equal(t, []string{"giveaway"}, item.MuteMatches)
	assert.Equal(t, []string{"spam.example"}, item.MuteLinkMatches)
	assert.Greater(t, item.Sentiment.Value, 0)

	busy := e.Enrich(model.RawTweet{Author: model.Account{Handle: "busy"}})
	assert.True(t, busy.Author.QuotaExceeded)
	banned := e.Enrich(model.RawTweet{Author: model.Account{Handle: "banned"}})
	assert.True(t, banned.Author.IsBlacklisted)
}

func TestEnrichIsIdempotentAndDoesNotAlias(t *testing.T) {
	e := newEnricher(reputation.NewRegistry(), engage.NewBudget(engage.BudgetConfig{PerAccountHourly: engage.Unlimited, GlobalHourly: engage.Unlimited}))
	raw := model.RawTweet{
		ID:           "7",
		Text:         "cut",
		Truncated:    true,
		ExtendedText: strp("CyberSec roundup #news"),
		Hashtags:     []string{"news"},
		URLs:         []model.URLEntity{{ExpandedURL: "https://example.com"}},
	}
	first := e.Enrich(raw)
	second := e.Enrich(raw)
	require.Equal(t, first, second)

	raw.Hashtags[0] = "changed"
	*raw.ExtendedText = "changed"
	assert.Equal(t, "news", first.Raw.Hashtags[0])
	assert.Equal(t, "CyberSec roundup #news", first.FullText)
	assert.Equal(t, "CyberSec roundup #news", *first.Raw.ExtendedText)
}

func TestEnrichWithoutCollaborators(t *testing.T) {
	item := New(Options{}).Enrich(model.RawTweet{Text: "anything"})
	assert.Empty(t, item.TrackMatches)
	assert.False(t, item.Author.IsFriend)
	assert.Equal(t, 0, item.Sentiment.Value)
}
