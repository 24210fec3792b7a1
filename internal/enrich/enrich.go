// Package enrich derives the normalized fields every filtering decision is
// based on. Enrich reads the registries but never writes to them, and never
// modifies the raw tweet it was given.
package enrich

import (
	"net/url"
	"regexp"
	"slices"
	"strings"

	"tweetgate/internal/keyword"
	"tweetgate/internal/model"
	"tweetgate/internal/sentiment"
)

// Reputation is the read side of the reputation registry.
type Reputation interface {
	IsFriend(handle string) bool
	IsBlacklisted(handle string) bool
}

// Quota is the read side of the quota budget.
type Quota interface {
	RemainingForAccount(handle string) bool
}

// Options wires the enricher. Nil matchers match nothing.
type Options struct {
	Track     *keyword.Matcher
	MuteTweet *keyword.Matcher
	MuteLink  *keyword.Matcher
	MuteUser  *keyword.Matcher

	Reputation Reputation
	Quota      Quota
	Scorer     sentiment.Scorer
	Rater      sentiment.Rater
}

type Enricher struct {
	opts Options
}

func New(opts Options) *Enricher {
	return &Enricher{opts: opts}
}

var hashtagRe = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_&])#([\p{L}\p{N}_]+)`)

// platformHosts serve the platform's own status pages.
var platformHosts = map[string]bool{
	"twitter.com":        true,
	"www.twitter.com":    true,
	"mobile.twitter.com": true,
	"x.com":              true,
	"www.x.com":          true,
	"mobile.x.com":       true,
}

// Enrich builds the annotated view of raw.
func (e *Enricher) Enrich(raw model.RawTweet) model.Item {
	raw = cloneRaw(raw)
	text := FullText(raw)
	links := Links(raw.URLs)

	item := model.Item{
		Raw:             raw,
		FullText:        text,
		IsRepost:        raw.RetweetedStatusID != nil || strings.HasPrefix(raw.Text, "RT ") || strings.HasPrefix(text, "RT "),
		IsReply:         raw.InReplyToStatusID != nil,
		HashtagCount:    len(raw.Hashtags),
		TextHashtags:    TextHashtags(text),
		Links:           links,
		TrackMatches:    e.opts.Track.Match(text),
		MuteMatches:     e.opts.MuteTweet.Match(text),
		MuteLinkMatches: e.opts.MuteLink.MatchAny(links),
	}
	if e.opts.Scorer != nil {
		item.Sentiment = e.opts.Rater.Rate(e.opts.Scorer.Comparative(text))
	}
	item.Author = e.author(raw.Author)
	return item
}

func (e *Enricher) author(a model.Account) model.AuthorView {
	v := model.AuthorView{Account: a}
	if e.opts.Reputation != nil {
		v.IsFriend = e.opts.Reputation.IsFriend(a.Handle)
		v.IsBlacklisted = e.opts.Reputation.IsBlacklisted(a.Handle)
	}
	if e.opts.Quota != nil {
		v.QuotaExceeded = !e.opts.Quota.RemainingForAccount(a.Handle)
	}
	v.MuteMatches = e.opts.MuteUser.Match(a.Description)
	v.IsMuted = len(v.MuteMatches) > 0
	return v
}

// FullText picks the most complete body available: the extended text of a
// truncated tweet, then an explicit full text, then the short text.
func FullText(raw model.RawTweet) string {
	if raw.Truncated && raw.ExtendedText != nil {
		return *raw.ExtendedText
	}
	if raw.FullText != nil {
		return *raw.FullText
	}
	return raw.Text
}

// Links returns the expanded outbound links, skipping links to the platform's
// own status pages (quoted or retweeted tweets).
func Links(entities []model.URLEntity) []string {
	out := []string{}
	for _, u := range entities {
		target := u.ExpandedURL
		if target == "" {
			target = u.URL
		}
		if target == "" || IsStatusLink(target) {
			continue
		}
		out = append(out, target)
	}
	return out
}

// IsStatusLink reports whether link points at a status page of the platform.
func IsStatusLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return platformHosts[strings.ToLower(u.Hostname())] && strings.Contains(u.Path, "/status/")
}

// TextHashtags scans text for #hashtags.
func TextHashtags(text string) []string {
	out := []string{}
	for _, m := range hashtagRe.FindAllStringSubmatch(text, -1) {
		out = append(out, "#"+m[1])
	}
	return out
}

func cloneRaw(raw model.RawTweet) model.RawTweet {
	raw.Hashtags = slices.Clone(raw.Hashtags)
	raw.URLs = slices.Clone(raw.URLs)
	raw.ExtendedText = clonePtr(raw.ExtendedText)
	raw.FullText = clonePtr(raw.FullText)
	raw.InReplyToStatusID = clonePtr(raw.InReplyToStatusID)
	raw.RetweetedStatusID = clonePtr(raw.RetweetedStatusID)
	return raw
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
