package engage

import (
	"strings"

	"tweetgate/internal/model"
)

// GateConfig holds the filter thresholds. Negative maximums are not enforced.
type GateConfig struct {
	MinFollowers   int
	MaxFriends     int
	MinPosts       int
	MaxPosts       int
	MaxHashtags    int
	FilterReposts  bool
	FilterReplies  bool
	Language       string
	HashtagsFilter bool
	RateMode       bool
}

// DuplicateChecker is the read side of the dedup cache.
type DuplicateChecker interface {
	IsDuplicate(fps []string) bool
}

// Gate decides, for one enriched item at a time, whether to act on it and
// how. It keeps no state of its own between items.
type Gate struct {
	cfg   GateConfig
	dedup DuplicateChecker
}

func NewGate(cfg GateConfig, dedup DuplicateChecker) *Gate {
	return &Gate{cfg: cfg, dedup: dedup}
}

// Evaluate runs the user, content and keyword gates in order and picks the
// action for an item that passes all three.
func (g *Gate) Evaluate(item *model.Item) model.Verdict {
	if !g.UserGate(item) {
		return model.Reject(model.ReasonUserGate, item)
	}
	if !g.ContentGate(item) {
		return model.Reject(model.ReasonContentGate, item)
	}
	if !g.KeywordGate(item) {
		return model.Reject(model.ReasonKeywordGate, item)
	}

	status := StatusFingerprint(item.Raw.ID)
	if g.cfg.RateMode && (len(item.Links) == 0 || item.IsReply) {
		fps := []string{status}
		if g.dedup != nil && g.dedup.IsDuplicate(fps) {
			return model.Reject(model.ReasonDuplicate, item)
		}
		v := model.Act(model.ActionQuote, item)
		v.Fingerprints = fps
		v.Commentary = item.Sentiment.SymbolicBar
		return v
	}

	fps := append([]string{status}, LinkFingerprints(item.Links)...)
	if g.dedup != nil && g.dedup.IsDuplicate(fps) {
		return model.Reject(model.ReasonDuplicate, item)
	}
	v := model.Act(model.ActionRepost, item)
	v.Fingerprints = fps
	return v
}

// UserGate admits friends that are neither blacklisted nor over quota, and
// unknown accounts that additionally pass the reputation heuristics.
func (g *Gate) UserGate(item *model.Item) bool {
	a := item.Author
	if a.IsBlacklisted || a.QuotaExceeded {
		return false
	}
	if a.IsFriend {
		return true
	}
	return !a.IsMuted &&
		!a.Verified &&
		a.FollowersCount >= g.cfg.MinFollowers &&
		atMost(a.FollowingCount, g.cfg.MaxFriends) &&
		a.TweetCount >= g.cfg.MinPosts &&
		atMost(a.TweetCount, g.cfg.MaxPosts)
}

// ContentGate checks links, hashtag volume, repost/reply filters and language.
func (g *Gate) ContentGate(item *model.Item) bool {
	if !(item.Author.IsFriend || len(item.Links) > 0 || g.cfg.RateMode) {
		return false
	}
	if !atMost(item.HashtagCount, g.cfg.MaxHashtags) {
		return false
	}
	if g.cfg.FilterReposts && item.IsRepost {
		return false
	}
	if g.cfg.FilterReplies && item.IsReply {
		return false
	}
	return g.cfg.Language == "" || strings.EqualFold(item.Raw.Language, g.cfg.Language)
}

// KeywordGate requires at least one track match and no mute matches.
func (g *Gate) KeywordGate(item *model.Item) bool {
	if len(item.MuteMatches) > 0 || len(item.MuteLinkMatches) > 0 {
		return false
	}
	if len(item.TrackMatches) == 0 || !atMost(len(item.TrackMatches), g.cfg.MaxHashtags) {
		return false
	}
	return !g.cfg.HashtagsFilter || atMost(len(item.TextHashtags), g.cfg.MaxHashtags)
}

func atMost(v, max int) bool { return max < 0 || v <= max }
