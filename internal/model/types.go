package model

import "time"

// Account is the posting identity attached to a tweet.
// It is fetched fresh with every item and never owned by the engine.
type Account struct {
	ID             string
	Handle         string
	Name           string
	Description    string
	CreatedAt      time.Time
	FollowersCount int
	FollowingCount int
	TweetCount     int
	Verified       bool
}

// URLEntity is a structured link entity as delivered by the platform.
type URLEntity struct {
	URL         string
	ExpandedURL string
}

// RawTweet is a candidate item exactly as the stream source delivered it.
// Optional fields are pointers: nil means the field was absent.
type RawTweet struct {
	ID        string
	Author    Account
	CreatedAt time.Time
	Language  string

	Text      string
	Truncated bool
	// ExtendedText is the long-form body of a truncated tweet.
	ExtendedText *string
	// FullText is set when the source requested extended mode.
	FullText *string

	Hashtags []string
	URLs     []URLEntity

	InReplyToStatusID *string
	RetweetedStatusID *string
}

// AuthorView is the author account plus flags derived once per item from the
// stateful registries.
type AuthorView struct {
	Account
	IsFriend      bool
	IsBlacklisted bool
	QuotaExceeded bool
	IsMuted       bool
	MuteMatches   []string
}

// Item is the enriched, read-only view of a RawTweet.
type Item struct {
	Raw    RawTweet
	Author AuthorView

	FullText     string
	IsRepost     bool
	IsReply      bool
	HashtagCount int
	// TextHashtags are hashtags found by scanning FullText, used only for
	// sanity checks against the structured count.
	TextHashtags []string
	Links        []string

	Sentiment Rating

	TrackMatches    []string
	MuteMatches     []string
	MuteLinkMatches []string
}

// Rating is a sentiment score mapped onto a bounded scale.
type Rating struct {
	Comparative float64
	Value       int
	SymbolicBar string
	TextBar     string
}

// StatusURL returns the canonical permalink of the tweet.
func (t RawTweet) StatusURL() string {
	handle := t.Author.Handle
	if handle == "" {
		handle = "i/web"
	}
	return "https://twitter.com/" + handle + "/status/" + t.ID
}
