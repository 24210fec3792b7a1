package xclient

import (
	"time"

	"tweetgate/internal/model"
)

type apiUser struct {
	IDStr          string `json:"id_str"`
	ScreenName     string `json:"screen_name"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	CreatedAt      string `json:"created_at"`
	FollowersCount int    `json:"followers_count"`
	FriendsCount   int    `json:"friends_count"`
	StatusesCount  int    `json:"statuses_count"`
	Verified       bool   `json:"verified"`
}

type apiEntities struct {
	Hashtags []struct {
		Text string `json:"text"`
	} `json:"hashtags"`
	URLs []struct {
		URL         string `json:"url"`
		ExpandedURL string `json:"expanded_url"`
	} `json:"urls"`
}

type apiTweet struct {
	IDStr                string      `json:"id_str"`
	CreatedAt            string      `json:"created_at"`
	Text                 string      `json:"text"`
	FullText             *string     `json:"full_text"`
	Truncated            bool        `json:"truncated"`
	Lang                 string      `json:"lang"`
	InReplyToStatusIDStr *string     `json:"in_reply_to_status_id_str"`
	User                 apiUser     `json:"user"`
	Entities             apiEntities `json:"entities"`
	ExtendedTweet        *struct {
		FullText string      `json:"full_text"`
		Entities apiEntities `json:"entities"`
	} `json:"extended_tweet"`
	RetweetedStatus *struct {
		IDStr string `json:"id_str"`
	} `json:"retweeted_status"`
}

// parseTime reads the v1.1 timestamp layout, e.g. "Mon Jan 02 15:04:05 -0700 2006".
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RubyDate, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func (u apiUser) account() model.Account {
	return model.Account{
		ID:             u.IDStr,
		Handle:         u.ScreenName,
		Name:           u.Name,
		Description:    u.Description,
		CreatedAt:      parseTime(u.CreatedAt),
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FriendsCount,
		TweetCount:     u.StatusesCount,
		Verified:       u.Verified,
	}
}

func (t apiTweet) raw() model.RawTweet {
	r := model.RawTweet{
		ID:                t.IDStr,
		Author:            t.User.account(),
		CreatedAt:         parseTime(t.CreatedAt),
		Language:          t.Lang,
		Text:              t.Text,
		Truncated:         t.Truncated,
		FullText:          t.FullText,
		InReplyToStatusID: t.InReplyToStatusIDStr,
	}
	if r.Text == "" && t.FullText != nil {
		r.Text = *t.FullText
	}
	ent := t.Entities
	if t.ExtendedTweet != nil {
		ext := t.ExtendedTweet.FullText
		r.ExtendedText = &ext
		ent = t.ExtendedTweet.Entities
	}
	for _, h := range ent.Hashtags {
		r.Hashtags = append(r.Hashtags, h.Text)
	}
	for _, u := range ent.URLs {
		r.URLs = append(r.URLs, model.URLEntity{URL: u.URL, ExpandedURL: u.ExpandedURL})
	}
	if t.RetweetedStatus != nil {
		id := t.RetweetedStatus.IDStr
		r.RetweetedStatusID = &id
	}
	return r
}

func rawTweets(in []apiTweet) []model.RawTweet {
	out := make([]model.RawTweet, 0, len(in))
	for _, t := range in {
		out = append(out, t.raw())
	}
	return out
}

func accounts(in []apiUser) []model.Account {
	out := make([]model.Account, 0, len(in))
	for _, u := range in {
		out = append(out, u.account())
	}
	return out
}
