package xclient

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"tweetgate/internal/model"
)

// SearchParams selects recent statuses for one search poll.
type SearchParams struct {
	Query    string
	Language string
	SinceID  string
	Count    int
}

// Search returns recent statuses matching p, newest first.
func (c *HTTPClient) Search(ctx context.Context, p SearchParams) ([]model.RawTweet, error) {
	if p.Query == "" {
		return nil, errors.New("empty search query")
	}
	params := map[string]string{
		"q":           p.Query,
		"result_type": "recent",
		"count":       strconv.Itoa(clamp(p.Count, 1, 100)),
		"tweet_mode":  "extended",
	}
	if p.Language != "" {
		params["lang"] = p.Language
	}
	if p.SinceID != "" {
		params["since_id"] = p.SinceID
	}
	var raw struct {
		Statuses []apiTweet `json:"statuses"`
	}
	if err := c.get(ctx, "/search/tweets.json", params, &raw); err != nil {
		return nil, err
	}
	return rawTweets(raw.Statuses), nil
}

// Friends returns accounts that screenName follows.
func (c *HTTPClient) Friends(ctx context.Context, screenName string, limit int) ([]model.Account, error) {
	return c.users(ctx, "/friends/list.json", map[string]string{
		"screen_name": screenName,
		"count":       strconv.Itoa(clamp(limit, 1, 200)),
		"skip_status": "true",
	})
}

// Followers returns accounts following screenName, most recent first.
func (c *HTTPClient) Followers(ctx context.Context, screenName string, limit int) ([]model.Account, error) {
	return c.users(ctx, "/followers/list.json", map[string]string{
		"screen_name": screenName,
		"count":       strconv.Itoa(clamp(limit, 1, 200)),
		"skip_status": "true",
	})
}

// ListMembers returns the members of a list.
func (c *HTTPClient) ListMembers(ctx context.Context, listID string, limit int) ([]model.Account, error) {
	if listID == "" {
		return nil, errors.New("empty list id")
	}
	return c.users(ctx, "/lists/members.json", map[string]string{
		"list_id":     listID,
		"count":       strconv.Itoa(clamp(limit, 1, 5000)),
		"skip_status": "true",
	})
}

func (c *HTTPClient) users(ctx context.Context, path string, params map[string]string) ([]model.Account, error) {
	var raw struct {
		Users []apiUser `json:"users"`
	}
	if err := c.get(ctx, path, params, &raw); err != nil {
		return nil, err
	}
	return accounts(raw.Users), nil
}

// FollowerIDs returns the ids of accounts following screenName.
func (c *HTTPClient) FollowerIDs(ctx context.Context, screenName string) ([]string, error) {
	var raw struct {
		IDs []string `json:"ids"`
	}
	err := c.get(ctx, "/followers/ids.json", map[string]string{
		"screen_name":   screenName,
		"stringify_ids": "true",
		"count":         "5000",
	}, &raw)
	if err != nil {
		return nil, err
	}
	return raw.IDs, nil
}

// Mentions returns statuses mentioning the authenticated account.
func (c *HTTPClient) Mentions(ctx context.Context, sinceID string, limit int) ([]model.RawTweet, error) {
	params := map[string]string{
		"count":      strconv.Itoa(clamp(limit, 1, 200)),
		"tweet_mode": "extended",
	}
	if sinceID != "" {
		params["since_id"] = sinceID
	}
	var raw []apiTweet
	if err := c.get(ctx, "/statuses/mentions_timeline.json", params, &raw); err != nil {
		return nil, err
	}
	return rawTweets(raw), nil
}

type created struct {
	IDStr string `json:"id_str"`
}

// Retweet reposts a status and returns the id of the retweet.
func (c *HTTPClient) Retweet(ctx context.Context, id string) (string, error) {
	var out created
	if err := c.post(ctx, "/statuses/retweet/"+url.PathEscape(id)+".json", map[string]string{}, &out); err != nil {
		return "", err
	}
	return out.IDStr, nil
}

// Quote posts text with statusURL attached as a quoted status.
func (c *HTTPClient) Quote(ctx context.Context, statusURL, text string) (string, error) {
	var out created
	err := c.post(ctx, "/statuses/update.json", map[string]string{
		"status":         text,
		"attachment_url": statusURL,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.IDStr, nil
}

// Like favorites a status.
func (c *HTTPClient) Like(ctx context.Context, id string) error {
	return c.post(ctx, "/favorites/create.json", map[string]string{"id": id}, nil)
}

// DirectMessage sends text to a user and returns the event id.
func (c *HTTPClient) DirectMessage(ctx context.Context, userID, text string) (string, error) {
	body := map[string]any{
		"event": map[string]any{
			"type": "message_create",
			"message_create": map[string]any{
				"target":       map[string]string{"recipient_id": userID},
				"message_data": map[string]string{"text": text},
			},
		},
	}
	var out struct {
		Event struct {
			ID string `json:"id"`
		} `json:"event"`
	}
	if err := c.postJSON(ctx, "/direct_messages/events/new.json", body, &out); err != nil {
		return "", err
	}
	return out.Event.ID, nil
}
