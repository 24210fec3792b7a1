package xclient

import (
	"context"
	"fmt"

	"tweetgate/internal/model"
	"tweetgate/internal/util"
)

// statusLimit is the platform's maximum status length in characters.
const statusLimit = 280

// Executor performs verdicts against the API.
type Executor struct {
	c *HTTPClient
}

func NewExecutor(c *HTTPClient) *Executor { return &Executor{c: c} }

func (e *Executor) Execute(ctx context.Context, v model.Verdict) (string, error) {
	if v.Item == nil {
		return "", fmt.Errorf("%s: verdict without item", v.Kind)
	}
	raw := v.Item.Raw
	switch v.Kind {
	case model.ActionRepost:
		return e.c.Retweet(ctx, raw.ID)
	case model.ActionQuote:
		return e.c.Quote(ctx, raw.StatusURL(), util.Truncate(v.Commentary, statusLimit))
	case model.ActionLike:
		return raw.ID, e.c.Like(ctx, raw.ID)
	case model.ActionGreet:
		return e.c.DirectMessage(ctx, v.Item.Author.ID, v.Commentary)
	default:
		return "", fmt.Errorf("unsupported action %s", v.Kind)
	}
}
