package xclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetgate/internal/model"
)

// helper to create client pointed at a test server
func newTestClient(ts *httptest.Server) *HTTPClient {
	c := NewHTTPClient(Credentials{ConsumerKey: "ck", ConsumerSecret: "cs", AccessToken: "at", AccessSecret: "as"})
	c.maxAttempts = 3
	c.baseBackoff = 10 * time.Millisecond
	c.httpClient = ts.Client()
	c.baseURL = ts.URL
	return c
}

func TestDoWithRetryHandles429(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/test", nil)
	resp, err := c.doWithRetry(context.Background(), req, "/test")
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if attempts < 2 {
		t.Fatalf("expected at least 2 attempts, got %d", attempts)
	}
}

func TestPersistent429IsRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts).Mentions(context.Background(), "", 20)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestWritesAreNotRetried(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).Retweet(context.Background(), "1")
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}

func TestAlreadyRetweetedIsDuplicate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":[{"code":327,"message":"You have already retweeted this Tweet."}]}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts).Retweet(context.Background(), "1")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "already retweeted")
}

func TestSearchDecodesStatuses(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/tweets.json" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "#golang" || q.Get("since_id") != "99" || q.Get("lang") != "en" || q.Get("tweet_mode") != "extended" {
			t.Fatalf("unexpected query %v", q)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "OAuth ") {
			t.Fatalf("missing OAuth header")
		}
		_, _ = w.Write([]byte(`{"statuses":[
			{"id_str":"100","created_at":"Wed Oct 10 20:19:24 +0000 2018","full_text":"RT check https://t.co/x #go",
			 "lang":"en","in_reply_to_status_id_str":null,
			 "user":{"id_str":"7","screen_name":"gopher","description":"builds things","followers_count":120,"friends_count":80,"statuses_count":900,"verified":false},
			 "entities":{"hashtags":[{"text":"go"}],"urls":[{"url":"https://t.co/x","expanded_url":"https://go.dev/blog"}]},
			 "retweeted_status":{"id_str":"50"}},
			{"id_str":"101","created_at":"Wed Oct 10 20:20:00 +0000 2018","text":"short…","truncated":true,"lang":"en",
			 "in_reply_to_status_id_str":"100","user":{"id_str":"8","screen_name":"other"},
			 "entities":{"hashtags":[],"urls":[]},
			 "extended_tweet":{"full_text":"short but actually long","entities":{"hashtags":[{"text":"a"},{"text":"b"}],"urls":[]}}}
		]}`))
	}))
	defer ts.Close()

	got, err := newTestClient(ts).Search(context.Background(), SearchParams{Query: "#golang", Language: "en", SinceID: "99", Count: 50})
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "100", first.ID)
	assert.Equal(t, "gopher", first.Author.Handle)
	assert.Equal(t, 80, first.Author.FollowingCount)
	assert.Equal(t, 900, first.Author.TweetCount)
	require.NotNil(t, first.FullText)
	assert.Equal(t, "RT check https://t.co/x #go", *first.FullText)
	assert.Equal(t, []string{"go"}, first.Hashtags)
	assert.Equal(t, []model.URLEntity{{URL: "https://t.co/x", ExpandedURL: "https://go.dev/blog"}}, first.URLs)
	require.NotNil(t, first.RetweetedStatusID)
	assert.Equal(t, "50", *first.RetweetedStatusID)
	assert.Nil(t, first.InReplyToStatusID)
	assert.Equal(t, 2018, first.CreatedAt.Year())

	second := got[1]
	assert.True(t, second.Truncated)
	require.NotNil(t, second.ExtendedText)
	assert.Equal(t, "short but actually long", *second.ExtendedText)
	assert.Equal(t, []string{"a", "b"}, second.Hashtags)
	require.NotNil(t, second.InReplyToStatusID)
}

func TestSearchRequiresQuery(t *testing.T) {
	c := NewHTTPClient(Credentials{})
	_, err := c.Search(context.Background(), SearchParams{})
	assert.Error(t, err)
}

func TestQuoteSendsSignedForm(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "https://twitter.com/gopher/status/100", r.PostForm.Get("attachment_url"))
		assert.Equal(t, "🟩🟩🟩⬜⬜", r.PostForm.Get("status"))
		assert.Contains(t, r.Header.Get("Authorization"), `oauth_signature="`)
		_, _ = w.Write([]byte(`{"id_str":"200"}`))
	}))
	defer ts.Close()

	exec := NewExecutor(newTestClient(ts))
	item := &model.Item{Raw: model.RawTweet{ID: "100", Author: model.Account{Handle: "gopher"}}}
	v := model.Act(model.ActionQuote, item)
	v.Commentary = "🟩🟩🟩⬜⬜"
	id, err := exec.Execute(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, "200", id)
}

func TestGreetSendsDirectMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/direct_messages/events/new.json", r.URL.Path)
		var body struct {
			Event struct {
				MessageCreate struct {
					Target struct {
						RecipientID string `json:"recipient_id"`
					} `json:"target"`
					MessageData struct {
						Text string `json:"text"`
					} `json:"message_data"`
				} `json:"message_create"`
			} `json:"event"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "42", body.Event.MessageCreate.Target.RecipientID)
		assert.Equal(t, "thanks for following", body.Event.MessageCreate.MessageData.Text)
		_, _ = w.Write([]byte(`{"event":{"id":"e1"}}`))
	}))
	defer ts.Close()

	exec := NewExecutor(newTestClient(ts))
	v := model.Act(model.ActionGreet, &model.Item{Author: model.AuthorView{Account: model.Account{ID: "42"}}})
	v.Commentary = "thanks for following"
	id, err := exec.Execute(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, "e1", id)
}

func TestFollowerIDsAndLike(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/followers/ids.json":
			assert.Equal(t, "true", r.URL.Query().Get("stringify_ids"))
			_, _ = w.Write([]byte(`{"ids":["1","2"]}`))
		case "/favorites/create.json":
			_ = r.ParseForm()
			assert.Equal(t, "9", r.PostForm.Get("id"))
			_, _ = w.Write([]byte(`{"id_str":"9"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	c := newTestClient(ts)
	ids, err := c.FollowerIDs(context.Background(), "me")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)
	require.NoError(t, c.Like(context.Background(), "9"))
}

func TestSignatureMatchesPublishedExample(t *testing.T) {
	c := NewHTTPClient(Credentials{
		ConsumerSecret: "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
		AccessSecret:   "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
	})
	u, _ := url.Parse("https://api.twitter.com/1.1/statuses/update.json")
	oauth := map[string]string{
		"oauth_consumer_key":     "xvz1evFS4wEEPTGEFPHBog",
		"oauth_nonce":            "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg",
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        "1318622958",
		"oauth_token":            "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
		"oauth_version":          "1.0",
	}
	params := map[string]string{
		"include_entities": "true",
		"status":           "Hello Ladies + Gentlemen, a signed OAuth request!",
	}
	assert.Equal(t, "hCtSmYh+iHYCEqBWrE7C7hYmtUk=", c.signature(http.MethodPost, u, oauth, params))
}
