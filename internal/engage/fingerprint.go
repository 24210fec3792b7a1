package engage

import (
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/purell"
	"github.com/spaolacci/murmur3"
)

var trackingParams = []string{
	"fbclid",
	"gclid",
	"igshid",
	"mc_eid",
	"mkt_tok",
	"msclkid",
	"ref_src",
	"s",
	"utm_campaign",
	"utm_content",
	"utm_id",
	"utm_medium",
	"utm_source",
	"utm_term",
}

// NormalizeLink canonicalizes a link target so that trivially different URLs
// of the same page compare equal. The result may not be directly fetchable.
func NormalizeLink(raw string) string {
	clean, err := purell.NormalizeURLString(raw, purell.FlagsUsuallySafeGreedy|purell.FlagRemoveDirectoryIndex|purell.FlagRemoveFragment|purell.FlagRemoveDuplicateSlashes|purell.FlagRemoveWWW|purell.FlagSortQuery)
	if err != nil {
		return raw
	}
	u, err := url.Parse(clean)
	if err != nil || u.RawQuery == "" {
		return clean
	}
	params := u.Query()
	for _, p := range trackingParams {
		params.Del(p)
	}
	u.RawQuery = params.Encode()
	return u.String()
}

// LinkFingerprint returns the dedup fingerprint of a link target.
func LinkFingerprint(raw string) string {
	return fmt.Sprintf("link:%016x", murmur3.Sum64([]byte(NormalizeLink(raw))))
}

// StatusFingerprint identifies a tweet by id.
func StatusFingerprint(id string) string { return "status:" + id }

// LikeFingerprint identifies a like of a tweet.
func LikeFingerprint(id string) string { return "like:" + id }

// GreetFingerprint identifies a greeting sent to an account.
func GreetFingerprint(userID string) string { return "greet:" + userID }

// LinkFingerprints maps every link to its fingerprint, keeping order.
func LinkFingerprints(links []string) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, LinkFingerprint(l))
	}
	return out
}
