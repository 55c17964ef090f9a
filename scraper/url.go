package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const searchURLTemplate = "https://www.google.com/maps/search/"

// placeIDPattern matches the opaque feature id embedded in place
// deep-links ("!1s0x<fid>:0x<cid>"). The second hex pair is the place's
// cid; a ?cid= link resolves straight to the place page with its reviews
// tab reachable, which is far more stable than the coordinate form.
var placeIDPattern = regexp.MustCompile(`0x[0-9a-fA-F]+:0x([0-9a-fA-F]+)`)

// trackingParams are stripped during normalization. They carry referral
// state only and occasionally break the consent redirect round-trip.
var trackingParams = []string{"gclid", "fbclid", "ved", "ei", "oq", "sourceid"}

// NormalizeURL canonicalizes a Maps link for scraping:
//   - converts a place-with-coordinates deep-link to a ?cid= link when the
//     opaque id pattern is present,
//   - strips tracking parameters,
//   - ensures the language parameter so dates and labels render Japanese.
//
// The operation is idempotent; unparseable input is returned unchanged.
func NormalizeURL(raw, lang string) string {
	if m := placeIDPattern.FindStringSubmatch(raw); m != nil && strings.Contains(raw, "/maps/place/") {
		if cid, err := strconv.ParseUint(m[1], 16, 64); err == nil && cid != 0 {
			return "https://www.google.com/maps?cid=" + strconv.FormatUint(cid, 10) + "&hl=" + lang
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	for key := range q {
		if strings.HasPrefix(key, "utm_") {
			q.Del(key)
		}
	}
	for _, key := range trackingParams {
		q.Del(key)
	}
	if q.Get("hl") == "" {
		q.Set("hl", lang)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// BuildSearchURL turns a free-text place query into a Maps search URL by
// percent-encoding it into the search-path template.
func BuildSearchURL(query string) string {
	return searchURLTemplate + url.PathEscape(query)
}

// isConsentURL reports whether the current location is the consent
// interstitial rather than a Maps page.
func isConsentURL(loc string) bool {
	return strings.Contains(loc, "consent.google.")
}

// isSearchURL reports whether the location is a search-results page that
// still needs disambiguating to a single place.
func isSearchURL(loc string) bool {
	return strings.Contains(loc, "/maps/search/")
}
