package cache

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint derives the cache key of a request from its method, URL and
// query parameters. Parameter order, in the URL or in params, does not
// change the key.
func Fingerprint(method, rawURL string, params url.Values) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	merged := url.Values{}
	for k, vs := range params {
		merged[k] = append(merged[k], vs...)
	}

	target := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		for k, vs := range u.Query() {
			merged[k] = append(merged[k], vs...)
		}
		target = normalizeURL(u)
	}

	for k := range merged {
		slices.Sort(merged[k])
	}

	canonical := method + " " + target
	if len(merged) > 0 {
		// Encode sorts by key.
		canonical += "?" + merged.Encode()
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(canonical))
}

func normalizeURL(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	if h, port, err := net.SplitHostPort(host); err == nil {
		if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
			host = h
		}
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if scheme == "" && host == "" {
		return path
	}
	return scheme + "://" + host + path
}
