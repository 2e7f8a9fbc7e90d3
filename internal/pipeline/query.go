package pipeline

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"sort"
	"strings"
)

// NormalizeURL returns a canonical representation of a URL string so that
// equivalent search pages are only fetched once:
//   - Lower-case the scheme and host
//   - Clean the path; an empty path becomes "/" and a trailing slash is kept
//     only for the root
//   - Drop default ports (http:80, https:443)
//   - Sort query parameters by key and by value
//   - Remove the fragment
//
// Only absolute http(s) URLs are accepted.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("could not parse URL: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL %q has no host", raw)
	}

	if u.Path == "" {
		u.Path = "/"
	}
	cleaned := path.Clean(u.Path)
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	u.Path = cleaned
	u.RawPath = ""

	host := strings.ToLower(u.Host)
	if h, port, err := net.SplitHostPort(host); err == nil {
		if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
			host = h
		} else {
			host = net.JoinHostPort(h, port)
		}
	}
	u.Host = host

	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			sort.Strings(q[k])
		}
		u.RawQuery = q.Encode()
	}
	u.Fragment = ""

	return u.String(), nil
}

// BuildQueryURLs returns one search URL per base and location, in that order,
// with the position as the keywords parameter. No locations means a single
// search per base without a location filter. Duplicates are dropped.
func BuildQueryURLs(position string, bases, locations []string) ([]string, error) {
	position = strings.TrimSpace(position)
	if position == "" {
		return nil, fmt.Errorf("no position to search for")
	}
	if len(locations) == 0 {
		locations = []string{""}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, base := range bases {
		u, err := url.Parse(strings.TrimSpace(base))
		if err != nil {
			return nil, fmt.Errorf("invalid search base URL %q: %w", base, err)
		}
		for _, loc := range locations {
			q := u.Query()
			q.Set("keywords", position)
			if loc = strings.TrimSpace(loc); loc != "" {
				q.Set("location", loc)
			} else {
				q.Del("location")
			}
			v := *u
			v.RawQuery = q.Encode()

			normalized, err := NormalizeURL(v.String())
			if err != nil {
				return nil, fmt.Errorf("invalid search base URL %q: %w", base, err)
			}
			if _, dup := seen[normalized]; dup {
				continue
			}
			seen[normalized] = struct{}{}
			out = append(out, normalized)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no search base URLs configured")
	}

	return out, nil
}
