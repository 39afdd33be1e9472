package analyzer

import (
	"net/url"
	"regexp"
	"strings"
)

var schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// LinkKind classifies an anchor href.
type LinkKind int

// Link classifications.
const (
	LinkInternal LinkKind = iota
	LinkExternal
	LinkInaccessible
)

func (k LinkKind) String() string {
	switch k {
	case LinkExternal:
		return "external"
	case LinkInaccessible:
		return "inaccessible"
	default:
		return "internal"
	}
}

// ClassifyLink applies the rules in order: fragment-only hrefs are internal,
// hrefs with no scheme, host or path are inaccessible, hrefs with a scheme
// other than javascript are external, and everything else is internal.
// Hrefs that net/url rejects (bad escapes, spaces in hosts, odd ports) are
// split leniently and classified by the same rules.
func ClassifyLink(href string) LinkKind {
	if strings.HasPrefix(href, "#") {
		return LinkInternal
	}
	href = cleanHref(href)

	var scheme, host, path string
	if u, err := url.Parse(href); err == nil {
		scheme, host, path = u.Scheme, u.Host, u.Path+u.Opaque
	} else {
		scheme, host, path = splitHref(href)
	}

	if scheme == "" && host == "" && path == "" {
		return LinkInaccessible
	}
	if scheme != "" && !strings.EqualFold(scheme, "javascript") {
		return LinkExternal
	}
	return LinkInternal
}

// cleanHref drops leading C0 controls and spaces and removes every tab and
// newline, the way browsers and urlsplit-style parsers do.
func cleanHref(href string) string {
	href = strings.TrimLeftFunc(href, func(r rune) bool { return r <= ' ' })
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, href)
}

// splitHref extracts scheme, authority and path without validating escapes,
// hosts or ports.
func splitHref(href string) (scheme, host, path string) {
	rest := href
	if prefix := schemePrefix.FindString(rest); prefix != "" {
		scheme = strings.ToLower(prefix[:len(prefix)-1])
		rest = rest[len(prefix):]
	}
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		end := strings.IndexAny(rest, "/?#")
		if end < 0 {
			end = len(rest)
		}
		host, rest = rest[:end], rest[end:]
	}
	if end := strings.IndexAny(rest, "?#"); end >= 0 {
		rest = rest[:end]
	}
	return scheme, host, rest
}

func (l *LinkInfo) add(kind LinkKind) {
	switch kind {
	case LinkExternal:
		l.External++
	case LinkInaccessible:
		l.Inaccessible++
	default:
		l.Internal++
	}
}
