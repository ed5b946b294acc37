package pagination

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultLimit is the page size used when a limit is not provided.
	DefaultLimit = 250
	// MaxLimit is the largest page the order-listing API serves.
	MaxLimit = 250
)

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

type linkValue struct {
	target string
	rels   []string
}

// NextParams extracts the query of the rel="next" target from an RFC 8288 Link header.
// The returned values are the complete parameter set for the following request; ok is
// false when the header carries no next link. A header that cannot be parsed is an
// error, never end of data.
func NextParams(linkHeader string) (url.Values, bool, error) {
	links, err := parseLinkHeader(linkHeader)
	if err != nil {
		return nil, false, err
	}
	for _, link := range links {
		if !hasRel(link.rels, "next") {
			continue
		}
		u, err := url.Parse(link.target)
		if err != nil {
			return nil, false, fmt.Errorf("invalid next link %q: %w", link.target, err)
		}
		values := u.Query()
		if len(values) == 0 {
			return nil, false, fmt.Errorf("next link %q carries no parameters", link.target)
		}
		return values, true, nil
	}
	return nil, false, nil
}

// parseLinkHeader reads link-values left to right. Targets are taken between
// angle brackets before any comma splitting, so commas inside a URL stay put.
func parseLinkHeader(header string) ([]linkValue, error) {
	var links []linkValue
	rest := strings.TrimSpace(header)
	for rest != "" {
		if !strings.HasPrefix(rest, "<") {
			return nil, fmt.Errorf("malformed link header: expected '<' at %q", clip(rest))
		}
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return nil, fmt.Errorf("malformed link header: unterminated target %q", clip(rest))
		}
		link := linkValue{target: rest[1:end]}

		params, tail := splitAtComma(rest[end+1:])
		rels, err := parseRels(params)
		if err != nil {
			return nil, err
		}
		link.rels = rels
		links = append(links, link)

		rest = strings.TrimSpace(tail)
	}
	return links, nil
}

// splitAtComma returns the parameter section of one link-value and whatever
// follows the next comma outside quotes.
func splitAtComma(s string) (string, string) {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				return s[:i], s[i+1:]
			}
		}
	}
	return s, ""
}

func parseRels(params string) ([]string, error) {
	params = strings.TrimSpace(params)
	if params == "" {
		return nil, nil
	}
	if !strings.HasPrefix(params, ";") {
		return nil, fmt.Errorf("malformed link header: expected ';' before %q", clip(params))
	}
	var rels []string
	for _, param := range strings.Split(params[1:], ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
			continue
		}
		rels = append(rels, strings.Fields(strings.Trim(strings.TrimSpace(value), `"`))...)
	}
	return rels, nil
}

func hasRel(rels []string, want string) bool {
	for _, rel := range rels {
		if strings.EqualFold(rel, want) {
			return true
		}
	}
	return false
}

func clip(s string) string {
	if len(s) > 64 {
		return s[:64] + "..."
	}
	return s
}
