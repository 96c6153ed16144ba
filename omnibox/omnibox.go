// Package omnibox turns typed input into a navigation target: an address
// to load, or a search on one of the known engines.
package omnibox

import (
	"net/url"
	"strings"
)

// Result represents the parsed omnibox input.
type Result struct {
	URL      string // Target to load (empty for empty input)
	Query    string // The search terms, when IsSearch
	IsSearch bool   // Whether the URL is a search results page
	Provider string // Display name of the search engine used
}

// Prefix maps short names to a search engine.
type Prefix struct {
	Names   []string // Prefix names (e.g., "wp", "wiki")
	URLFmt  string   // URL format; every %s gets the escaped query
	Display string   // Display name (e.g., "Wikipedia")
}

// DefaultPrefixes returns the built-in search prefixes.
func DefaultPrefixes() []Prefix {
	return []Prefix{
		{
			Names:   []string{"bing", "b"},
			URLFmt:  "https://www.bing.com/search?q=%s",
			Display: "Bing",
		},
		{
			Names:   []string{"ddg", "duckduckgo"},
			URLFmt:  "https://duckduckgo.com/?q=%s",
			Display: "DuckDuckGo",
		},
		{
			Names:   []string{"wp", "wiki", "wikipedia"},
			URLFmt:  "https://en.wikipedia.org/w/index.php?search=%s",
			Display: "Wikipedia",
		},
		{
			Names:   []string{"gh", "github"},
			URLFmt:  "https://github.com/search?q=%s",
			Display: "GitHub",
		},
		{
			Names:   []string{"go", "pkg"},
			URLFmt:  "https://pkg.go.dev/search?q=%s",
			Display: "pkg.go.dev",
		},
	}
}

// SearchURL fills template with the escaped query.
func SearchURL(template, query string) string {
	return strings.ReplaceAll(template, "%s", url.QueryEscape(strings.TrimSpace(query)))
}

// NormalizeAddress turns address-bar input into a loadable URL. Anything
// that is not already http(s) or a local file is assumed to be https.
func NormalizeAddress(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if hasScheme(input, "http://", "https://", "file://") || strings.HasPrefix(input, "/") {
		return input
	}
	return "https://" + input
}

// Parser handles home search box parsing.
type Parser struct {
	prefixes      []Prefix
	defaultSearch string // URL format for default search
}

// NewParser creates a parser searching with defaultSearch when input is
// neither an address nor a prefixed search.
func NewParser(defaultSearch string) *Parser {
	return &Parser{
		prefixes:      DefaultPrefixes(),
		defaultSearch: defaultSearch,
	}
}

// AddPrefix adds a custom search prefix.
func (p *Parser) AddPrefix(prefix Prefix) {
	p.prefixes = append(p.prefixes, prefix)
}

// Parse parses omnibox input and returns the result.
func (p *Parser) Parse(input string) Result {
	input = strings.TrimSpace(input)
	if input == "" {
		return Result{}
	}

	if hasScheme(input, "http://", "https://", "file://") {
		return Result{URL: input}
	}

	// "wp cats" or "wp:cats"
	if name, query, ok := splitPrefix(input); ok {
		for _, pfx := range p.prefixes {
			for _, n := range pfx.Names {
				if name == n {
					return Result{
						URL:      SearchURL(pfx.URLFmt, query),
						Query:    query,
						IsSearch: true,
						Provider: pfx.Display,
					}
				}
			}
		}
	}

	if looksLikeURL(input) {
		return Result{URL: "https://" + input}
	}

	return Result{
		URL:      SearchURL(p.defaultSearch, input),
		Query:    input,
		IsSearch: true,
		Provider: "Search",
	}
}

// Prefixes returns the list of available prefixes (for help display).
func (p *Parser) Prefixes() []Prefix {
	return p.prefixes
}

func hasScheme(input string, schemes ...string) bool {
	lower := strings.ToLower(input)
	for _, s := range schemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

func splitPrefix(input string) (name, query string, ok bool) {
	idx := strings.IndexAny(input, " :")
	if idx <= 0 {
		return "", "", false
	}
	name = strings.ToLower(input[:idx])
	query = strings.TrimSpace(input[idx+1:])
	return name, query, query != ""
}

// looksLikeURL checks if input looks like a URL (has domain.tld pattern).
func looksLikeURL(input string) bool {
	// No spaces allowed in URLs
	if strings.Contains(input, " ") {
		return false
	}

	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "localhost") || strings.HasPrefix(lower, "127.") {
		return true
	}

	host := lower
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	dot := strings.LastIndex(host, ".")
	if dot <= 0 || dot == len(host)-1 {
		return false
	}
	tld := host[dot+1:]
	for _, r := range tld {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return len(tld) >= 2
}
