/*
Package search builds the external "view source" URL for a research query.
*/
package search

import (
	"net/url"
	"strings"
)

const (
	// BaseURL is the search endpoint the query is linked against.
	BaseURL = "https://www.perplexity.ai/search"
	// FallbackURL is used when a direct search link cannot be built.
	FallbackURL = "https://www.perplexity.ai/"
)

// FormatError indicates malformed input to link construction. It is
// recoverable: callers fall back to FallbackURL.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "cannot build search URL: " + e.Reason
}

// BuildURL returns the canonical search link for query. The query is
// percent-encoded so that decoding the q parameter yields the exact
// original text.
func BuildURL(query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", &FormatError{Reason: "query is empty"}
	}
	return BaseURL + "?q=" + url.QueryEscape(query), nil
}
