// Package links recognizes media URLs in inbound message text.
//
// Accepted forms: absolute http or https URLs with a host, one or more per
// message, separated by whitespace or newlines. Trailing sentence
// punctuation is stripped. Anything else is deliberately rejected rather
// than best-effort matched.
package links

import (
	"net/url"
	"regexp"
	"strings"
)

var linkPattern = regexp.MustCompile(`https?://\S+`)

// Extract returns the accepted URLs found in text, in input order.
func Extract(text string) []string {
	if text == "" {
		return nil
	}

	var urls []string
	for _, match := range linkPattern.FindAllString(text, -1) {
		cleaned := strings.TrimRight(match, ".,;:!?)")
		parsed, err := url.Parse(cleaned)
		if err != nil || parsed.Host == "" {
			continue
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			continue
		}
		urls = append(urls, cleaned)
	}
	return urls
}
