package mailbox

import (
	"regexp"
	"strings"
)

var listUnsubscribeLinkRe = regexp.MustCompile(`<([^>]+)>`)

// ParseListUnsubscribe returns the first https link and the first mailto
// link found in a List-Unsubscribe header.
func ParseListUnsubscribe(header string) (httpURL, mailto string) {
	for _, m := range listUnsubscribeLinkRe.FindAllStringSubmatch(header, -1) {
		link := strings.TrimSpace(m[1])
		lower := strings.ToLower(link)
		switch {
		case strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://"):
			if httpURL == "" {
				httpURL = link
			}
		case strings.HasPrefix(lower, "mailto:"):
			if mailto == "" {
				mailto = link
			}
		}
	}
	return httpURL, mailto
}
