package mailbox

import (
	"strconv"
	"strings"
	"time"
)

// InboxSince is the analysis search filter for messages received after since.
// The bound is sent as epoch seconds; a calendar date would widen it to the
// whole day.
func InboxSince(since time.Time) string {
	return "in:inbox after:" + strconv.FormatInt(since.Unix(), 10)
}

// FromQuery matches messages sent by an address or, for a bare domain, by anyone at it.
func FromQuery(target string) string {
	target = strings.TrimSpace(target)
	if !strings.Contains(target, "@") {
		target = "@" + target
	}
	return "from:" + target
}

// FromSenderQuery prefers the full sender address and falls back to the domain.
func FromSenderQuery(senderEmail, senderDomain string) string {
	if senderEmail != "" {
		return "from:" + strings.TrimSpace(senderEmail)
	}
	return "from:@" + strings.TrimPrefix(strings.TrimSpace(senderDomain), "@")
}
