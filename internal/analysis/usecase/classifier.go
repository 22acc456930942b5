package usecase

import (
	"math"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"time"

	"mailsweep-backend/pkg/mailbox"
)

var (
	angleAddressRe = regexp.MustCompile(`<([^>]+)>`)
	bareAddressRe  = regexp.MustCompile(`[^\s<>"',;()]+@[^\s<>"',;()]+`)
)

// transactionalMarkers are matched anywhere in a lower-cased sender address.
var transactionalMarkers = []string{
	"no-reply",
	"noreply",
	"donotreply",
	"do-not-reply",
	"notification",
	"notifications",
}

const week = 7 * 24 * time.Hour

// ExtractAddress returns the email address in a From header, preferring an
// angle-bracket address and falling back to the first bare address.
func ExtractAddress(from string) string {
	if m := angleAddressRe.FindStringSubmatch(from); m != nil {
		if addr := strings.TrimSpace(m[1]); strings.Contains(addr, "@") {
			return addr
		}
	}
	if m := bareAddressRe.FindString(from); m != "" {
		return m
	}
	return ""
}

// DomainOf lower-cases the part of addr after the last @.
func DomainOf(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	return strings.ToLower(addr[at+1:])
}

func IsTransactional(addr string) bool {
	lower := strings.ToLower(addr)
	for _, marker := range transactionalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

type ClassifyOptions struct {
	Now                  time.Time
	ExcludeTransactional bool
	// SafeDomains are skipped entirely.
	SafeDomains []string
	// Blocked holds unsubscribed addresses or domains, also skipped.
	Blocked []string
}

// DomainAggregate is the classifier output for one sender domain.
type DomainAggregate struct {
	Domain            string
	TotalEmails       int
	Senders           map[string]int
	SenderEmail       string
	MonthlyAvg        float64
	Earliest          time.Time
	UnsubscribeURL    string
	UnsubscribeMailto string
}

// Classify groups messages by sender domain. The representative sender is the
// most frequent address, ties going to the lexicographically smallest.
// MonthlyAvg divides the total by the number of started weeks between the
// domain's earliest message and opts.Now, at least one. The result is ordered
// by total descending, then domain.
func Classify(messages []*mailbox.MessageMetadata, opts ClassifyOptions) []*DomainAggregate {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	safe := toSet(opts.SafeDomains)
	blocked := toSet(opts.Blocked)

	groups := make(map[string]*DomainAggregate)
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		addr := strings.ToLower(ExtractAddress(msg.From))
		domain := DomainOf(addr)
		if domain == "" {
			continue
		}
		if _, ok := safe[domain]; ok {
			continue
		}
		if _, ok := blocked[domain]; ok {
			continue
		}
		if _, ok := blocked[addr]; ok {
			continue
		}
		if opts.ExcludeTransactional && IsTransactional(addr) {
			continue
		}

		g, ok := groups[domain]
		if !ok {
			g = &DomainAggregate{Domain: domain, Senders: make(map[string]int), Earliest: now}
			groups[domain] = g
		}
		g.TotalEmails++
		g.Senders[addr]++

		if sent := parseDate(msg.Date, now); sent.Before(g.Earliest) {
			g.Earliest = sent
		}
		if g.UnsubscribeURL == "" && g.UnsubscribeMailto == "" && msg.ListUnsubscribe != "" {
			g.UnsubscribeURL, g.UnsubscribeMailto = mailbox.ParseListUnsubscribe(msg.ListUnsubscribe)
		}
	}

	result := make([]*DomainAggregate, 0, len(groups))
	for _, g := range groups {
		g.SenderEmail = representative(g.Senders)
		g.MonthlyAvg = math.Round(float64(g.TotalEmails)/float64(elapsedWeeks(g.Earliest, now))*100) / 100
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalEmails != result[j].TotalEmails {
			return result[i].TotalEmails > result[j].TotalEmails
		}
		return result[i].Domain < result[j].Domain
	})
	return result
}

func representative(senders map[string]int) string {
	best, bestCount := "", -1
	for addr, count := range senders {
		if count > bestCount || (count == bestCount && addr < best) {
			best, bestCount = addr, count
		}
	}
	return best
}

func elapsedWeeks(earliest, now time.Time) int {
	weeks := int(math.Ceil(float64(now.Sub(earliest)) / float64(week)))
	if weeks < 1 {
		return 1
	}
	return weeks
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC3339,
}

// parseDate reads a Date header; unreadable values count as now.
func parseDate(value string, now time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return now
	}
	if t, err := mail.ParseDate(value); err == nil {
		return t
	}
	// drop a trailing zone comment such as "(UTC)"
	if i := strings.Index(value, " ("); i > 0 {
		value = value[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return now
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[strings.TrimPrefix(v, "@")] = struct{}{}
		}
	}
	return set
}
