package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	analysisdomain "mailsweep-backend/internal/analysis/domain"
	"mailsweep-backend/pkg/config"
	"mailsweep-backend/pkg/mailbox"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mailbox.Provider

	mu       sync.Mutex
	messages map[string]*mailbox.MessageMetadata
	order    []string
	failing  map[string]bool
	queries  []string
}

// defaultReceived sits inside the first pass window and before the harness clock.
var defaultReceived = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func newFakeProvider(froms ...string) *fakeProvider {
	p := &fakeProvider{messages: map[string]*mailbox.MessageMetadata{}, failing: map[string]bool{}}
	for _, from := range froms {
		p.add(from, defaultReceived, "")
	}
	return p
}

func (p *fakeProvider) add(from string, received time.Time, date string) {
	id := fmt.Sprintf("msg-%02d", len(p.order))
	p.order = append(p.order, id)
	p.messages[id] = &mailbox.MessageMetadata{ID: id, From: from, Date: date, InternalDate: received.UnixMilli()}
}

// ListMessages applies the "after:<epoch seconds>" bound of the query.
func (p *fakeProvider) ListMessages(_ context.Context, q mailbox.ListQuery) (*mailbox.MessagePage, error) {
	p.mu.Lock()
	p.queries = append(p.queries, q.Query)
	p.mu.Unlock()

	var after int64
	if _, bound, ok := strings.Cut(q.Query, "after:"); ok {
		v, err := strconv.ParseInt(strings.Fields(bound)[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad after bound %q", bound)
		}
		after = v
	}

	ids := []string{}
	for _, id := range p.order {
		if p.messages[id].InternalDate/1000 > after {
			ids = append(ids, id)
		}
	}
	return &mailbox.MessagePage{IDs: ids}, nil
}

func (p *fakeProvider) GetMessageMetadata(_ context.Context, id string, _ []string) (*mailbox.MessageMetadata, error) {
	if p.failing[id] {
		return nil, errors.New("backend error")
	}
	m := *p.messages[id]
	return &m, nil
}

func (p *fakeProvider) lastQuery() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries[len(p.queries)-1]
}

type fakeOpener struct {
	provider mailbox.Provider
	err      error
}

func (o *fakeOpener) Open(context.Context, mailbox.Credentials) (mailbox.Provider, error) {
	return o.provider, o.err
}

type memStats struct {
	rows      map[string]*analysisdomain.SenderStat
	upsertErr error
	upserts   int
}

func (m *memStats) Upsert(stats []*analysisdomain.SenderStat) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	for _, s := range stats {
		cp := *s
		m.rows[s.UserID+"|"+s.Domain] = &cp
	}
	return nil
}

func (m *memStats) ListByUser(userID string) ([]*analysisdomain.SenderStat, error) {
	out := []*analysisdomain.SenderStat{}
	for _, s := range m.rows {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out, nil
}

func (m *memStats) DeleteBySenderOrDomain(string, string) (int64, error) { return 0, nil }
func (m *memStats) DeleteByDomain(string, string) (int64, error)         { return 0, nil }

type memCheckpoints struct {
	rows    map[string]*analysisdomain.AnalysisCheckpoint
	saveErr error
}

func (m *memCheckpoints) FindByUser(userID string) (*analysisdomain.AnalysisCheckpoint, error) {
	return m.rows[userID], nil
}

func (m *memCheckpoints) Save(userID string, lastRun time.Time) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rows[userID] = &analysisdomain.AnalysisCheckpoint{UserID: userID, LastRun: lastRun}
	return nil
}

type staticLists struct {
	safe    []string
	blocked []string
}

func (s *staticLists) ListDomains(string) ([]string, error) { return s.safe, nil }
func (s *staticLists) ListSenders(string) ([]string, error) { return s.blocked, nil }

type harness struct {
	uc          *analysisUsecase
	provider    *fakeProvider
	stats       *memStats
	checkpoints *memCheckpoints
	lists       *staticLists
	clock       time.Time
}

func newHarness(provider *fakeProvider) *harness {
	h := &harness{
		provider:    provider,
		stats:       &memStats{rows: map[string]*analysisdomain.SenderStat{}},
		checkpoints: &memCheckpoints{rows: map[string]*analysisdomain.AnalysisCheckpoint{}},
		lists:       &staticLists{},
		clock:       time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC),
	}
	uc := NewAnalysisUsecase(h.stats, h.checkpoints, h.lists, h.lists, &fakeOpener{provider: provider},
		config.AnalysisConfig{MaxMessages: 1000, PageSize: 100, BatchSize: 2}, nil).(*analysisUsecase)
	uc.now = func() time.Time { return h.clock }
	uc.sleep = func(context.Context, time.Duration) error { return nil }
	h.uc = uc
	return h
}

func (h *harness) analyze(t *testing.T) error {
	t.Helper()
	_, err := h.uc.Analyze(context.Background(), &AnalyzeInput{UserID: "u1", Credentials: mailbox.Credentials{AccessToken: "tok"}})
	return err
}

func scenarioProvider() *fakeProvider {
	return newFakeProvider(
		"A <a@shop.com>", "A <a@shop.com>", "A <a@shop.com>",
		"B <b@shop.com>", "B <b@shop.com>",
		"C <c@news.com>",
	)
}

func TestAnalyzeScenarioStoresPerDomainAggregates(t *testing.T) {
	h := newHarness(scenarioProvider())

	resp, err := h.uc.Analyze(context.Background(), &AnalyzeInput{UserID: "u1", Credentials: mailbox.Credentials{AccessToken: "tok"}})

	require.NoError(t, err)
	assert.Equal(t, "Stats stored successfully", resp.Message)
	assert.Equal(t, 2, resp.Inserted)
	assert.Equal(t, 6, resp.Analyzed)
	assert.True(t, resp.CheckpointAdvanced)
	// first run looks back one calendar month
	assert.Equal(t, "in:inbox after:1707998400", resp.Query)

	rows, _ := h.stats.ListByUser("u1")
	require.Len(t, rows, 2)
	assert.Equal(t, "news.com", rows[0].Domain)
	assert.Equal(t, 1, rows[0].TotalEmails)
	assert.Equal(t, "c@news.com", rows[0].SenderEmail)
	assert.Equal(t, "shop.com", rows[1].Domain)
	assert.Equal(t, 5, rows[1].TotalEmails)
	assert.Equal(t, 2, rows[1].SenderCount)
	assert.Equal(t, "a@shop.com", rows[1].SenderEmail)

	assert.True(t, h.checkpoints.rows["u1"].LastRun.Equal(h.clock))
}

func TestAnalyzeUsesCheckpointAsLowerBound(t *testing.T) {
	h := newHarness(scenarioProvider())
	require.NoError(t, h.analyze(t))

	h.clock = h.clock.Add(72 * time.Hour)
	require.NoError(t, h.analyze(t))

	assert.Equal(t, "in:inbox after:1710504000", h.provider.lastQuery())
}

func TestAnalyzeIsIdempotentWithoutNewMessages(t *testing.T) {
	h := newHarness(scenarioProvider())
	require.NoError(t, h.analyze(t))
	first, _ := h.stats.ListByUser("u1")
	snapshot := make([]analysisdomain.SenderStat, 0, len(first))
	for _, r := range first {
		snapshot = append(snapshot, *r)
	}

	require.NoError(t, h.analyze(t))
	second, _ := h.stats.ListByUser("u1")

	require.Len(t, second, len(snapshot))
	for i, r := range second {
		assert.Equal(t, snapshot[i].Domain, r.Domain)
		assert.Equal(t, snapshot[i].TotalEmails, r.TotalEmails)
		assert.Equal(t, snapshot[i].SenderCount, r.SenderCount)
		assert.Equal(t, snapshot[i].SenderEmail, r.SenderEmail)
		assert.Equal(t, snapshot[i].MonthlyAvg, r.MonthlyAvg)
	}
}

func TestAnalyzeSameDayRerunLeavesAggregatesUnchanged(t *testing.T) {
	p := &fakeProvider{messages: map[string]*mailbox.MessageMetadata{}, failing: map[string]bool{}}
	for day := 8; day <= 10; day++ {
		at := time.Date(2024, time.March, day, 9, 0, 0, 0, time.UTC)
		p.add("A <a@shop.com>", at, at.Format(time.RFC1123Z))
	}
	sameDay := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	p.add("B <b@shop.com>", sameDay, sameDay.Format(time.RFC1123Z))
	p.add("B <b@shop.com>", sameDay, sameDay.Format(time.RFC1123Z))
	h := newHarness(p)

	require.NoError(t, h.analyze(t))
	first, _ := h.stats.ListByUser("u1")
	require.Len(t, first, 1)
	before := *first[0]
	assert.Equal(t, 5, before.TotalEmails)
	assert.Equal(t, "a@shop.com", before.SenderEmail)

	h.clock = h.clock.Add(time.Hour)
	resp, err := h.uc.Analyze(context.Background(), &AnalyzeInput{UserID: "u1", Credentials: mailbox.Credentials{AccessToken: "tok"}})
	require.NoError(t, err)
	assert.Zero(t, resp.Analyzed)
	assert.Equal(t, "in:inbox after:1710504000", resp.Query)

	second, _ := h.stats.ListByUser("u1")
	require.Len(t, second, 1)
	assert.Equal(t, before.TotalEmails, second[0].TotalEmails)
	assert.Equal(t, before.SenderEmail, second[0].SenderEmail)
	assert.Equal(t, before.SenderCount, second[0].SenderCount)
	assert.Equal(t, before.MonthlyAvg, second[0].MonthlyAvg)
}

func TestAnalyzeUpsertFailureLeavesCheckpoint(t *testing.T) {
	h := newHarness(scenarioProvider())
	h.stats.upsertErr = errors.New("connection reset")

	err := h.analyze(t)

	assert.ErrorIs(t, err, ErrStoreStats)
	assert.Empty(t, h.checkpoints.rows)
}

func TestAnalyzeCheckpointFailureIsNonFatalAndRescans(t *testing.T) {
	h := newHarness(scenarioProvider())
	h.checkpoints.saveErr = errors.New("deadlock detected")

	resp, err := h.uc.Analyze(context.Background(), &AnalyzeInput{UserID: "u1", Credentials: mailbox.Credentials{AccessToken: "tok"}})
	require.NoError(t, err)
	assert.False(t, resp.CheckpointAdvanced)
	assert.Equal(t, 1, h.stats.upserts)
	firstQuery := h.provider.lastQuery()

	h.clock = h.clock.Add(time.Hour)
	require.NoError(t, h.analyze(t))

	assert.Equal(t, firstQuery, h.provider.lastQuery())
}

func TestAnalyzeDropsFailedFetches(t *testing.T) {
	p := scenarioProvider()
	p.failing[p.order[5]] = true // the only news.com message
	h := newHarness(p)

	resp, err := h.uc.Analyze(context.Background(), &AnalyzeInput{UserID: "u1", Credentials: mailbox.Credentials{AccessToken: "tok"}})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Dropped)
	assert.Equal(t, 5, resp.Analyzed)
	rows, _ := h.stats.ListByUser("u1")
	require.Len(t, rows, 1)
	assert.Equal(t, "shop.com", rows[0].Domain)
}

func TestAnalyzeExcludesSafeDomains(t *testing.T) {
	h := newHarness(scenarioProvider())
	h.lists.safe = []string{"shop.com"}

	require.NoError(t, h.analyze(t))

	rows, _ := h.stats.ListByUser("u1")
	require.Len(t, rows, 1)
	assert.Equal(t, "news.com", rows[0].Domain)
}

func TestAnalyzeProviderErrorPropagates(t *testing.T) {
	h := newHarness(scenarioProvider())
	h.uc.opener = &fakeOpener{err: mailbox.ErrUnauthorized}

	err := h.analyze(t)

	assert.ErrorIs(t, err, mailbox.ErrUnauthorized)
	assert.Empty(t, h.checkpoints.rows)
}

func TestPreviewEmailsDoesNotPersist(t *testing.T) {
	h := newHarness(scenarioProvider())

	previews, err := h.uc.PreviewEmails(context.Background(), &AnalyzeInput{UserID: "u1", Credentials: mailbox.Credentials{AccessToken: "tok"}})

	require.NoError(t, err)
	assert.Len(t, previews, 6)
	assert.Equal(t, "A <a@shop.com>", previews[0].From)
	assert.Empty(t, h.stats.rows)
	assert.Empty(t, h.checkpoints.rows)
}

func TestLowerBound(t *testing.T) {
	now := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now.AddDate(0, -1, 0), LowerBound(nil, now))

	last := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, last, LowerBound(&analysisdomain.AnalysisCheckpoint{LastRun: last}, now))
}
