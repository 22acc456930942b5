package mailbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pagedLister struct {
	pages  map[string]*MessagePage
	errAt  string
	calls  []ListQuery
	failed error
}

func (l *pagedLister) ListMessages(_ context.Context, q ListQuery) (*MessagePage, error) {
	l.calls = append(l.calls, q)
	if l.errAt != "" && q.PageToken == l.errAt {
		return nil, l.failed
	}
	page, ok := l.pages[q.PageToken]
	if !ok {
		return &MessagePage{}, nil
	}
	return page, nil
}

func TestListMessageIDsWalksPagesAndDeduplicates(t *testing.T) {
	lister := &pagedLister{pages: map[string]*MessagePage{
		"":   {IDs: []string{"m1", "m2", ""}, NextPageToken: "p2"},
		"p2": {IDs: []string{"m2", "m3"}, NextPageToken: "p3"},
		"p3": {IDs: []string{"m4"}},
	}}

	ids, err := ListMessageIDs(context.Background(), lister, ListOptions{Query: "in:inbox", PageSize: 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3", "m4"}, ids)
	require.Len(t, lister.calls, 3)
	assert.Equal(t, "in:inbox", lister.calls[2].Query)
	assert.Equal(t, int64(2), lister.calls[2].PageSize)
}

func TestListMessageIDsStopsAtCap(t *testing.T) {
	lister := &pagedLister{pages: map[string]*MessagePage{
		"":   {IDs: []string{"m1", "m2"}, NextPageToken: "p2"},
		"p2": {IDs: []string{"m3", "m4"}, NextPageToken: "p3"},
		"p3": {IDs: []string{"m5"}},
	}}

	ids, err := ListMessageIDs(context.Background(), lister, ListOptions{MaxMessages: 3})

	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids)
	assert.Len(t, lister.calls, 2)
}

func TestListMessageIDsStopsOnRepeatedCursor(t *testing.T) {
	lister := &pagedLister{pages: map[string]*MessagePage{
		"":   {IDs: []string{"m1"}, NextPageToken: "p2"},
		"p2": {IDs: []string{"m2"}, NextPageToken: "p2"},
	}}

	ids, err := ListMessageIDs(context.Background(), lister, ListOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids)
}

func TestListMessageIDsAbortsOnPageError(t *testing.T) {
	boom := errors.New("boom")
	lister := &pagedLister{
		pages: map[string]*MessagePage{
			"": {IDs: []string{"m1"}, NextPageToken: "p2"},
		},
		errAt:  "p2",
		failed: boom,
	}

	ids, err := ListMessageIDs(context.Background(), lister, ListOptions{Query: "q"})

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, ids)
}

type flakyFetcher struct {
	mu       sync.Mutex
	fail     map[string]bool
	inFlight int
	maxSeen  int
}

func (f *flakyFetcher) GetMessageMetadata(_ context.Context, id string, _ []string) (*MessageMetadata, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()

	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if f.fail[id] {
		return nil, fmt.Errorf("fetch %s: unavailable", id)
	}
	return &MessageMetadata{ID: id, From: id + "@example.com"}, nil
}

func TestFetchMetadataDropsFailedMessages(t *testing.T) {
	fetcher := &flakyFetcher{fail: map[string]bool{"m3": true}}
	ids := []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7"}

	var sleeps []time.Duration
	res, err := FetchMetadata(context.Background(), fetcher, ids, FetchOptions{
		BatchSize: 3,
		Delay:     200 * time.Millisecond,
		Sleep: func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Dropped)
	got := make([]string, 0, len(res.Messages))
	for _, m := range res.Messages {
		got = append(got, m.ID)
	}
	assert.Equal(t, []string{"m1", "m2", "m4", "m5", "m6", "m7"}, got)
	// three batches, a delay only between them
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 200 * time.Millisecond}, sleeps)
	assert.LessOrEqual(t, fetcher.maxSeen, 3)
}

func TestFetchMetadataNoIDs(t *testing.T) {
	res, err := FetchMetadata(context.Background(), &flakyFetcher{}, nil, FetchOptions{BatchSize: 5})

	require.NoError(t, err)
	assert.Empty(t, res.Messages)
	assert.Zero(t, res.Dropped)
}

func TestApplyInBatchesReportsFailedBatch(t *testing.T) {
	ids := make([]string, 0, 250)
	for i := 0; i < 250; i++ {
		ids = append(ids, fmt.Sprintf("m%d", i))
	}

	var applied [][]string
	report := ApplyInBatches(context.Background(), "trash", ids, 100, func(_ context.Context, batch []string) error {
		if batch[0] == "m100" {
			return errors.New("quota exceeded")
		}
		applied = append(applied, batch)
		return nil
	})

	assert.Equal(t, 250, report.Total)
	assert.Equal(t, 150, report.Processed)
	assert.Equal(t, 3, report.Batches)
	assert.Less(t, report.Processed, report.Total)
	assert.False(t, report.Success())
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 2, report.Errors[0].Batch)
	assert.Equal(t, "quota exceeded", report.Errors[0].Error)
	require.Len(t, applied, 2)
	assert.Equal(t, "m0", applied[0][0])
	assert.Equal(t, "m200", applied[1][0])
}

func TestApplyInBatchesEmpty(t *testing.T) {
	report := ApplyInBatches(context.Background(), "trash", nil, 100, func(context.Context, []string) error {
		t.Fatal("apply must not be called")
		return nil
	})

	assert.True(t, report.Success())
	assert.Zero(t, report.Total)
	assert.NotNil(t, report.Errors)
}

func TestQueries(t *testing.T) {
	since := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "in:inbox after:1709632800", InboxSince(since))
	assert.NotEqual(t, InboxSince(since), InboxSince(since.Add(time.Hour)))
	assert.Equal(t, "from:news@shop.com", FromQuery("news@shop.com"))
	assert.Equal(t, "from:@shop.com", FromQuery("shop.com"))
	assert.Equal(t, "from:a@shop.com", FromSenderQuery("a@shop.com", "shop.com"))
	assert.Equal(t, "from:@shop.com", FromSenderQuery("", "shop.com"))
}

func TestParseListUnsubscribe(t *testing.T) {
	httpURL, mailto := ParseListUnsubscribe("<mailto:unsub@shop.com?subject=stop>, <https://shop.com/u/123>")
	assert.Equal(t, "https://shop.com/u/123", httpURL)
	assert.Equal(t, "mailto:unsub@shop.com?subject=stop", mailto)

	httpURL, mailto = ParseListUnsubscribe("")
	assert.Empty(t, httpURL)
	assert.Empty(t, mailto)
}

type labelStore struct {
	LabelManager
	labels  []*Label
	created []*Label
}

func (s *labelStore) ListLabels(context.Context) ([]*Label, error) {
	return s.labels, nil
}

func (s *labelStore) CreateLabel(_ context.Context, l *Label) (*Label, error) {
	created := *l
	created.ID = fmt.Sprintf("Label_%d", len(s.created)+1)
	s.created = append(s.created, &created)
	s.labels = append(s.labels, &created)
	return &created, nil
}

func TestEnsureLabelCreatesOnce(t *testing.T) {
	store := &labelStore{labels: []*Label{{ID: "INBOX", Name: "INBOX", Type: "system"}}}

	first, err := EnsureLabel(context.Background(), store, LabelToDelete)
	require.NoError(t, err)
	second, err := EnsureLabel(context.Background(), store, "to_delete")
	require.NoError(t, err)

	assert.Equal(t, "Label_1", first.ID)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.created, 1)
	assert.True(t, IsSystemLabel(store.labels[0]))
	assert.False(t, IsSystemLabel(first))
}
