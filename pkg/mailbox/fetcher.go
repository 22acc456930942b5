package mailbox

import (
	"context"
	"sync"
	"time"

	"mailsweep-backend/pkg/metrics"
	"mailsweep-backend/pkg/retry"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// FetchOptions configures FetchMetadata.
type FetchOptions struct {
	BatchSize int
	Delay     time.Duration
	Headers   []string
	// Sleep waits between batches. Nil uses retry.Sleep.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *zap.Logger
}

type FetchResult struct {
	Messages []*MessageMetadata
	Dropped  int
}

// FetchMetadata fetches metadata for ids in groups of BatchSize. Calls within
// a group run concurrently and the group is awaited before the next one
// starts, with Delay between groups. A message whose fetch fails is logged,
// counted in Dropped and left out; the rest keep their input order.
func FetchMetadata(ctx context.Context, fetcher MetadataFetcher, ids []string, opts FetchOptions) (*FetchResult, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = retry.Sleep
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	result := &FetchResult{Messages: make([]*MessageMetadata, 0, len(ids))}
	batches := lo.Chunk(ids, opts.BatchSize)

	for i, batch := range batches {
		if i > 0 && opts.Delay > 0 {
			if err := sleep(ctx, opts.Delay); err != nil {
				return result, err
			}
		}

		fetched := make([]*MessageMetadata, len(batch))
		var wg sync.WaitGroup
		for j, id := range batch {
			wg.Add(1)
			go func(j int, id string) {
				defer wg.Done()
				msg, err := fetcher.GetMessageMetadata(ctx, id, opts.Headers)
				if err != nil {
					log.Warn("dropping message after failed metadata fetch",
						zap.String("message_id", id),
						zap.Int("batch", i+1),
						zap.Error(err),
					)
					return
				}
				fetched[j] = msg
			}(j, id)
		}
		wg.Wait()

		for _, msg := range fetched {
			if msg == nil {
				result.Dropped++
				continue
			}
			result.Messages = append(result.Messages, msg)
		}
	}

	metrics.AddMessagesFetched("ok", len(result.Messages))
	metrics.AddMessagesFetched("dropped", result.Dropped)
	return result, nil
}
