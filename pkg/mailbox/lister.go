package mailbox

import (
	"context"
	"fmt"
)

// ListOptions configures ListMessageIDs. MaxMessages of 0 means no cap.
type ListOptions struct {
	Query       string
	LabelIDs    []string
	PageSize    int64
	MaxMessages int
	PageToken   string
}

// ListMessageIDs walks every page of a message listing and returns the
// distinct ids in listing order. It stops when the provider returns no
// further cursor or MaxMessages ids have been collected. Any page error
// aborts the walk and no ids are returned.
func ListMessageIDs(ctx context.Context, lister MessageLister, opts ListOptions) ([]string, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	pageToken := opts.PageToken

	for {
		page, err := lister.ListMessages(ctx, ListQuery{
			Query:     opts.Query,
			LabelIDs:  opts.LabelIDs,
			PageToken: pageToken,
			PageSize:  opts.PageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("list messages %q: %w", opts.Query, err)
		}

		for _, id := range page.IDs {
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)

			if opts.MaxMessages > 0 && len(ids) >= opts.MaxMessages {
				return ids, nil
			}
		}

		// A repeated cursor would loop forever.
		if page.NextPageToken == "" || page.NextPageToken == pageToken {
			return ids, nil
		}
		pageToken = page.NextPageToken
	}
}
