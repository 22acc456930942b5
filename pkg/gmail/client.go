package gmail

import (
	"context"
	"strings"
	"time"

	"mailsweep-backend/pkg/mailbox"
	"mailsweep-backend/pkg/metrics"
	"mailsweep-backend/pkg/retry"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
)

const user = "me"

// Client is a Gmail mailbox.Provider. Every call goes through the retry policy.
type Client struct {
	srv    *gmail.Service
	policy retry.Policy
	logger *zap.Logger
}

func NewClient(srv *gmail.Service, policy retry.Policy, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{srv: srv, policy: policy, logger: logger}
}

func (c *Client) policyFor(op string) retry.Policy {
	p := c.policy
	p.OnRetry = func(attempt int, delay time.Duration, err error) {
		metrics.IncrementProviderRetry(op)
		c.logger.Debug("retrying gmail call",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}
	return p
}

func (c *Client) ListMessages(ctx context.Context, q mailbox.ListQuery) (*mailbox.MessagePage, error) {
	call := c.srv.Users.Messages.List(user).Context(ctx)
	if q.Query != "" {
		call = call.Q(q.Query)
	}
	if len(q.LabelIDs) > 0 {
		call = call.LabelIds(q.LabelIDs...)
	}
	if q.PageSize > 0 {
		call = call.MaxResults(q.PageSize)
	}
	if q.PageToken != "" {
		call = call.PageToken(q.PageToken)
	}

	resp, err := retry.DoValue(ctx, c.policyFor("messages.list"), func() (*gmail.ListMessagesResponse, error) {
		return call.Do()
	})
	if err != nil {
		return nil, wrapError("unable to list messages", err)
	}

	page := &mailbox.MessagePage{
		IDs:                make([]string, 0, len(resp.Messages)),
		NextPageToken:      resp.NextPageToken,
		ResultSizeEstimate: resp.ResultSizeEstimate,
	}
	for _, m := range resp.Messages {
		if m == nil {
			continue
		}
		page.IDs = append(page.IDs, m.Id)
	}
	return page, nil
}

func (c *Client) GetMessageMetadata(ctx context.Context, id string, headers []string) (*mailbox.MessageMetadata, error) {
	call := c.srv.Users.Messages.Get(user, id).Format("metadata").Context(ctx)
	if len(headers) > 0 {
		call = call.MetadataHeaders(headers...)
	}

	msg, err := retry.DoValue(ctx, c.policyFor("messages.get"), func() (*gmail.Message, error) {
		return call.Do()
	})
	if err != nil {
		return nil, wrapError("unable to get message "+id, err)
	}
	return toMetadata(msg), nil
}

func (c *Client) BatchModify(ctx context.Context, ids, addLabelIDs, removeLabelIDs []string) error {
	req := &gmail.BatchModifyMessagesRequest{
		Ids:            ids,
		AddLabelIds:    addLabelIDs,
		RemoveLabelIds: removeLabelIDs,
	}
	err := retry.Do(ctx, c.policyFor("messages.batchModify"), func() error {
		return c.srv.Users.Messages.BatchModify(user, req).Context(ctx).Do()
	})
	return wrapError("unable to modify messages", err)
}

func (c *Client) BatchDelete(ctx context.Context, ids []string) error {
	req := &gmail.BatchDeleteMessagesRequest{Ids: ids}
	err := retry.Do(ctx, c.policyFor("messages.batchDelete"), func() error {
		return c.srv.Users.Messages.BatchDelete(user, req).Context(ctx).Do()
	})
	return wrapError("unable to delete messages", err)
}

func (c *Client) ListLabels(ctx context.Context) ([]*mailbox.Label, error) {
	resp, err := retry.DoValue(ctx, c.policyFor("labels.list"), func() (*gmail.ListLabelsResponse, error) {
		return c.srv.Users.Labels.List(user).Context(ctx).Do()
	})
	if err != nil {
		return nil, wrapError("unable to retrieve labels", err)
	}

	labels := make([]*mailbox.Label, 0, len(resp.Labels))
	for _, l := range resp.Labels {
		labels = append(labels, toLabel(l))
	}
	return labels, nil
}

func (c *Client) GetLabel(ctx context.Context, id string) (*mailbox.Label, error) {
	l, err := retry.DoValue(ctx, c.policyFor("labels.get"), func() (*gmail.Label, error) {
		return c.srv.Users.Labels.Get(user, id).Context(ctx).Do()
	})
	if err != nil {
		return nil, wrapError("unable to get label "+id, err)
	}
	return toLabel(l), nil
}

func (c *Client) CreateLabel(ctx context.Context, label *mailbox.Label) (*mailbox.Label, error) {
	body := &gmail.Label{
		Name:                  label.Name,
		LabelListVisibility:   label.LabelListVisibility,
		MessageListVisibility: label.MessageListVisibility,
	}
	created, err := retry.DoValue(ctx, c.policyFor("labels.create"), func() (*gmail.Label, error) {
		return c.srv.Users.Labels.Create(user, body).Context(ctx).Do()
	})
	if err != nil {
		return nil, wrapError("unable to create label", err)
	}
	return toLabel(created), nil
}

func (c *Client) RenameLabel(ctx context.Context, id, name string) (*mailbox.Label, error) {
	updated, err := retry.DoValue(ctx, c.policyFor("labels.patch"), func() (*gmail.Label, error) {
		return c.srv.Users.Labels.Patch(user, id, &gmail.Label{Name: name}).Context(ctx).Do()
	})
	if err != nil {
		return nil, wrapError("unable to rename label "+id, err)
	}
	return toLabel(updated), nil
}

func (c *Client) DeleteLabel(ctx context.Context, id string) error {
	err := retry.Do(ctx, c.policyFor("labels.delete"), func() error {
		return c.srv.Users.Labels.Delete(user, id).Context(ctx).Do()
	})
	return wrapError("unable to delete label "+id, err)
}

func (c *Client) ListFilters(ctx context.Context) ([]*mailbox.Filter, error) {
	resp, err := retry.DoValue(ctx, c.policyFor("filters.list"), func() (*gmail.ListFiltersResponse, error) {
		return c.srv.Users.Settings.Filters.List(user).Context(ctx).Do()
	})
	if err != nil {
		return nil, wrapError("unable to list filters", err)
	}

	filters := make([]*mailbox.Filter, 0, len(resp.Filter))
	for _, f := range resp.Filter {
		filters = append(filters, toFilter(f))
	}
	return filters, nil
}

func (c *Client) CreateFilter(ctx context.Context, filter *mailbox.Filter) (*mailbox.Filter, error) {
	body := &gmail.Filter{
		Criteria: &gmail.FilterCriteria{
			From:  filter.From,
			Query: filter.Query,
		},
		Action: &gmail.FilterAction{
			AddLabelIds:    filter.AddLabelIDs,
			RemoveLabelIds: filter.RemoveLabelIDs,
		},
	}
	created, err := retry.DoValue(ctx, c.policyFor("filters.create"), func() (*gmail.Filter, error) {
		return c.srv.Users.Settings.Filters.Create(user, body).Context(ctx).Do()
	})
	if err != nil {
		return nil, wrapError("unable to create filter", err)
	}
	return toFilter(created), nil
}

func (c *Client) DeleteFilter(ctx context.Context, id string) error {
	err := retry.Do(ctx, c.policyFor("filters.delete"), func() error {
		return c.srv.Users.Settings.Filters.Delete(user, id).Context(ctx).Do()
	})
	return wrapError("unable to delete filter "+id, err)
}

func (c *Client) Profile(ctx context.Context) (*mailbox.Profile, error) {
	p, err := retry.DoValue(ctx, c.policyFor("getProfile"), func() (*gmail.Profile, error) {
		return c.srv.Users.GetProfile(user).Context(ctx).Do()
	})
	if err != nil {
		return nil, wrapError("unable to get profile", err)
	}
	return &mailbox.Profile{EmailAddress: p.EmailAddress, MessagesTotal: p.MessagesTotal}, nil
}

func toMetadata(msg *gmail.Message) *mailbox.MessageMetadata {
	meta := &mailbox.MessageMetadata{
		ID:           msg.Id,
		ThreadID:     msg.ThreadId,
		Snippet:      msg.Snippet,
		LabelIDs:     msg.LabelIds,
		InternalDate: msg.InternalDate,
	}
	if msg.Payload != nil {
		meta.From = getHeader(msg.Payload.Headers, mailbox.HeaderFrom)
		meta.Date = getHeader(msg.Payload.Headers, mailbox.HeaderDate)
		meta.Subject = getHeader(msg.Payload.Headers, mailbox.HeaderSubject)
		meta.ListUnsubscribe = getHeader(msg.Payload.Headers, mailbox.HeaderListUnsubscribe)
	}
	return meta
}

func toLabel(l *gmail.Label) *mailbox.Label {
	label := &mailbox.Label{
		ID:                    l.Id,
		Name:                  l.Name,
		Type:                  l.Type,
		MessagesTotal:         l.MessagesTotal,
		MessagesUnread:        l.MessagesUnread,
		ThreadsTotal:          l.ThreadsTotal,
		ThreadsUnread:         l.ThreadsUnread,
		LabelListVisibility:   l.LabelListVisibility,
		MessageListVisibility: l.MessageListVisibility,
	}
	if l.Color != nil {
		label.BackgroundColor = l.Color.BackgroundColor
		label.TextColor = l.Color.TextColor
	}
	return label
}

func toFilter(f *gmail.Filter) *mailbox.Filter {
	filter := &mailbox.Filter{ID: f.Id}
	if f.Criteria != nil {
		filter.From = f.Criteria.From
		filter.Query = f.Criteria.Query
	}
	if f.Action != nil {
		filter.AddLabelIDs = f.Action.AddLabelIds
		filter.RemoveLabelIDs = f.Action.RemoveLabelIds
	}
	return filter
}

// getHeader matches header names case-insensitively; senders are not
// consistent about List-Unsubscribe casing.
func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value
		}
	}
	return ""
}
