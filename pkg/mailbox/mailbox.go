// Package mailbox holds the provider-neutral mail contracts and the shared
// listing, fetching and bulk-mutation helpers built on them.
package mailbox

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"
)

// System label ids and the label used to tag messages for permanent deletion.
const (
	LabelInbox    = "INBOX"
	LabelTrash    = "TRASH"
	LabelUnread   = "UNREAD"
	LabelToDelete = "TO_DELETE"
)

const (
	HeaderFrom            = "From"
	HeaderDate            = "Date"
	HeaderSubject         = "Subject"
	HeaderListUnsubscribe = "List-Unsubscribe"
)

var (
	ErrUnauthorized = errors.New("mail provider credential is missing or expired")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("invalid request")
)

// TokenUpdateFunc is called when a refresh produced a new provider token.
type TokenUpdateFunc func(*oauth2.Token) error

// Credentials identify the mailbox a provider client acts on.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	OnRefresh    TokenUpdateFunc
}

type ListQuery struct {
	Query     string
	LabelIDs  []string
	PageToken string
	PageSize  int64
}

type MessagePage struct {
	IDs                []string
	NextPageToken      string
	ResultSizeEstimate int64
}

// MessageMetadata is the header subset fetched for a single message.
type MessageMetadata struct {
	ID              string
	ThreadID        string
	From            string
	Date            string
	Subject         string
	Snippet         string
	ListUnsubscribe string
	LabelIDs        []string
	InternalDate    int64
}

type Label struct {
	ID                    string
	Name                  string
	Type                  string
	MessagesTotal         int64
	MessagesUnread        int64
	ThreadsTotal          int64
	ThreadsUnread         int64
	BackgroundColor       string
	TextColor             string
	LabelListVisibility   string
	MessageListVisibility string
}

type Filter struct {
	ID             string
	From           string
	Query          string
	AddLabelIDs    []string
	RemoveLabelIDs []string
}

type Profile struct {
	EmailAddress  string
	MessagesTotal int64
}

type MessageLister interface {
	ListMessages(ctx context.Context, q ListQuery) (*MessagePage, error)
}

type MetadataFetcher interface {
	GetMessageMetadata(ctx context.Context, id string, headers []string) (*MessageMetadata, error)
}

type MessageMutator interface {
	BatchModify(ctx context.Context, ids, addLabelIDs, removeLabelIDs []string) error
	BatchDelete(ctx context.Context, ids []string) error
}

type LabelManager interface {
	ListLabels(ctx context.Context) ([]*Label, error)
	GetLabel(ctx context.Context, id string) (*Label, error)
	CreateLabel(ctx context.Context, label *Label) (*Label, error)
	RenameLabel(ctx context.Context, id, name string) (*Label, error)
	DeleteLabel(ctx context.Context, id string) error
}

type FilterManager interface {
	ListFilters(ctx context.Context) ([]*Filter, error)
	CreateFilter(ctx context.Context, filter *Filter) (*Filter, error)
	DeleteFilter(ctx context.Context, id string) error
}

// Provider is a client bound to one mailbox.
type Provider interface {
	MessageLister
	MetadataFetcher
	MessageMutator
	LabelManager
	FilterManager
	Profile(ctx context.Context) (*Profile, error)
}

// Opener builds a Provider for a set of credentials.
type Opener interface {
	Open(ctx context.Context, creds Credentials) (Provider, error)
}
