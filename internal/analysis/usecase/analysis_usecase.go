package usecase

import (
	"context"
	"fmt"
	"time"

	analysisdomain "mailsweep-backend/internal/analysis/domain"
	analysisdto "mailsweep-backend/internal/analysis/dto"
	"mailsweep-backend/internal/analysis/repository"
	"mailsweep-backend/pkg/config"
	"mailsweep-backend/pkg/mailbox"
	"mailsweep-backend/pkg/metrics"

	"go.uber.org/zap"
)

var analysisHeaders = []string{mailbox.HeaderFrom, mailbox.HeaderDate, mailbox.HeaderListUnsubscribe}

var previewHeaders = []string{mailbox.HeaderFrom, mailbox.HeaderSubject, mailbox.HeaderDate}

// analysisUsecase implements AnalysisUsecase interface
type analysisUsecase struct {
	statsRepo      repository.StatsRepository
	checkpointRepo repository.CheckpointRepository
	safeSenders    SafeSenderLister
	unsubscribed   UnsubscribedSenderLister
	opener         mailbox.Opener
	cfg            config.AnalysisConfig
	logger         *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewAnalysisUsecase creates a new instance of analysisUsecase
func NewAnalysisUsecase(
	statsRepo repository.StatsRepository,
	checkpointRepo repository.CheckpointRepository,
	safeSenders SafeSenderLister,
	unsubscribed UnsubscribedSenderLister,
	opener mailbox.Opener,
	cfg config.AnalysisConfig,
	logger *zap.Logger,
) AnalysisUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &analysisUsecase{
		statsRepo:      statsRepo,
		checkpointRepo: checkpointRepo,
		safeSenders:    safeSenders,
		unsubscribed:   unsubscribed,
		opener:         opener,
		cfg:            cfg,
		logger:         logger.Named("analysis"),
		now:            time.Now,
	}
}

// LowerBound is the start of the scan window: the last successful run, or one
// calendar month before now for a user that has never been analyzed.
func LowerBound(checkpoint *analysisdomain.AnalysisCheckpoint, now time.Time) time.Time {
	if checkpoint != nil && !checkpoint.LastRun.IsZero() {
		return checkpoint.LastRun
	}
	return now.AddDate(0, -1, 0)
}

func (u *analysisUsecase) collect(ctx context.Context, in *AnalyzeInput, started time.Time, headers []string) (string, *mailbox.FetchResult, error) {
	checkpoint, err := u.checkpointRepo.FindByUser(in.UserID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read analysis checkpoint: %w", err)
	}
	query := mailbox.InboxSince(LowerBound(checkpoint, started))

	provider, err := u.opener.Open(ctx, in.Credentials)
	if err != nil {
		return query, nil, err
	}

	ids, err := mailbox.ListMessageIDs(ctx, provider, mailbox.ListOptions{
		Query:       query,
		PageSize:    u.cfg.PageSize,
		MaxMessages: u.cfg.MaxMessages,
	})
	if err != nil {
		return query, nil, err
	}

	fetched, err := mailbox.FetchMetadata(ctx, provider, ids, mailbox.FetchOptions{
		BatchSize: u.cfg.BatchSize,
		Delay:     u.cfg.BatchDelay,
		Headers:   headers,
		Sleep:     u.sleep,
		Logger:    u.logger.With(zap.String("user_id", in.UserID)),
	})
	if err != nil {
		return query, nil, err
	}
	return query, fetched, nil
}

func (u *analysisUsecase) Analyze(ctx context.Context, in *AnalyzeInput) (*analysisdto.AnalyzeResponse, error) {
	started := u.now()
	log := u.logger.With(zap.String("user_id", in.UserID))

	query, fetched, err := u.collect(ctx, in, started, analysisHeaders)
	if err != nil {
		metrics.IncrementAnalysisRun("fetch_failed")
		return nil, err
	}

	safeDomains, err := u.safeSenders.ListDomains(in.UserID)
	if err != nil {
		metrics.IncrementAnalysisRun("store_failed")
		return nil, fmt.Errorf("failed to load safe senders: %w", err)
	}
	blocked, err := u.unsubscribed.ListSenders(in.UserID)
	if err != nil {
		metrics.IncrementAnalysisRun("store_failed")
		return nil, fmt.Errorf("failed to load unsubscribed senders: %w", err)
	}

	exclude := u.cfg.ExcludeTransactional
	if in.ExcludeTransactional != nil {
		exclude = *in.ExcludeTransactional
	}
	aggregates := Classify(fetched.Messages, ClassifyOptions{
		Now:                  started,
		ExcludeTransactional: exclude,
		SafeDomains:          safeDomains,
		Blocked:              blocked,
	})

	rows := make([]*analysisdomain.SenderStat, 0, len(aggregates))
	for _, a := range aggregates {
		rows = append(rows, &analysisdomain.SenderStat{
			UserID:            in.UserID,
			Domain:            a.Domain,
			SenderEmail:       a.SenderEmail,
			TotalEmails:       a.TotalEmails,
			SenderCount:       len(a.Senders),
			MonthlyAvg:        a.MonthlyAvg,
			UnsubscribeURL:    a.UnsubscribeURL,
			UnsubscribeMailto: a.UnsubscribeMailto,
		})
	}

	// The checkpoint only moves once the aggregates are stored, so a failed
	// upsert re-scans the same window next time.
	if err := u.statsRepo.Upsert(rows); err != nil {
		metrics.IncrementAnalysisRun("store_failed")
		log.Error("failed to upsert sender stats", zap.Int("rows", len(rows)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStoreStats, err)
	}

	advanced := true
	if err := u.checkpointRepo.Save(in.UserID, started); err != nil {
		advanced = false
		metrics.CheckpointWriteFailures.Inc()
		log.Warn("failed to advance analysis checkpoint; next pass re-scans this window",
			zap.String("query", query),
			zap.Error(err),
		)
	}

	metrics.IncrementAnalysisRun("success")
	log.Info("analysis pass complete",
		zap.String("query", query),
		zap.Int("scanned", len(fetched.Messages)),
		zap.Int("dropped", fetched.Dropped),
		zap.Int("domains", len(rows)),
	)

	return &analysisdto.AnalyzeResponse{
		Message:            "Stats stored successfully",
		Inserted:           len(rows),
		Analyzed:           len(fetched.Messages),
		Scanned:            len(fetched.Messages) + fetched.Dropped,
		Dropped:            fetched.Dropped,
		Query:              query,
		CheckpointAdvanced: advanced,
	}, nil
}

func (u *analysisUsecase) PreviewEmails(ctx context.Context, in *AnalyzeInput) ([]*analysisdto.EmailPreview, error) {
	_, fetched, err := u.collect(ctx, in, u.now(), previewHeaders)
	if err != nil {
		return nil, err
	}

	previews := make([]*analysisdto.EmailPreview, 0, len(fetched.Messages))
	for _, m := range fetched.Messages {
		previews = append(previews, &analysisdto.EmailPreview{
			From:    m.From,
			Subject: m.Subject,
			Date:    m.Date,
			Snippet: m.Snippet,
		})
	}
	return previews, nil
}

func (u *analysisUsecase) GetStats(userID string) ([]*analysisdomain.SenderStat, error) {
	return u.statsRepo.ListByUser(userID)
}
