package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/metrics"
	"github.com/hmpps/incentives-ui/internal/storage"
)

// BehaviourEntriesTable is the analytics table of behaviour entries over the last 28 days.
const BehaviourEntriesTable = "behaviour_entries_28d"

// AnalyticsService builds charts from analytics tables.
type AnalyticsService interface {
	// BehaviourEntries totals positive and negative behaviour entries per wing
	// of prison from the latest published table.
	BehaviourEntries(ctx context.Context, prison string) (*domain.BehaviourReport, error)
}

type cachedTable struct {
	key  string
	date time.Time
	rows []domain.BehaviourEntryRow
}

type analyticsService struct {
	store   storage.Storage
	source  string // storage provider name, for metrics
	backoff func() retry.Backoff
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]cachedTable
}

// NewAnalyticsService creates a new AnalyticsService reading tables from store.
func NewAnalyticsService(store storage.Storage, source string, logger *slog.Logger) AnalyticsService {
	return &analyticsService{
		store:  store,
		source: source,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
		},
		logger: logger,
		cache:  make(map[string]cachedTable),
	}
}

func (s *analyticsService) BehaviourEntries(ctx context.Context, prison string) (*domain.BehaviourReport, error) {
	table, err := s.load(ctx, BehaviourEntriesTable)
	if err != nil {
		return nil, err
	}

	byWing := make(map[string]*domain.BehaviourSummary)
	report := &domain.BehaviourReport{
		Prison: prison,
		Date:   table.date,
		Totals: domain.BehaviourSummary{Label: "All"},
	}
	for _, row := range table.rows {
		if row.Prison != prison {
			continue
		}
		summary, ok := byWing[row.Wing]
		if !ok {
			summary = &domain.BehaviourSummary{Label: row.Wing}
			byWing[row.Wing] = summary
		}
		summary.Positives += row.Positives
		summary.Negatives += row.Negatives
		report.Totals.Positives += row.Positives
		report.Totals.Negatives += row.Negatives
	}

	report.Rows = make([]domain.BehaviourSummary, 0, len(byWing))
	for _, summary := range byWing {
		report.Rows = append(report.Rows, *summary)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].Label < report.Rows[j].Label
	})

	return report, nil
}

// load returns the latest copy of table, decoding it only when a newer copy
// has been published since the last call.
func (s *analyticsService) load(ctx context.Context, table string) (cachedTable, error) {
	const op = "AnalyticsService.load"

	var loaded cachedTable
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		key, date, err := storage.Latest(ctx, s.store, table)
		if err != nil {
			return retryable(err)
		}

		s.mu.Lock()
		cached, ok := s.cache[table]
		s.mu.Unlock()
		if ok && cached.key == key {
			loaded = cached
			return nil
		}

		body, _, err := s.store.Get(ctx, key)
		if err != nil {
			return retryable(err)
		}
		defer body.Close()

		var rows []domain.BehaviourEntryRow
		if err := json.NewDecoder(body).Decode(&rows); err != nil {
			return domain.Internal(err, op, "Analytics table could not be read")
		}

		loaded = cachedTable{key: key, date: date, rows: rows}
		s.mu.Lock()
		s.cache[table] = loaded
		s.mu.Unlock()

		s.logger.Info("loaded analytics table", "table", table, "key", key, "rows", len(rows))
		return nil
	})
	metrics.AnalyticsLoaded(s.source, err)
	if err != nil {
		s.logger.Error("failed to load analytics table", "table", table, "error", err)
		var de *domain.Error
		switch {
		case storage.IsNotFound(err):
			return cachedTable{}, domain.NotFound(op, "analytics table", table)
		case errors.As(err, &de):
			return cachedTable{}, err
		default:
			return cachedTable{}, domain.Unavailable(err, op, "Analytics are not available right now")
		}
	}
	return loaded, nil
}

func retryable(err error) error {
	if storage.IsPermanent(err) {
		return err
	}
	return retry.RetryableError(err)
}
