package result

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/repository"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
	"github.com/frontierlab/labdesk/pkg/metrics"
)

// DefaultParallelism bounds concurrent saves in a batch.
const DefaultParallelism = 4

type Service struct {
	repo        repository.ResultRepository
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	parallelism int
}

func NewService(repo repository.ResultRepository, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		metrics:     m,
		logger:      logger.With().Str("component", "result").Logger(),
		parallelism: DefaultParallelism,
	}
}

// Get returns the stored result for the pair, nil when none exists.
func (s *Service) Get(ctx context.Context, visitID, testID int64) (*model.Result, error) {
	res, err := s.repo.Get(ctx, visitID, testID)
	if err != nil {
		return nil, apperrors.WrapPersistence("get result", err)
	}
	return res, nil
}

func (s *Service) ListForVisit(ctx context.Context, visitID int64) ([]*model.ResultEntry, error) {
	entries, err := s.repo.ListEntries(ctx, visitID)
	if err != nil {
		return nil, apperrors.WrapPersistence("list results", err)
	}
	return entries, nil
}

// Save stores one result. Failures are reported in the outcome rather than
// returned so that batch callers can carry on with the remaining pairs.
func (s *Service) Save(ctx context.Context, visitID int64, in model.ResultInput) model.SaveOutcome {
	start := time.Now()
	defer s.metrics.ObserveSince("save_result", start)

	status, err := s.repo.Upsert(ctx, visitID, in.TestID, in.Value, in.Remarks)
	if err != nil {
		s.metrics.ResultsSaved.WithLabelValues(string(model.SaveFailed)).Inc()
		s.logger.Error().Err(err).
			Int64("visit_id", visitID).
			Int64("test_id", in.TestID).
			Msg("Failed to save result")
		return model.SaveOutcome{TestID: in.TestID, Status: model.SaveFailed, Error: err.Error()}
	}

	s.metrics.ResultsSaved.WithLabelValues(string(status)).Inc()
	return model.SaveOutcome{TestID: in.TestID, Status: status}
}

// SaveBatch saves every entry independently. Outcomes keep the input order.
func (s *Service) SaveBatch(ctx context.Context, visitID int64, entries []model.ResultInput) (*model.BatchResult, error) {
	if len(entries) == 0 {
		return nil, apperrors.Validation("no results to save")
	}
	for _, e := range entries {
		if e.TestID <= 0 {
			return nil, apperrors.Validation(fmt.Sprintf("invalid test id %d", e.TestID))
		}
	}

	outcomes := make([]model.SaveOutcome, len(entries))

	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for i, e := range entries {
		g.Go(func() error {
			outcomes[i] = s.Save(ctx, visitID, e)
			return nil
		})
	}
	_ = g.Wait()

	batch := &model.BatchResult{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.OK() {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}

	s.logger.Info().
		Int64("visit_id", visitID).
		Int("succeeded", batch.Succeeded).
		Int("failed", batch.Failed).
		Msg("Result batch saved")
	return batch, nil
}
