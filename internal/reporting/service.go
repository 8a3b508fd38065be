package reporting

import (
	"context"
	"errors"
	"time"

	"restoran-bilanco/internal/comparison"
	"restoran-bilanco/internal/logger"
	"restoran-bilanco/internal/period"
)

// Result bir karşılaştırmanın tüm çıktısı.
type Result struct {
	Mode   period.Mode
	Pair   period.Pair
	Left   *comparison.PeriodSnapshot
	Right  *comparison.PeriodSnapshot
	Deltas comparison.DeltaSet
}

type Service struct {
	builder *SnapshotBuilder
	engine  *comparison.Engine
	metrics *Metrics
	loc     *time.Location
	now     func() time.Time
	log     *logger.Logger
}

func NewService(builder *SnapshotBuilder, engine *comparison.Engine, metrics *Metrics, loc *time.Location, log *logger.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		builder: builder,
		engine:  engine,
		metrics: metrics,
		loc:     loc,
		now:     time.Now,
		log:     log,
	}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Compare modu çözer, iki dönemi üretir ve farkları hesaplar.
func (s *Service) Compare(ctx context.Context, branchID uint, mode period.Mode, custom *period.CustomRanges) (*Result, error) {
	pair, err := period.Resolve(mode, s.now().In(s.loc), custom)
	if err != nil {
		s.metrics.IncComparison(string(mode), OutcomeInvalid)
		return nil, err
	}

	ctx = s.log.WithBranchID(ctx, branchID)
	left, right, err := s.builder.BuildPair(ctx, branchID, pair)
	if err != nil {
		s.metrics.IncComparison(string(mode), OutcomeError)
		s.log.Error(ctx, "comparison.snapshot_failed", err)
		return nil, err
	}

	deltas, err := s.engine.Compute(ctx, left, right)
	if err != nil {
		outcome := OutcomeError
		if errors.Is(err, comparison.ErrInvalidInput) {
			outcome = OutcomeInvalid
		}
		s.metrics.IncComparison(string(mode), outcome)
		return nil, err
	}

	s.metrics.IncComparison(string(mode), OutcomeOK)
	return &Result{Mode: mode, Pair: pair, Left: left, Right: right, Deltas: deltas}, nil
}
