package app

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"abalone/internal/errors"
	"abalone/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Stage is one independent unit of analysis work. Run receives a random
// stream derived from the stage name and key, so its output does not depend
// on which worker runs it or when.
type Stage struct {
	Name string
	Key  string
	Run  func(ctx context.Context, rng *rand.Rand) error
}

// StageFailure records a stage whose statistic was degenerate or whose
// model did not converge.
type StageFailure struct {
	Stage   string `json:"stage"`
	Key     string `json:"key"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StageRunner executes stages concurrently on a bounded worker pool
type StageRunner struct {
	rngPort ports.RNGPort
	logger  *zap.Logger
	workers int
	seed    uint64
}

// NewStageRunner creates a new stage runner
func NewStageRunner(rngPort ports.RNGPort, logger *zap.Logger, workers int, seed uint64) *StageRunner {
	if workers < 1 {
		workers = 1
	}
	return &StageRunner{
		rngPort: rngPort,
		logger:  logger,
		workers: workers,
		seed:    seed,
	}
}

// Execute runs every stage and waits for all of them. Recoverable stage
// errors are logged and returned as failures; any other error cancels the
// remaining stages and is returned.
func (r *StageRunner) Execute(ctx context.Context, stages []Stage) ([]StageFailure, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	var (
		mu       sync.Mutex
		failures []StageFailure
	)

	for _, st := range stages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			log := r.logger.With(zap.String("stage", st.Name), zap.String("key", st.Key))
			log.Info("stage started")
			start := time.Now()

			err := st.Run(ctx, r.rngPort.Stream(st.Name, st.Key, r.seed))
			elapsed := time.Since(start)

			switch {
			case err == nil:
				log.Info("stage finished", zap.Duration("duration", elapsed))
				return nil
			case errors.IsRecoverable(err):
				log.Warn("stage degenerate", zap.Error(err), zap.Duration("duration", elapsed))
				mu.Lock()
				failures = append(failures, StageFailure{
					Stage:   st.Name,
					Key:     st.Key,
					Code:    errors.GetCode(err),
					Message: err.Error(),
				})
				mu.Unlock()
				return nil
			default:
				log.Error("stage failed", zap.Error(err), zap.Duration("duration", elapsed))
				return errors.Wrapf(err, "stage %s/%s", st.Name, st.Key)
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(failures, func(i, j int) bool {
		if failures[i].Stage != failures[j].Stage {
			return failures[i].Stage < failures[j].Stage
		}
		return failures[i].Key < failures[j].Key
	})
	return failures, nil
}
