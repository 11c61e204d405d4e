package espw

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ncezid-biome/espwAlleleCaller/internal/logging"
)

// Batch classifies many genomes concurrently with a bounded worker
// pool. One worker failure never touches sibling records.
type Batch struct {
	orch    *Orchestrator
	workers int
	log     logging.Logger
}

// NewBatch returns a coordinator running at most workers concurrent
// classifications.
func NewBatch(orch *Orchestrator, workers int) (*Batch, error) {
	if orch == nil {
		return nil, &ConfigurationError{Reason: "batch requires an orchestrator"}
	}
	if workers < 1 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("worker count %d must be positive", workers)}
	}
	return &Batch{orch: orch, workers: workers, log: logging.Named("batch")}, nil
}

type batchOutput struct {
	result   CallResult
	failures []Failure
}

// Run classifies every record and returns the results in input order.
// Records sharing a key are rejected up front. Per-record problems
// come back as Failures next to a degraded result; the returned error
// is non-nil only when the context was cancelled, and then the results
// cover the records finished before cancellation.
func (b *Batch) Run(ctx context.Context, recs []GenomeRecord) ([]CallResult, []Failure, error) {
	seen := make(map[string]bool, len(recs))
	for _, r := range recs {
		if r.Key == "" {
			return nil, nil, &ConfigurationError{Reason: "record with empty key"}
		}
		if seen[r.Key] {
			return nil, nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate record key %q", r.Key)}
		}
		seen[r.Key] = true
	}

	b.log.Info("batch start", logging.Int("records", len(recs)), logging.Int("workers", b.workers))
	start := time.Now()

	jobs := make(chan GenomeRecord)
	out := make(chan batchOutput)

	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				res, fails := b.orch.Call(ctx, rec)
				out <- batchOutput{result: res, failures: fails}
			}
		}()
	}

	byKey := make(map[string]CallResult, len(recs))
	var failures []Failure
	var collect sync.WaitGroup
	collect.Add(1)
	go func() {
		defer collect.Done()
		for o := range out {
			byKey[o.result.Key] = o.result
			failures = append(failures, o.failures...)
		}
	}()

	var cancelled error
feed:
	for _, rec := range recs {
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		default:
		}
		select {
		case jobs <- rec:
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(out)
	collect.Wait()

	results := make([]CallResult, 0, len(byKey))
	for _, rec := range recs {
		if res, ok := byKey[rec.Key]; ok {
			results = append(results, res)
		}
	}

	b.log.Info("batch done",
		logging.Int("classified", len(results)),
		logging.Int("failures", len(failures)),
		logging.String("elapsed", time.Since(start).Round(time.Millisecond).String()))
	return results, failures, cancelled
}
