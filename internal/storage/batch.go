package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/san-kum/qjourney/internal/journey"
)

// Recording is the outcome of one headless run.
type Recording struct {
	Meta RunMetadata
	Rows []Row
}

// RecordAll records one session per options value concurrently. Every
// session is created, run and closed on its own goroutine, so each stays
// single-threaded. Results keep the order of opts.
func RecordAll(ctx context.Context, opts []journey.Options, limit time.Duration) ([]Recording, error) {
	results := make([]Recording, len(opts))
	errs := make([]error, len(opts))

	var wg sync.WaitGroup
	for i := range opts {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}

			s, err := journey.New(opts[idx])
			if err != nil {
				errs[idx] = fmt.Errorf("run %d: %w", idx, err)
				return
			}
			defer s.Close()

			meta, rows, err := Record(s, limit)
			if err != nil {
				errs[idx] = fmt.Errorf("run %d (%q): %w", idx, opts[idx].Message, err)
				return
			}
			results[idx] = Recording{Meta: meta, Rows: rows}
		}(i)
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}
