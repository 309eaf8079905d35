// Package batch splits large op lists into fixed-size chunks and submits
// them one after another.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultSize  = 100
	DefaultDelay = 2 * time.Second
)

// Split cuts items into chunks of size; the last chunk may be shorter.
// A size of zero or less uses DefaultSize.
func Split[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultSize
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end:end])
	}
	return out
}

// SubmitFunc submits batch i of n and returns an identifier for it.
type SubmitFunc[T any] func(ctx context.Context, i, n int, batch []T) (string, error)

// Submitter sends batches sequentially with a pause between them. There is
// no retry: the first failure stops the run.
type Submitter[T any] struct {
	Submit SubmitFunc[T]
	Delay  time.Duration
	Logger zerolog.Logger

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Run submits every batch and returns the identifiers collected so far. On
// failure the error names the failing batch and later batches are skipped.
func (s *Submitter[T]) Run(ctx context.Context, batches [][]T) ([]string, error) {
	sleep := s.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	delay := s.Delay
	if delay < 0 {
		delay = 0
	}

	results := make([]string, 0, len(batches))
	for i, b := range batches {
		if i > 0 && delay > 0 {
			s.Logger.Debug().Dur("delay", delay).Int("next", i+1).Msg("waiting before next batch")
			if err := sleep(ctx, delay); err != nil {
				return results, fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
			}
		}
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
		}

		id, err := s.Submit(ctx, i, len(batches), b)
		if err != nil {
			s.Logger.Error().Err(err).Int("batch", i+1).Int("of", len(batches)).Msg("batch failed")
			return results, fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
		}
		s.Logger.Info().Int("batch", i+1).Int("of", len(batches)).Int("size", len(b)).Str("id", id).Msg("batch submitted")
		results = append(results, id)
	}
	return results, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
