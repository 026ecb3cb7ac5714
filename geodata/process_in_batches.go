package geodata

import (
	"context"
	"fmt"
	"time"
)

// ProcessInBatches splits items into batches of batchLimit and invokes fn
// for each batch in order. Between batches it waits delay (when positive)
// and honors context cancellation, so long feature lists never block a
// caller from cancelling mid-processing.
func ProcessInBatches[T any](
	ctx context.Context,
	items []T,
	batchLimit int,
	delay time.Duration,
	fn func(batch []T, batchIndex, totalBatches int) error,
) error {
	if len(items) == 0 || batchLimit <= 0 {
		return nil
	}

	totalBatches := (len(items) + batchLimit - 1) / batchLimit
	isFirst := true

	for start := 0; start < len(items); start += batchLimit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if delay > 0 && !isFirst {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		isFirst = false

		end := start + batchLimit
		if end > len(items) {
			end = len(items)
		}

		batchIndex := start / batchLimit
		if err := fn(items[start:end], batchIndex, totalBatches); err != nil {
			return fmt.Errorf("failed to process batch %d: %w", batchIndex, err)
		}
	}

	return nil
}
