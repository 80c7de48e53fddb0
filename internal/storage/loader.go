// This file implements a generic, batched loader that drains typed rows from a
// channel and invokes a provided bulk-insert function (CopyFn) per batch.
//
// Backends implement CopyFn using their most efficient primitives (Postgres
// COPY, SQL Server bulk copy, a prepared INSERT in one SQLite transaction).
//
// Logging: on every successful flush, a debug progress line is emitted with
// running totals and instantaneous rows/sec since the previous flush.
package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations should
// insert the provided rows (aligned to 'columns' order) and return the number
// of rows reported as inserted. The function should be safe for repeated calls
// and cancel promptly when ctx is done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains typed rows from 'in', groups them into batches of size
// 'batchSize', and calls 'copyFn' for each non-empty batch. It returns the total
// number of rows reported by copyFn and the first error encountered.
//
// Cancellation: returns (total, ctx.Err()) when canceled. Progress is logged on
// each successful flush; a nil logger uses zap.L().
func LoadBatches(
	ctx context.Context,
	logger *zap.Logger,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}
	if logger == nil {
		logger = zap.L()
	}

	var (
		total       int64
		batches     int64
		batch       = make([][]any, 0, batchSize)
		start       = time.Now()
		lastFlushTS = start
		lastTotal   int64
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n

		// Reuse allocated slice; keep capacity to avoid churn.
		batch = batch[:0]

		if err != nil {
			logger.Error("batch copy failed",
				zap.Int64("batch", batches+1),
				zap.Int64("inserted", n),
				zap.Int64("total", total),
				zap.Error(err),
			)

			return err
		}

		// Progress log per successful batch.
		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		insertedSinceLast := total - lastTotal
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(insertedSinceLast) / sinceLast.Seconds()
		}
		logger.Debug("batch copied",
			zap.Int64("batch", batches),
			zap.Float64("rps", rps),
			zap.Int64("inserted", n),
			zap.Int64("total_inserted", total),
			zap.Duration("elapsed", now.Sub(start).Truncate(time.Millisecond)),
			zap.Duration("since_last", sinceLast.Truncate(time.Millisecond)),
		)
		lastFlushTS = now
		lastTotal = total

		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				// Channel closed: flush remaining rows.
				if err := flush(); err != nil {
					return total, err
				}
				logger.Debug("loader input closed",
					zap.Int64("batches", batches),
					zap.Int64("total_inserted", total),
				)

				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}
