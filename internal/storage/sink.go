package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"autofeat/internal/ddl"
	"autofeat/internal/metrics"
)

// DefaultBatchSize is used when Sink.BatchSize is not positive.
const DefaultBatchSize = 5000

// Sink writes a reconciled table into a Repository. It satisfies
// reconcile.TableWriter.
type Sink struct {
	Repo       Repository
	Kind       string // storage kind, used to find the DDL bootstrapper
	Table      string
	AutoCreate bool
	BatchSize  int
	Job        string
	Logger     *zap.Logger
}

// WriteTable infers a logical type per column, optionally creates the
// destination table, and streams typed rows through LoadBatches.
func (s *Sink) WriteTable(ctx context.Context, header []string, rows [][]string) error {
	if s.Repo == nil {
		return fmt.Errorf("storage: sink has no repository")
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.L()
	}
	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	cols := ddl.InferColumns(header, rows)
	if s.AutoCreate {
		if err := EnsureTable(ctx, s.Kind, s.Repo, s.Table, cols); err != nil {
			return fmt.Errorf("storage: ensure table %s: %w", s.Table, err)
		}
	}

	in := make(chan []any, batchSize)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(in)
		for _, row := range rows {
			rec := make([]any, len(cols))
			for j, c := range cols {
				if j < len(row) {
					rec[j] = ddl.Value(c.Type, row[j])
				}
			}
			select {
			case in <- rec:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var batches int64
	copyFn := func(ctx context.Context, columns []string, batch [][]any) (int64, error) {
		batches++
		return s.Repo.CopyFrom(ctx, columns, batch)
	}

	var total int64
	g.Go(func() error {
		var err error
		total, err = LoadBatches(gctx, logger, header, in, batchSize, copyFn)
		return err
	})

	err := g.Wait()
	metrics.RecordRow(s.Job, "stored", total)
	metrics.RecordBatches(s.Job, batches)
	if err != nil {
		return fmt.Errorf("storage: load %s: %w", s.Table, err)
	}
	logger.Info("table stored",
		zap.String("kind", s.Kind),
		zap.String("table", s.Table),
		zap.Int64("rows", total),
		zap.Int64("batches", batches),
	)
	return nil
}
