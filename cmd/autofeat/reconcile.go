package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"autofeat/internal/config"
	"autofeat/internal/datasource/httpds"
	"autofeat/internal/metrics"
	"autofeat/internal/reconcile"
	"autofeat/internal/storage"
	"autofeat/internal/table"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the job's input tables against its feature schema",
	Long: `Loads the persisted schema (or builds one from the job attributes),
reconciles every input table against it, writes the reconciled table to
output.path and, when storage.kind is set, to the database. The updated
schema is written back to schema.path.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	job, err := loadJob(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	schema, err := loadSchema(job)
	if err != nil {
		return err
	}
	inputs, err := job.Inputs()
	if err != nil {
		return err
	}

	flush, err := setupMetrics(job)
	if err != nil {
		return err
	}
	defer flush()

	r := reconcile.New(schema, logger)
	r.Job = job.Job
	r.Load = table.Options{
		Comma:  config.Comma(job.Input.Comma, table.DefaultComma),
		Client: httpds.NewClient(job.HTTPConfig()),
		Logger: logger,
	}

	writers := reconcile.MultiWriter{reconcile.FileWriter{
		Path:  job.Output.Path,
		Comma: config.Comma(job.Output.Comma, table.DefaultComma),
	}}
	if job.Storage.Kind != "" {
		repo, err := storage.New(ctx, storage.Config{
			Kind:  job.Storage.Kind,
			DSN:   job.Storage.DB.DSN,
			Table: job.Storage.DB.Table,
		})
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer repo.Close()
		writers = append(writers, &storage.Sink{
			Repo:       repo,
			Kind:       job.Storage.Kind,
			Table:      job.Storage.DB.Table,
			AutoCreate: job.Storage.DB.AutoCreateTable,
			BatchSize:  job.Storage.DB.BatchSize,
			Job:        job.Job,
			Logger:     logger,
		})
	}
	r.Writer = writers

	if job.Reconcile.SkipLog != "" {
		sl, err := table.NewSkipLog(job.Reconcile.SkipLog)
		if err != nil {
			return err
		}
		defer func() {
			if err := sl.Close(); err != nil {
				logger.Warn("closing skip log", zap.Error(err))
			}
		}()
		r.SkipLog = sl
	}

	buckets := job.BucketSpec()
	if buckets.Default == 0 {
		buckets.Default = schema.DefaultBuckets
	}
	start := time.Now()
	res, err := r.Run(ctx, reconcile.Options{
		Buckets:              buckets,
		OverwriteAllFeatures: job.Reconcile.OverwriteAllFeatures,
		MaxRecords:           job.Reconcile.MaxRecords,
	}, inputs...)
	if err != nil {
		return err
	}

	if job.Schema.Path != "" {
		t := time.Now()
		err := saveSchema(job.Schema.Path, schema)
		metrics.RecordStep(job.Job, "persist", err, time.Since(t))
		if err != nil {
			return err
		}
	}

	st := res.Stats
	logger.Info("reconcile complete",
		zap.String("job", job.Job),
		zap.Int("rows", st.Ingested),
		zap.Int("skipped", st.Skipped),
		zap.Int("columns", len(res.Header)),
		zap.Int("copied", st.Copied),
		zap.Int("regenerated", st.Regenerated),
		zap.Int("emptied", st.Emptied),
		zap.Strings("dropped_interactions", st.DroppedInteractions),
		zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "%d rows, %d columns (%d features) written to %s\n",
		st.Ingested, len(res.Header), schema.Len(), job.Output.Path)
	return nil
}
