package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/fixhub/estimator-cli/internal/model"
)

var (
	batchCSV         string
	batchConcurrency int
)

// batchJob is one row of the input CSV.
type batchJob struct {
	JobID   string
	Request model.ExtractionRequest
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate estimates for many jobs from a CSV",
	Long: `Reads a CSV with columns job_id, description, service_type and optional
location, urgency, budget, and runs the estimation pipeline for each row.
Rows are independent: a failed row is logged and the run continues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		jobs, err := parseJobsCSV(batchCSV)
		if err != nil {
			return eris.Wrap(err, "batch: parse csv")
		}
		if len(jobs) == 0 {
			return eris.New("batch: no jobs in csv")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}
		limiter := rate.NewLimiter(rate.Limit(cfg.Batch.RatePerSecond), 1)

		var succeeded, failed atomic.Int64

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		for _, job := range jobs {
			job := job
			g.Go(func() error {
				if err := limiter.Wait(gCtx); err != nil {
					return err // context canceled
				}

				est, err := env.Estimator.GenerateEstimate(gCtx, job.JobID, job.Request)
				if err != nil {
					failed.Add(1)
					zap.L().Error("batch: estimate failed",
						zap.String("job_id", job.JobID),
						zap.Error(err),
					)
					return nil // independent rows: don't fail the group
				}
				succeeded.Add(1)
				zap.L().Info("batch: estimate complete",
					zap.String("job_id", job.JobID),
					zap.Int("confidence", est.Confidence),
					zap.Float64("total_cost", est.TotalEstimatedCost),
				)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch")
		}

		zap.L().Info("batch: run complete",
			zap.Int64("succeeded", succeeded.Load()),
			zap.Int64("failed", failed.Load()),
			zap.Int("total", len(jobs)),
		)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "path to jobs CSV (required)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent estimations (default from config)")
	batchCmd.MarkFlagRequired("csv") //nolint:errcheck
	rootCmd.AddCommand(batchCmd)
}

// parseJobsCSV reads jobs from a headered CSV. Recognized headers: job_id,
// description, service_type, location, urgency, budget.
func parseJobsCSV(path string) ([]batchJob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrap(err, "read header")
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"job_id", "description", "service_type"} {
		if _, ok := col[required]; !ok {
			return nil, eris.Errorf("missing required column %q", required)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var jobs []batchJob
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "read record")
		}

		var budget *float64
		if raw := field(record, "budget"); raw != "" {
			if b, err := strconv.ParseFloat(raw, 64); err == nil {
				budget = &b
			}
		}

		jobs = append(jobs, batchJob{
			JobID: field(record, "job_id"),
			Request: model.NewExtractionRequest(
				field(record, "description"),
				field(record, "service_type"),
				field(record, "location"),
				field(record, "urgency"),
				budget,
			),
		})
	}
	return jobs, nil
}
