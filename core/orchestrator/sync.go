package orchestrator

import (
	"context"
	"fmt"

	"mediaforge/core/registry"
	"mediaforge/core/utils"
	"mediaforge/logger"
	"mediaforge/model"
)

// SyncOptions tunes a resynchronization run.
type SyncOptions struct {
	// JobID restricts the run to a single tracked job.
	JobID string

	// Download fetches the asset for jobs that turn out completed.
	Download bool

	// OutputPath overrides the artifact location. Only meaningful
	// together with JobID.
	OutputPath string
}

// SyncReport summarizes a resynchronization run.
type SyncReport struct {
	Checked    int
	Completed  int
	Downloaded int
	Failed     int
	Skipped    int
}

// SyncPending re-checks in-flight jobs against their vendors and maps
// the answers onto the status machine. Per-job errors are logged and
// counted as skipped; one bad job never aborts the batch.
func (o *Orchestrator) SyncPending(ctx context.Context, opts SyncOptions) (*SyncReport, error) {
	var jobs []*model.Job
	if opts.JobID != "" {
		job, err := o.repo.Get(opts.JobID)
		if err != nil {
			return nil, err
		}
		jobs = []*model.Job{job}
	} else {
		var err error
		jobs, err = o.repo.Pending()
		if err != nil {
			return nil, err
		}
	}

	report := &SyncReport{}
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if job.Status.IsTerminal() {
			report.Skipped++
			continue
		}
		report.Checked++
		if err := o.syncJob(ctx, job, opts, report); err != nil {
			logger.Warn("job sync failed",
				logger.String("job_id", job.ID),
				logger.String("provider", job.Provider),
				logger.ErrorField(err))
			report.Skipped++
		}
	}

	logger.Info("sync finished",
		logger.Int("checked", report.Checked),
		logger.Int("completed", report.Completed),
		logger.Int("downloaded", report.Downloaded),
		logger.Int("failed", report.Failed),
		logger.Int("skipped", report.Skipped))
	return report, nil
}

// syncJob polls one job and applies the resulting transition. The redis
// cache short-circuits repeat polls within the TTL.
func (o *Orchestrator) syncJob(ctx context.Context, job *model.Job, opts SyncOptions, report *SyncReport) error {
	checker := o.checker(job.ContentType, job.Provider)
	if checker == nil {
		return fmt.Errorf("provider %s has no status endpoint", job.Provider)
	}

	state := o.cache.Get(ctx, job.ID)
	if state == nil {
		var err error
		state, err = checker.CheckStatus(ctx, job.ID)
		if err != nil {
			return err
		}
		o.cache.Put(ctx, job.ID, state)
	}

	switch {
	case state.Failed:
		report.Failed++
		return o.repo.UpdateStatus(job.ID, model.StatusFailed, "")
	case state.Done:
		report.Completed++
		if job.Status != model.StatusCompleted {
			if err := o.repo.UpdateStatus(job.ID, model.StatusCompleted, ""); err != nil {
				return err
			}
		}
		if opts.Download && state.AssetURL != "" {
			path, err := o.downloadAsset(ctx, checker, job, state.AssetURL, opts.OutputPath)
			if err != nil {
				return err
			}
			report.Downloaded++
			return o.repo.UpdateStatus(job.ID, model.StatusDownloaded, path)
		}
		return nil
	default:
		logger.Debug("job still in flight",
			logger.String("job_id", job.ID),
			logger.String("vendor_state", state.State))
		return o.repo.UpdateStatus(job.ID, model.StatusProcessing, "")
	}
}

func (o *Orchestrator) downloadAsset(ctx context.Context, checker registry.StatusChecker, job *model.Job, url, outputPath string) (string, error) {
	data, err := checker.DownloadAsset(ctx, url)
	if err != nil {
		return "", err
	}

	path := outputPath
	if path == "" {
		path = job.OutputPath
	}
	if path == "" {
		path = utils.DefaultOutputPath(o.outputDir, job.ContentType, job.Provider, defaultExt(job.ContentType))
	}
	if err := utils.SaveFile(path, data); err != nil {
		return "", err
	}

	logger.Info("asset downloaded",
		logger.String("job_id", job.ID),
		logger.String("path", path),
		logger.Int("bytes", len(data)))

	o.mirror(ctx, &model.GenerationResult{
		Success:      true,
		Provider:     job.Provider,
		ContentType:  job.ContentType,
		FilePath:     path,
		Data:         data,
		GenerationID: job.ID,
	})
	return path, nil
}
