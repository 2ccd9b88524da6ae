// Package orchestrator drives the generate flow: provider resolution,
// duplicate detection, job tracking and status mapping. It owns no
// vendor protocol of its own; providers generate, the repository
// remembers.
package orchestrator

import (
	"context"
	"path/filepath"
	"strings"

	"mediaforge/cache"
	"mediaforge/core/registry"
	"mediaforge/logger"
	"mediaforge/model"
	"mediaforge/repository"
	"mediaforge/storage"
)

// Options tunes a single generate call.
type Options struct {
	// Force skips duplicate detection and always generates.
	Force bool

	// Command is the audit string recorded on the tracked job.
	Command string
}

// Report is the outcome of a generate call. Exactly one of Duplicate
// and Result is set: a duplicate short-circuits before any provider
// work happens.
type Report struct {
	Result    *model.GenerationResult
	Job       *model.Job
	Duplicate *model.Job
}

// Orchestrator composes the provider registry with the job tracker and
// the optional cache and artifact mirror.
type Orchestrator struct {
	registry  *registry.Registry
	repo      repository.JobRepository
	cache     *cache.StatusCache
	store     *storage.ArtifactStore
	outputDir string
}

// New creates an orchestrator. cache and store may be nil.
func New(reg *registry.Registry, repo repository.JobRepository, statusCache *cache.StatusCache, store *storage.ArtifactStore, outputDir string) *Orchestrator {
	return &Orchestrator{
		registry:  reg,
		repo:      repo,
		cache:     statusCache,
		store:     store,
		outputDir: outputDir,
	}
}

// GenerateMusic runs the full music flow for the named provider.
func (o *Orchestrator) GenerateMusic(ctx context.Context, provider string, req model.MusicRequest, opts Options) (*Report, error) {
	p, err := o.registry.Music(provider)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		dup, err := o.repo.FindDuplicate(req.Prompt, provider, model.ContentMusic, req.Lyrics, req.ReferenceAudioURL)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			logger.Info("duplicate request, skipping generation",
				logger.String("job_id", dup.ID),
				logger.String("status", string(dup.Status)))
			return &Report{Duplicate: dup}, nil
		}
	}

	result := p.Generate(ctx, req)
	job, err := o.track(ctx, result, repository.CreateJobParams{
		GenerationID: result.GenerationID,
		Provider:     provider,
		ContentType:  model.ContentMusic,
		Prompt:       req.Prompt,
		Command:      opts.Command,
		Lyrics:       req.Lyrics,
		ReferenceURL: req.ReferenceAudioURL,
		Metadata:     result.Metadata,
	})
	if err != nil {
		return nil, err
	}
	return &Report{Result: result, Job: job}, nil
}

// GenerateVideo runs the full video flow for the named provider.
func (o *Orchestrator) GenerateVideo(ctx context.Context, provider string, req model.VideoRequest, opts Options) (*Report, error) {
	p, err := o.registry.Video(provider)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		dup, err := o.repo.FindDuplicate(req.Prompt, provider, model.ContentVideo, "", req.FirstFrameURL)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			logger.Info("duplicate request, skipping generation",
				logger.String("job_id", dup.ID),
				logger.String("status", string(dup.Status)))
			return &Report{Duplicate: dup}, nil
		}
	}

	result := p.Generate(ctx, req)
	job, err := o.track(ctx, result, repository.CreateJobParams{
		GenerationID: result.GenerationID,
		Provider:     provider,
		ContentType:  model.ContentVideo,
		Prompt:       req.Prompt,
		Command:      opts.Command,
		ReferenceURL: req.FirstFrameURL,
		Metadata:     result.Metadata,
	})
	if err != nil {
		return nil, err
	}
	return &Report{Result: result, Job: job}, nil
}

// GenerateImage runs the image flow. Image backends answer
// synchronously and assign no generation id, so the result is usually
// untracked.
func (o *Orchestrator) GenerateImage(ctx context.Context, provider string, req model.ImageRequest, opts Options) (*Report, error) {
	p, err := o.registry.Image(provider)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		dup, err := o.repo.FindDuplicate(req.Prompt, provider, model.ContentImage, "", "")
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return &Report{Duplicate: dup}, nil
		}
	}

	result := p.Generate(ctx, req)
	job, err := o.track(ctx, result, repository.CreateJobParams{
		GenerationID: result.GenerationID,
		Provider:     provider,
		ContentType:  model.ContentImage,
		Prompt:       req.Prompt,
		Command:      opts.Command,
		Metadata:     result.Metadata,
	})
	if err != nil {
		return nil, err
	}
	return &Report{Result: result, Job: job}, nil
}

// track records a job for results that carry a vendor generation id and
// maps the result onto the status machine. Results without an id (the
// vendor never acknowledged, or the backend is synchronous) are not
// tracked. Tracker errors propagate; they are invariant violations, not
// vendor noise.
func (o *Orchestrator) track(ctx context.Context, result *model.GenerationResult, params repository.CreateJobParams) (*model.Job, error) {
	if result.GenerationID == "" {
		return nil, nil
	}

	job, err := o.repo.Create(params)
	if err != nil {
		return nil, err
	}

	switch {
	case result.Success && result.FilePath != "":
		if err := o.repo.UpdateStatus(job.ID, model.StatusCompleted, ""); err != nil {
			return nil, err
		}
		if err := o.repo.UpdateStatus(job.ID, model.StatusDownloaded, result.FilePath); err != nil {
			return nil, err
		}
		o.mirror(ctx, result)
	case result.Success:
		if err := o.repo.UpdateStatus(job.ID, model.StatusCompleted, ""); err != nil {
			return nil, err
		}
	case result.TimedOut || strings.Contains(strings.ToLower(result.Error), "timeout"):
		// Slow, not dead. The job stays in flight and a later sync
		// resolves it. The substring check additionally catches vendors
		// that report their own timeouts as plain error text.
		if err := o.repo.UpdateStatus(job.ID, model.StatusProcessing, ""); err != nil {
			return nil, err
		}
	default:
		if err := o.repo.UpdateStatus(job.ID, model.StatusFailed, ""); err != nil {
			return nil, err
		}
	}

	return o.repo.Get(job.ID)
}

// mirror uploads a successful artifact to the optional object store.
// Upload failures are logged, never fatal: the local file already
// exists.
func (o *Orchestrator) mirror(ctx context.Context, result *model.GenerationResult) {
	if o.store == nil || len(result.Data) == 0 || result.GenerationID == "" {
		return
	}
	ext := filepath.Ext(result.FilePath)
	if ext == "" {
		ext = defaultExt(result.ContentType)
	}
	if err := o.store.Mirror(ctx, result.ContentType, result.GenerationID, ext, result.Data); err != nil {
		logger.Warn("artifact mirror failed",
			logger.String("generation_id", result.GenerationID),
			logger.ErrorField(err))
	}
}

func defaultExt(contentType model.ContentType) string {
	switch contentType {
	case model.ContentMusic:
		return ".mp3"
	case model.ContentVideo:
		return ".mp4"
	case model.ContentImage:
		return ".png"
	default:
		return ".bin"
	}
}

func (o *Orchestrator) checker(contentType model.ContentType, provider string) registry.StatusChecker {
	var p any
	var err error
	switch contentType {
	case model.ContentMusic:
		p, err = o.registry.Music(provider)
	case model.ContentVideo:
		p, err = o.registry.Video(provider)
	case model.ContentImage:
		p, err = o.registry.Image(provider)
	}
	if err != nil || p == nil {
		return nil
	}
	checker, ok := p.(registry.StatusChecker)
	if !ok {
		return nil
	}
	return checker
}
