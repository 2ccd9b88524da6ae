// Package videogen implements the AIMLAPI video backend shared by the
// Veo and Kling providers. Both speak the same submit/poll/download
// protocol against the same endpoint and differ only in provider name
// and model string, so each wraps this one implementation.
package videogen

import (
	"context"
	"errors"
	"time"

	"mediaforge/config"
	"mediaforge/core/genclient"
	"mediaforge/core/registry"
	"mediaforge/core/utils"
	"mediaforge/logger"
	"mediaforge/model"
)

const endpoint = "/v2/generate/video"

var completeStates = map[string]bool{
	"completed": true,
	"done":      true,
	"success":   true,
}

var failedStates = map[string]bool{
	"failed": true,
	"error":  true,
}

// Provider implements video generation for one named model on AIMLAPI.
type Provider struct {
	name         string
	client       *genclient.Client
	model        string
	outputDir    string
	pollInterval time.Duration
	maxAttempts  int
}

var (
	_ registry.VideoProvider = (*Provider)(nil)
	_ registry.StatusChecker = (*Provider)(nil)
)

// New creates a video provider registered under name, generating with
// the given model string.
func New(name, modelID string, cfg *config.Config) *Provider {
	return &Provider{
		name:         name,
		client:       genclient.New(cfg.AIMLAPIBaseURL, cfg.AIMLAPIKey),
		model:        modelID,
		outputDir:    cfg.OutputDir,
		pollInterval: time.Duration(cfg.PollInterval) * time.Second,
		maxAttempts:  cfg.MaxPollTries,
	}
}

// Descriptor returns the static capability record.
func (p *Provider) Descriptor() model.ProviderDescriptor {
	return model.ProviderDescriptor{Name: p.name}
}

// Generate submits a video generation, waits for completion and
// downloads the clip. All failures come back as a failed result; when
// the vendor already assigned a generation id it is carried on the
// failure so the job can still be tracked and re-synced later.
func (p *Provider) Generate(ctx context.Context, req model.VideoRequest) *model.GenerationResult {
	logger.Info("generating video",
		logger.String("provider", p.name),
		logger.String("aspect", req.AspectRatio),
		logger.Int("duration_seconds", req.DurationSeconds))

	payload := map[string]any{
		"model":  p.model,
		"prompt": req.Prompt,
	}
	if req.AspectRatio != "" {
		payload["aspect_ratio"] = req.AspectRatio
	}
	if req.DurationSeconds > 0 {
		payload["duration"] = req.DurationSeconds
	}
	if req.FirstFrameURL != "" {
		payload["image_url"] = req.FirstFrameURL
	}

	generationID, err := p.client.Submit(ctx, endpoint, payload)
	if err != nil {
		return model.Failure(p.name, model.ContentVideo, err.Error())
	}

	status, err := p.client.WaitForCompletion(ctx, endpoint, generationID, func(s genclient.Status) bool {
		return completeStates[s.State()]
	}, p.pollInterval, p.maxAttempts)
	if err != nil {
		if errors.Is(err, genclient.ErrPollTimeout) {
			logger.Warn("polling attempts exhausted",
				logger.String("provider", p.name),
				logger.String("generation_id", generationID))
		}
		res := model.Failure(p.name, model.ContentVideo, err.Error())
		res.GenerationID = generationID
		res.TimedOut = errors.Is(err, genclient.ErrPollTimeout)
		return res
	}

	videoURL := status.URL("video_url", "video", "url", "output", "result")
	if videoURL == "" {
		res := model.Failure(p.name, model.ContentVideo, "no video URL in response")
		res.GenerationID = generationID
		return res
	}

	data, err := p.client.DownloadFile(ctx, videoURL)
	if err != nil {
		res := model.Failure(p.name, model.ContentVideo, err.Error())
		res.GenerationID = generationID
		return res
	}

	path := req.OutputPath
	if path == "" {
		path = utils.DefaultOutputPath(p.outputDir, model.ContentVideo, p.name, ".mp4")
	}
	if err := utils.SaveFile(path, data); err != nil {
		res := model.Failure(p.name, model.ContentVideo, err.Error())
		res.GenerationID = generationID
		return res
	}

	logger.Info("video saved",
		logger.String("provider", p.name),
		logger.String("path", path),
		logger.Int("bytes", len(data)))

	return &model.GenerationResult{
		Success:         true,
		Provider:        p.name,
		ContentType:     model.ContentVideo,
		FilePath:        path,
		Data:            data,
		GenerationID:    generationID,
		DurationSeconds: req.DurationSeconds,
		Metadata: map[string]any{
			"model":        p.model,
			"aspect_ratio": req.AspectRatio,
		},
	}
}

// CheckStatus performs a single status poll for a tracked generation id.
func (p *Provider) CheckStatus(ctx context.Context, generationID string) (*registry.SyncState, error) {
	status, err := p.client.PollStatus(ctx, endpoint, generationID)
	if err != nil {
		return nil, err
	}

	state := status.State()
	return &registry.SyncState{
		State:    state,
		Done:     completeStates[state],
		Failed:   failedStates[state],
		Error:    status.ErrorMessage(),
		AssetURL: status.URL("video_url", "video", "url", "output"),
	}, nil
}

// DownloadAsset fetches a previously reported asset URL.
func (p *Provider) DownloadAsset(ctx context.Context, url string) ([]byte, error) {
	return p.client.DownloadFile(ctx, url)
}
