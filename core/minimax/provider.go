// Package minimax provides the MiniMax music provider, reached through
// the AIMLAPI submit/poll/download protocol. It is the only music
// backend with vocals and reference-audio style transfer.
package minimax

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

const (
	Name     = "minimax"
	endpoint = "/v2/generate/audio"
)

// completeStates are the vendor states meaning the generation finished.
var completeStates = map[string]bool{
	"completed": true,
	"done":      true,
	"success":   true,
}

var failedStates = map[string]bool{
	"failed": true,
	"error":  true,
}

// Provider implements music generation via MiniMax on AIMLAPI.
type Provider struct {
	client       *genclient.Client
	model        string
	outputDir    string
	pollInterval time.Duration
	maxAttempts  int
}

var (
	_ registry.MusicProvider = (*Provider)(nil)
	_ registry.StatusChecker = (*Provider)(nil)
)

// New creates the provider from configuration.
func New(cfg *config.Config) *Provider {
	return &Provider{
		client:       genclient.New(cfg.AIMLAPIBaseURL, cfg.AIMLAPIKey),
		model:        cfg.AIMLAPIMusicModel,
		outputDir:    cfg.OutputDir,
		pollInterval: time.Duration(cfg.PollInterval) * time.Second,
		maxAttempts:  cfg.MaxPollTries,
	}
}

// Descriptor returns the static capability record.
func (p *Provider) Descriptor() model.ProviderDescriptor {
	return model.ProviderDescriptor{
		Name:                   Name,
		SupportsVocals:         true,
		SupportsRealtime:       false,
		SupportsReferenceAudio: true,
	}
}

// Generate submits a music generation, waits for completion and
// downloads the audio. All failures come back as a failed result; when
// the vendor already assigned a generation id it is carried on the
// failure so the job can still be tracked and re-synced later.
func (p *Provider) Generate(ctx context.Context, req model.MusicRequest) *model.GenerationResult {
	logger.Info("minimax: generating music",
		logger.Bool("has_lyrics", req.Lyrics != ""),
		logger.Bool("has_reference", req.ReferenceAudioURL != ""))

	payload := map[string]any{
		"model":  p.model,
		"prompt": req.Prompt,
	}
	if req.Lyrics != "" {
		payload["lyrics"] = req.Lyrics
	}
	if req.ReferenceAudioURL != "" {
		payload["reference_audio_url"] = req.ReferenceAudioURL
	}

	generationID, err := p.client.Submit(ctx, endpoint, payload)
	if err != nil {
		return model.Failure(Name, model.ContentMusic, err.Error())
	}

	status, err := p.client.WaitForCompletion(ctx, endpoint, generationID, func(s genclient.Status) bool {
		return completeStates[s.State()]
	}, p.pollInterval, p.maxAttempts)
	if err != nil {
		// A poll timeout means the generation is slow, not dead; the
		// caller records the job as still processing and syncs later.
		if errors.Is(err, genclient.ErrPollTimeout) {
			logger.Warn("minimax: polling budget exhausted", logger.String("generation_id", generationID))
		}
		res := model.Failure(Name, model.ContentMusic, err.Error())
		res.GenerationID = generationID
		res.TimedOut = errors.Is(err, genclient.ErrPollTimeout)
		return res
	}

	audioURL := status.URL("audio_file", "audio_url", "url", "output", "result")
	if audioURL == "" {
		res := model.Failure(Name, model.ContentMusic, "no audio URL in response")
		res.GenerationID = generationID
		return res
	}

	data, err := p.client.DownloadFile(ctx, audioURL)
	if err != nil {
		res := model.Failure(Name, model.ContentMusic, err.Error())
		res.GenerationID = generationID
		return res
	}

	path := req.OutputPath
	if path == "" {
		path = utils.DefaultOutputPath(p.outputDir, model.ContentMusic, Name, ".mp3")
	}
	if err := utils.SaveFile(path, data); err != nil {
		res := model.Failure(Name, model.ContentMusic, err.Error())
		res.GenerationID = generationID
		return res
	}

	logger.Info("minimax: audio saved", logger.String("path", path), logger.Int("bytes", len(data)))

	return &model.GenerationResult{
		Success:      true,
		Provider:     Name,
		ContentType:  model.ContentMusic,
		FilePath:     path,
		Data:         data,
		GenerationID: generationID,
		Metadata: map[string]any{
			"model":         p.model,
			"has_lyrics":    req.Lyrics != "",
			"has_reference": req.ReferenceAudioURL != "",
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
		AssetURL: status.URL("audio_file", "audio_url", "url", "output"),
	}, nil
}

// DownloadAsset fetches a previously reported asset URL.
func (p *Provider) DownloadAsset(ctx context.Context, url string) ([]byte, error) {
	return p.client.DownloadFile(ctx, url)
}
