// Package lyria provides the Google Lyria realtime music provider.
// Unlike the submit/poll backends it captures audio live over a
// streaming session and wraps the raw PCM in a WAV envelope.
package lyria

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"mediaforge/config"
	"mediaforge/core/audio"
	"mediaforge/core/registry"
	"mediaforge/core/stream"
	"mediaforge/core/utils"
	"mediaforge/logger"
	"mediaforge/model"
)

const Name = "lyria"

// Provider implements realtime music generation over a streaming session.
type Provider struct {
	dialer *stream.Dialer
	model  string

	outputDir string
}

var _ registry.MusicProvider = (*Provider)(nil)

// New creates the provider from configuration.
func New(cfg *config.Config) *Provider {
	return &Provider{
		dialer:    stream.NewDialer(fmt.Sprintf(cfg.LyriaEndpoint, cfg.GoogleAPIKey)),
		model:     cfg.LyriaModel,
		outputDir: cfg.OutputDir,
	}
}

// Descriptor returns the static capability record. Lyria is
// instrumental only: no vocals, no reference audio.
func (p *Provider) Descriptor() model.ProviderDescriptor {
	return model.ProviderDescriptor{
		Name:                   Name,
		SupportsVocals:         false,
		SupportsRealtime:       true,
		SupportsReferenceAudio: false,
	}
}

// Generate captures DurationSeconds of realtime audio. The session is
// closed on every exit path; a capture that produced partial audio
// before a transport failure returns a failed result without the
// partial data.
func (p *Provider) Generate(ctx context.Context, req model.MusicRequest) *model.GenerationResult {
	if req.Lyrics != "" {
		// Capability mismatch is a warning, not a failure: the vendor
		// ignores fields it does not support.
		logger.Warn("lyria does not support vocals, ignoring lyrics")
	}

	duration := req.DurationSeconds
	if duration <= 0 {
		duration = 30
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = 1.0
	}

	logger.Info("lyria: generating music",
		logger.Int("duration_seconds", duration),
		logger.Int("bpm", req.BPM))

	session, err := p.dialer.Connect(ctx, p.model)
	if err != nil {
		return model.Failure(Name, model.ContentMusic, err.Error())
	}
	defer session.Close()

	if err := session.Configure(stream.Config{
		Prompt:      req.Prompt,
		Weight:      1.0,
		BPM:         req.BPM,
		Temperature: temperature,
	}); err != nil {
		return model.Failure(Name, model.ContentMusic, err.Error())
	}

	pcm, err := session.Capture(ctx, time.Duration(duration)*time.Second)
	if err != nil {
		return model.Failure(Name, model.ContentMusic, err.Error())
	}

	var wav bytes.Buffer
	if err := audio.WriteWAV(&wav, audio.DefaultFormat, pcm); err != nil {
		return model.Failure(Name, model.ContentMusic, err.Error())
	}

	path := req.OutputPath
	if path == "" {
		path = utils.DefaultOutputPath(p.outputDir, model.ContentMusic, Name, ".wav")
	}
	if err := utils.SaveFile(path, wav.Bytes()); err != nil {
		return model.Failure(Name, model.ContentMusic, err.Error())
	}

	logger.Info("lyria: audio saved", logger.String("path", path), logger.Int("bytes", wav.Len()))

	return &model.GenerationResult{
		Success:         true,
		Provider:        Name,
		ContentType:     model.ContentMusic,
		FilePath:        path,
		Data:            wav.Bytes(),
		DurationSeconds: duration,
		Metadata: map[string]any{
			"bpm":         req.BPM,
			"temperature": temperature,
			"session_id":  session.ID(),
		},
	}
}
