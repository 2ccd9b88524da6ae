package model

// ProviderDescriptor is the static capability record for a registered
// provider. Immutable once registered.
type ProviderDescriptor struct {
	Name                  string `json:"name"`
	SupportsVocals        bool   `json:"supports_vocals"`
	SupportsRealtime      bool   `json:"supports_realtime"`
	SupportsReferenceAudio bool  `json:"supports_reference_audio"`
}

// MusicRequest carries the parameters of a music generation call.
type MusicRequest struct {
	Prompt            string
	BPM               int
	DurationSeconds   int
	Temperature       float64
	Lyrics            string
	ReferenceAudioURL string
	OutputPath        string
}

// VideoRequest carries the parameters of a video generation call.
type VideoRequest struct {
	Prompt          string
	AspectRatio     string
	DurationSeconds int
	FirstFrameURL   string
	OutputPath      string
}

// ImageRequest carries the parameters of an image generation call.
type ImageRequest struct {
	Prompt      string
	AspectRatio string
	NumImages   int
	OutputPath  string
}
