// Package presets holds the built-in style shorthands the CLI expands
// into full prompts.
package presets

import (
	"fmt"
	"sort"
	"strings"
)

// MusicPreset expands a style name into generation parameters.
type MusicPreset struct {
	Prompt      string
	BPM         int
	Temperature float64
}

// VideoPreset expands a style name into generation parameters.
type VideoPreset struct {
	Prompt      string
	AspectRatio string
}

var musicPresets = map[string]MusicPreset{
	"lofi": {
		Prompt:      "lofi hip hop, mellow, vinyl crackle, warm rhodes chords, relaxed drums",
		BPM:         75,
		Temperature: 1.0,
	},
	"cinematic": {
		Prompt:      "cinematic orchestral score, sweeping strings, brass swells, epic percussion",
		BPM:         90,
		Temperature: 1.1,
	},
	"techno": {
		Prompt:      "driving techno, four on the floor, hypnotic synth stabs, dark warehouse energy",
		BPM:         128,
		Temperature: 1.2,
	},
	"jazz": {
		Prompt:      "smooth jazz quartet, upright bass, brushed drums, improvised saxophone lead",
		BPM:         110,
		Temperature: 1.3,
	},
	"ambient": {
		Prompt:      "ambient soundscape, slowly evolving pads, distant textures, no percussion",
		BPM:         60,
		Temperature: 0.9,
	},
}

var videoPresets = map[string]VideoPreset{
	"cinematic": {
		Prompt:      "cinematic wide shot, shallow depth of field, anamorphic lens flares, film grain",
		AspectRatio: "16:9",
	},
	"vertical": {
		Prompt:      "handheld vertical clip, natural lighting, casual framing",
		AspectRatio: "9:16",
	},
	"timelapse": {
		Prompt:      "smooth timelapse, drifting clouds, long exposure light trails",
		AspectRatio: "16:9",
	},
	"drone": {
		Prompt:      "aerial drone footage, slow forward dolly, golden hour light",
		AspectRatio: "16:9",
	},
}

// Music looks up a music preset by name.
func Music(name string) (MusicPreset, error) {
	p, ok := musicPresets[strings.ToLower(name)]
	if !ok {
		return MusicPreset{}, fmt.Errorf("unknown music preset %q (available: %s)",
			name, strings.Join(MusicNames(), ", "))
	}
	return p, nil
}

// Video looks up a video preset by name.
func Video(name string) (VideoPreset, error) {
	p, ok := videoPresets[strings.ToLower(name)]
	if !ok {
		return VideoPreset{}, fmt.Errorf("unknown video preset %q (available: %s)",
			name, strings.Join(VideoNames(), ", "))
	}
	return p, nil
}

// MusicNames returns the music preset names, sorted.
func MusicNames() []string {
	return sortedKeys(musicPresets)
}

// VideoNames returns the video preset names, sorted.
func VideoNames() []string {
	return sortedKeys(videoPresets)
}

func sortedKeys[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
