// Package registry maps provider names to generation capabilities.
// A registry is an explicit value built once at startup and handed to
// the orchestrator; nothing registers itself via import side effects.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"mediaforge/model"
)

// ErrNotFound indicates the requested provider is not registered.
// The wrapped message names the provider and lists the alternatives.
var ErrNotFound = errors.New("provider not found")

// MusicProvider generates music. Failures are folded into the returned
// result, never raised as an error to the caller.
type MusicProvider interface {
	Descriptor() model.ProviderDescriptor
	Generate(ctx context.Context, req model.MusicRequest) *model.GenerationResult
}

// VideoProvider generates video.
type VideoProvider interface {
	Descriptor() model.ProviderDescriptor
	Generate(ctx context.Context, req model.VideoRequest) *model.GenerationResult
}

// ImageProvider generates images.
type ImageProvider interface {
	Descriptor() model.ProviderDescriptor
	Generate(ctx context.Context, req model.ImageRequest) *model.GenerationResult
}

// SyncState is the uniform view of a vendor status check, decoded from
// whatever shape the vendor returns.
type SyncState struct {
	State    string // raw vendor state, for display
	Done     bool
	Failed   bool
	Error    string
	AssetURL string // set when the vendor exposes a downloadable asset
}

// StatusChecker is implemented by providers whose backend supports
// re-checking a previously submitted generation id. Realtime providers
// have nothing to re-check and do not implement it.
type StatusChecker interface {
	CheckStatus(ctx context.Context, generationID string) (*SyncState, error)
	DownloadAsset(ctx context.Context, url string) ([]byte, error)
}

// Registry holds one namespace per content-type category; a name may be
// registered for music and separately for image with different
// capabilities. Re-registering a name overwrites it (test doubles).
type Registry struct {
	mu    sync.RWMutex
	music map[string]MusicProvider
	video map[string]VideoProvider
	image map[string]ImageProvider
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		music: make(map[string]MusicProvider),
		video: make(map[string]VideoProvider),
		image: make(map[string]ImageProvider),
	}
}

// RegisterMusic registers a music provider under name.
func (r *Registry) RegisterMusic(name string, p MusicProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.music[name] = p
}

// RegisterVideo registers a video provider under name.
func (r *Registry) RegisterVideo(name string, p VideoProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.video[name] = p
}

// RegisterImage registers an image provider under name.
func (r *Registry) RegisterImage(name string, p ImageProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.image[name] = p
}

// Music resolves a music provider by name.
func (r *Registry) Music(name string) (MusicProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.music[name]
	if !ok {
		return nil, notFound("music", name, keys(r.music))
	}
	return p, nil
}

// Video resolves a video provider by name.
func (r *Registry) Video(name string) (VideoProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.video[name]
	if !ok {
		return nil, notFound("video", name, keys(r.video))
	}
	return p, nil
}

// Image resolves an image provider by name.
func (r *Registry) Image(name string) (ImageProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.image[name]
	if !ok {
		return nil, notFound("image", name, keys(r.image))
	}
	return p, nil
}

// ListMusic returns the registered music provider names, sorted.
func (r *Registry) ListMusic() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return keys(r.music)
}

// ListVideo returns the registered video provider names, sorted.
func (r *Registry) ListVideo() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return keys(r.video)
}

// ListImage returns the registered image provider names, sorted.
func (r *Registry) ListImage() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return keys(r.image)
}

func keys[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func notFound(category, name string, available []string) error {
	if len(available) == 0 {
		return fmt.Errorf("%w: unknown %s provider %q (none registered)", ErrNotFound, category, name)
	}
	return fmt.Errorf("%w: unknown %s provider %q (available: %s)",
		ErrNotFound, category, name, strings.Join(available, ", "))
}
