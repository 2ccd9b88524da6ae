// Package providers assembles the provider registry from configuration.
package providers

import (
	"mediaforge/config"
	"mediaforge/core/imagen"
	"mediaforge/core/kling"
	"mediaforge/core/lyria"
	"mediaforge/core/minimax"
	"mediaforge/core/registry"
	"mediaforge/core/veo"
)

// Build registers every built-in provider and returns the registry.
func Build(cfg *config.Config) *registry.Registry {
	reg := registry.New()

	reg.RegisterMusic(minimax.Name, minimax.New(cfg))
	reg.RegisterMusic(lyria.Name, lyria.New(cfg))

	reg.RegisterVideo(veo.Name, veo.New(cfg))
	reg.RegisterVideo(kling.Name, kling.New(cfg))

	reg.RegisterImage(imagen.Name, imagen.New(cfg))

	return reg
}
