// Package veo provides the Google Veo video provider, reached through
// the AIMLAPI submit/poll/download protocol.
package veo

import (
	"mediaforge/config"
	"mediaforge/core/videogen"
)

const Name = "veo"

// New creates the provider from configuration.
func New(cfg *config.Config) *videogen.Provider {
	return videogen.New(Name, cfg.VeoModel, cfg)
}
