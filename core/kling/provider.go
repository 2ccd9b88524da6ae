// Package kling provides the Kling video provider via AIMLAPI.
package kling

import (
	"mediaforge/config"
	"mediaforge/core/videogen"
)

const Name = "kling"

// New creates the provider from configuration.
func New(cfg *config.Config) *videogen.Provider {
	return videogen.New(Name, cfg.AIMLAPIVideoModel, cfg)
}
