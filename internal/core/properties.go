package core

import (
	"github.com/eigenplayer/playerd/internal/config"
)

// Property names shared between the core, its surfaces, and the host engine.
const (
	PropPlaying         = "playing"
	PropCurrentTrack    = "current_track"
	PropVolume          = "volume"
	PropPlaylist        = "playlist"
	PropEnableEQ        = "enable_eq"
	PropRingBufferSize  = "ring_buffer_size"
	PropDefaultVolume   = "default_volume"
	PropProducerSleepMS = "producer_sleep_ms"
	PropEQBands         = "eq_bands"
)

// RegisterProperties registers the standard property set, seeding the
// config-derived entries from cfg.
func RegisterProperties(c *Core, cfg config.Config) {
	c.AddProperty(PropPlaying, BoolValue(false))
	c.AddProperty(PropCurrentTrack, StringValue("none"))
	c.AddProperty(PropVolume, FloatValue(cfg.DefaultVolume))
	c.AddProperty(PropPlaylist, StringListValue(nil))
	c.AddProperty(PropEnableEQ, BoolValue(cfg.EnableEQ))
	c.AddProperty(PropRingBufferSize, IntValue(int64(cfg.RingBufferSize)))
	c.AddProperty(PropDefaultVolume, FloatValue(cfg.DefaultVolume))
	c.AddProperty(PropProducerSleepMS, IntValue(int64(cfg.ProducerSleepMS)))
	c.AddProperty(PropEQBands, BandListValue(cfg.EQBands))
}

// ApplyConfig republishes the config-derived properties, used after a hot
// reload. Runtime state (playing, current_track, playlist, volume) is left
// untouched.
func ApplyConfig(c *Core, cfg config.Config) {
	_ = c.SetProperty(PropEnableEQ, BoolValue(cfg.EnableEQ))
	_ = c.SetProperty(PropRingBufferSize, IntValue(int64(cfg.RingBufferSize)))
	_ = c.SetProperty(PropDefaultVolume, FloatValue(cfg.DefaultVolume))
	_ = c.SetProperty(PropProducerSleepMS, IntValue(int64(cfg.ProducerSleepMS)))
	_ = c.SetProperty(PropEQBands, BandListValue(cfg.EQBands))
}
