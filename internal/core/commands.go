package core

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/eigenplayer/playerd/internal/playback"
)

// PlaybackLogger records started tracks, typically the sqlite store.
type PlaybackLogger interface {
	LogPlayback(track string) error
}

// RegisterCommands installs the standard player command set. history may be
// nil when playback logging is not wanted.
func RegisterCommands(c *Core, machine *playback.Machine, history PlaybackLogger) {
	c.AddCommand("play", playCommand(machine, history))
	c.AddCommand("pause", pauseCommand(machine))
	c.AddCommand("stop", stopCommand(machine))
	c.AddCommand("volume", volumeCommand())
	c.AddCommand("add", addCommand())
	c.AddCommand("remove", removeCommand())
	c.AddCommand("next", nextCommand(machine, history))
	c.AddCommand("prev", prevCommand(machine, history))
	c.AddCommand("repeat", repeatCommand(machine))
}

func playCommand(machine *playback.Machine, history PlaybackLogger) CommandFunc {
	return func(args []string, c *Core) error {
		if len(args) > 0 && args[0] != "" {
			track := args[0]
			if err := c.SetProperty(PropCurrentTrack, StringValue(track)); err != nil {
				return err
			}
			logPlayback(history, track)
		}
		machine.OnPlay()
		return c.SetProperty(PropPlaying, BoolValue(true))
	}
}

func pauseCommand(machine *playback.Machine) CommandFunc {
	return func(_ []string, c *Core) error {
		machine.OnPause()
		return c.SetProperty(PropPlaying, BoolValue(false))
	}
}

func stopCommand(machine *playback.Machine) CommandFunc {
	return func(_ []string, c *Core) error {
		machine.OnStop()
		return c.SetProperty(PropPlaying, BoolValue(false))
	}
}

func volumeCommand() CommandFunc {
	return func(args []string, c *Core) error {
		if len(args) == 0 {
			return errors.New("volume requires a value in [0,1]")
		}
		vol, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid volume %q: %w", args[0], err)
		}
		if vol < 0 {
			vol = 0
		}
		if vol > 1 {
			vol = 1
		}
		return c.SetProperty(PropVolume, FloatValue(vol))
	}
}

func addCommand() CommandFunc {
	return func(args []string, c *Core) error {
		if len(args) == 0 || args[0] == "" {
			return errors.New("add requires a track path")
		}
		playlist, _ := c.GetStringList(PropPlaylist)
		playlist = append(playlist, args[0])
		return c.SetProperty(PropPlaylist, StringListValue(playlist))
	}
}

func removeCommand() CommandFunc {
	return func(args []string, c *Core) error {
		if len(args) == 0 || args[0] == "" {
			return errors.New("remove requires a track path")
		}
		playlist, _ := c.GetStringList(PropPlaylist)
		filtered := playlist[:0]
		for _, track := range playlist {
			if track != args[0] {
				filtered = append(filtered, track)
			}
		}
		return c.SetProperty(PropPlaylist, StringListValue(filtered))
	}
}

func nextCommand(machine *playback.Machine, history PlaybackLogger) CommandFunc {
	return func(_ []string, c *Core) error {
		return step(c, machine, history, 1)
	}
}

func prevCommand(machine *playback.Machine, history PlaybackLogger) CommandFunc {
	return func(_ []string, c *Core) error {
		return step(c, machine, history, -1)
	}
}

func repeatCommand(machine *playback.Machine) CommandFunc {
	return func(args []string, _ *Core) error {
		if len(args) == 0 {
			return errors.New("repeat requires none, track, or all")
		}
		machine.SetRepeat(args[0])
		return nil
	}
}

// step moves through the playlist relative to current_track. At the edges it
// wraps only under the all-repeat policy.
func step(c *Core, machine *playback.Machine, history PlaybackLogger, delta int) error {
	current, _ := c.GetString(PropCurrentTrack)
	playlist, _ := c.GetStringList(PropPlaylist)
	if len(playlist) == 0 {
		return errors.New("playlist is empty")
	}

	idx := -1
	for i, track := range playlist {
		if track == current {
			idx = i
			break
		}
	}

	target := idx + delta
	if idx == -1 {
		target = 0
	}
	if target < 0 || target >= len(playlist) {
		if machine.Repeat() != playback.RepeatAll {
			return errors.New("no more tracks")
		}
		target = (target + len(playlist)) % len(playlist)
	}

	track := playlist[target]
	if err := c.SetProperty(PropCurrentTrack, StringValue(track)); err != nil {
		return err
	}
	logPlayback(history, track)
	machine.OnPlay()
	return c.SetProperty(PropPlaying, BoolValue(true))
}

func logPlayback(history PlaybackLogger, track string) {
	if history == nil {
		return
	}
	_ = history.LogPlayback(track)
}
