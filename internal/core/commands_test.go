package core

import (
	"testing"

	"github.com/eigenplayer/playerd/internal/config"
	"github.com/eigenplayer/playerd/internal/playback"
)

type recordingHistory struct {
	tracks []string
}

func (r *recordingHistory) LogPlayback(track string) error {
	r.tracks = append(r.tracks, track)
	return nil
}

func newTestCore(t *testing.T) (*Core, *playback.Machine, *recordingHistory) {
	t.Helper()
	c := New(nil)
	RegisterProperties(c, config.Config{RingBufferSize: 4096, DefaultVolume: 0.5})
	machine := playback.New()
	history := &recordingHistory{}
	RegisterCommands(c, machine, history)
	return c, machine, history
}

func TestPlayCommand(t *testing.T) {
	c, machine, history := newTestCore(t)

	if err := c.ExecuteCommand("play", []string{"a.flac"}); err != nil {
		t.Fatalf("play error: %v", err)
	}
	if got, _ := c.GetString(PropCurrentTrack); got != "a.flac" {
		t.Fatalf("current_track=%q, want a.flac", got)
	}
	if got, _ := c.GetBool(PropPlaying); !got {
		t.Fatalf("playing=%v, want true", got)
	}
	if machine.State() != playback.StatePlaying {
		t.Fatalf("state=%s, want playing", machine.State())
	}
	if len(history.tracks) != 1 || history.tracks[0] != "a.flac" {
		t.Fatalf("history=%v, want [a.flac]", history.tracks)
	}
}

func TestPlayWithoutTrackResumes(t *testing.T) {
	c, _, history := newTestCore(t)

	if err := c.ExecuteCommand("play", nil); err != nil {
		t.Fatalf("play error: %v", err)
	}
	if got, _ := c.GetString(PropCurrentTrack); got != "none" {
		t.Fatalf("current_track=%q, want none", got)
	}
	if len(history.tracks) != 0 {
		t.Fatalf("history=%v, want empty", history.tracks)
	}
}

func TestPauseAndStop(t *testing.T) {
	c, machine, _ := newTestCore(t)

	if err := c.ExecuteCommand("play", []string{"a.flac"}); err != nil {
		t.Fatalf("play error: %v", err)
	}
	if err := c.ExecuteCommand("pause", nil); err != nil {
		t.Fatalf("pause error: %v", err)
	}
	if machine.State() != playback.StatePaused {
		t.Fatalf("state=%s, want paused", machine.State())
	}
	if got, _ := c.GetBool(PropPlaying); got {
		t.Fatalf("playing=%v, want false", got)
	}

	if err := c.ExecuteCommand("stop", nil); err != nil {
		t.Fatalf("stop error: %v", err)
	}
	if machine.State() != playback.StateStopped {
		t.Fatalf("state=%s, want stopped", machine.State())
	}
}

func TestVolumeCommandClamps(t *testing.T) {
	c, _, _ := newTestCore(t)

	if err := c.ExecuteCommand("volume", []string{"0.7"}); err != nil {
		t.Fatalf("volume error: %v", err)
	}
	if got, _ := c.GetFloat(PropVolume); got != 0.7 {
		t.Fatalf("volume=%v, want 0.7", got)
	}

	if err := c.ExecuteCommand("volume", []string{"1.5"}); err != nil {
		t.Fatalf("volume error: %v", err)
	}
	if got, _ := c.GetFloat(PropVolume); got != 1 {
		t.Fatalf("volume=%v, want 1 (clamped)", got)
	}

	if err := c.ExecuteCommand("volume", []string{"-3"}); err != nil {
		t.Fatalf("volume error: %v", err)
	}
	if got, _ := c.GetFloat(PropVolume); got != 0 {
		t.Fatalf("volume=%v, want 0 (clamped)", got)
	}
}

func TestVolumeCommandErrors(t *testing.T) {
	c, _, _ := newTestCore(t)

	if err := c.ExecuteCommand("volume", nil); err == nil {
		t.Fatal("volume with no args error=nil, want non-nil")
	}
	if err := c.ExecuteCommand("volume", []string{"loud"}); err == nil {
		t.Fatal("volume loud error=nil, want non-nil")
	}
}

func TestAddRemoveCommands(t *testing.T) {
	c, _, _ := newTestCore(t)

	for _, track := range []string{"a.flac", "b.flac", "a.flac"} {
		if err := c.ExecuteCommand("add", []string{track}); err != nil {
			t.Fatalf("add %s error: %v", track, err)
		}
	}
	playlist, _ := c.GetStringList(PropPlaylist)
	if len(playlist) != 3 {
		t.Fatalf("len(playlist)=%d, want 3", len(playlist))
	}

	if err := c.ExecuteCommand("remove", []string{"a.flac"}); err != nil {
		t.Fatalf("remove error: %v", err)
	}
	playlist, _ = c.GetStringList(PropPlaylist)
	if len(playlist) != 1 || playlist[0] != "b.flac" {
		t.Fatalf("playlist=%v, want [b.flac]", playlist)
	}
}

func TestNextPrevCommands(t *testing.T) {
	c, _, _ := newTestCore(t)

	for _, track := range []string{"a.flac", "b.flac", "c.flac"} {
		if err := c.ExecuteCommand("add", []string{track}); err != nil {
			t.Fatalf("add error: %v", err)
		}
	}
	if err := c.ExecuteCommand("play", []string{"a.flac"}); err != nil {
		t.Fatalf("play error: %v", err)
	}

	if err := c.ExecuteCommand("next", nil); err != nil {
		t.Fatalf("next error: %v", err)
	}
	if got, _ := c.GetString(PropCurrentTrack); got != "b.flac" {
		t.Fatalf("current_track=%q, want b.flac", got)
	}

	if err := c.ExecuteCommand("prev", nil); err != nil {
		t.Fatalf("prev error: %v", err)
	}
	if got, _ := c.GetString(PropCurrentTrack); got != "a.flac" {
		t.Fatalf("current_track=%q, want a.flac", got)
	}

	if err := c.ExecuteCommand("prev", nil); err == nil {
		t.Fatal("prev at start error=nil, want no more tracks")
	}
}

func TestNextWrapsWithRepeatAll(t *testing.T) {
	c, _, _ := newTestCore(t)

	for _, track := range []string{"a.flac", "b.flac"} {
		if err := c.ExecuteCommand("add", []string{track}); err != nil {
			t.Fatalf("add error: %v", err)
		}
	}
	if err := c.ExecuteCommand("play", []string{"b.flac"}); err != nil {
		t.Fatalf("play error: %v", err)
	}

	if err := c.ExecuteCommand("next", nil); err == nil {
		t.Fatal("next at end error=nil, want no more tracks")
	}

	if err := c.ExecuteCommand("repeat", []string{"all"}); err != nil {
		t.Fatalf("repeat error: %v", err)
	}
	if err := c.ExecuteCommand("next", nil); err != nil {
		t.Fatalf("next error: %v", err)
	}
	if got, _ := c.GetString(PropCurrentTrack); got != "a.flac" {
		t.Fatalf("current_track=%q, want a.flac (wrapped)", got)
	}
}

func TestNextOnEmptyPlaylist(t *testing.T) {
	c, _, _ := newTestCore(t)

	if err := c.ExecuteCommand("next", nil); err == nil {
		t.Fatal("next on empty playlist error=nil, want non-nil")
	}
}

func TestNextWithUnknownCurrentStartsAtFirst(t *testing.T) {
	c, _, _ := newTestCore(t)

	for _, track := range []string{"a.flac", "b.flac"} {
		if err := c.ExecuteCommand("add", []string{track}); err != nil {
			t.Fatalf("add error: %v", err)
		}
	}

	if err := c.ExecuteCommand("next", nil); err != nil {
		t.Fatalf("next error: %v", err)
	}
	if got, _ := c.GetString(PropCurrentTrack); got != "a.flac" {
		t.Fatalf("current_track=%q, want a.flac", got)
	}
}
