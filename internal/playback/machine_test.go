package playback

import "testing"

func TestNewMachine(t *testing.T) {
	m := New()
	if m.State() != StateStopped {
		t.Fatalf("state=%s, want stopped", m.State())
	}
	if m.Repeat() != RepeatNone {
		t.Fatalf("repeat=%s, want none", m.Repeat())
	}
}

func TestTransitions(t *testing.T) {
	m := New()

	m.OnPlay()
	if m.State() != StatePlaying {
		t.Fatalf("state=%s, want playing", m.State())
	}

	m.OnPause()
	if m.State() != StatePaused {
		t.Fatalf("state=%s, want paused", m.State())
	}

	m.OnPlay()
	if m.State() != StatePlaying {
		t.Fatalf("state=%s, want playing", m.State())
	}

	m.OnStop()
	if m.State() != StateStopped {
		t.Fatalf("state=%s, want stopped", m.State())
	}
}

func TestPauseWhileStopped(t *testing.T) {
	m := New()
	m.OnPause()
	if m.State() != StateStopped {
		t.Fatalf("state=%s, want stopped", m.State())
	}
}

func TestSetRepeat(t *testing.T) {
	m := New()

	m.SetRepeat("track")
	if m.Repeat() != RepeatTrack {
		t.Fatalf("repeat=%s, want track", m.Repeat())
	}

	m.SetRepeat(" ALL ")
	if m.Repeat() != RepeatAll {
		t.Fatalf("repeat=%s, want all", m.Repeat())
	}

	m.SetRepeat("bogus")
	if m.Repeat() != RepeatNone {
		t.Fatalf("repeat=%s, want none", m.Repeat())
	}
}

func TestOnTrackEnd(t *testing.T) {
	m := New()

	if m.OnTrackEnd() != ActionAdvance {
		t.Fatal("OnTrackEnd()=restart, want advance")
	}

	m.SetRepeat("track")
	if m.OnTrackEnd() != ActionRestart {
		t.Fatal("OnTrackEnd()=advance, want restart")
	}

	m.SetRepeat("all")
	if m.OnTrackEnd() != ActionAdvance {
		t.Fatal("OnTrackEnd()=restart, want advance")
	}
}

func TestForce(t *testing.T) {
	m := New()

	if err := m.Force(StatePaused); err != nil {
		t.Fatalf("Force error: %v", err)
	}
	if m.State() != StatePaused {
		t.Fatalf("state=%s, want paused", m.State())
	}

	if err := m.Force(State("warp")); err == nil {
		t.Fatal("Force(warp) error=nil, want non-nil")
	}
	if m.State() != StatePaused {
		t.Fatalf("state=%s, want paused after rejected force", m.State())
	}
}
