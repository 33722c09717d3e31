package core

import (
	"errors"
	"testing"

	"github.com/eigenplayer/playerd/internal/config"
)

func TestSetGetProperty(t *testing.T) {
	c := New(nil)
	c.AddProperty("volume", FloatValue(0.5))

	if err := c.SetProperty("volume", FloatValue(0.8)); err != nil {
		t.Fatalf("SetProperty error: %v", err)
	}
	got, ok := c.GetFloat("volume")
	if !ok {
		t.Fatal("GetFloat(volume)=false, want true")
	}
	if got != 0.8 {
		t.Fatalf("volume=%v, want 0.8", got)
	}
}

func TestSetUnknownProperty(t *testing.T) {
	c := New(nil)
	err := c.SetProperty("missing", BoolValue(true))
	if !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("error=%v, want ErrUnknownProperty", err)
	}
}

func TestSetPropertyKindMismatch(t *testing.T) {
	c := New(nil)
	c.AddProperty("playing", BoolValue(false))

	if err := c.SetProperty("playing", StringValue("yes")); err == nil {
		t.Fatal("SetProperty error=nil, want kind mismatch")
	}
	got, ok := c.GetBool("playing")
	if !ok || got {
		t.Fatalf("playing=%v ok=%v, want false true", got, ok)
	}
}

func TestPropertyCallback(t *testing.T) {
	c := New(nil)
	c.AddProperty("current_track", StringValue("none"))

	var seen []string
	if err := c.Subscribe("current_track", func(name string, value Value) {
		track, _ := value.AsString()
		seen = append(seen, track)
	}); err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}

	if err := c.SetProperty("current_track", StringValue("a.flac")); err != nil {
		t.Fatalf("SetProperty error: %v", err)
	}
	if err := c.SetProperty("current_track", StringValue("b.flac")); err != nil {
		t.Fatalf("SetProperty error: %v", err)
	}
	if len(seen) != 2 || seen[0] != "a.flac" || seen[1] != "b.flac" {
		t.Fatalf("seen=%v, want [a.flac b.flac]", seen)
	}
}

func TestSubscribeUnknownProperty(t *testing.T) {
	c := New(nil)
	err := c.Subscribe("missing", func(string, Value) {})
	if !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("error=%v, want ErrUnknownProperty", err)
	}
}

func TestEventCallbacks(t *testing.T) {
	c := New(nil)
	c.AddProperty("volume", FloatValue(0.5))
	c.AddCommand("noop", func([]string, *Core) error { return nil })

	var events []Event
	c.SubscribeEvent(func(e Event) { events = append(events, e) })

	if err := c.SetProperty("volume", FloatValue(0.6)); err != nil {
		t.Fatalf("SetProperty error: %v", err)
	}
	if err := c.ExecuteCommand("noop", nil); err != nil {
		t.Fatalf("ExecuteCommand error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("len(events)=%d, want 2", len(events))
	}
	if events[0].Kind != EventPropertyChanged || events[0].Name != "volume" {
		t.Fatalf("events[0]=%+v, want property-changed volume", events[0])
	}
	if events[1].Kind != EventCommandExecuted || events[1].Name != "noop" {
		t.Fatalf("events[1]=%+v, want command-executed noop", events[1])
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	c := New(nil)
	err := c.ExecuteCommand("missing", nil)
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("error=%v, want ErrUnknownCommand", err)
	}
}

func TestFailedCommandEmitsNoEvent(t *testing.T) {
	c := New(nil)
	c.AddCommand("boom", func([]string, *Core) error { return errors.New("boom") })

	events := 0
	c.SubscribeEvent(func(Event) { events++ })

	if err := c.ExecuteCommand("boom", nil); err == nil {
		t.Fatal("ExecuteCommand error=nil, want non-nil")
	}
	if events != 0 {
		t.Fatalf("events=%d, want 0", events)
	}
}

func TestCommandCanSetProperties(t *testing.T) {
	c := New(nil)
	c.AddProperty("playing", BoolValue(false))
	c.AddCommand("start", func(_ []string, c *Core) error {
		return c.SetProperty("playing", BoolValue(true))
	})

	if err := c.ExecuteCommand("start", nil); err != nil {
		t.Fatalf("ExecuteCommand error: %v", err)
	}
	got, _ := c.GetBool("playing")
	if !got {
		t.Fatalf("playing=%v, want true", got)
	}
}

func TestSnapshot(t *testing.T) {
	c := New(nil)
	cfg := config.Config{
		RingBufferSize:  4096,
		DefaultVolume:   0.5,
		EnableEQ:        true,
		ProducerSleepMS: 10,
		EQBands: []config.EQBand{
			{Freq: 1000, Q: 1, GainDB: -2, Type: config.BandPeak},
		},
	}
	RegisterProperties(c, cfg)

	snapshot := c.Snapshot()
	if snapshot[PropRingBufferSize] != int64(4096) {
		t.Fatalf("ring_buffer_size=%v, want 4096", snapshot[PropRingBufferSize])
	}
	if snapshot[PropEnableEQ] != true {
		t.Fatalf("enable_eq=%v, want true", snapshot[PropEnableEQ])
	}
	bands, ok := snapshot[PropEQBands].([][]float64)
	if !ok || len(bands) != 1 {
		t.Fatalf("eq_bands=%v, want one 4-element slice", snapshot[PropEQBands])
	}
	if bands[0][0] != 1000 || bands[0][3] != 1 {
		t.Fatalf("eq_bands[0]=%v, want [1000 1 -2 1]", bands[0])
	}
}

func TestApplyConfigKeepsRuntimeState(t *testing.T) {
	c := New(nil)
	RegisterProperties(c, config.Config{RingBufferSize: 4096, DefaultVolume: 0.5})

	if err := c.SetProperty(PropVolume, FloatValue(0.9)); err != nil {
		t.Fatalf("SetProperty error: %v", err)
	}
	if err := c.SetProperty(PropCurrentTrack, StringValue("a.flac")); err != nil {
		t.Fatalf("SetProperty error: %v", err)
	}

	ApplyConfig(c, config.Config{RingBufferSize: 8192, DefaultVolume: 0.3, EnableEQ: true})

	if got, _ := c.GetInt(PropRingBufferSize); got != 8192 {
		t.Fatalf("ring_buffer_size=%d, want 8192", got)
	}
	if got, _ := c.GetBool(PropEnableEQ); !got {
		t.Fatalf("enable_eq=%v, want true", got)
	}
	if got, _ := c.GetFloat(PropVolume); got != 0.9 {
		t.Fatalf("volume=%v, want 0.9 (runtime state untouched)", got)
	}
	if got, _ := c.GetString(PropCurrentTrack); got != "a.flac" {
		t.Fatalf("current_track=%q, want a.flac", got)
	}
}

func TestValueListsAreCopied(t *testing.T) {
	list := []string{"a", "b"}
	value := StringListValue(list)
	list[0] = "mutated"

	got, _ := value.AsStringList()
	if got[0] != "a" {
		t.Fatalf("list[0]=%q, want a", got[0])
	}

	got[1] = "mutated"
	again, _ := value.AsStringList()
	if again[1] != "b" {
		t.Fatalf("list[1]=%q, want b", again[1])
	}
}
