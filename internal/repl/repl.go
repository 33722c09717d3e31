package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	appconfig "github.com/eigenplayer/playerd/internal/config"
	"github.com/eigenplayer/playerd/internal/core"
	"github.com/eigenplayer/playerd/internal/storage"
)

// Repl is the interactive control surface, reading commands line by line.
type Repl struct {
	core   *core.Core
	store  *storage.Store
	holder *appconfig.Holder
	in     io.Reader
	out    io.Writer
}

// New executes the new function.
func New(c *core.Core, store *storage.Store, holder *appconfig.Holder, in io.Reader, out io.Writer) *Repl {
	return &Repl{
		core:   c,
		store:  store,
		holder: holder,
		in:     in,
		out:    out,
	}
}

// Run reads and executes commands until quit, EOF, or ctx cancellation.
func (r *Repl) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, "eigenplayer REPL")
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'quit' to exit")
	fmt.Fprintln(r.out)

	scanner := bufio.NewScanner(r.in)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		command := parts[0]
		args := parts[1:]

		if command == "quit" || command == "exit" || command == "q" {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}
		r.Execute(command, args)
	}
}

// Execute runs a single REPL command. Errors are printed, not returned, so
// the loop keeps going.
func (r *Repl) Execute(command string, args []string) {
	switch command {
	case "help", "h":
		r.printHelp()
	case "status":
		r.printStatus()
	case "playlist", "pl":
		r.showPlaylist()
	case "playlists":
		r.showAllPlaylists()
	case "history":
		r.showHistory()
	case "eq":
		r.showEQ()
	case "play":
		if len(args) == 0 {
			r.run("play", nil)
			fmt.Fprintln(r.out, "Resumed playback")
		} else {
			r.run("play", []string{strings.Join(args, " ")})
		}
	case "pause":
		r.run("pause", nil)
		fmt.Fprintln(r.out, "Paused")
	case "stop":
		r.run("stop", nil)
		fmt.Fprintln(r.out, "Stopped")
	case "next", "n":
		r.run("next", nil)
	case "prev", "p":
		r.run("prev", nil)
	case "repeat":
		r.run("repeat", args)
	case "add", "a":
		r.addTrack(args)
	case "remove", "rm":
		r.removeTrack(args)
	case "volume", "vol", "v":
		r.volume(args)
	case "load":
		r.loadPlaylist(args)
	case "save":
		r.savePlaylist(args)
	case "preset":
		r.applyPreset(args)
	default:
		fmt.Fprintf(r.out, "Unknown command: '%s'. Type 'help' for available commands.\n", command)
	}
}

func (r *Repl) run(name string, args []string) {
	if err := r.core.ExecuteCommand(name, args); err != nil {
		fmt.Fprintf(r.out, "%s failed: %v\n", name, err)
	}
}

func (r *Repl) addTrack(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(r.out, "Usage: add <track_path>")
		return
	}
	track := strings.Join(args, " ")
	if err := r.core.ExecuteCommand("add", []string{track}); err != nil {
		fmt.Fprintf(r.out, "add failed: %v\n", err)
		return
	}
	if err := r.store.AddTrack("default", track); err != nil {
		fmt.Fprintf(r.out, "Failed to add to database: %v\n", err)
	}
	fmt.Fprintf(r.out, "Added: %s\n", track)
}

func (r *Repl) removeTrack(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(r.out, "Usage: remove <track_path>")
		return
	}
	track := strings.Join(args, " ")
	if err := r.core.ExecuteCommand("remove", []string{track}); err != nil {
		fmt.Fprintf(r.out, "remove failed: %v\n", err)
		return
	}
	if err := r.store.RemoveTrack("default", track); err != nil {
		fmt.Fprintf(r.out, "Failed to remove from database: %v\n", err)
	}
	fmt.Fprintf(r.out, "Removed: %s\n", track)
}

func (r *Repl) volume(args []string) {
	if len(args) == 0 {
		if vol, ok := r.core.GetFloat(core.PropVolume); ok {
			fmt.Fprintf(r.out, "Volume: %.0f%%\n", vol*100)
		}
		return
	}
	r.run("volume", args)
}

func (r *Repl) loadPlaylist(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(r.out, "Usage: load <playlist_name>")
		return
	}
	name := args[0]
	tracks, err := r.store.PlaylistTracks(name)
	if err != nil {
		fmt.Fprintf(r.out, "Failed to load playlist: %v\n", err)
		return
	}
	if err := r.core.SetProperty(core.PropPlaylist, core.StringListValue(tracks)); err != nil {
		fmt.Fprintf(r.out, "Failed to set playlist: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Loaded playlist '%s' with %d tracks\n", name, len(tracks))
}

func (r *Repl) savePlaylist(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(r.out, "Usage: save <playlist_name>")
		return
	}
	name := args[0]
	tracks, _ := r.core.GetStringList(core.PropPlaylist)
	if err := r.store.CreatePlaylist(name); err != nil {
		fmt.Fprintf(r.out, "Failed to create playlist: %v\n", err)
		return
	}
	for _, track := range tracks {
		if err := r.store.AddTrack(name, track); err != nil {
			fmt.Fprintf(r.out, "Failed to add track: %v\n", err)
		}
	}
	fmt.Fprintf(r.out, "Saved playlist '%s' with %d tracks\n", name, len(tracks))
}

func (r *Repl) applyPreset(args []string) {
	if len(args) == 0 {
		for _, info := range appconfig.ScanPresets(r.holder.Get().PresetsDir) {
			fmt.Fprintf(r.out, "  %s (%s)\n", info.Name, info.Filename)
		}
		return
	}
	preset, ok := appconfig.FindPreset(r.holder.Get().PresetsDir, args[0])
	if !ok {
		fmt.Fprintf(r.out, "Preset not found: %s\n", args[0])
		return
	}
	if err := r.core.SetProperty(core.PropEQBands, core.BandListValue(preset.EQBands)); err != nil {
		fmt.Fprintf(r.out, "Failed to apply preset: %v\n", err)
		return
	}
	if preset.EnableEQ != nil {
		_ = r.core.SetProperty(core.PropEnableEQ, core.BoolValue(*preset.EnableEQ))
	}
	fmt.Fprintf(r.out, "Applied preset '%s' (%d bands)\n", preset.Name, len(preset.EQBands))
}

func (r *Repl) printHelp() {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Available commands:")
	fmt.Fprintln(r.out, "  play [track]      - Play a track or resume playback")
	fmt.Fprintln(r.out, "  pause             - Pause playback")
	fmt.Fprintln(r.out, "  stop              - Stop playback")
	fmt.Fprintln(r.out, "  next (n)          - Play next track")
	fmt.Fprintln(r.out, "  prev (p)          - Play previous track")
	fmt.Fprintln(r.out, "  repeat <mode>     - Set repeat: none, track, all")
	fmt.Fprintln(r.out, "  add (a) <track>   - Add track to current playlist")
	fmt.Fprintln(r.out, "  remove (rm) <tr>  - Remove track from playlist")
	fmt.Fprintln(r.out, "  volume (v) [0-1]  - Get or set volume")
	fmt.Fprintln(r.out, "  playlist (pl)     - Show current playlist")
	fmt.Fprintln(r.out, "  playlists         - Show all saved playlists")
	fmt.Fprintln(r.out, "  load <name>       - Load a saved playlist")
	fmt.Fprintln(r.out, "  save <name>       - Save current playlist")
	fmt.Fprintln(r.out, "  history           - Show play history")
	fmt.Fprintln(r.out, "  eq                - Show equalizer settings")
	fmt.Fprintln(r.out, "  preset [name]     - List or apply EQ presets")
	fmt.Fprintln(r.out, "  status            - Show player status")
	fmt.Fprintln(r.out, "  help (h)          - Show this help")
	fmt.Fprintln(r.out, "  quit (q)          - Exit")
	fmt.Fprintln(r.out)
}

func (r *Repl) printStatus() {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "=== Player Status ===")

	if playing, ok := r.core.GetBool(core.PropPlaying); ok {
		status := "No"
		if playing {
			status = "Yes"
		}
		fmt.Fprintf(r.out, "Playing: %s\n", status)
	}
	if track, ok := r.core.GetString(core.PropCurrentTrack); ok {
		fmt.Fprintf(r.out, "Current track: %s\n", track)
	}
	if vol, ok := r.core.GetFloat(core.PropVolume); ok {
		fmt.Fprintf(r.out, "Volume: %.0f%%\n", vol*100)
	}
	if playlist, ok := r.core.GetStringList(core.PropPlaylist); ok {
		fmt.Fprintf(r.out, "Playlist size: %d tracks\n", len(playlist))
	}
	if size, ok := r.core.GetInt(core.PropRingBufferSize); ok {
		fmt.Fprintf(r.out, "Ring buffer: %d frames\n", size)
	}

	fmt.Fprintln(r.out)
}

func (r *Repl) showPlaylist() {
	playlist, ok := r.core.GetStringList(core.PropPlaylist)
	if !ok || len(playlist) == 0 {
		fmt.Fprintln(r.out, "Playlist is empty")
		return
	}
	current, _ := r.core.GetString(core.PropCurrentTrack)

	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "=== Current Playlist (%d tracks) ===\n", len(playlist))
	for i, track := range playlist {
		marker := " "
		if track == current {
			marker = ">"
		}
		fmt.Fprintf(r.out, "%s %d. %s\n", marker, i+1, track)
	}
	fmt.Fprintln(r.out)
}

func (r *Repl) showAllPlaylists() {
	playlists, err := r.store.Playlists()
	if err != nil {
		fmt.Fprintf(r.out, "Failed to get playlists: %v\n", err)
		return
	}
	if len(playlists) == 0 {
		fmt.Fprintln(r.out, "No saved playlists")
		return
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "=== Saved Playlists ===")
	for _, name := range playlists {
		tracks, err := r.store.PlaylistTracks(name)
		if err != nil {
			fmt.Fprintf(r.out, "  %s\n", name)
			continue
		}
		fmt.Fprintf(r.out, "  %s (%d tracks)\n", name, len(tracks))
	}
	fmt.Fprintln(r.out)
}

func (r *Repl) showHistory() {
	history, err := r.store.PlayHistory(10)
	if err != nil {
		fmt.Fprintf(r.out, "Failed to get history: %v\n", err)
		return
	}
	if len(history) == 0 {
		fmt.Fprintln(r.out, "No play history")
		return
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "=== Play History (last 10) ===")
	for _, entry := range history {
		fmt.Fprintf(r.out, "  %s - %s\n", entry.PlayedAt, entry.Track)
	}
	fmt.Fprintln(r.out)
}

func (r *Repl) showEQ() {
	enabled, _ := r.core.GetBool(core.PropEnableEQ)
	bands, _ := r.core.GetBands(core.PropEQBands)

	fmt.Fprintln(r.out)
	state := "off"
	if enabled {
		state = "on"
	}
	fmt.Fprintf(r.out, "=== Equalizer (%s, %d bands) ===\n", state, len(bands))
	for i, band := range bands {
		fmt.Fprintf(r.out, "  %d. %7.1f Hz  q=%.2f  %+.1f dB  %s\n",
			i+1, band.Freq, band.Q, band.GainDB, bandTypeName(band.Type))
	}
	fmt.Fprintln(r.out)
}

func bandTypeName(bandType int) string {
	switch bandType {
	case appconfig.BandLowShelf:
		return "low-shelf"
	case appconfig.BandPeak:
		return "peak"
	case appconfig.BandHighShelf:
		return "high-shelf"
	default:
		return "unknown"
	}
}
