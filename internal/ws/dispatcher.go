package ws

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/eigenplayer/playerd/internal/config"
	"github.com/eigenplayer/playerd/internal/core"
	"github.com/eigenplayer/playerd/internal/protocol"
)

type commandHandler func(protocol.ClientCommand)

func (s *session) dispatch(cmd protocol.ClientCommand) {
	handlers := map[string]commandHandler{
		"command":          s.onCommand,
		"set-property":     s.onSetProperty,
		"get-property":     s.onGetProperty,
		"fetch-properties": s.onFetchProperties,
		"fetch-playlists":  s.onFetchPlaylists,
		"fetch-history":    s.onFetchHistory,
		"heartbeat":        s.onNoop,
	}

	if handler, ok := handlers[cmd.Type]; ok {
		handler(cmd)
		return
	}
	s.logger.Debug("ws unknown message type",
		zap.String("session_id", s.clientUID),
		zap.String("type", cmd.Type),
	)
}

func (s *session) onCommand(cmd protocol.ClientCommand) {
	if cmd.Name == "" {
		s.sendError("command requires a name")
		return
	}
	if err := s.core.ExecuteCommand(cmd.Name, cmd.Args); err != nil {
		s.sendError(err.Error())
	}
}

func (s *session) onSetProperty(cmd protocol.ClientCommand) {
	if cmd.Property == "" {
		s.sendError("set-property requires a property name")
		return
	}
	value, err := jsonToValue(s.core, cmd.Property, cmd.Value)
	if err != nil {
		s.sendError(fmt.Sprintf("set-property %s: %v", cmd.Property, err))
		return
	}
	if err := s.core.SetProperty(cmd.Property, value); err != nil {
		s.sendError(err.Error())
	}
}

func (s *session) onGetProperty(cmd protocol.ClientCommand) {
	value, ok := s.core.GetProperty(cmd.Property)
	if !ok {
		s.sendError(fmt.Sprintf("unknown property: %s", cmd.Property))
		return
	}
	s.sendJSON(Message{
		Type: "property",
		Payload: map[string]any{
			"name":  cmd.Property,
			"value": value.Interface(),
		},
	})
}

func (s *session) onFetchProperties(_ protocol.ClientCommand) {
	s.sendJSON(Message{Type: "properties", Payload: s.core.Snapshot()})
}

func (s *session) onFetchPlaylists(_ protocol.ClientCommand) {
	if s.handler.store == nil {
		s.sendError("no playlist store configured")
		return
	}
	names, err := s.handler.store.Playlists()
	if err != nil {
		s.sendError(err.Error())
		return
	}
	s.sendJSON(Message{Type: "playlists", Payload: names})
}

func (s *session) onFetchHistory(cmd protocol.ClientCommand) {
	if s.handler.store == nil {
		s.sendError("no playlist store configured")
		return
	}
	history, err := s.handler.store.PlayHistory(cmd.Limit)
	if err != nil {
		s.sendError(err.Error())
		return
	}
	s.sendJSON(Message{Type: "history", Payload: history})
}

func (s *session) onNoop(_ protocol.ClientCommand) {}

// jsonToValue coerces a JSON-decoded value to the kind the property was
// registered with.
func jsonToValue(c *core.Core, name string, raw any) (core.Value, error) {
	current, ok := c.GetProperty(name)
	if !ok {
		return core.Value{}, fmt.Errorf("unknown property")
	}

	switch current.Kind() {
	case core.KindString:
		s, ok := raw.(string)
		if !ok {
			return core.Value{}, fmt.Errorf("expected string, got %T", raw)
		}
		return core.StringValue(s), nil
	case core.KindBool:
		b, ok := raw.(bool)
		if !ok {
			return core.Value{}, fmt.Errorf("expected bool, got %T", raw)
		}
		return core.BoolValue(b), nil
	case core.KindInt:
		f, ok := raw.(float64)
		if !ok {
			return core.Value{}, fmt.Errorf("expected number, got %T", raw)
		}
		return core.IntValue(int64(f)), nil
	case core.KindFloat:
		f, ok := raw.(float64)
		if !ok {
			return core.Value{}, fmt.Errorf("expected number, got %T", raw)
		}
		return core.FloatValue(f), nil
	case core.KindStringList:
		items, ok := raw.([]any)
		if !ok {
			return core.Value{}, fmt.Errorf("expected array, got %T", raw)
		}
		list := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return core.Value{}, fmt.Errorf("expected string element, got %T", item)
			}
			list = append(list, s)
		}
		return core.StringListValue(list), nil
	case core.KindBandList:
		bands, err := config.BandsFromAny(raw)
		if err != nil {
			return core.Value{}, err
		}
		if err := config.ValidateBands(bands); err != nil {
			return core.Value{}, err
		}
		return core.BandListValue(bands), nil
	default:
		return core.Value{}, fmt.Errorf("unsupported property kind")
	}
}
