package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eigenplayer/playerd/internal/config"
	"go.uber.org/zap"
)

var (
	// ErrUnknownProperty is returned for operations on unregistered properties.
	ErrUnknownProperty = errors.New("unknown property")
	// ErrUnknownCommand is returned when executing an unregistered command.
	ErrUnknownCommand = errors.New("unknown command")
)

// PropertyCallback observes changes to a single property.
type PropertyCallback func(name string, value Value)

// EventKind identifies a core event.
type EventKind string

const (
	EventPropertyChanged EventKind = "property-changed"
	EventCommandExecuted EventKind = "command-executed"
)

// Event represents an event.
type Event struct {
	Kind  EventKind
	Name  string
	Value Value
}

// EventCallback observes all core events.
type EventCallback func(Event)

// CommandFunc executes a named command against the core.
type CommandFunc func(args []string, c *Core) error

type property struct {
	value     Value
	callbacks []PropertyCallback
}

// Core is the shared player state: a typed property registry, a command
// table, and an event bus. Callbacks run outside the registry lock, so a
// command or subscriber may set further properties.
type Core struct {
	mu             sync.RWMutex
	logger         *zap.Logger
	properties     map[string]*property
	commands       map[string]CommandFunc
	eventCallbacks []EventCallback
}

// New executes the new function.
func New(logger *zap.Logger) *Core {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Core{
		logger:     logger,
		properties: make(map[string]*property),
		commands:   make(map[string]CommandFunc),
	}
}

// AddProperty registers a property with its initial value. Re-registering a
// name replaces the value and drops its subscribers.
func (c *Core) AddProperty(name string, value Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.properties[name] = &property{value: value}
}

// SetProperty updates a registered property and notifies subscribers, then
// event callbacks. The new value must keep the registered kind.
func (c *Core) SetProperty(name string, value Value) error {
	c.mu.Lock()
	prop, ok := c.properties[name]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
	if prop.value.Kind() != value.Kind() {
		kind := prop.value.Kind()
		c.mu.Unlock()
		return fmt.Errorf("property %s holds %s, cannot set %s", name, kind, value.Kind())
	}
	prop.value = value
	callbacks := make([]PropertyCallback, len(prop.callbacks))
	copy(callbacks, prop.callbacks)
	c.mu.Unlock()

	for _, cb := range callbacks {
		cb(name, value)
	}

	c.emit(Event{Kind: EventPropertyChanged, Name: name, Value: value})
	return nil
}

// GetProperty executes the getProperty method.
func (c *Core) GetProperty(name string) (Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	prop, ok := c.properties[name]
	if !ok {
		return Value{}, false
	}
	return prop.value, true
}

// Subscribe registers a callback for changes to one property.
func (c *Core) Subscribe(name string, cb PropertyCallback) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prop, ok := c.properties[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
	prop.callbacks = append(prop.callbacks, cb)
	return nil
}

// SubscribeEvent registers a callback for all core events.
func (c *Core) SubscribeEvent(cb EventCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventCallbacks = append(c.eventCallbacks, cb)
}

// AddCommand executes the addCommand method.
func (c *Core) AddCommand(name string, fn CommandFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands[name] = fn
}

// ExecuteCommand runs a registered command, then fires a CommandExecuted event.
func (c *Core) ExecuteCommand(name string, args []string) error {
	c.mu.RLock()
	fn, ok := c.commands[name]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	if err := fn(args, c); err != nil {
		c.logger.Warn("command failed", zap.String("command", name), zap.Error(err))
		return err
	}

	c.emit(Event{Kind: EventCommandExecuted, Name: name})
	return nil
}

// Commands returns the registered command names.
func (c *Core) Commands() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	return names
}

// Snapshot returns all properties in JSON-encodable form.
func (c *Core) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.properties))
	for name, prop := range c.properties {
		out[name] = prop.value.Interface()
	}
	return out
}

func (c *Core) emit(event Event) {
	c.mu.RLock()
	callbacks := make([]EventCallback, len(c.eventCallbacks))
	copy(callbacks, c.eventCallbacks)
	c.mu.RUnlock()

	for _, cb := range callbacks {
		cb(event)
	}
}

// Typed getters for convenience.

// GetString executes the getString method.
func (c *Core) GetString(name string) (string, bool) {
	value, ok := c.GetProperty(name)
	if !ok {
		return "", false
	}
	return value.AsString()
}

// GetBool executes the getBool method.
func (c *Core) GetBool(name string) (bool, bool) {
	value, ok := c.GetProperty(name)
	if !ok {
		return false, false
	}
	return value.AsBool()
}

// GetInt executes the getInt method.
func (c *Core) GetInt(name string) (int64, bool) {
	value, ok := c.GetProperty(name)
	if !ok {
		return 0, false
	}
	return value.AsInt()
}

// GetFloat executes the getFloat method.
func (c *Core) GetFloat(name string) (float64, bool) {
	value, ok := c.GetProperty(name)
	if !ok {
		return 0, false
	}
	return value.AsFloat()
}

// GetStringList executes the getStringList method.
func (c *Core) GetStringList(name string) ([]string, bool) {
	value, ok := c.GetProperty(name)
	if !ok {
		return nil, false
	}
	return value.AsStringList()
}

// GetBands executes the getBands method.
func (c *Core) GetBands(name string) ([]config.EQBand, bool) {
	value, ok := c.GetProperty(name)
	if !ok {
		return nil, false
	}
	return value.AsBands()
}
