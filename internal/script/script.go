package script

import (
	"fmt"

	"github.com/eigenplayer/playerd/internal/config"
	"github.com/eigenplayer/playerd/internal/core"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

const coreTypeName = "core"

// Engine hosts a Lua state with the player core exposed as the global `core`
// userdata. Scripts can read and set properties and execute commands.
type Engine struct {
	state  *lua.LState
	core   *core.Core
	logger *zap.Logger
}

// New executes the new function.
func New(c *core.Core, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	state := lua.NewState()

	mt := state.NewTypeMetatable(coreTypeName)
	state.SetField(mt, "__index", state.SetFuncs(state.NewTable(), coreMethods))

	ud := state.NewUserData()
	ud.Value = c
	state.SetMetatable(ud, mt)
	state.SetGlobal("core", ud)

	return &Engine{state: state, core: c, logger: logger}
}

// Close executes the close method.
func (e *Engine) Close() {
	e.state.Close()
}

// RunFile executes the runFile method.
func (e *Engine) RunFile(path string) error {
	if err := e.state.DoFile(path); err != nil {
		e.logger.Warn("lua script failed", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}

// RunString executes the runString method.
func (e *Engine) RunString(src string) error {
	return e.state.DoString(src)
}

var coreMethods = map[string]lua.LGFunction{
	"get_property":    coreGetProperty,
	"set_property":    coreSetProperty,
	"execute_command": coreExecuteCommand,
	"get_string":      coreGetString,
	"get_bool":        coreGetBool,
	"get_float":       coreGetFloat,
	"get_string_list": coreGetStringList,
}

func checkCore(L *lua.LState) *core.Core {
	ud := L.CheckUserData(1)
	if c, ok := ud.Value.(*core.Core); ok {
		return c
	}
	L.ArgError(1, "core expected")
	return nil
}

func coreGetProperty(L *lua.LState) int {
	c := checkCore(L)
	name := L.CheckString(2)
	value, ok := c.GetProperty(name)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(valueToLua(L, value))
	return 1
}

func coreSetProperty(L *lua.LState) int {
	c := checkCore(L)
	name := L.CheckString(2)
	raw := L.CheckAny(3)

	value, err := luaToValue(c, name, raw)
	if err != nil {
		L.RaiseError("set_property %s: %v", name, err)
		return 0
	}
	if err := c.SetProperty(name, value); err != nil {
		L.RaiseError("set_property %s: %v", name, err)
		return 0
	}
	return 0
}

func coreExecuteCommand(L *lua.LState) int {
	c := checkCore(L)
	name := L.CheckString(2)

	args := []string{}
	if L.GetTop() >= 3 {
		table := L.CheckTable(3)
		for i := 1; i <= table.Len(); i++ {
			args = append(args, lua.LVAsString(table.RawGetInt(i)))
		}
	}

	if err := c.ExecuteCommand(name, args); err != nil {
		L.RaiseError("execute_command %s: %v", name, err)
		return 0
	}
	return 0
}

func coreGetString(L *lua.LState) int {
	c := checkCore(L)
	if s, ok := c.GetString(L.CheckString(2)); ok {
		L.Push(lua.LString(s))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

func coreGetBool(L *lua.LState) int {
	c := checkCore(L)
	if b, ok := c.GetBool(L.CheckString(2)); ok {
		L.Push(lua.LBool(b))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

func coreGetFloat(L *lua.LState) int {
	c := checkCore(L)
	name := L.CheckString(2)
	if f, ok := c.GetFloat(name); ok {
		L.Push(lua.LNumber(f))
		return 1
	}
	if i, ok := c.GetInt(name); ok {
		L.Push(lua.LNumber(i))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

func coreGetStringList(L *lua.LState) int {
	c := checkCore(L)
	list, ok := c.GetStringList(L.CheckString(2))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	table := L.NewTable()
	for i, item := range list {
		table.RawSetInt(i+1, lua.LString(item))
	}
	L.Push(table)
	return 1
}

func valueToLua(L *lua.LState, value core.Value) lua.LValue {
	switch value.Kind() {
	case core.KindString:
		s, _ := value.AsString()
		return lua.LString(s)
	case core.KindBool:
		b, _ := value.AsBool()
		return lua.LBool(b)
	case core.KindInt:
		i, _ := value.AsInt()
		return lua.LNumber(i)
	case core.KindFloat:
		f, _ := value.AsFloat()
		return lua.LNumber(f)
	case core.KindStringList:
		list, _ := value.AsStringList()
		table := L.NewTable()
		for i, item := range list {
			table.RawSetInt(i+1, lua.LString(item))
		}
		return table
	case core.KindBandList:
		bands, _ := value.AsBands()
		table := L.NewTable()
		for i, band := range bands {
			entry := L.NewTable()
			for j, field := range band.Slice() {
				entry.RawSetInt(j+1, lua.LNumber(field))
			}
			table.RawSetInt(i+1, entry)
		}
		return table
	default:
		return lua.LNil
	}
}

// luaToValue coerces a Lua value to the kind the property was registered
// with, so scripts can pass plain numbers and tables.
func luaToValue(c *core.Core, name string, raw lua.LValue) (core.Value, error) {
	current, ok := c.GetProperty(name)
	if !ok {
		return core.Value{}, fmt.Errorf("unknown property")
	}

	switch current.Kind() {
	case core.KindString:
		s, ok := raw.(lua.LString)
		if !ok {
			return core.Value{}, fmt.Errorf("expected string, got %s", raw.Type())
		}
		return core.StringValue(string(s)), nil
	case core.KindBool:
		b, ok := raw.(lua.LBool)
		if !ok {
			return core.Value{}, fmt.Errorf("expected boolean, got %s", raw.Type())
		}
		return core.BoolValue(bool(b)), nil
	case core.KindInt:
		n, ok := raw.(lua.LNumber)
		if !ok {
			return core.Value{}, fmt.Errorf("expected number, got %s", raw.Type())
		}
		return core.IntValue(int64(n)), nil
	case core.KindFloat:
		n, ok := raw.(lua.LNumber)
		if !ok {
			return core.Value{}, fmt.Errorf("expected number, got %s", raw.Type())
		}
		return core.FloatValue(float64(n)), nil
	case core.KindStringList:
		table, ok := raw.(*lua.LTable)
		if !ok {
			return core.Value{}, fmt.Errorf("expected table, got %s", raw.Type())
		}
		list := make([]string, 0, table.Len())
		for i := 1; i <= table.Len(); i++ {
			list = append(list, lua.LVAsString(table.RawGetInt(i)))
		}
		return core.StringListValue(list), nil
	case core.KindBandList:
		table, ok := raw.(*lua.LTable)
		if !ok {
			return core.Value{}, fmt.Errorf("expected table, got %s", raw.Type())
		}
		bands := make([]config.EQBand, 0, table.Len())
		for i := 1; i <= table.Len(); i++ {
			entry, ok := table.RawGetInt(i).(*lua.LTable)
			if !ok {
				return core.Value{}, fmt.Errorf("band %d: expected table", i)
			}
			fields := make([]float64, 0, entry.Len())
			for j := 1; j <= entry.Len(); j++ {
				n, ok := entry.RawGetInt(j).(lua.LNumber)
				if !ok {
					return core.Value{}, fmt.Errorf("band %d field %d: expected number", i, j)
				}
				fields = append(fields, float64(n))
			}
			band, err := config.BandFromSlice(fields)
			if err != nil {
				return core.Value{}, fmt.Errorf("band %d: %w", i, err)
			}
			bands = append(bands, band)
		}
		return core.BandListValue(bands), nil
	default:
		return core.Value{}, fmt.Errorf("unsupported property kind")
	}
}
