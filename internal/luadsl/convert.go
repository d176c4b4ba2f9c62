package luadsl

import (
	"math"

	"github.com/Shopify/go-lua"

	"github.com/roach88/casebook/internal/ir"
)

// pushValue pushes a Go value onto the Lua stack. Records, maps and slices
// become fresh tables; refs push the value they point to.
func (rt *Runtime) pushValue(l *lua.State, v any) {
	switch val := v.(type) {
	case nil:
		l.PushNil()
	case *ref:
		rt.pushRef(l, val.id)
	case bool:
		l.PushBoolean(val)
	case string:
		l.PushString(val)
	case int:
		l.PushInteger(val)
	case int64:
		l.PushInteger(int(val))
	case float64:
		l.PushNumber(val)
	case ir.Record:
		rt.pushMap(l, val)
	case map[string]any:
		rt.pushMap(l, val)
	case []ir.Record:
		l.CreateTable(len(val), 0)
		for i, rec := range val {
			rt.pushMap(l, rec)
			l.RawSetInt(-2, i+1)
		}
	case []any:
		l.CreateTable(len(val), 0)
		for i, item := range val {
			rt.pushValue(l, item)
			l.RawSetInt(-2, i+1)
		}
	default:
		if n, err := ir.Normalize(val); err == nil {
			rt.pushValue(l, n)
			return
		}
		l.PushUserData(val)
	}
}

func (rt *Runtime) pushMap(l *lua.State, m map[string]any) {
	l.CreateTable(0, len(m))
	for _, k := range ir.SortedKeys(m) {
		rt.pushValue(l, m[k])
		l.SetField(-2, k)
	}
}

func tableToMap(l *lua.State, index int) map[string]any {
	output := map[string]any{}
	if l.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = l.AbsIndex(index)
	l.PushNil()
	for l.Next(index) {
		if l.TypeOf(-2) == lua.TypeString {
			key, _ := l.ToString(-2)
			output[key] = luaToGo(l, -1)
		}
		l.Pop(1)
	}
	return output
}

// luaToGo converts the value at index. Functions and threads convert to
// nil; callers that accept functions check for them first.
func luaToGo(l *lua.State, index int) any {
	switch l.TypeOf(index) {
	case lua.TypeString:
		value, _ := l.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := l.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return l.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(l, index)
	case lua.TypeUserData:
		return l.ToUserData(index)
	default:
		return nil
	}
}

// tableToGo returns []any for sequences and map[string]any otherwise.
// An empty table is an empty map.
func tableToGo(l *lua.State, index int) any {
	if l.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = l.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	l.PushNil()
	for l.Next(index) {
		if isArray {
			if l.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := l.ToInteger(-2); ok && idx > 0 {
				count++
				maxIndex = max(maxIndex, idx)
			} else {
				isArray = false
			}
		}
		l.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			l.RawGetInt(index, i)
			result = append(result, luaToGo(l, -1))
			l.Pop(1)
		}
		return result
	}

	return tableToMap(l, index)
}

// normalizeNumber maps integral Lua numbers to int64, the integer type
// used by parsed tables.
func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 && math.Abs(value) < 1<<53 {
		return int64(value)
	}
	return value
}
