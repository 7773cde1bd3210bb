package lua

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestRoundTripPlainData(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	in := map[string]any{
		"name":  "hello",
		"count": int64(3),
		"ratio": 0.5,
		"on":    true,
		"tags":  []any{"a", "b"},
		"empty": map[string]any{},
	}
	out := ToGo(ToLua(L, in))
	assert.Equal(t, in, out)
}

func TestToLuaRawJSON(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	lv := ToLua(L, json.RawMessage(`{"theme":"dark","volume":5}`))
	tbl, ok := lv.(*lua.LTable)
	require.True(t, ok)
	assert.Equal(t, lua.LString("dark"), tbl.RawGetString("theme"))
	assert.Equal(t, lua.LNumber(5), tbl.RawGetString("volume"))

	assert.Equal(t, lua.LNil, ToLua(L, json.RawMessage(`{bad`)))
}

func TestToLuaOpaqueValue(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	type store struct{ n int }
	s := &store{n: 1}
	ud, ok := ToLua(L, s).(*lua.LUserData)
	require.True(t, ok)
	assert.Same(t, s, ud.Value)
	assert.Same(t, s, ToGo(ud))
}

func TestToGoCycle(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	require.NoError(t, L.DoString(`t = { a = 1 }; t.self = t`))
	out, ok := ToGo(L.GetGlobal("t")).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(1), out["a"])
	assert.Nil(t, out["self"])
}
