package keymap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLayoutKeyUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want LayoutKey
	}{
		{"plain string", `A`, LayoutKey{Tap: "A"}},
		{"number scalar", `5`, LayoutKey{Tap: "5"}},
		{"null", `null`, LayoutKey{}},
		{"short aliases", `{t: A, h: Nav, s: "!"}`, LayoutKey{Tap: "A", Hold: "Nav", Shifted: "!"}},
		{"long names", `{tap: A, hold: Nav, type: held}`, LayoutKey{Tap: "A", Hold: "Nav", Type: "held"}},
		{"unknown fields tolerated", `{t: A, left: x}`, LayoutKey{Tap: "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var key LayoutKey
			require.NoError(t, yaml.Unmarshal([]byte(tt.src), &key))
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestLayoutKeyMarshalSimpleCollapsesToString(t *testing.T) {
	out, err := yaml.Marshal(LayoutKey{Tap: "A"})
	require.NoError(t, err)
	assert.Equal(t, "A\n", string(out))
}

func TestLayoutKeyMarshalFull(t *testing.T) {
	out, err := yaml.Marshal(LayoutKey{Tap: "A", Hold: "Nav", Type: "held"})
	require.NoError(t, err)
	assert.Equal(t, "{t: A, h: Nav, type: held}\n", string(out))
}

func TestFromKeySpec(t *testing.T) {
	key, err := FromKeySpec("BOOT")
	require.NoError(t, err)
	assert.Equal(t, LayoutKey{Tap: "BOOT"}, key)

	key, err = FromKeySpec(map[string]any{"t": "A", "h": "Sft"})
	require.NoError(t, err)
	assert.Equal(t, LayoutKey{Tap: "A", Hold: "Sft"}, key)

	_, err = FromKeySpec([]string{"no"})
	assert.Error(t, err)
}

func TestComboSpecUnmarshal(t *testing.T) {
	src := `{p: [0, 1], k: Tab, l: [Base], a: top, o: 0.5}`

	var combo ComboSpec
	require.NoError(t, yaml.Unmarshal([]byte(src), &combo))

	assert.Equal(t, []int{0, 1}, combo.KeyPositions)
	assert.Equal(t, LayoutKey{Tap: "Tab"}, combo.Key)
	assert.Equal(t, []string{"Base"}, combo.Layers)
	assert.Equal(t, "top", combo.Align)
	assert.InDelta(t, 0.5, combo.Offset, 1e-9)
}

func TestComboSpecSinglePositionRejected(t *testing.T) {
	var combo ComboSpec

	err := yaml.Unmarshal([]byte(`{p: [3], k: X}`), &combo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least two key positions")
}

func TestComboSpecPartialOverrideAllowed(t *testing.T) {
	var combo ComboSpec
	require.NoError(t, yaml.Unmarshal([]byte(`{a: top, o: 0.25}`), &combo))
	assert.Empty(t, combo.KeyPositions)
	assert.Equal(t, "top", combo.Align)
}

func TestApplyOverrides(t *testing.T) {
	combo := ComboSpec{KeyPositions: []int{0, 1}, Key: LayoutKey{Tap: "Tab"}, Layers: []string{"Base"}}
	combo.ApplyOverrides(ComboSpec{Align: "bottom", Key: LayoutKey{Tap: "⇥"}})

	assert.Equal(t, []int{0, 1}, combo.KeyPositions)
	assert.Equal(t, "⇥", combo.Key.Tap)
	assert.Equal(t, "bottom", combo.Align)
}

func TestKeymapDataRoundTrip(t *testing.T) {
	data := &KeymapData{
		Layers: []Layer{
			{Name: "Base", Keys: []LayoutKey{{Tap: "A"}, {Tap: "B", Hold: "Nav"}}},
			{Name: "Nav", Keys: []LayoutKey{{Type: TypeHeld}, {Tap: "Left"}}},
		},
		Combos: []ComboSpec{
			{KeyPositions: []int{0, 1}, Key: LayoutKey{Tap: "Tab"}, Layers: []string{"Base"}},
		},
	}

	out, err := yaml.Marshal(data)
	require.NoError(t, err)

	var back KeymapData
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, data.Layers, back.Layers)
	assert.Equal(t, data.Combos, back.Combos)
}

func TestDumpPreservesLayerOrder(t *testing.T) {
	data := &KeymapData{Layers: []Layer{
		{Name: "Zulu", Keys: []LayoutKey{{Tap: "A"}}},
		{Name: "Alpha", Keys: []LayoutKey{{Tap: "B"}}},
	}}

	out, err := yaml.Marshal(data)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(out), "Zulu"), strings.Index(string(out), "Alpha"))
}

func TestDumpColumnsChunksRows(t *testing.T) {
	data := &KeymapData{Layers: []Layer{
		{Name: "Base", Keys: []LayoutKey{{Tap: "A"}, {Tap: "B"}, {Tap: "C"}}},
	}}

	out, err := yaml.Marshal(data.Dump(2))
	require.NoError(t, err)
	assert.Contains(t, string(out), "[A, B]")
	assert.Contains(t, string(out), "[C]")

	var back KeymapData
	require.NoError(t, yaml.Unmarshal(out, &back))
	require.Len(t, back.Layers, 1)
	assert.Len(t, back.Layers[0].Keys, 3)
}
