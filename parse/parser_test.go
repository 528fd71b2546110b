package parse

import (
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caksoylar/keymap-drawer/config"
	"github.com/caksoylar/keymap-drawer/internal/behavior"
	"github.com/caksoylar/keymap-drawer/internal/diagnostic"
	"github.com/caksoylar/keymap-drawer/internal/dts"
	"github.com/caksoylar/keymap-drawer/keymap"
)

const sampleKeymap = `
/ {
    keymap {
        compatible = "zmk,keymap";

        default_layer {
            label = "Qwerty";
            bindings = <&mt LSHIFT A &kp B &mo 1 &kp LC(LS(V))>;
        };

        layer_nav {
            bindings = <&kp LEFT &kp RIGHT &trans &none>;
        };
    };

    combos {
        compatible = "zmk,combos";
        combo_tab {
            key-positions = <0 1>;
            bindings = <&kp TAB>;
            layers = <0>;
        };
    };
};
`

func parseSample(t *testing.T, src string, cfg *config.ParseConfig, opts ...Option) (*keymap.KeymapData, []diagnostic.Diagnostic) {
	t.Helper()

	data, diags, err := New(cfg, opts...).Parse("test.keymap", []byte(src))
	require.NoError(t, err)
	require.NotNil(t, data)

	return data, diags
}

func TestParseSampleKeymap(t *testing.T) {
	data, diags := parseSample(t, sampleKeymap, nil)

	assert.Empty(t, diags)
	require.Equal(t, []string{"Qwerty", "nav"}, data.LayerNames())

	base := data.Layers[0].Keys
	require.Len(t, base, 4)

	assert.Equal(t, keymap.LayoutKey{Tap: "A", Hold: "Sft"}, base[0])
	assert.Equal(t, keymap.LayoutKey{Tap: "B"}, base[1])
	assert.Equal(t, keymap.LayoutKey{Tap: "nav"}, base[2])
	assert.Equal(t, keymap.LayoutKey{Tap: "Ctl+Sft+V"}, base[3])

	nav := data.Layers[1].Keys
	assert.Equal(t, keymap.LayoutKey{Tap: "LEFT"}, nav[0])
	// Position 2 held layer 1 via &mo, and it was transparent.
	assert.Equal(t, keymap.LayoutKey{Type: keymap.TypeHeld}, nav[2])
	assert.Equal(t, keymap.LayoutKey{}, nav[3])
}

func TestParseCombo(t *testing.T) {
	data, _ := parseSample(t, sampleKeymap, nil)

	require.Len(t, data.Combos, 1)
	combo := data.Combos[0]

	assert.Equal(t, []int{0, 1}, combo.KeyPositions)
	assert.Equal(t, "Tab", combo.Key.Tap)
	assert.Equal(t, []string{"Qwerty"}, combo.Layers)
}

func TestComboConfigOverridesMerged(t *testing.T) {
	cfg := config.DefaultParseConfig()
	cfg.ZmkCombos["combo_tab"] = keymap.ComboSpec{Align: "top", Offset: 0.5}

	data, _ := parseSample(t, sampleKeymap, cfg)

	require.Len(t, data.Combos, 1)
	assert.Equal(t, "top", data.Combos[0].Align)
	assert.Equal(t, "Tab", data.Combos[0].Key.Tap)
}

func TestUserHoldTap(t *testing.T) {
	src := `
/ {
    behaviors {
        hml: homerow_left {
            compatible = "zmk,behavior-hold-tap";
            bindings = <&kp>, <&kp>;
        };
    };
    keymap {
        compatible = "zmk,keymap";
        layer_a { bindings = <&hml LCTRL S>; };
    };
};
`

	data, diags := parseSample(t, src, nil)
	assert.Empty(t, diags)
	assert.Equal(t, keymap.LayoutKey{Tap: "S", Hold: "Ctl"}, data.Layers[0].Keys[0])
}

func TestHoldTapDisplayNameOverridesTap(t *testing.T) {
	src := `
/ {
    behaviors {
        hml: homerow_left {
            compatible = "zmk,behavior-hold-tap";
            display-name = "HRM";
            bindings = <&kp>, <&kp>;
        };
    };
    keymap {
        compatible = "zmk,keymap";
        layer_a { bindings = <&hml LCTRL S>; };
    };
};
`

	data, diags := parseSample(t, src, nil)
	assert.Empty(t, diags)
	assert.Equal(t, keymap.LayoutKey{Tap: "HRM", Hold: "Ctl"}, data.Layers[0].Keys[0])
}

func TestHyperSpecialCombination(t *testing.T) {
	src := `
keymap {
    compatible = "zmk,keymap";
    layer_a { bindings = <&kp LC(LS(LA(LG(V))))>; };
};
`

	data, _ := parseSample(t, src, nil)
	assert.Equal(t, "Hyper+V", data.Layers[0].Keys[0].Tap)
}

func TestModMorph(t *testing.T) {
	src := `
/ {
    behaviors {
        qexcl: q_excl {
            compatible = "zmk,behavior-mod-morph";
            bindings = <&kp Q>, <&kp EXCL>;
            mods = <(MOD_LSFT|MOD_RSFT)>;
        };
    };
    keymap {
        compatible = "zmk,keymap";
        layer_a { bindings = <&qexcl &gresc>; };
    };
};
`

	data, _ := parseSample(t, src, nil)
	assert.Equal(t, keymap.LayoutKey{Tap: "Q", Shifted: "!"}, data.Layers[0].Keys[0])
	assert.Equal(t, keymap.LayoutKey{Tap: "Esc", Shifted: "`"}, data.Layers[0].Keys[1])
}

func TestStickyKeys(t *testing.T) {
	src := `
keymap {
    compatible = "zmk,keymap";
    layer_base { bindings = <&sk LSHIFT &sl 1 &kt CAPS &tog 1>; };
    layer_fn { bindings = <&trans &trans &trans &trans>; };
};
`

	data, _ := parseSample(t, src, nil)
	keys := data.Layers[0].Keys

	assert.Equal(t, keymap.LayoutKey{Tap: "Sft", Hold: "sticky", Type: keymap.TypeSticky}, keys[0])
	assert.Equal(t, keymap.LayoutKey{Tap: "fn", Hold: "sticky", Type: keymap.TypeSticky}, keys[1])
	assert.Equal(t, keymap.LayoutKey{Tap: "CAPS", Hold: "toggle", Type: keymap.TypeToggle}, keys[2])
	assert.Equal(t, keymap.LayoutKey{Tap: "fn", Hold: "toggle", Type: keymap.TypeToggle}, keys[3])

	// Sticky layer keys still count as layer activators.
	assert.Equal(t, keymap.TypeHeld, data.Layers[1].Keys[1].Type)
}

func TestMacro(t *testing.T) {
	src := `
/ {
    macros {
        greet: greet {
            compatible = "zmk,behavior-macro";
            bindings = <&macro_tap &kp H &kp I>;
        };
    };
    keymap {
        compatible = "zmk,keymap";
        layer_a { bindings = <&greet>; };
    };
};
`

	data, diags := parseSample(t, src, nil)
	assert.Empty(t, diags)
	assert.Equal(t, "H I", data.Layers[0].Keys[0].Tap)
}

func TestCyclicMacroDegrades(t *testing.T) {
	src := `
/ {
    macros {
        loop: loop {
            compatible = "zmk,behavior-macro";
            bindings = <&loop>;
        };
    };
    keymap {
        compatible = "zmk,keymap";
        layer_a { bindings = <&loop>; };
    };
};
`

	data, diags := parseSample(t, src, nil)

	assert.Equal(t, "&loop", data.Layers[0].Keys[0].Tap)

	found := false
	for _, d := range diags {
		if d.Code == diagnostic.CodeCyclicBehavior {
			found = true
		}
	}
	assert.True(t, found, "expected a cyclic behavior warning, got:\n%s", spew.Sdump(diags))
}

func TestBasicDescriptorUsesKeycodePipeline(t *testing.T) {
	tree, err := dts.Parse(`/ { };`)
	require.NoError(t, err)

	diags := &diagnostic.Diagnostics{}
	reg := behavior.Build(tree, diags)
	res := newResolver(config.DefaultParseConfig(), reg, nil, diags, newActivationTracker(false), nil)

	desc := &behavior.Descriptor{Kind: behavior.KindBasic, Label: "&copy", Keycode: "LC(C)"}
	key := res.resolveDescriptor(desc, "&copy", nil, -1, nil, false, map[string]bool{})

	assert.Equal(t, keymap.LayoutKey{Tap: "Ctl+C"}, key)
}

func TestRawBindingMapShortCircuits(t *testing.T) {
	cfg := config.DefaultParseConfig()
	cfg.RawBindingMap["&bootloader"] = keymap.LayoutKey{Tap: "BOOT"}
	cfg.RawBindingMap["&kp A"] = keymap.LayoutKey{Tap: "overridden"}

	src := `
keymap {
    compatible = "zmk,keymap";
    layer_a { bindings = <&bootloader &kp A>; };
};
`

	data, _ := parseSample(t, src, cfg)
	assert.Equal(t, "BOOT", data.Layers[0].Keys[0].Tap)
	assert.Equal(t, "overridden", data.Layers[0].Keys[1].Tap)
}

func TestSkipBindingParsing(t *testing.T) {
	cfg := config.DefaultParseConfig()
	cfg.SkipBindingParsing = true

	data, _ := parseSample(t, sampleKeymap, cfg)
	assert.Equal(t, "&mt LSHIFT A", data.Layers[0].Keys[0].Tap)
}

func TestUnresolvedReferenceDegrades(t *testing.T) {
	src := `
keymap {
    compatible = "zmk,keymap";
    layer_a { bindings = <&mystery 1 2 &bootloader>; };
};
`

	data, diags := parseSample(t, src, nil)

	assert.Equal(t, "&mystery 1 2", data.Layers[0].Keys[0].Tap)
	assert.Equal(t, "&bootloader", data.Layers[0].Keys[1].Tap)

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.CodeUnresolvedReference, diags[0].Code)
}

func TestPreprocessorDefinesApply(t *testing.T) {
	src := `
#define NAV 1
#define MY_COMBO LC(X)

/ {
    keymap {
        compatible = "zmk,keymap";
        layer_base { bindings = <&mo NAV &kp MY_COMBO>; };
        layer_nav { bindings = <&trans &trans>; };
    };
};
`

	data, diags := parseSample(t, src, nil)
	assert.Empty(t, diags)
	assert.Equal(t, "nav", data.Layers[0].Keys[0].Tap)
	assert.Equal(t, "Ctl+X", data.Layers[0].Keys[1].Tap)
}

func TestZmkMacroHelperExpands(t *testing.T) {
	src := `
/ {
    macros {
        ZMK_MACRO(hi_macro,
            bindings = <&macro_tap &kp H &kp I>;
        )
    };
    keymap {
        compatible = "zmk,keymap";
        layer_a { bindings = <&hi_macro>; };
    };
};
`

	data, diags := parseSample(t, src, nil)
	assert.Empty(t, diags)
	assert.Equal(t, "H I", data.Layers[0].Keys[0].Tap)
}

func TestMarkAlternateLayerActivators(t *testing.T) {
	src := `
keymap {
    compatible = "zmk,keymap";
    layer_base { bindings = <&lt 1 A &lt 1 B>; };
    layer_nav { bindings = <&trans &trans>; };
};
`

	t.Run("disabled keeps first only", func(t *testing.T) {
		data, _ := parseSample(t, src, nil)

		assert.Equal(t, keymap.TypeHeld, data.Layers[1].Keys[0].Type)
		assert.Equal(t, keymap.TypeTrans, data.Layers[1].Keys[1].Type)
	})

	t.Run("enabled marks later sources", func(t *testing.T) {
		cfg := config.DefaultParseConfig()
		cfg.MarkAlternateLayerActivators = true

		data, _ := parseSample(t, src, cfg)

		assert.Equal(t, keymap.TypeHeld, data.Layers[1].Keys[0].Type)
		assert.Equal(t, keymap.TypeHeldAlternate, data.Layers[1].Keys[1].Type)
	})
}

func TestConditionalLayersPropagateActivators(t *testing.T) {
	src := `
/ {
    conditional_layers {
        compatible = "zmk,conditional-layers";
        adjust {
            if-layers = <1 2>;
            then-layer = <3>;
        };
    };
    keymap {
        compatible = "zmk,keymap";
        layer_base { bindings = <&mo 1 &mo 2>; };
        layer_lower { bindings = <&trans &trans>; };
        layer_raise { bindings = <&trans &trans>; };
        layer_adjust { bindings = <&trans &trans>; };
    };
};
`

	data, _ := parseSample(t, src, nil)

	adjust := data.Layers[3].Keys
	assert.Equal(t, keymap.TypeHeld, adjust[0].Type)
	assert.Equal(t, keymap.TypeHeld, adjust[1].Type)
}

func TestReverseOrderActivationIgnored(t *testing.T) {
	src := `
keymap {
    compatible = "zmk,keymap";
    layer_base { bindings = <&mo 1>; };
    layer_nav { bindings = <&mo 0>; };
};
`

	data, _ := parseSample(t, src, nil)
	assert.Equal(t, "", data.Layers[0].Keys[0].Type)
}

func TestLayerNameOverride(t *testing.T) {
	data, _ := parseSample(t, sampleKeymap, nil, WithLayerNames("Main", "Cursor"))
	assert.Equal(t, []string{"Main", "Cursor"}, data.LayerNames())
}

func TestMissingKeymapSectionWarns(t *testing.T) {
	data, diags := parseSample(t, `/ { foo { }; };`, nil)

	assert.Empty(t, data.Layers)

	require.NotEmpty(t, diags)
	assert.Equal(t, diagnostic.CodeMissingSection, diags[0].Code)
}

func TestStructuralErrorInKeymapIsFatal(t *testing.T) {
	src := `
keymap {
    compatible = "zmk,keymap";
    layer_a { bindings = <&kp A ; };
};
`

	_, diags, err := New(nil).Parse("test.keymap", []byte(src))
	require.Error(t, err)

	// Fatal failures also surface as error diagnostics so callers that
	// report diagnostics see the reason alongside the warnings.
	require.NotEmpty(t, diags)
	assert.Equal(t, diagnostic.CodeStructuralError, diags[0].Code)
	assert.Equal(t, diagnostic.SeverityError, diags[0].Severity)
}

func TestStrictIncludeFailureIsFatal(t *testing.T) {
	src := `
#include "nowhere.h"
keymap {
    compatible = "zmk,keymap";
    layer_a { bindings = <&kp A>; };
};
`

	_, diags, err := New(nil, WithStrictIncludes()).Parse("test.keymap", []byte(src))
	require.Error(t, err)

	require.NotEmpty(t, diags)
	assert.Equal(t, diagnostic.CodePreprocessError, diags[0].Code)
}

func TestRebaseThroughParser(t *testing.T) {
	base := &keymap.KeymapData{Layers: []keymap.Layer{
		{Name: "Qwerty", Keys: []keymap.LayoutKey{
			{Tap: "A", Hold: "Sft", Shifted: "Ä"}, {Tap: "B"}, {Tap: "nav"}, {Tap: "paste"},
		}},
		{Name: "nav", Keys: []keymap.LayoutKey{{Tap: "edited"}}},
	}}

	data, diags := parseSample(t, sampleKeymap, nil, WithBaseKeymap(base))

	// Hand-edited fields merged where the layer still lines up.
	assert.Equal(t, "Ä", data.Layers[0].Keys[0].Shifted)

	// The reshaped nav layer is skipped with a warning.
	assert.Equal(t, "LEFT", data.Layers[1].Keys[0].Tap)

	found := false
	for _, d := range diags {
		if d.Code == diagnostic.CodeRebaseMismatch && d.Layer == "nav" {
			found = true
		}
	}
	assert.True(t, found, "expected rebase mismatch warning, got %v", diags)
}

func TestInvalidLayerIndexDegrades(t *testing.T) {
	src := `
keymap {
    compatible = "zmk,keymap";
    layer_a { bindings = <&mo 9>; };
};
`

	data, diags := parseSample(t, src, nil)

	assert.Equal(t, "9", data.Layers[0].Keys[0].Tap)

	require.NotEmpty(t, diags)
	assert.Equal(t, diagnostic.CodeInvalidLayerIndex, diags[0].Code)
}

func ExampleParser_Parse() {
	src := `
keymap {
    compatible = "zmk,keymap";
    layer_base { bindings = <&mt LSHIFT A &kp LC(B) &trans>; };
};
`

	data, _, err := New(nil).Parse("example.keymap", []byte(src))
	if err != nil {
		panic(err)
	}

	for _, key := range data.Layers[0].Keys {
		fmt.Printf("tap=%q hold=%q type=%q\n", key.Tap, key.Hold, key.Type)
	}

	// Output:
	// tap="A" hold="Sft" type=""
	// tap="Ctl+B" hold="" type=""
	// tap="▽" hold="" type="trans"
}
