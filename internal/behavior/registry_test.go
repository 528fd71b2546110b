package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caksoylar/keymap-drawer/internal/diagnostic"
	"github.com/caksoylar/keymap-drawer/internal/dts"
)

func buildFrom(t *testing.T, src string) (*Registry, *diagnostic.Diagnostics) {
	t.Helper()

	tree, err := dts.Parse(src)
	require.NoError(t, err)

	diags := &diagnostic.Diagnostics{}

	return Build(tree, diags), diags
}

func TestBuildHoldTap(t *testing.T) {
	reg, diags := buildFrom(t, `
behaviors {
    hm: homerow_mods {
        compatible = "zmk,behavior-hold-tap";
        bindings = <&kp>, <&kp>;
    };
};
`)

	require.False(t, diags.HasErrors())

	desc, ok := reg.Lookup("&hm")
	require.True(t, ok)
	assert.Equal(t, KindHoldTap, desc.Kind)
	assert.Equal(t, "&kp", desc.HoldRef)
	assert.Equal(t, "&kp", desc.TapRef)
	assert.Empty(t, desc.DisplayName)
}

func TestBuildHoldTapDisplayName(t *testing.T) {
	reg, _ := buildFrom(t, `
behaviors {
    hm: homerow_mods {
        compatible = "zmk,behavior-hold-tap";
        label = "HOMEROW_MODS";
        display-name = "HRM";
        bindings = <&kp>, <&kp>;
    };
};
`)

	desc, ok := reg.Lookup("&hm")
	require.True(t, ok)
	assert.Equal(t, "HRM", desc.DisplayName)
}

func TestBuildMacroArities(t *testing.T) {
	reg, _ := buildFrom(t, `
macros {
    m0: m0 {
        compatible = "zmk,behavior-macro";
        bindings = <&macro_tap &kp A &kp B>;
    };
    m1: m1 {
        compatible = "zmk,behavior-macro-one-param";
        bindings = <&macro_param_1to1 &kp MACRO_PLACEHOLDER>;
    };
};
`)

	m0, ok := reg.Lookup("&m0")
	require.True(t, ok)
	assert.Equal(t, KindMacro, m0.Kind)
	assert.Equal(t, 0, m0.BoundParams)
	assert.Equal(t, []string{"&macro_tap", "&kp A", "&kp B"}, m0.Steps)

	m1, ok := reg.Lookup("&m1")
	require.True(t, ok)
	assert.Equal(t, 1, m1.BoundParams)
}

func TestBuildModMorphAndSticky(t *testing.T) {
	reg, _ := buildFrom(t, `
behaviors {
    qexcl: q_excl {
        compatible = "zmk,behavior-mod-morph";
        bindings = <&kp Q>, <&kp EXCL>;
        mods = <(MOD_LSFT|MOD_RSFT)>;
    };
    skq: sticky_quick {
        compatible = "zmk,behavior-sticky-key";
        bindings = <&kp>;
    };
    tog: my_toggle {
        compatible = "zmk,behavior-key-toggle";
        bindings = <&kp>;
    };
};
`)

	morph, ok := reg.Lookup("&qexcl")
	require.True(t, ok)
	assert.Equal(t, KindModMorph, morph.Kind)
	assert.Equal(t, "&kp Q", morph.DefaultRef)
	assert.Equal(t, "&kp EXCL", morph.MorphedRef)
	assert.Equal(t, []string{"(MOD_LSFT|MOD_RSFT)"}, morph.Mods)

	sticky, ok := reg.Lookup("&skq")
	require.True(t, ok)
	assert.Equal(t, KindStickyKey, sticky.Kind)
	assert.Equal(t, ModeSticky, sticky.Mode)

	toggle, ok := reg.Lookup("&tog")
	require.True(t, ok)
	assert.Equal(t, ModeToggle, toggle.Mode)
}

func TestBuiltinsSeeded(t *testing.T) {
	reg, _ := buildFrom(t, `/ { };`)

	for _, ref := range []string{"&mt", "&lt", "&gresc", "&sk", "&sl"} {
		_, ok := reg.Lookup(ref)
		assert.True(t, ok, ref)
	}
}

func TestFirstDefinitionWins(t *testing.T) {
	reg, _ := buildFrom(t, `
behaviors {
    hm: first {
        compatible = "zmk,behavior-hold-tap";
        bindings = <&kp>, <&kp>;
    };
    hm: second {
        compatible = "zmk,behavior-hold-tap";
        bindings = <&mo>, <&kp>;
    };
};
`)

	desc, ok := reg.Lookup("&hm")
	require.True(t, ok)
	assert.Equal(t, "&kp", desc.HoldRef)
}

func TestUserDefinitionCannotShadowBuiltin(t *testing.T) {
	reg, _ := buildFrom(t, `
behaviors {
    mt: my_mt {
        compatible = "zmk,behavior-hold-tap";
        bindings = <&mo>, <&kp>;
    };
};
`)

	desc, _ := reg.Lookup("&mt")
	assert.Equal(t, "&kp", desc.HoldRef)
}

func TestMalformedBehaviorWarnsAndSkips(t *testing.T) {
	reg, diags := buildFrom(t, `
behaviors {
    bad: bad_ht {
        compatible = "zmk,behavior-hold-tap";
        bindings = <&kp>;
    };
};
`)

	_, ok := reg.Lookup("&bad")
	assert.False(t, ok)
	assert.Len(t, diags.Warnings, 1)
}

func TestUnrecognizedCompatibleIgnored(t *testing.T) {
	reg, diags := buildFrom(t, `
behaviors {
    cp: caps_word {
        compatible = "zmk,behavior-caps-word";
    };
};
`)

	_, ok := reg.Lookup("&cp")
	assert.False(t, ok)
	assert.Empty(t, diags.Warnings)
}
