package config

import "github.com/caksoylar/keymap-drawer/keymap"

// Default returns the full default configuration.
func Default() *Config {
	return &Config{Parse: *DefaultParseConfig()}
}

// DefaultParseConfig returns the default parse configuration, including the
// built-in keycode display tables.
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		Preprocess:     true,
		StickyLabel:    "sticky",
		ToggleLabel:    "toggle",
		TapToggleLabel: "tap-toggle",
		TransLegend:    keymap.LayoutKey{Tap: "▽", Type: keymap.TypeTrans},
		ModifierFnMap:  DefaultModifierFnMap(),
		RawBindingMap:  map[string]keymap.LayoutKey{},
		ZmkKeycodeMap:  defaultZmkKeycodeMap(),
		ZmkCombos:      map[string]keymap.ComboSpec{},

		QmkRemoveKeycodePrefix: []string{"KC_"},
		QmkKeycodeMap:          defaultQmkKeycodeMap(),
	}
}

// DefaultModifierFnMap returns the default modifier flattening configuration.
func DefaultModifierFnMap() *ModifierFnMap {
	return &ModifierFnMap{
		LeftCtrl:        "Ctl",
		RightCtrl:       "Ctl",
		LeftShift:       "Sft",
		RightShift:      "Sft",
		LeftAlt:         "Alt",
		RightAlt:        "AltGr",
		LeftGui:         "Gui",
		RightGui:        "Gui",
		KeycodeCombiner: "{mods}+{key}",
		ModCombiner:     "{mod_1}+{mod_2}",
		SpecialCombinations: map[string]string{
			"left_ctrl+left_alt+left_gui+left_shift": "Hyper",
			"left_ctrl+left_alt+left_shift":          "Meh",
		},
	}
}

func defaultZmkKeycodeMap() map[string]keymap.LayoutKey {
	return simpleKeyMap(map[string]string{
		"TAB":               "Tab",
		"ESCAPE":            "Esc",
		"ESC":               "Esc",
		"RETURN":            "Enter",
		"RET":               "Enter",
		"ENTER":             "Enter",
		"SPACE":             "Space",
		"BACKSPACE":         "Bspc",
		"BSPC":              "Bspc",
		"DELETE":            "Del",
		"DEL":               "Del",
		"EXCLAMATION":       "!",
		"EXCL":              "!",
		"AT_SIGN":           "@",
		"AT":                "@",
		"HASH":              "#",
		"POUND":             "#",
		"DOLLAR":            "$",
		"DLLR":              "$",
		"PERCENT":           "%",
		"PRCNT":             "%",
		"CARET":             "^",
		"AMPERSAND":         "&",
		"AMPS":              "&",
		"ASTERISK":          "*",
		"ASTRK":             "*",
		"STAR":              "*",
		"LEFT_PARENTHESIS":  "(",
		"LPAR":              "(",
		"RIGHT_PARENTHESIS": ")",
		"RPAR":              ")",
		"EQUAL":             "=",
		"PLUS":              "+",
		"MINUS":             "-",
		"UNDERSCORE":        "_",
		"UNDER":             "_",
		"SLASH":             "/",
		"FSLH":              "/",
		"QUESTION":          "?",
		"QMARK":             "?",
		"BACKSLASH":         "\\",
		"BSLH":              "\\",
		"PIPE":              "|",
		"NON_US_BACKSLASH":  "\\",
		"PIPE2":             "|",
		"NON_US_BSLH":       "|",
		"SEMICOLON":         ";",
		"SEMI":              ";",
		"COLON":             ":",
		"SINGLE_QUOTE":      "'",
		"SQT":               "'",
		"APOSTROPHE":        "'",
		"APOS":              "'",
		"DOUBLE_QUOTES":     "\"",
		"DQT":               "\"",
		"COMMA":             ",",
		"LESS_THAN":         "<",
		"LT":                "<",
		"PERIOD":            ".",
		"DOT":               ".",
		"GREATER_THAN":      ">",
		"GT":                ">",
		"LEFT_BRACKET":      "[",
		"LBKT":              "[",
		"LEFT_BRACE":        "{",
		"LBRC":              "{",
		"RIGHT_BRACKET":     "]",
		"RBKT":              "]",
		"RIGHT_BRACE":       "}",
		"RBRC":              "}",
		"GRAVE":             "`",
		"TILDE":             "~",
		"NON_US_HASH":       "#",
		"NUHS":              "#",
		"TILDE2":            "~",
	})
}

func defaultQmkKeycodeMap() map[string]keymap.LayoutKey {
	return simpleKeyMap(map[string]string{
		"XXXXXXX":            "",
		"NO":                 "",
		"MINUS":              "-",
		"MINS":               "-",
		"EQUAL":              "=",
		"EQL":                "=",
		"LEFT_BRACKET":       "[",
		"LBRC":               "[",
		"RIGHT_BRACKET":      "]",
		"RBRC":               "]",
		"BACKSLASH":          "\\",
		"BSLS":               "\\",
		"NONUS_HASH":         "#",
		"NUHS":               "#",
		"SEMICOLON":          ";",
		"SCLN":               ";",
		"QUOTE":              "'",
		"QUOT":               "'",
		"GRAVE":              "`",
		"GRV":                "`",
		"COMMA":              ",",
		"COMM":               ",",
		"DOT":                ".",
		"SLASH":              "/",
		"SLSH":               "/",
		"TILDE":              "~",
		"TILD":               "~",
		"EXCLAIM":            "!",
		"EXLM":               "!",
		"AT":                 "@",
		"HASH":               "#",
		"DOLLAR":             "$",
		"DLR":                "$",
		"PERCENT":            "%",
		"PERC":               "%",
		"CIRCUMFLEX":         "^",
		"CIRC":               "^",
		"AMPERSAND":          "&",
		"AMPR":               "&",
		"ASTERISK":           "*",
		"ASTR":               "*",
		"LEFT_PAREN":         "(",
		"LPRN":               "(",
		"RIGHT_PAREN":        ")",
		"RPRN":               ")",
		"UNDERSCORE":         "_",
		"UNDS":               "_",
		"PLUS":               "+",
		"LEFT_CURLY_BRACE":   "{",
		"LCBR":               "{",
		"RIGHT_CURLY_BRACE":  "}",
		"RCBR":               "}",
		"PIPE":               "|",
		"COLON":              ":",
		"COLN":               ":",
		"DOUBLE_QUOTE":       "\"",
		"DQUO":               "\"",
		"DQT":                "\"",
		"LEFT_ANGLE_BRACKET": "<",
		"LABK":               "<",
		"LT":                 "<",
		"RIGHT_ANGLE_BRACKET": ">",
		"RABK":               ">",
		"GT":                 ">",
		"QUESTION":           "?",
		"QUES":               "?",
	})
}

func simpleKeyMap(m map[string]string) map[string]keymap.LayoutKey {
	out := make(map[string]keymap.LayoutKey, len(m))
	for code, display := range m {
		out[code] = keymap.LayoutKey{Tap: display}
	}

	return out
}
