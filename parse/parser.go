package parse

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/caksoylar/keymap-drawer/config"
	"github.com/caksoylar/keymap-drawer/internal/behavior"
	"github.com/caksoylar/keymap-drawer/internal/diagnostic"
	"github.com/caksoylar/keymap-drawer/internal/dts"
	"github.com/caksoylar/keymap-drawer/internal/preproc"
	"github.com/caksoylar/keymap-drawer/keymap"
)

// Parser parses ZMK keymap sources into keymap data. Construct one per
// document; a Parser is not safe for concurrent use.
type Parser struct {
	cfg *config.ParseConfig

	base           *keymap.KeymapData
	layerNames     []string
	includeDirs    []string
	strictIncludes bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithBaseKeymap supplies a previously parsed keymap whose hand-edited
// legends are merged over the fresh parse where bindings line up.
func WithBaseKeymap(base *keymap.KeymapData) Option {
	return func(p *Parser) { p.base = base }
}

// WithLayerNames overrides the display names derived from layer nodes. The
// list must match the parsed layer count, otherwise it is ignored with a
// warning.
func WithLayerNames(names ...string) Option {
	return func(p *Parser) { p.layerNames = names }
}

// WithIncludeDirs adds search directories for preprocessor includes.
func WithIncludeDirs(dirs ...string) Option {
	return func(p *Parser) { p.includeDirs = append(p.includeDirs, dirs...) }
}

// WithStrictIncludes makes unresolvable includes fatal instead of skipped.
func WithStrictIncludes() Option {
	return func(p *Parser) { p.strictIncludes = true }
}

func New(cfg *config.ParseConfig, opts ...Option) *Parser {
	if cfg == nil {
		cfg = config.DefaultParseConfig()
	}

	p := &Parser{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse runs the full pipeline on one keymap source: preprocessing,
// structural parsing, behavior registry construction, binding resolution,
// layer and combo assembly and held-key analysis. Binding-level problems
// degrade to raw legends and come back as diagnostics; the returned error is
// non-nil only for failures that abort the document.
func (p *Parser) Parse(name string, src []byte) (*keymap.KeymapData, []diagnostic.Diagnostic, error) {
	diags := &diagnostic.Diagnostics{}

	text, rawMap, err := p.preprocess(name, string(src))
	if err != nil {
		diags.AddError(diagnostic.CodePreprocessError, err.Error(), "", "")

		return nil, diags.All(), fmt.Errorf("preprocess %s: %w", name, err)
	}

	tree, err := dts.Parse(text)
	if err != nil {
		diags.AddError(diagnostic.CodeStructuralError, err.Error(), "", "")

		return nil, diags.All(), fmt.Errorf("parse %s: %w", name, err)
	}

	registry := behavior.Build(tree, diags)

	layerNodes := p.sectionChildren(tree, "zmk,keymap", "keymap", diags, true)
	layerNames := p.resolveLayerNames(layerNodes, diags)

	held := newActivationTracker(p.cfg.MarkAlternateLayerActivators)
	res := newResolver(p.cfg, registry, layerNames, diags, held, rawMap)

	data := &keymap.KeymapData{}
	for i, node := range layerNodes {
		data.Layers = append(data.Layers, keymap.Layer{
			Name: layerNames[i],
			Keys: p.layerKeys(node, i, res, diags),
		})
	}

	p.assembleCombos(tree, res, layerNames, data, diags)
	p.applyConditionalLayers(tree, held, diags)
	held.annotate(data, p.cfg.TransLegend)

	if p.base != nil {
		for _, layer := range data.Rebase(p.base) {
			diags.AddWarning(diagnostic.CodeRebaseMismatch,
				"layer shape changed, dropping base legends", layer, "")
		}
	}

	return data, diags.All(), nil
}

// preprocess runs the preprocessor over the built-in macro helpers and the
// document, and re-expands raw-binding-map keys so overrides written against
// unexpanded sources still match. With preprocessing disabled only comments
// are stripped.
func (p *Parser) preprocess(name, src string) (string, map[string]keymap.LayoutKey, error) {
	if !p.cfg.Preprocess {
		return preproc.StripComments(src), p.cfg.RawBindingMap, nil
	}

	opts := []preproc.Option{
		preproc.WithDefine("KEYMAP_DRAWER", ""),
		preproc.WithIncludeDirs(p.includeDirs...),
	}
	if p.strictIncludes {
		opts = append(opts, preproc.WithStrictIncludes())
	}

	pp := preproc.New(opts...)

	if _, err := pp.Preprocess("zmk_defines.h", zmkDefines); err != nil {
		return "", nil, err
	}

	text, err := pp.Preprocess(name, src)
	if err != nil {
		return "", nil, err
	}

	rawMap := p.cfg.RawBindingMap
	if len(rawMap) > 0 {
		expanded := make(map[string]keymap.LayoutKey, len(rawMap))

		for binding, legend := range rawMap {
			key, expandErr := pp.ExpandFragment(binding)
			if expandErr != nil {
				key = binding
			}

			expanded[key] = legend
		}

		rawMap = expanded
	}

	return text, rawMap, nil
}

// sectionChildren collects the child nodes of every section matched by
// compatible value, falling back to the conventional node name. A missing
// section yields no children; required sections also record a warning.
func (p *Parser) sectionChildren(
	tree *dts.Tree,
	compatible, sectionName string,
	diags *diagnostic.Diagnostics,
	required bool,
) []*dts.Node {
	parents := tree.CompatibleNodes(compatible)

	if len(parents) == 0 {
		node, err := tree.Section(sectionName)
		if err != nil {
			var missing *dts.MissingSectionError
			if errors.As(err, &missing) && required {
				diags.AddWarning(diagnostic.CodeMissingSection,
					fmt.Sprintf("no %s section found", sectionName), "", "")
			}

			return nil
		}

		parents = []*dts.Node{node}
	}

	var children []*dts.Node
	for _, parent := range parents {
		children = append(children, parent.Children...)
	}

	return children
}

func (p *Parser) resolveLayerNames(layerNodes []*dts.Node, diags *diagnostic.Diagnostics) []string {
	if len(p.layerNames) > 0 {
		if len(p.layerNames) == len(layerNodes) {
			return p.layerNames
		}

		diags.AddWarning(diagnostic.CodeLayerNameMismatch,
			fmt.Sprintf("%d layer names given for %d layers, using parsed names",
				len(p.layerNames), len(layerNodes)), "", "")
	}

	names := make([]string, len(layerNodes))

	for i, node := range layerNodes {
		if name, ok := node.StringProperty("label", "display-name"); ok {
			names[i] = name

			continue
		}

		names[i] = strings.TrimSuffix(strings.TrimPrefix(node.Name, "layer_"), "_layer")
	}

	return names
}

func (p *Parser) layerKeys(node *dts.Node, index int, res *resolver, diags *diagnostic.Diagnostics) []keymap.LayoutKey {
	bindings, ok := node.Bindings("bindings")
	if !ok {
		diags.AddWarning(diagnostic.CodeMalformedBehavior,
			"layer node has no bindings", node.Name, "")

		return nil
	}

	keys := make([]keymap.LayoutKey, len(bindings))
	for pos, binding := range bindings {
		keys[pos] = res.resolve(binding, index, []int{pos}, false)
	}

	return keys
}

func (p *Parser) assembleCombos(
	tree *dts.Tree,
	res *resolver,
	layerNames []string,
	data *keymap.KeymapData,
	diags *diagnostic.Diagnostics,
) {
	comboNodes := p.sectionChildren(tree, "zmk,combos", "combos", diags, false)

	for _, node := range comboNodes {
		bindings, ok := node.Bindings("bindings")
		if !ok || len(bindings) == 0 {
			diags.AddWarning(diagnostic.CodeMalformedCombo,
				"combo node has no bindings", node.Name, "")

			continue
		}

		positionsVal, ok := node.Property("key-positions")
		if !ok {
			diags.AddWarning(diagnostic.CodeMalformedCombo,
				"combo node has no key-positions", node.Name, "")

			continue
		}

		positions, ok := positionsVal.AsInts()
		if !ok {
			diags.AddWarning(diagnostic.CodeMalformedCombo,
				"combo key-positions are not plain integers", node.Name, "")

			continue
		}

		combo := keymap.ComboSpec{
			KeyPositions: positions,
			Key:          res.resolve(bindings[0], -1, positions, true),
			Layers:       comboLayers(node, layerNames, diags),
		}

		if extra, found := p.cfg.ZmkCombos[node.Name]; found {
			combo.ApplyOverrides(extra)
		}

		data.Combos = append(data.Combos, combo)
	}
}

// comboLayers converts a combo's layers property to display names. An absent
// property means the combo is active on all layers, kept as an empty list.
func comboLayers(node *dts.Node, layerNames []string, diags *diagnostic.Diagnostics) []string {
	val, ok := node.Property("layers")
	if !ok {
		return nil
	}

	indices, ok := val.AsInts()
	if !ok {
		diags.AddWarning(diagnostic.CodeMalformedCombo,
			"combo layers are not plain integers", node.Name, "")

		return nil
	}

	var names []string

	for _, index := range indices {
		if index < 0 || index >= len(layerNames) {
			diags.AddWarning(diagnostic.CodeInvalidLayerIndex,
				fmt.Sprintf("combo layer index %d out of range", index), node.Name, "")

			continue
		}

		names = append(names, layerNames[index])
	}

	return names
}

// applyConditionalLayers feeds conditional-layer nodes into the activation
// tracker so keys held for the if-layers also mark the then-layer. Nodes are
// applied in increasing then-layer order for chain propagation.
func (p *Parser) applyConditionalLayers(tree *dts.Tree, held *activationTracker, diags *diagnostic.Diagnostics) {
	type conditional struct {
		then int
		ifs  []int
	}

	var conditionals []conditional

	for _, parent := range tree.CompatibleNodes("zmk,conditional-layers") {
		for _, node := range parent.Children {
			thenVal, ok := node.Property("then-layer")
			if !ok {
				diags.AddWarning(diagnostic.CodeMalformedBehavior,
					"conditional layer node has no then-layer", node.Name, "")

				continue
			}

			ifVal, ok := node.Property("if-layers")
			if !ok {
				diags.AddWarning(diagnostic.CodeMalformedBehavior,
					"conditional layer node has no if-layers", node.Name, "")

				continue
			}

			thens, thenOK := thenVal.AsInts()
			ifs, ifOK := ifVal.AsInts()

			if !thenOK || !ifOK || len(thens) == 0 {
				diags.AddWarning(diagnostic.CodeMalformedBehavior,
					"conditional layer indices are not plain integers", node.Name, "")

				continue
			}

			conditionals = append(conditionals, conditional{then: thens[0], ifs: ifs})
		}
	}

	sort.Slice(conditionals, func(i, j int) bool { return conditionals[i].then < conditionals[j].then })

	for _, c := range conditionals {
		held.activate(c.ifs, c.then, nil)
	}
}
