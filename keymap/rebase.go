package keymap

import (
	"fmt"
	"sort"
	"strings"
)

// Rebase merges this keymap onto a base one, preserving hand-edited fields
// from the base where the fresh parse left them unset. For layers it merges
// key by key when a layer with the same name and length exists in base. For
// combos it matches by the set of trigger positions and, among multiple
// matches, picks the one with the most overlapping layers.
//
// The merge is best-effort: layers whose lengths changed are kept from the
// fresh parse untouched, and their names are returned so the caller can
// report them.
func (d *KeymapData) Rebase(base *KeymapData) (skipped []string) {
	for i := range d.Layers {
		baseLayer := base.Layer(d.Layers[i].Name)
		if baseLayer == nil {
			continue
		}

		if len(baseLayer.Keys) != len(d.Layers[i].Keys) {
			skipped = append(skipped, d.Layers[i].Name)

			continue
		}

		for pos, key := range d.Layers[i].Keys {
			d.Layers[i].Keys[pos] = key.Merge(baseLayer.Keys[pos])
		}
	}

	baseCombos := map[string][]ComboSpec{}
	for _, combo := range base.Combos {
		id := positionSetID(combo.KeyPositions)
		baseCombos[id] = append(baseCombos[id], combo)
	}

	for i := range d.Combos {
		matches := baseCombos[positionSetID(d.Combos[i].KeyPositions)]
		if len(matches) == 0 {
			continue
		}

		best := matches[0]
		bestOverlap := layerOverlap(best.Layers, d.Combos[i].Layers)

		for _, match := range matches[1:] {
			if overlap := layerOverlap(match.Layers, d.Combos[i].Layers); overlap > bestOverlap {
				best, bestOverlap = match, overlap
			}
		}

		merged := best
		merged.ApplyOverrides(d.Combos[i])
		merged.Key = d.Combos[i].Key.Merge(best.Key)
		d.Combos[i] = merged
	}

	return skipped
}

// positionSetID builds an order-insensitive identity for a combo's trigger
// positions.
func positionSetID(positions []int) string {
	sorted := append([]int(nil), positions...)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = fmt.Sprint(p)
	}

	return strings.Join(parts, ",")
}

func layerOverlap(a, b []string) int {
	set := map[string]struct{}{}
	for _, name := range a {
		set[name] = struct{}{}
	}

	count := 0

	for _, name := range b {
		if _, ok := set[name]; ok {
			count++
		}
	}

	return count
}
