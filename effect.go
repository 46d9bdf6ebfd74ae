package mt9d115

import (
	"fmt"
	"slices"
	"strings"

	"periph.io/x/devices/v3/mt9d115/regtable"
)

// Item selects which image setting SetEffect changes.
type Item int

const (
	ItemEffect Item = iota
	ItemWhiteBalance
	ItemBrightness
	ItemScene
)

// Color effects, for ItemEffect.
const (
	EffectNone = iota
	EffectMono
	EffectSepia
	EffectNegative
	EffectSolarize
	EffectPosterize
)

// White balance presets, for ItemWhiteBalance.
const (
	WBAuto = iota
	WBIncandescent
	WBSunlight
	WBFluorescent
	WBCloudy
)

// Brightness steps, for ItemBrightness.
const (
	BrightnessN2 = iota - 2
	BrightnessN1
	Brightness0
	BrightnessP1
	BrightnessP2
)

// Scene presets, for ItemScene.
const (
	SceneAuto = iota
	SceneAction
	SceneNight
)

var itemNames = map[Item]string{
	ItemEffect:       "effect",
	ItemWhiteBalance: "wb",
	ItemBrightness:   "brightness",
	ItemScene:        "scene",
}

func (i Item) String() string {
	if n, ok := itemNames[i]; ok {
		return n
	}
	return fmt.Sprintf("Item(%d)", int(i))
}

// ParseItem returns the item named by s, as printed by Item.String.
func ParseItem(s string) (Item, error) {
	for i, n := range itemNames {
		if strings.EqualFold(n, s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownItem, s)
}

// itemBinding names the tables of one item. Values missing from names use
// the fallback table.
type itemBinding struct {
	group    func(*regtable.Set) map[string]regtable.Table
	names    map[int]string
	fallback string
}

var itemBindings = map[Item]itemBinding{
	ItemEffect: {
		group: func(s *regtable.Set) map[string]regtable.Table { return s.Effect },
		names: map[int]string{
			EffectMono:      "mono",
			EffectSepia:     "sepia",
			EffectNegative:  "negative",
			EffectSolarize:  "solarize",
			EffectPosterize: "posterize",
		},
		fallback: "none",
	},
	ItemWhiteBalance: {
		group: func(s *regtable.Set) map[string]regtable.Table { return s.WhiteBalance },
		names: map[int]string{
			WBSunlight:     "sunlight",
			WBCloudy:       "sunlight",
			WBFluorescent:  "fluorescent",
			WBIncandescent: "incandescent",
		},
		fallback: "auto",
	},
	ItemBrightness: {
		group: func(s *regtable.Set) map[string]regtable.Table { return s.Brightness },
		names: map[int]string{
			BrightnessP1: "p1",
			BrightnessP2: "p2",
			BrightnessN1: "n1",
			BrightnessN2: "n2",
		},
		fallback: "0",
	},
	ItemScene: {
		group: func(s *regtable.Set) map[string]regtable.Table { return s.Scene },
		names: map[int]string{
			SceneAction: "action",
			SceneNight:  "night",
		},
		fallback: "auto",
	},
}

// itemTables is the resolved lookup of one item.
type itemTables struct {
	byValue  map[int]regtable.Table
	fallback regtable.Table
}

func (it itemTables) lookup(value int) regtable.Table {
	if t, ok := it.byValue[value]; ok {
		return t
	}
	return it.fallback
}

func resolveItems(s *regtable.Set) (map[Item]itemTables, error) {
	items := make(map[Item]itemTables, len(itemBindings))
	var missing []string
	for item, b := range itemBindings {
		group := b.group(s)
		get := func(name string) regtable.Table {
			t, ok := group[name]
			if !ok || t.Writes() == 0 {
				missing = append(missing, item.String()+"/"+name)
			}
			return t
		}
		it := itemTables{
			byValue:  make(map[int]regtable.Table, len(b.names)),
			fallback: get(b.fallback),
		}
		for v, name := range b.names {
			it.byValue[v] = get(name)
		}
		items[item] = it
	}
	if len(missing) != 0 {
		return nil, missingTables(missing)
	}
	return items, nil
}

// effectTable returns the table applying value to item.
func (d *Dev) effectTable(item Item, value int) (regtable.Table, error) {
	it, ok := d.items[item]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownItem, int(item))
	}
	return it.lookup(value), nil
}

func missingTables(names []string) error {
	slices.Sort(names)
	names = slices.Compact(names)
	return fmt.Errorf("mt9d115: %w: %s", regtable.ErrMissing, strings.Join(names, ", "))
}
