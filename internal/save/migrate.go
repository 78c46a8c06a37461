package save

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cory-johannsen/aviary/internal/game/player"
)

// Doc is a save document decoded into generic JSON values.
type Doc = map[string]any

// Step migrates a document from one schema version to the next.
type Step func(Doc) (Doc, error)

// steps maps a version n to the step producing version n+1.
var steps = map[int]Step{
	1: v1ToV2,
	2: v2ToV3,
}

// Migrate applies every step from version from up to player.SchemaVersion.
//
// Precondition: 1 <= from <= player.SchemaVersion.
// Postcondition: doc is not modified; the returned document is at the current
// version, or an error names the failing step.
func Migrate(doc Doc, from int) (Doc, error) {
	if from < 1 || from > player.SchemaVersion {
		return nil, fmt.Errorf("unsupported save version %d", from)
	}
	out := cloneDoc(doc)
	for v := from; v < player.SchemaVersion; v++ {
		step, ok := steps[v]
		if !ok {
			return nil, fmt.Errorf("no migration from version %d", v)
		}
		var err error
		if out, err = step(out); err != nil {
			return nil, fmt.Errorf("migrating v%d to v%d: %w", v, v+1, err)
		}
	}
	return out, nil
}

// v1ToV2 moves the flat coins, feathers and crystals fields into a wallet and
// defaults every missing collection.
func v1ToV2(doc Doc) (Doc, error) {
	wallet := Doc{}
	for _, k := range []string{"coins", "feathers", "crystals"} {
		wallet[k] = max(number(doc[k]), 0)
		delete(doc, k)
	}
	doc["wallet"] = wallet
	for _, k := range []string{"upgrades", "unlocks", "stats"} {
		if _, ok := doc[k].(Doc); !ok {
			doc[k] = Doc{}
		}
	}
	for _, k := range []string{"creatures", "party", "hunting", "gems", "consumables", "achievements"} {
		if _, ok := doc[k].([]any); !ok {
			doc[k] = []any{}
		}
	}
	return doc, nil
}

// v2ToV3 moves the gear embedded in each creature into the top-level gear
// list with an owner back-reference, and replaces highest_zone with the zone
// progress section.
func v2ToV3(doc Doc) (Doc, error) {
	gear, _ := doc["gear"].([]any)
	creatures, ok := doc["creatures"].([]any)
	if !ok && doc["creatures"] != nil {
		return nil, fmt.Errorf("creatures is %T, want array", doc["creatures"])
	}
	for i, raw := range creatures {
		c, ok := raw.(Doc)
		if !ok {
			return nil, fmt.Errorf("creatures[%d] is %T, want object", i, raw)
		}
		id, _ := c["id"].(string)
		embedded, _ := c["gear"].(Doc)
		equipped := Doc{}
		for _, slot := range slices.Sorted(maps.Keys(embedded)) {
			g, ok := embedded[slot].(Doc)
			if !ok {
				continue
			}
			gid, _ := g["id"].(string)
			if gid == "" || id == "" {
				continue
			}
			g["slot"] = slot
			g["owner_id"] = id
			equipped[slot] = gid
			gear = append(gear, g)
		}
		delete(c, "gear")
		c["equipped"] = equipped
	}
	if gear == nil {
		gear = []any{}
	}
	doc["gear"] = gear

	if _, ok := doc["zone"].(Doc); !ok {
		doc["zone"] = Doc{"highest": max(number(doc["highest_zone"]), 1), "collected": []any{}}
	}
	delete(doc, "highest_zone")
	for _, k := range []string{"stats", "buffs"} {
		if _, ok := doc[k].(Doc); !ok {
			doc[k] = Doc{}
		}
	}
	return doc, nil
}

// number coerces a decoded JSON value to a whole number, 0 when it is not one.
func number(v any) float64 {
	f, ok := v.(float64)
	if !ok || f != f {
		return 0
	}
	return float64(int64(f))
}

func cloneDoc(d Doc) Doc {
	if d == nil {
		return nil
	}
	out := make(Doc, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Doc:
		return cloneDoc(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
