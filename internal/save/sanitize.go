package save

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/player"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// sanitize removes from a current-version document every entry that would
// not decode into player.State, so one bad item costs that item and not the
// save. It returns the paths it dropped, in document order.
//
// Precondition: doc is at player.SchemaVersion.
func sanitize(doc Doc) []string {
	var dropped []string
	dropped = append(dropped, dropMapEntries[int](doc, "wallet")...)
	dropped = append(dropped, dropField[inventory.Wallet](doc, "wallet")...)
	dropped = append(dropped, dropEntries[*creature.Instance](doc, "creatures")...)
	dropped = append(dropped, dropEntries[string](doc, "party")...)
	dropped = append(dropped, dropEntries[string](doc, "hunting")...)
	dropped = append(dropped, dropEntries[*inventory.Gear](doc, "gear")...)
	dropped = append(dropped, dropEntries[*inventory.Gem](doc, "gems")...)
	dropped = append(dropped, dropEntries[inventory.Stack](doc, "consumables")...)
	dropped = append(dropped, dropMapEntries[inventory.ActiveBuff](doc, "buffs")...)
	dropped = append(dropped, dropMapEntries[int](doc, "upgrades")...)
	dropped = append(dropped, dropMapEntries[bool](doc, "unlocks")...)
	dropped = append(dropped, dropMapEntries[int](doc, "stats")...)
	dropped = append(dropped, dropEntries[string](doc, "achievements")...)
	if zone, ok := doc["zone"].(Doc); ok {
		for _, p := range dropEntries[rarity.Tier](zone, "collected") {
			dropped = append(dropped, "zone."+p)
		}
		for _, p := range dropField[int](zone, "highest") {
			dropped = append(dropped, "zone."+p)
		}
	}
	dropped = append(dropped, dropField[player.ZoneProgress](doc, "zone")...)
	dropped = append(dropped, dropField[int](doc, "version")...)
	dropped = append(dropped, dropField[float64](doc, "hunt_carry")...)
	dropped = append(dropped, dropField[int64](doc, "ticks")...)
	return dropped
}

// decodes reports whether v survives a JSON round trip into T.
func decodes[T any](v any) bool {
	buf, err := json.Marshal(v)
	if err != nil {
		return false
	}
	var out T
	return json.Unmarshal(buf, &out) == nil
}

// dropEntries filters the array at doc[key] to the elements that decode as T.
// A value that is not an array is removed entirely.
func dropEntries[T any](doc Doc, key string) []string {
	switch v := doc[key].(type) {
	case nil:
		return nil
	case []any:
		var dropped []string
		kept := make([]any, 0, len(v))
		for i, e := range v {
			if decodes[T](e) {
				kept = append(kept, e)
				continue
			}
			dropped = append(dropped, fmt.Sprintf("%s[%d]", key, i))
		}
		doc[key] = kept
		return dropped
	default:
		delete(doc, key)
		return []string{key}
	}
}

// dropMapEntries filters the object at doc[key] to the values that decode as
// T. A value that is not an object is removed entirely.
func dropMapEntries[T any](doc Doc, key string) []string {
	switch v := doc[key].(type) {
	case nil:
		return nil
	case Doc:
		var dropped []string
		for _, k := range slices.Sorted(maps.Keys(v)) {
			if !decodes[T](v[k]) {
				delete(v, k)
				dropped = append(dropped, key+"."+k)
			}
		}
		return dropped
	default:
		delete(doc, key)
		return []string{key}
	}
}

// dropField removes doc[key] when it is present but does not decode as T.
func dropField[T any](doc Doc, key string) []string {
	v, ok := doc[key]
	if !ok || v == nil || decodes[T](v) {
		return nil
	}
	delete(doc, key)
	return []string{key}
}
