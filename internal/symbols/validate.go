package symbols

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// Validate walks the arena and the name index checking structural invariants.
// Returns nil if everything is consistent; otherwise aggregates all detected
// issues.
func (t *Table) Validate() error {
	var errs []error

	for idx := 1; idx < len(t.Symbols.data); idx++ {
		symbolID, err := toSymbolID(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sym := &t.Symbols.data[idx]
		name, ok := t.Strings.Lookup(sym.Name)
		if !ok || name == "" {
			errs = append(errs, fmt.Errorf("symbol %d has no name", symbolID))
			continue
		}
		if got, ok := t.byName[sym.Name]; !ok || got != symbolID {
			errs = append(errs, fmt.Errorf("symbol %d (%s) is missing from the name index", symbolID, name))
		}
		if sym.Anchor == "" {
			errs = append(errs, fmt.Errorf("symbol %d (%s) has an empty anchor", symbolID, name))
		}
		if len(sym.Rules) != len(sym.Definitions) {
			errs = append(errs, fmt.Errorf("symbol %d (%s) has %d rules but %d definitions", symbolID, name, len(sym.Rules), len(sym.Definitions)))
		}
		if len(sym.Definitions) > 0 && sym.Definitions[0].Anchor != sym.Anchor {
			errs = append(errs, fmt.Errorf("symbol %d (%s) canonical anchor %q differs from its first definition %q", symbolID, name, sym.Anchor, sym.Definitions[0].Anchor))
		}
		for i, r := range sym.Rules {
			if r != nil && r.Name != name {
				errs = append(errs, fmt.Errorf("symbol %d (%s) rule %d is named %q", symbolID, name, i, r.Name))
			}
		}
	}

	for nameID, id := range t.byName {
		sym := t.Symbols.Get(id)
		if sym == nil {
			errs = append(errs, fmt.Errorf("name %d points to unknown symbol %d", nameID, id))
			continue
		}
		if sym.Name != nameID {
			errs = append(errs, fmt.Errorf("name %d points to symbol %d named %d", nameID, id, sym.Name))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

func toSymbolID(idx int) (SymbolID, error) {
	value, err := safecast.Conv[uint32](idx)
	if err != nil {
		return NoSymbolID, fmt.Errorf("symbol index %d overflow: %w", idx, err)
	}
	return SymbolID(value), nil
}
