package block

import "fmt"

// ErrUnknownID is the sentinel for an id the palette never assigned. No
// Palette method returns it: Get resolves an out-of-range id to the
// palette's default state (spec.md §4.4's "returns DEFAULT if absent"
// contract), RemoveByID returns an identity Upgrader for one, and Extract
// looks its ids up through Get.
var ErrUnknownID = fmt.Errorf("block: unknown palette id")

// Palette deduplicates block states behind small integer ids. Ids are
// assigned densely starting at 0 and stay stable until a removal: removing
// an id shifts every higher id down by one (callers must apply the
// returned Upgrader to any stored indices). Id 0 always holds the
// palette's default state and cannot be removed.
//
// Grounded on oriumgames-schem's base.Palette (values []BlockState +
// index map[string]int dedup), generalized with RemoveByID, AddAll and
// Extract, none of which schem's version has.
type Palette struct {
	values []State
	index  map[string]int
}

// NewPalette returns a palette seeded with DefaultState at id 0.
func NewPalette() *Palette {
	return NewPaletteWithDefault(DefaultState)
}

// NewPaletteWithDefault returns a palette seeded with defaultState at id
// 0, for domains (e.g. biomes) whose default isn't DefaultState.
func NewPaletteWithDefault(defaultState State) *Palette {
	p := &Palette{index: make(map[string]int)}
	p.Add(defaultState)
	return p
}

// Add inserts s if not already present and returns its id either way.
func (p *Palette) Add(s State) int {
	key := s.String()
	if id, ok := p.index[key]; ok {
		return id
	}
	id := len(p.values)
	p.values = append(p.values, s)
	p.index[key] = id
	return id
}

// Get returns the state stored at id, or the palette's default state (id
// 0) if id is out of range.
func (p *Palette) Get(id int) (State, error) {
	if id < 0 || id >= len(p.values) {
		if len(p.values) > 0 {
			return p.values[0], nil
		}
		return DefaultState, nil
	}
	return p.values[id], nil
}

// IndexOf returns the id of s, if present.
func (p *Palette) IndexOf(s State) (int, bool) {
	id, ok := p.index[s.String()]
	return id, ok
}

// Size returns the number of distinct states in the palette.
func (p *Palette) Size() int {
	return len(p.values)
}

// States returns the palette's backing slice in id order. Callers must not
// mutate it.
func (p *Palette) States() []State {
	return p.values
}

// Clone returns a deep copy of p.
func (p *Palette) Clone() *Palette {
	np := &Palette{
		values: make([]State, len(p.values)),
		index:  make(map[string]int, len(p.index)),
	}
	copy(np.values, p.values)
	for k, v := range p.index {
		np.index[k] = v
	}
	return np
}

// RemoveByID drops the state at id from the palette, compacting the
// remaining ids downward, and returns an Upgrader describing the
// resulting remap (old id -> new id, with the removed id absent).
//
// Removing id 0 (the default state) always fails. An out-of-range id is
// not an error: there is nothing to remove, so RemoveByID returns a
// no-op (identity) Upgrader instead.
func (p *Palette) RemoveByID(id int) (*Upgrader, error) {
	if id == 0 {
		return nil, fmt.Errorf("block: cannot remove default state at id 0")
	}
	if id < 0 || id >= len(p.values) {
		return identityUpgrader(len(p.values)), nil
	}
	up := newUpgrader()
	newValues := make([]State, 0, len(p.values)-1)
	newIndex := make(map[string]int, len(p.index)-1)
	for oldID, s := range p.values {
		if oldID == id {
			continue
		}
		newID := len(newValues)
		newValues = append(newValues, s)
		newIndex[s.String()] = newID
		up.remap[oldID] = newID
	}
	p.values, p.index = newValues, newIndex
	return up.lock(), nil
}

// AddAll merges other into p, returning an Upgrader mapping other's old
// ids to p's (possibly pre-existing) ids.
func (p *Palette) AddAll(other *Palette) *Upgrader {
	up := newUpgrader()
	for oldID, s := range other.values {
		up.remap[oldID] = p.Add(s)
	}
	return up.lock()
}

// Extract builds a new sub-palette, seeded with p's own default state,
// containing exactly the states whose current ids are in ids (duplicates
// ignored, scanned in ascending id order), and returns an Upgrader
// mapping p's old ids to the sub-palette's new ids. Ids not present in
// ids have no entry in the returned Upgrader.
func (p *Palette) Extract(ids []int) (*Palette, *Upgrader, error) {
	var defaultState State
	if len(p.values) > 0 {
		defaultState = p.values[0]
	} else {
		defaultState = DefaultState
	}
	sub := NewPaletteWithDefault(defaultState)
	up := newUpgrader()

	seen := make(map[int]bool, len(ids))
	sorted := append([]int(nil), ids...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	for _, id := range sorted {
		if seen[id] {
			continue
		}
		seen[id] = true
		s, err := p.Get(id)
		if err != nil {
			return nil, nil, err
		}
		up.remap[id] = sub.Add(s)
	}
	return sub, up.lock(), nil
}
