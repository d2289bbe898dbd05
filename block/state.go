package block

import (
	"fmt"
	"sort"
	"strings"
)

// State is a named block together with its property set, e.g.
// minecraft:oak_stairs[facing=north,half=bottom]. Two states are equal
// when their Name and Properties match exactly; Properties comparison is
// order-independent, and a nil Properties map is distinct from a
// non-nil-but-empty one (absent != empty).
type State struct {
	Name       ResourceLocation
	Properties map[string]string
}

// DefaultState is minecraft:air with no properties, the universal
// lookup-miss fallback every palette and section query resolves to
// (spec.md §3's DEFAULT primitive).
var DefaultState = State{Name: ResourceLocation{Namespace: DefaultNamespace, Path: "air"}}

// DefaultBiomeState is minecraft:plains, the biome-domain counterpart of
// DefaultState used to seed and fall back a chunk's biome palette.
var DefaultBiomeState = State{Name: ResourceLocation{Namespace: DefaultNamespace, Path: "plains"}}

// airPaths are the block paths is_air() recognizes under the minecraft
// namespace.
var airPaths = map[string]bool{"air": true, "cave_air": true, "void_air": true}

// IsAir reports whether s is minecraft:air, minecraft:cave_air or
// minecraft:void_air, the is_air() primitive every emptiness check in
// this package builds on.
func (s State) IsAir() bool {
	return s.Name.Namespace == DefaultNamespace && airPaths[s.Name.Path]
}

// NewState builds a State, copying props so later mutation of the caller's
// map does not affect the returned State.
func NewState(name ResourceLocation, props map[string]string) State {
	s := State{Name: name}
	if len(props) > 0 {
		s.Properties = make(map[string]string, len(props))
		for k, v := range props {
			s.Properties[k] = v
		}
	}
	return s
}

// Equal reports whether s and other describe the identical block state.
// A nil Properties map never equals a non-nil (even empty) one.
func (s State) Equal(other State) bool {
	if s.Name != other.Name {
		return false
	}
	if (s.Properties == nil) != (other.Properties == nil) {
		return false
	}
	if len(s.Properties) != len(other.Properties) {
		return false
	}
	for k, v := range s.Properties {
		if other.Properties[k] != v {
			return false
		}
	}
	return true
}

// String renders "name[k=v,...]" with properties sorted by key, the form
// used as a palette dedup key and for diagnostics.
func (s State) String() string {
	if len(s.Properties) == 0 {
		return s.Name.String()
	}
	keys := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(s.Name.String())
	b.WriteByte('[')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s.Properties[k])
	}
	b.WriteByte(']')
	return b.String()
}

// ParseState parses the "name[k=v,...]" form produced by String.
func ParseState(s string) (State, error) {
	name := s
	var propsPart string
	if i := strings.IndexByte(s, '['); i >= 0 {
		if !strings.HasSuffix(s, "]") {
			return State{}, fmt.Errorf("block: malformed state %q", s)
		}
		name = s[:i]
		propsPart = s[i+1 : len(s)-1]
	}
	loc, err := ParseResourceLocation(name)
	if err != nil {
		return State{}, err
	}
	st := State{Name: loc}
	if propsPart == "" {
		return st, nil
	}
	st.Properties = make(map[string]string)
	for _, kv := range strings.Split(propsPart, ",") {
		i := strings.IndexByte(kv, '=')
		if i < 0 {
			return State{}, fmt.Errorf("block: malformed property %q in %q", kv, s)
		}
		st.Properties[kv[:i]] = kv[i+1:]
	}
	return st, nil
}
