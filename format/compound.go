package format

import "fmt"

// Compound implements the external NBT query contract (spec.md §6.1)
// over a decoded github.com/sandertv/gophertunnel/minecraft/nbt
// map[string]any, exactly the shape oriumgames-pile/encode.go's
// encodeSettings/decodeSettings move data through.
type Compound map[string]any

// ContainsKey reports whether key is present.
func (c Compound) ContainsKey(key string) bool {
	_, ok := c[key]
	return ok
}

// Size returns the number of keys.
func (c Compound) Size() int { return len(c) }

// GetInt returns an int32 value, converting from any NBT numeric tag
// width gophertunnel may have decoded it as.
func (c Compound) GetInt(key string) (int32, error) {
	v, ok := c[key]
	if !ok {
		return 0, fmt.Errorf("format: compound missing key %q", key)
	}
	switch n := v.(type) {
	case int32:
		return n, nil
	case int16:
		return int32(n), nil
	case byte:
		return int32(n), nil
	case int64:
		return int32(n), nil
	default:
		return 0, fmt.Errorf("format: key %q is not an integer (%T)", key, v)
	}
}

// GetLong returns an int64 value.
func (c Compound) GetLong(key string) (int64, error) {
	v, ok := c[key]
	if !ok {
		return 0, fmt.Errorf("format: compound missing key %q", key)
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("format: key %q is not a long (%T)", key, v)
	}
	return n, nil
}

// GetString returns a string value.
func (c Compound) GetString(key string) (string, error) {
	v, ok := c[key]
	if !ok {
		return "", fmt.Errorf("format: compound missing key %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("format: key %q is not a string (%T)", key, v)
	}
	return s, nil
}

// GetCompound returns a nested compound.
func (c Compound) GetCompound(key string) (Compound, error) {
	v, ok := c[key]
	if !ok {
		return nil, fmt.Errorf("format: compound missing key %q", key)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("format: key %q is not a compound (%T)", key, v)
	}
	return Compound(m), nil
}

// GetList returns a list value as []any.
func (c Compound) GetList(key string) ([]any, error) {
	v, ok := c[key]
	if !ok {
		return nil, fmt.Errorf("format: compound missing key %q", key)
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("format: key %q is not a list (%T)", key, v)
	}
	return l, nil
}

// GetByteArray returns a []byte value.
func (c Compound) GetByteArray(key string) ([]byte, error) {
	v, ok := c[key]
	if !ok {
		return nil, fmt.Errorf("format: compound missing key %q", key)
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("format: key %q is not a byte array (%T)", key, v)
	}
	return b, nil
}

// GetLongArray returns a []int64 value.
func (c Compound) GetLongArray(key string) ([]int64, error) {
	v, ok := c[key]
	if !ok {
		return nil, fmt.Errorf("format: compound missing key %q", key)
	}
	a, ok := v.([]int64)
	if !ok {
		return nil, fmt.Errorf("format: key %q is not a long array (%T)", key, v)
	}
	return a, nil
}

// IsCompoundList reports whether every element of list is itself a
// compound, the typed-content check §6.1 requires before iterating a list
// of compounds.
func IsCompoundList(list []any) bool {
	for _, v := range list {
		if _, ok := v.(map[string]any); !ok {
			return false
		}
	}
	return true
}
