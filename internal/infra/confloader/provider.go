package confloader

import "errors"

// errReadBytes is returned by mapProvider.ReadBytes; koanf calls Read instead.
var errReadBytes = errors.New("confloader: map provider has no byte form")

// mapProvider is a koanf.Provider over a map of dotted keys.
type mapProvider map[string]any

// ReadBytes is unsupported.
func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errReadBytes
}

// Read returns the map unflattened so dotted keys merge into sections.
func (m mapProvider) Read() (map[string]any, error) {
	out := make(map[string]any)
	for k, v := range m {
		insert(out, splitKey(k), v)
	}
	return out, nil
}

func splitKey(k string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(k); i++ {
		if k[i] == '.' {
			parts = append(parts, k[start:i])
			start = i + 1
		}
	}
	return append(parts, k[start:])
}

func insert(m map[string]any, path []string, v any) {
	if len(path) == 1 {
		m[path[0]] = v
		return
	}
	child, ok := m[path[0]].(map[string]any)
	if !ok {
		child = make(map[string]any)
		m[path[0]] = child
	}
	insert(child, path[1:], v)
}
