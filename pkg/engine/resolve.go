// comply/pkg/engine/resolve.go

package engine

import "strings"

// ResolveField walks a dot-delimited path through nested mappings. It
// returns (nil, false) as soon as a segment is absent or an intermediate
// value is not a mapping; a missing field is a data condition, never an
// error.
func ResolveField(doc map[string]interface{}, path string) (interface{}, bool) {
	var value interface{} = doc
	for _, segment := range strings.Split(path, ".") {
		m, ok := value.(map[string]interface{})
		if !ok {
			return nil, false
		}
		value, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return value, true
}
