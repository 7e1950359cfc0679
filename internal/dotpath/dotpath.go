// Package dotpath reads and writes nested values in string-keyed maps using
// "parent.child" style keys.
package dotpath

import (
	"reflect"
	"strings"
)

// Lookup walks path segment by segment through nested string-keyed maps.
// It reports false as soon as a segment is missing or an intermediate value
// is not a map. Named map types (type X map[string]any) and maps with
// non-any value types all walk the same way.
func Lookup(m map[string]any, path string) (any, bool) {
	if m == nil || path == "" {
		return nil, false
	}

	var current any = m
	for _, seg := range strings.Split(path, ".") {
		next, ok := step(current, seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func step(v any, key string) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		val, ok := t[key]
		return val, ok
	case map[string]string:
		val, ok := t[key]
		return val, ok
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !mv.IsValid() {
		return nil, false
	}
	return mv.Interface(), true
}

// Set writes value at path, creating intermediate maps as needed. Named map
// types with a map[string]any underlying type are descended in place; any
// other intermediate, scalars and narrower map types included, is replaced.
func Set(m map[string]any, path string, value any) {
	if m == nil || path == "" {
		return
	}

	segments := strings.Split(path, ".")
	node := m
	for _, seg := range segments[:len(segments)-1] {
		next, ok := anyMap(node[seg])
		if !ok {
			next = make(map[string]any)
			node[seg] = next
		}
		node = next
	}
	node[segments[len(segments)-1]] = value
}

var anyMapType = reflect.TypeOf(map[string]any(nil))

// anyMap returns v as a writable map[string]any when v's underlying type is
// exactly that. The conversion shares the original map's storage, so writes
// through the result land in the caller's map.
func anyMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, m != nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.IsNil() || !rv.Type().ConvertibleTo(anyMapType) {
		return nil, false
	}
	return rv.Convert(anyMapType).Interface().(map[string]any), true
}
