package task

import "reflect"

// ScanDependencies walks a resolved parameter value looking for any
// DependencyRef (an Output, or a value embedding one), including values
// nested inside slices, arrays, and maps, and returns the distinct set of
// referenced NodeIDs in first-seen order. This is what lets a dependency
// be bound as an ordinary parameter value (including inside a list or map
// of dependencies) rather than requiring a separate "depends_on" list.
func ScanDependencies(v any) []NodeID {
	seen := map[NodeID]bool{}
	var order []NodeID
	scan(reflect.ValueOf(v), seen, &order)
	return order
}

func scan(rv reflect.Value, seen map[NodeID]bool, order *[]NodeID) {
	if !rv.IsValid() {
		return
	}
	if ref, ok := asDependencyRef(rv); ok {
		_, id := ref.Ref()
		if !seen[id] {
			seen[id] = true
			*order = append(*order, id)
		}
		return
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			scan(rv.Index(i), seen, order)
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			scan(iter.Value(), seen, order)
		}
	case reflect.Interface, reflect.Ptr:
		if !rv.IsNil() {
			scan(rv.Elem(), seen, order)
		}
	}
}

func asDependencyRef(rv reflect.Value) (DependencyRef, bool) {
	if !rv.CanInterface() {
		return nil, false
	}
	if ref, ok := rv.Interface().(DependencyRef); ok {
		return ref, true
	}
	return nil, false
}
