package patch

import "reflect"

// Coalesce returns the value pointed to by ptr if it's not nil, otherwise returns fallback
func Coalesce[T any](ptr *T, fallback T) T {
	if ptr != nil {
		return *ptr
	}
	return fallback
}

// CoalescePtr keeps an optional field: a provided value replaces fallback, nil keeps it.
func CoalescePtr[T any](ptr *T, fallback *T) *T {
	if ptr != nil {
		v := *ptr
		return &v
	}
	return fallback
}

// AnySet reports whether at least one of the optional fields was provided.
func AnySet(ptrs ...any) bool {
	for _, p := range ptrs {
		if !isNilPtr(p) {
			return true
		}
	}
	return false
}

func isNilPtr(p any) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
