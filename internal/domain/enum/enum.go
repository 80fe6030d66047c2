// Package enum holds the column plumbing shared by the domain's closed string types.
package enum

import "fmt"

// Scan decodes a text column into dst through parse, so a value outside the type's set
// fails the read instead of flowing into a state machine.
func Scan[T ~string](dst *T, src any, parse func(string) (T, error)) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, *dst)
	}
	parsed, err := parse(raw)
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

// Parse converts v when valid accepts it.
func Parse[T ~string](v string, valid func(T) bool, what string) (T, error) {
	if t := T(v); valid(t) {
		return t, nil
	}
	return "", fmt.Errorf("invalid %s %q", what, v)
}

func Contains[T ~string](set []T, v T) bool {
	for _, c := range set {
		if c == v {
			return true
		}
	}
	return false
}
