package model

import (
	"fmt"
	"strings"
)

// Field identifies one of the two deposit slots.
type Field uint8

const (
	FieldA Field = iota
	FieldB
)

// Fields lists both slots in display order.
var Fields = [2]Field{FieldA, FieldB}

// Dependent returns the slot that is derived when f is independent.
func (f Field) Dependent() Field {
	if f == FieldA {
		return FieldB
	}
	return FieldA
}

func (f Field) String() string {
	if f == FieldB {
		return "B"
	}
	return "A"
}

// ParseField accepts "a"/"b" in any case.
func ParseField(value string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "a":
		return FieldA, nil
	case "b":
		return FieldB, nil
	default:
		return FieldA, fmt.Errorf("unknown field %q", value)
	}
}
