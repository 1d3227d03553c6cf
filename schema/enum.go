package schema

import (
	"fmt"

	"github.com/arloliu/flatwire/errs"
)

// EnumValue is one named value of an Enum. For bit-flag enums Value is the
// bit position, not the mask.
type EnumValue struct {
	Name  string
	Value int64
	Doc   string
}

// Enum describes a named set of integer constants.
type Enum struct {
	Name       string
	Kind       Kind
	Values     []EnumValue
	BitFlags   bool
	Attributes map[string]string
	Doc        string

	byName map[string]int
}

// NewEnum creates an enum descriptor.
//
// Parameters:
//   - name: Enum name
//   - kind: Underlying integer kind
//   - bitFlags: Values are bit positions and may be combined; kind must be unsigned
//   - values: Named values
//
// Returns:
//   - *Enum: The enum descriptor
//   - error: ErrInvalidDescriptor for a non-integer kind, duplicate names, or
//     values that do not fit kind
func NewEnum(name string, kind Kind, bitFlags bool, values ...EnumValue) (*Enum, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: enum without name", errs.ErrInvalidDescriptor)
	}
	if !kind.IsInteger() {
		return nil, fmt.Errorf("%w: enum %s has non-integer kind %s", errs.ErrInvalidDescriptor, name, kind)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: enum %s has no values", errs.ErrInvalidDescriptor, name)
	}

	e := &Enum{
		Name:     name,
		Kind:     kind,
		Values:   values,
		BitFlags: bitFlags,
		byName:   make(map[string]int, len(values)),
	}

	lo, hi := kind.integerRange()
	for i, v := range values {
		if v.Name == "" {
			return nil, fmt.Errorf("%w: enum %s value %d has no name", errs.ErrInvalidDescriptor, name, i)
		}
		if _, dup := e.byName[v.Name]; dup {
			return nil, fmt.Errorf("%w: enum %s has duplicate value %s", errs.ErrInvalidDescriptor, name, v.Name)
		}
		e.byName[v.Name] = i

		if bitFlags {
			if lo < 0 {
				return nil, fmt.Errorf("%w: bit flags enum %s must be unsigned", errs.ErrInvalidDescriptor, name)
			}
			if v.Value < 0 || v.Value >= int64(kind.Size()*8) {
				return nil, fmt.Errorf("%w: bit %d of %s.%s does not fit %s", errs.ErrInvalidDescriptor, v.Value, name, v.Name, kind)
			}

			continue
		}

		if v.Value < lo || (v.Value > 0 && uint64(v.Value) > hi) {
			return nil, fmt.Errorf("%w: value %d of %s.%s does not fit %s", errs.ErrInvalidDescriptor, v.Value, name, v.Name, kind)
		}
	}

	return e, nil
}

// ValueOf returns the stored value of the named constant. For bit-flag enums
// it is the mask 1<<position.
func (e *Enum) ValueOf(name string) (int64, bool) {
	i, ok := e.byName[name]
	if !ok {
		return 0, false
	}

	v := e.Values[i].Value
	if e.BitFlags {
		return int64(uint64(1) << uint(v)), true //nolint:gosec
	}

	return v, true
}

// NameOf returns the name of a stored value. Bit-flag enums only resolve
// single-bit masks.
func (e *Enum) NameOf(v int64) (string, bool) {
	for _, ev := range e.Values {
		stored := ev.Value
		if e.BitFlags {
			stored = int64(uint64(1) << uint(ev.Value)) //nolint:gosec
		}
		if stored == v {
			return ev.Name, true
		}
	}

	return "", false
}

// Flags combines the named flags of a bit-flag enum into one mask.
func (e *Enum) Flags(names ...string) (uint64, error) {
	if !e.BitFlags {
		return 0, fmt.Errorf("%w: enum %s is not a bit flags enum", errs.ErrKindMismatch, e.Name)
	}

	var mask uint64
	for _, name := range names {
		v, ok := e.ValueOf(name)
		if !ok {
			return 0, fmt.Errorf("%w: enum %s has no value %s", errs.ErrInvalidDescriptor, e.Name, name)
		}
		mask |= uint64(v) //nolint:gosec
	}

	return mask, nil
}
