package schema

import (
	"fmt"

	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/section"
)

// AutoID requests that field ids are assigned in declaration order. Either
// every field of a table uses AutoID or none does.
const AutoID = -1

// Field describes one field of a table.
type Field struct {
	Name string
	ID   int
	Kind Kind

	// Elem is the element kind of a vector field. Vectors of vectors are not allowed.
	Elem Kind
	// Struct is the struct type of a struct field or of the elements of a struct vector.
	Struct *Struct
	// Enum is the optional enum type of an integer field or vector element.
	Enum *Enum
	// Table names the table type of a table field or of the elements of a table vector.
	Table string

	// Default is the value readers substitute when a scalar field is absent:
	// nil for zero, a bool, a Go number, or an enum value name.
	Default any

	Required   bool // non-scalar field that must be present
	Deprecated bool // field is no longer written; its id stays reserved
	Key        bool // field that orders a vector of this table

	Attributes map[string]string
	Doc        string
}

// Width returns the number of bytes the field occupies inside a table.
func (f Field) Width() int {
	if f.Kind == KindStruct && f.Struct != nil {
		return f.Struct.Size()
	}

	return f.Kind.Size()
}

// Align returns the alignment of the field inside a table.
func (f Field) Align() int {
	if f.Kind == KindStruct && f.Struct != nil {
		return f.Struct.Align()
	}

	return f.Kind.Size()
}

// valueKind returns the kind of the field's scalars: the field kind itself,
// or the element kind of a vector.
func (f Field) valueKind() Kind {
	if f.Kind == KindVector {
		return f.Elem
	}

	return f.Kind
}

func (f Field) validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: field %d has no name", errs.ErrInvalidDescriptor, f.ID)
	}
	if f.ID < 0 || f.ID > section.MaxFieldID {
		return fmt.Errorf("%w: field %s has id %d", errs.ErrInvalidFieldID, f.Name, f.ID)
	}

	switch {
	case f.Kind.IsScalar():
		if f.Required {
			return fmt.Errorf("%w: scalar field %s cannot be required", errs.ErrInvalidDescriptor, f.Name)
		}
	case f.Kind == KindString:
	case f.Kind == KindStruct:
		if f.Struct == nil {
			return fmt.Errorf("%w: struct field %s has no struct type", errs.ErrInvalidDescriptor, f.Name)
		}
	case f.Kind == KindTable:
		if f.Table == "" {
			return fmt.Errorf("%w: table field %s has no table type", errs.ErrInvalidDescriptor, f.Name)
		}
	case f.Kind == KindVector:
		if err := f.validateElem(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: field %s has kind %s", errs.ErrInvalidDescriptor, f.Name, f.Kind)
	}

	if f.Enum != nil && f.Enum.Kind != f.valueKind() {
		return fmt.Errorf("%w: field %s is %s but enum %s is %s", errs.ErrInvalidDescriptor, f.Name, f.valueKind(), f.Enum.Name, f.Enum.Kind)
	}
	if f.Default != nil && !f.Kind.IsScalar() {
		return fmt.Errorf("%w: non-scalar field %s cannot have a default", errs.ErrInvalidDescriptor, f.Name)
	}
	if f.Key && !f.Kind.IsScalar() && f.Kind != KindString {
		return fmt.Errorf("%w: key field %s must be a scalar or string", errs.ErrInvalidDescriptor, f.Name)
	}
	if f.Deprecated && (f.Required || f.Key) {
		return fmt.Errorf("%w: deprecated field %s cannot be required or key", errs.ErrInvalidDescriptor, f.Name)
	}

	return nil
}

func (f Field) validateElem() error {
	switch {
	case f.Elem.IsScalar(), f.Elem == KindString:
	case f.Elem == KindStruct:
		if f.Struct == nil {
			return fmt.Errorf("%w: struct vector %s has no struct type", errs.ErrInvalidDescriptor, f.Name)
		}
	case f.Elem == KindTable:
		if f.Table == "" {
			return fmt.Errorf("%w: table vector %s has no table type", errs.ErrInvalidDescriptor, f.Name)
		}
	default:
		return fmt.Errorf("%w: vector %s has element kind %s", errs.ErrInvalidDescriptor, f.Name, f.Elem)
	}

	return nil
}

// scalarBits converts v for a scalar field or enum vector element,
// accepting enum value names when the field has an enum type.
func (f Field) scalarBits(v any) (uint64, error) {
	if name, ok := v.(string); ok && f.Enum != nil {
		ev, found := f.Enum.ValueOf(name)
		if !found {
			return 0, fmt.Errorf("%w: enum %s has no value %s", errs.ErrKindMismatch, f.Enum.Name, name)
		}
		v = ev
		if f.Enum.BitFlags {
			v = uint64(ev) //nolint:gosec
		}
	}

	bits, err := ScalarBits(f.valueKind(), v)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", f.Name, err)
	}

	return bits, nil
}
