package schema

import (
	"fmt"
	"maps"

	"github.com/arloliu/flatwire/endian"
	"github.com/arloliu/flatwire/errs"
)

// MaxForceAlign is the largest alignment a struct may be forced to.
const MaxForceAlign = 32

// Member is one member of a Struct. Members are scalars or nested structs.
type Member struct {
	Name   string
	Kind   Kind
	Struct *Struct // nested struct, when Kind is KindStruct
	Enum   *Enum   // optional enum type of an integer member
	Doc    string
}

// Struct describes a fixed-layout object stored inline in tables and vectors.
//
// Members are laid out in declaration order, each aligned to its own size,
// and the struct is padded to a multiple of its alignment.
type Struct struct {
	Name       string
	Members    []Member
	ForceAlign int
	Attributes map[string]string
	Doc        string

	offsets []int
	size    int
	align   int
}

// NewStruct creates a struct descriptor and computes its layout.
//
// Parameters:
//   - name: Struct name
//   - forceAlign: Alignment to force, 0 for the natural alignment
//   - members: Members in declaration order
//
// Returns:
//   - *Struct: The struct descriptor
//   - error: ErrInvalidDescriptor for empty, duplicate or non-scalar members,
//     or a forced alignment that is not a power of two at least as large as
//     the natural alignment
func NewStruct(name string, forceAlign int, members ...Member) (*Struct, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: struct without name", errs.ErrInvalidDescriptor)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: struct %s has no members", errs.ErrInvalidDescriptor, name)
	}

	s := &Struct{
		Name:       name,
		Members:    members,
		ForceAlign: forceAlign,
		offsets:    make([]int, len(members)),
		align:      1,
	}

	seen := make(map[string]struct{}, len(members))
	for i, m := range members {
		if m.Name == "" {
			return nil, fmt.Errorf("%w: struct %s member %d has no name", errs.ErrInvalidDescriptor, name, i)
		}
		if _, dup := seen[m.Name]; dup {
			return nil, fmt.Errorf("%w: struct %s has duplicate member %s", errs.ErrInvalidDescriptor, name, m.Name)
		}
		seen[m.Name] = struct{}{}

		size, align, err := m.layout()
		if err != nil {
			return nil, fmt.Errorf("struct %s member %s: %w", name, m.Name, err)
		}

		s.size += alignPad(s.size, align)
		s.offsets[i] = s.size
		s.size += size
		s.align = max(s.align, align)
	}

	if forceAlign != 0 {
		if forceAlign&(forceAlign-1) != 0 || forceAlign < s.align || forceAlign > MaxForceAlign {
			return nil, fmt.Errorf("%w: struct %s cannot be forced to alignment %d", errs.ErrInvalidDescriptor, name, forceAlign)
		}
		s.align = forceAlign
	}
	s.size += alignPad(s.size, s.align)

	return s, nil
}

func (m Member) layout() (int, int, error) {
	switch {
	case m.Kind.IsScalar():
		if m.Enum != nil && m.Enum.Kind != m.Kind {
			return 0, 0, fmt.Errorf("%w: enum %s is %s, member is %s", errs.ErrInvalidDescriptor, m.Enum.Name, m.Enum.Kind, m.Kind)
		}

		return m.Kind.Size(), m.Kind.Size(), nil
	case m.Kind == KindStruct && m.Struct != nil:
		return m.Struct.size, m.Struct.align, nil
	default:
		return 0, 0, fmt.Errorf("%w: %s members are not allowed in structs", errs.ErrInvalidDescriptor, m.Kind)
	}
}

// WithAttributes returns s with custom attributes attached.
func (s *Struct) WithAttributes(attrs map[string]string) *Struct {
	s.Attributes = maps.Clone(attrs)
	return s
}

// Size returns the byte size of the struct including trailing padding.
func (s *Struct) Size() int {
	return s.size
}

// Align returns the struct's alignment.
func (s *Struct) Align() int {
	return s.align
}

// Offset returns the byte offset of member i.
func (s *Struct) Offset(i int) int {
	return s.offsets[i]
}

// Pack encodes values, one per member in declaration order, into the
// struct's wire form. Scalars are converted as by ScalarBits; nested struct
// members take their packed []byte.
func (s *Struct) Pack(values ...any) ([]byte, error) {
	return s.AppendPacked(nil, values...)
}

// AppendPacked is like Pack but appends to dst.
func (s *Struct) AppendPacked(dst []byte, values ...any) ([]byte, error) {
	if len(values) != len(s.Members) {
		return dst, fmt.Errorf("%w: struct %s has %d members, got %d values", errs.ErrInvalidDescriptor, s.Name, len(s.Members), len(values))
	}

	start := len(dst)
	dst = append(dst, make([]byte, s.size)...)
	out := dst[start:]

	engine := endian.GetLittleEndianEngine()
	for i, m := range s.Members {
		if m.Kind == KindStruct {
			data, ok := values[i].([]byte)
			if !ok || len(data) != m.Struct.size {
				return dst[:start], fmt.Errorf("%w: member %s.%s needs %d packed bytes", errs.ErrKindMismatch, s.Name, m.Name, m.Struct.size)
			}
			copy(out[s.offsets[i]:], data)

			continue
		}

		bits, err := ScalarBits(m.Kind, values[i])
		if err != nil {
			return dst[:start], fmt.Errorf("member %s.%s: %w", s.Name, m.Name, err)
		}
		endian.PutBits(engine, out[s.offsets[i]:], m.Kind.Size(), bits)
	}

	return dst, nil
}

// Unpack decodes the struct's wire form into one value per member. Scalars
// come back as their Go types (see ScalarValue), nested structs as []any.
func (s *Struct) Unpack(data []byte) ([]any, error) {
	if len(data) < s.size {
		return nil, fmt.Errorf("%w: struct %s needs %d bytes, have %d", errs.ErrOutOfBounds, s.Name, s.size, len(data))
	}

	engine := endian.GetLittleEndianEngine()
	values := make([]any, len(s.Members))
	for i, m := range s.Members {
		field := data[s.offsets[i]:]
		if m.Kind == KindStruct {
			nested, err := m.Struct.Unpack(field)
			if err != nil {
				return nil, err
			}
			values[i] = nested

			continue
		}

		values[i] = ScalarValue(m.Kind, endian.GetBits(engine, field, m.Kind.Size()))
	}

	return values, nil
}

func alignPad(off, align int) int {
	return (-off) & (align - 1)
}
