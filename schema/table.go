package schema

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"maps"
	"math"
	"sort"

	"github.com/arloliu/flatwire/builder"
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/internal/options"
	"github.com/arloliu/flatwire/reader"
)

// Table describes a table type: its fields and layout preferences.
//
// A Table is immutable once created and safe for concurrent use. It drives
// a builder.Builder by field name and reads reader.Table values back,
// applying defaults, kinds and enum names.
type Table struct {
	Name          string
	Fields        []Field
	OriginalOrder bool
	Attributes    map[string]string
	Doc           string

	byName   map[string]int
	defaults []uint64
	key      int
}

// TableOption configures a Table.
type TableOption = options.Option[*Table]

// WithOriginalOrder lays the table's fields out in the order they are added
// instead of by decreasing alignment.
func WithOriginalOrder() TableOption {
	return options.NoError(func(t *Table) {
		t.OriginalOrder = true
	})
}

// WithTableAttributes attaches custom attributes to the table.
func WithTableAttributes(attrs map[string]string) TableOption {
	return options.NoError(func(t *Table) {
		t.Attributes = maps.Clone(attrs)
	})
}

// WithTableDoc sets the table's documentation.
func WithTableDoc(doc string) TableOption {
	return options.NoError(func(t *Table) {
		t.Doc = doc
	})
}

// NewTable creates a table descriptor.
//
// Parameters:
//   - name: Table name
//   - fields: Field descriptors; ids are explicit, or all AutoID
//   - opts: Optional configuration (WithOriginalOrder, WithTableAttributes, WithTableDoc)
//
// Returns:
//   - *Table: The table descriptor
//   - error: ErrInvalidDescriptor or ErrInvalidFieldID for inconsistent fields
func NewTable(name string, fields []Field, opts ...TableOption) (*Table, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: table without name", errs.ErrInvalidDescriptor)
	}

	t := &Table{
		Name:   name,
		Fields: append([]Field(nil), fields...),
		byName: make(map[string]int, len(fields)),
		key:    -1,
	}
	if err := options.Apply(t, opts...); err != nil {
		return nil, err
	}

	if err := t.assignIDs(); err != nil {
		return nil, err
	}

	t.defaults = make([]uint64, len(t.Fields))
	ids := make(map[int]string, len(t.Fields))
	for i, f := range t.Fields {
		if err := f.validate(); err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		if _, dup := t.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: table %s has duplicate field %s", errs.ErrInvalidDescriptor, name, f.Name)
		}
		if other, dup := ids[f.ID]; dup {
			return nil, fmt.Errorf("%w: table %s fields %s and %s share id %d", errs.ErrInvalidFieldID, name, other, f.Name, f.ID)
		}
		t.byName[f.Name] = i
		ids[f.ID] = f.Name

		if f.Key {
			if t.key >= 0 {
				return nil, fmt.Errorf("%w: table %s has more than one key", errs.ErrInvalidDescriptor, name)
			}
			t.key = i
		}

		if f.Kind.IsScalar() {
			bits, err := f.scalarBits(f.Default)
			if err != nil {
				return nil, fmt.Errorf("table %s default: %w", name, err)
			}
			t.defaults[i] = bits
		}
	}

	return t, nil
}

func (t *Table) assignIDs() error {
	auto := 0
	for _, f := range t.Fields {
		if f.ID == AutoID {
			auto++
		}
	}

	switch auto {
	case 0:
		return nil
	case len(t.Fields):
		for i := range t.Fields {
			t.Fields[i].ID = i
		}

		return nil
	default:
		return fmt.Errorf("%w: table %s mixes explicit and automatic field ids", errs.ErrInvalidFieldID, t.Name)
	}
}

// Field returns the field with the given name.
func (t *Table) Field(name string) (Field, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Field{}, false
	}

	return t.Fields[i], true
}

// KeyField returns the table's key field, if it has one.
func (t *Table) KeyField() (Field, bool) {
	if t.key < 0 {
		return Field{}, false
	}

	return t.Fields[t.key], true
}

// lookup returns the index of a writable field.
func (t *Table) lookup(name string) (int, error) {
	i, ok := t.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: table %s has no field %s", errs.ErrInvalidDescriptor, t.Name, name)
	}

	return i, nil
}

func (t *Table) writable(name string) (int, error) {
	i, err := t.lookup(name)
	if err != nil {
		return 0, err
	}
	if t.Fields[i].Deprecated {
		return 0, fmt.Errorf("%w: field %s.%s is deprecated", errs.ErrInvalidDescriptor, t.Name, name)
	}

	return i, nil
}

// Start opens a table of this type in b.
func (t *Table) Start(b *builder.Builder) error {
	return b.StartTable()
}

// End closes the open table, honouring OriginalOrder.
func (t *Table) End(b *builder.Builder) (builder.TableOffset, error) {
	if t.OriginalOrder {
		return b.EndTableOriginalOrder()
	}

	return b.EndTable()
}

// Add adds field name with value v to the open table.
//
// v is converted according to the field's kind: a builder offset for
// strings, vectors and tables; packed []byte or one value per member
// ([]any) for structs; otherwise a scalar as accepted by AddScalar.
func (t *Table) Add(b *builder.Builder, name string, v any) error {
	switch x := v.(type) {
	case builder.Offset:
		return t.AddOffset(b, name, x)
	case []byte:
		return t.AddStruct(b, name, x)
	case []any:
		i, err := t.writable(name)
		if err != nil {
			return err
		}
		f := t.Fields[i]
		if f.Kind != KindStruct {
			return fmt.Errorf("%w: field %s.%s is %s, not a struct", errs.ErrKindMismatch, t.Name, name, f.Kind)
		}
		data, err := f.Struct.Pack(x...)
		if err != nil {
			return err
		}

		return b.AddFieldStruct(f.ID, data, f.Struct.Align())
	default:
		return t.AddScalar(b, name, v)
	}
}

// AddScalar adds a scalar field. v may be a bool, any Go number that fits
// the field's kind, or an enum value name. The field is elided when v equals
// the field default.
func (t *Table) AddScalar(b *builder.Builder, name string, v any) error {
	i, err := t.writable(name)
	if err != nil {
		return err
	}

	f := t.Fields[i]
	if !f.Kind.IsScalar() {
		return fmt.Errorf("%w: field %s.%s is %s, not a scalar", errs.ErrKindMismatch, t.Name, name, f.Kind)
	}

	bits, err := f.scalarBits(v)
	if err != nil {
		return err
	}

	return b.AddFieldBits(f.ID, f.Width(), bits, t.defaults[i])
}

// AddOffset adds a string, vector or table field. The offset type must match
// the field kind.
func (t *Table) AddOffset(b *builder.Builder, name string, off builder.Offset) error {
	i, err := t.writable(name)
	if err != nil {
		return err
	}

	f := t.Fields[i]
	var ok bool
	switch f.Kind {
	case KindString:
		_, ok = off.(builder.StringOffset)
	case KindVector:
		_, ok = off.(builder.VectorOffset)
	case KindTable:
		_, ok = off.(builder.TableOffset)
	}
	if !ok {
		return fmt.Errorf("%w: field %s.%s is %s, got %T", errs.ErrKindMismatch, t.Name, name, f.Kind, off)
	}

	return b.AddFieldOffset(f.ID, off)
}

// AddStruct adds a struct field from its packed bytes.
func (t *Table) AddStruct(b *builder.Builder, name string, data []byte) error {
	i, err := t.writable(name)
	if err != nil {
		return err
	}

	f := t.Fields[i]
	if f.Kind != KindStruct {
		return fmt.Errorf("%w: field %s.%s is %s, not a struct", errs.ErrKindMismatch, t.Name, name, f.Kind)
	}
	if len(data) != f.Struct.Size() {
		return fmt.Errorf("%w: struct %s needs %d bytes, got %d", errs.ErrKindMismatch, f.Struct.Name, f.Struct.Size(), len(data))
	}

	return b.AddFieldStruct(f.ID, data, f.Struct.Align())
}

// Get reads field name from tbl.
//
// Scalars are returned as their Go type (see ScalarValue), with the field
// default when absent. Strings are returned as string, vectors as
// reader.Vector, tables as reader.Table and structs as []any. Absent
// non-scalar fields return errs.ErrFieldAbsent.
func (t *Table) Get(tbl reader.Table, name string) (any, error) {
	i, err := t.lookup(name)
	if err != nil {
		return nil, err
	}

	f := t.Fields[i]
	switch f.Kind {
	case KindString:
		return tbl.String(f.ID)
	case KindVector:
		return tbl.Vector(f.ID)
	case KindTable:
		return tbl.Table(f.ID)
	case KindStruct:
		data, err := tbl.Struct(f.ID, f.Struct.Size())
		if err != nil {
			return nil, err
		}

		return f.Struct.Unpack(data)
	default:
		bits, err := tbl.ScalarBits(f.ID, f.Width(), t.defaults[i])
		if err != nil {
			return nil, err
		}

		return ScalarValue(f.Kind, bits), nil
	}
}

// GetEnumName reads an enum field and returns the name of its value.
func (t *Table) GetEnumName(tbl reader.Table, name string) (string, error) {
	i, err := t.lookup(name)
	if err != nil {
		return "", err
	}

	f := t.Fields[i]
	if f.Enum == nil || !f.Kind.IsScalar() {
		return "", fmt.Errorf("%w: field %s.%s is not an enum", errs.ErrKindMismatch, t.Name, name)
	}

	bits, err := tbl.ScalarBits(f.ID, f.Width(), t.defaults[i])
	if err != nil {
		return "", err
	}

	v := signExtend(f.Kind, bits)
	enumName, ok := f.Enum.NameOf(v)
	if !ok {
		return "", fmt.Errorf("%w: %d is not a value of enum %s", errs.ErrKindMismatch, v, f.Enum.Name)
	}

	return enumName, nil
}

// CheckRequired verifies that every required field of desc is present in tbl.
// All missing fields are reported, each wrapping errs.ErrRequiredFieldMissing.
func CheckRequired(desc *Table, tbl reader.Table) error {
	var missing []error
	for _, f := range desc.Fields {
		if f.Required && !tbl.Has(f.ID) {
			missing = append(missing, fmt.Errorf("%w: %s.%s (id %d)", errs.ErrRequiredFieldMissing, desc.Name, f.Name, f.ID))
		}
	}

	return errors.Join(missing...)
}

// LookupByKey binary searches vec, a vector of tables of this type sorted by
// the key field, for the element whose key equals key.
//
// Returns:
//   - reader.Table: The matching element
//   - bool: Whether a match was found
//   - error: ErrInvalidDescriptor if the table has no key, read errors otherwise
func (t *Table) LookupByKey(vec reader.Vector, key any) (reader.Table, bool, error) {
	if t.key < 0 {
		return reader.Table{}, false, fmt.Errorf("%w: table %s has no key field", errs.ErrInvalidDescriptor, t.Name)
	}

	f := t.Fields[t.key]
	compare, err := t.keyComparer(f, key)
	if err != nil {
		return reader.Table{}, false, err
	}

	var searchErr error
	i := sort.Search(vec.Len(), func(i int) bool {
		if searchErr != nil {
			return true
		}
		elem, err := vec.Table(i)
		if err != nil {
			searchErr = err
			return true
		}
		c, err := compare(elem)
		if err != nil {
			searchErr = err
			return true
		}

		return c >= 0
	})
	if searchErr != nil {
		return reader.Table{}, false, searchErr
	}
	if i == vec.Len() {
		return reader.Table{}, false, nil
	}

	elem, err := vec.Table(i)
	if err != nil {
		return reader.Table{}, false, err
	}
	c, err := compare(elem)
	if err != nil || c != 0 {
		return reader.Table{}, false, err
	}

	return elem, true, nil
}

// keyComparer returns a function comparing an element's key with key.
func (t *Table) keyComparer(f Field, key any) (func(reader.Table) (int, error), error) {
	if f.Kind == KindString {
		var want []byte
		switch k := key.(type) {
		case string:
			want = []byte(k)
		case []byte:
			want = k
		default:
			return nil, fmt.Errorf("%w: key %s.%s is a string, got %T", errs.ErrKindMismatch, t.Name, f.Name, key)
		}

		return func(elem reader.Table) (int, error) {
			got, err := elem.StringBytes(f.ID)
			if err != nil {
				return 0, err
			}

			return bytes.Compare(got, want), nil
		}, nil
	}

	wantBits, err := f.scalarBits(key)
	if err != nil {
		return nil, err
	}
	def := t.defaults[t.key]

	return func(elem reader.Table) (int, error) {
		got, err := elem.ScalarBits(f.ID, f.Width(), def)
		if err != nil {
			return 0, err
		}

		return compareScalars(f.Kind, got, wantBits), nil
	}, nil
}

func compareScalars(kind Kind, a, b uint64) int {
	switch {
	case kind == KindFloat32:
		return cmp.Compare(math.Float32frombits(uint32(a)), math.Float32frombits(uint32(b))) //nolint:gosec
	case kind == KindFloat64:
		return cmp.Compare(math.Float64frombits(a), math.Float64frombits(b))
	case kind == KindBool || kind == KindUint64:
		return cmp.Compare(a, b)
	default:
		return cmp.Compare(signExtend(kind, a), signExtend(kind, b))
	}
}

// signExtend widens bits of an integer kind to int64.
func signExtend(kind Kind, bits uint64) int64 {
	switch kind {
	case KindInt8:
		return int64(int8(bits)) //nolint:gosec
	case KindInt16:
		return int64(int16(bits)) //nolint:gosec
	case KindInt32:
		return int64(int32(bits)) //nolint:gosec
	default:
		return int64(bits) //nolint:gosec
	}
}
