package schema

import (
	"fmt"
	"strings"

	"github.com/arloliu/flatwire/builder"
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/format"
	"github.com/arloliu/flatwire/internal/options"
	"github.com/arloliu/flatwire/reader"
)

// Schema groups the tables, structs and enums of one data description and
// names its root table.
type Schema struct {
	namespace  string
	root       string
	identifier format.Identifier

	tables  []*Table
	structs []*Struct
	enums   []*Enum

	tablesByName map[string]*Table
}

// Option configures a Schema.
type Option = options.Option[*Schema]

// WithNamespace sets the dotted namespace of every definition, e.g. "MyGame.Sample".
func WithNamespace(ns string) Option {
	return options.NoError(func(s *Schema) {
		s.namespace = ns
	})
}

// WithRoot names the root table.
func WithRoot(name string) Option {
	return options.NoError(func(s *Schema) {
		s.root = name
	})
}

// WithFileIdentifier sets the 4-byte file identifier written by Finish.
func WithFileIdentifier(id string) Option {
	return options.New(func(s *Schema) error {
		ident, err := format.NewIdentifier(id)
		if err != nil {
			return err
		}
		s.identifier = ident

		return nil
	})
}

// WithTables adds table definitions.
func WithTables(tables ...*Table) Option {
	return options.NoError(func(s *Schema) {
		s.tables = append(s.tables, tables...)
	})
}

// WithStructs adds struct definitions.
func WithStructs(structs ...*Struct) Option {
	return options.NoError(func(s *Schema) {
		s.structs = append(s.structs, structs...)
	})
}

// WithEnums adds enum definitions.
func WithEnums(enums ...*Enum) Option {
	return options.NoError(func(s *Schema) {
		s.enums = append(s.enums, enums...)
	})
}

// New creates a schema and checks that it is closed: every table, struct and
// enum referenced by a field is defined in it, and names are unique.
func New(opts ...Option) (*Schema, error) {
	s := &Schema{}
	if err := options.ApplyAndValidate(s, (*Schema).validate, opts...); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Schema) validate() error {
	names := make(map[string]string)
	define := func(kind, name string) error {
		if prev, dup := names[name]; dup {
			return fmt.Errorf("%w: %s %s redefines %s", errs.ErrInvalidDescriptor, kind, name, prev)
		}
		names[name] = kind

		return nil
	}

	structs := make(map[*Struct]bool, len(s.structs))
	for _, st := range s.structs {
		if err := define("struct", st.Name); err != nil {
			return err
		}
		structs[st] = true
	}

	enums := make(map[*Enum]bool, len(s.enums))
	for _, e := range s.enums {
		if err := define("enum", e.Name); err != nil {
			return err
		}
		enums[e] = true
	}

	s.tablesByName = make(map[string]*Table, len(s.tables))
	for _, t := range s.tables {
		if err := define("table", t.Name); err != nil {
			return err
		}
		s.tablesByName[t.Name] = t
	}

	for _, st := range s.structs {
		for _, m := range st.Members {
			if m.Struct != nil && !structs[m.Struct] {
				return fmt.Errorf("%w: struct %s uses undefined struct %s", errs.ErrInvalidDescriptor, st.Name, m.Struct.Name)
			}
			if m.Enum != nil && !enums[m.Enum] {
				return fmt.Errorf("%w: struct %s uses undefined enum %s", errs.ErrInvalidDescriptor, st.Name, m.Enum.Name)
			}
		}
	}

	for _, t := range s.tables {
		for _, f := range t.Fields {
			if f.Struct != nil && !structs[f.Struct] {
				return fmt.Errorf("%w: field %s.%s uses undefined struct %s", errs.ErrInvalidDescriptor, t.Name, f.Name, f.Struct.Name)
			}
			if f.Enum != nil && !enums[f.Enum] {
				return fmt.Errorf("%w: field %s.%s uses undefined enum %s", errs.ErrInvalidDescriptor, t.Name, f.Name, f.Enum.Name)
			}
			if f.Table != "" && s.tablesByName[f.Table] == nil {
				return fmt.Errorf("%w: field %s.%s uses undefined table %s", errs.ErrInvalidDescriptor, t.Name, f.Name, f.Table)
			}
		}
	}

	if s.root == "" {
		return fmt.Errorf("%w: schema has no root table", errs.ErrInvalidDescriptor)
	}
	if s.tablesByName[s.root] == nil {
		return fmt.Errorf("%w: root %s is not a table of the schema", errs.ErrInvalidDescriptor, s.root)
	}

	return nil
}

// Namespace returns the dotted namespace.
func (s *Schema) Namespace() string {
	return s.namespace
}

// Root returns the root table.
func (s *Schema) Root() *Table {
	return s.tablesByName[s.root]
}

// Identifier returns the file identifier, zero if none is set.
func (s *Schema) Identifier() format.Identifier {
	return s.identifier
}

// Table returns the table with the given name.
func (s *Schema) Table(name string) (*Table, bool) {
	t, ok := s.tablesByName[name]
	return t, ok
}

// Tables returns the table definitions in registration order.
func (s *Schema) Tables() []*Table {
	return s.tables
}

// Structs returns the struct definitions in registration order.
func (s *Schema) Structs() []*Struct {
	return s.structs
}

// Enums returns the enum definitions in registration order.
func (s *Schema) Enums() []*Enum {
	return s.enums
}

// FullName returns name qualified by the namespace, with components joined
// by underscores: "MyGame_Sample_Monster".
func (s *Schema) FullName(name string) string {
	if s.namespace == "" {
		return name
	}

	return strings.ReplaceAll(s.namespace, ".", "_") + "_" + name
}

// Finish finishes b with root, writing the schema's file identifier if it has one.
func (s *Schema) Finish(b *builder.Builder, root builder.TableOffset) error {
	if s.identifier.IsZero() {
		return b.Finish(root)
	}

	return b.FinishWithFileIdentifier(root, s.identifier)
}

// Open creates a reader over buf and returns its root table. When the schema
// has a file identifier, the buffer must carry it.
func (s *Schema) Open(buf []byte) (reader.Table, error) {
	r, err := reader.New(buf)
	if err != nil {
		return reader.Table{}, err
	}

	if !s.identifier.IsZero() && !r.HasIdentifier(s.identifier) {
		got, _ := r.Identifier()
		return reader.Table{}, fmt.Errorf("%w: buffer identifier %q, want %q", errs.ErrInvalidIdentifier, got.String(), s.identifier.String())
	}

	return r.Root()
}
