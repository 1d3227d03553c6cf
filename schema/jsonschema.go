package schema

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// JSONSchemaDraft is the JSON Schema dialect produced by JSONSchema.
const JSONSchemaDraft = "http://json-schema.org/draft-04/schema#"

// object is a JSON object that keeps its keys in insertion order.
type object []member

type member struct {
	key   string
	value any
}

func (o *object) set(key string, value any) {
	*o = append(*o, member{key: key, value: value})
}

// MarshalJSON implements json.Marshaler.
func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

var integerKinds = []Kind{KindInt8, KindUint8, KindInt16, KindUint16, KindInt32, KindUint32, KindInt64, KindUint64}

// JSONSchema describes the schema as a JSON Schema (draft-04) document.
//
// Every integer and float kind gets a definition carrying its range, followed
// by the enums, structs and tables of the schema. The document's top-level
// $ref points at the root table. Deprecated fields are left out.
//
// Parameters:
//   - indent: Indent the output with two spaces
func (s *Schema) JSONSchema(indent bool) ([]byte, error) {
	var defs object

	for _, k := range integerKinds {
		lo, hi := k.integerRange()

		var def object
		def.set("type", "integer")
		def.set("name", k.String())
		def.set("minimum", lo)
		def.set("maximum", hi)
		defs.set(k.String(), def)
	}

	for _, k := range []Kind{KindFloat32, KindFloat64} {
		var def object
		def.set("type", "number")
		def.set("name", k.String())
		def.set("bits", k.Size()*8)
		defs.set(k.String(), def)
	}

	for _, e := range s.enums {
		defs.set(s.FullName(e.Name), s.enumDefinition(e))
	}
	for _, st := range s.structs {
		defs.set(s.FullName(st.Name), s.structDefinition(st))
	}
	for _, t := range s.tables {
		defs.set(s.FullName(t.Name), s.tableDefinition(t))
	}

	var doc object
	doc.set("$schema", JSONSchemaDraft)
	doc.set("definitions", defs)
	doc.set("$ref", s.ref(s.root))

	data, err := json.Marshal(doc)
	if err != nil || !indent {
		return data, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

func (s *Schema) ref(name string) string {
	return "#/definitions/" + s.FullName(name)
}

func (s *Schema) typeRef(name string) object {
	return object{{key: "$ref", value: s.ref(name)}}
}

// basicInfo writes the members every definition shares.
func (s *Schema) basicInfo(def *object, name string, attrs map[string]string, doc string) {
	def.set("exclusiveDefinition", true)
	if len(attrs) > 0 {
		def.set("attributes", attrs)
	}
	def.set("namespace", s.namespace)
	def.set("name", name)
	if doc != "" {
		def.set("description", doc)
	}
}

func (s *Schema) enumDefinition(e *Enum) object {
	var def object
	def.set("type", "string")
	s.basicInfo(&def, e.Name, e.Attributes, e.Doc)
	def.set("isEnum", "true")

	names := make([]string, len(e.Values))
	values := make([]int64, len(e.Values))
	for i, v := range e.Values {
		names[i] = v.Name
		values[i], _ = e.ValueOf(v.Name)
	}
	def.set("enum", names)
	def.set("enum_values", values)

	return def
}

func (s *Schema) structDefinition(st *Struct) object {
	var def object
	def.set("type", "object")
	s.basicInfo(&def, st.Name, st.Attributes, st.Doc)

	var props object
	for _, m := range st.Members {
		switch {
		case m.Kind == KindStruct:
			props.set(m.Name, s.typeRef(m.Struct.Name))
		case m.Enum != nil:
			props.set(m.Name, s.typeRef(m.Enum.Name))
		default:
			props.set(m.Name, scalarType(m.Kind))
		}
	}
	def.set("properties", props)
	def.set("struct", true)
	def.set("additionalProperties", false)

	return def
}

func (s *Schema) tableDefinition(t *Table) object {
	var def object
	def.set("type", "object")
	s.basicInfo(&def, t.Name, t.Attributes, t.Doc)

	var props object
	var required []string
	for _, f := range t.Fields {
		if f.Deprecated {
			continue
		}
		props.set(f.Name, s.fieldType(f))
		if f.Required {
			required = append(required, f.Name)
		}
	}
	def.set("properties", props)

	if key, ok := t.KeyField(); ok {
		def.set("key", key.Name)
	}
	def.set("table", true)
	if len(required) > 0 {
		def.set("required", required)
	}
	def.set("additionalProperties", false)

	return def
}

func (s *Schema) fieldType(f Field) object {
	if f.Kind == KindVector {
		var elem object
		switch {
		case f.Enum != nil:
			elem = s.typeRef(f.Enum.Name)
		case f.Elem == KindStruct:
			elem = s.typeRef(f.Struct.Name)
		case f.Elem == KindTable:
			elem = s.typeRef(f.Table)
		default:
			elem = scalarType(f.Elem)
		}

		return object{{key: "type", value: "array"}, {key: "items", value: elem}}
	}

	switch {
	case f.Enum != nil:
		return s.typeRef(f.Enum.Name)
	case f.Kind == KindStruct:
		return s.typeRef(f.Struct.Name)
	case f.Kind == KindTable:
		return s.typeRef(f.Table)
	default:
		return scalarType(f.Kind)
	}
}

// scalarType returns the type of a scalar or string: a reference to the
// numeric definitions, or a plain JSON type.
func scalarType(k Kind) object {
	switch {
	case k == KindBool:
		return object{{key: "type", value: "boolean"}}
	case k == KindString:
		return object{{key: "type", value: "string"}}
	case k.IsInteger() || k.IsFloat():
		return object{{key: "$ref", value: "#/definitions/" + k.String()}}
	default:
		return object{{key: "type", value: ""}}
	}
}

