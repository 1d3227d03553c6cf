// Package schema describes tables, structs and enums as plain values and
// uses those descriptions to drive the builder and the reader.
//
// Descriptors carry what a schema language would declare: field ids and
// kinds, defaults, deprecated, required and key flags, custom attributes,
// the original-order table layout, forced struct alignment and bit-flag
// enums. Nothing is parsed here; descriptors are built in Go.
//
// # Basic Usage
//
//	vec3, _ := schema.NewStruct("Vec3", 0,
//	    schema.Member{Name: "x", Kind: schema.KindFloat32},
//	    schema.Member{Name: "y", Kind: schema.KindFloat32},
//	    schema.Member{Name: "z", Kind: schema.KindFloat32},
//	)
//	monster, _ := schema.NewTable("Monster", []schema.Field{
//	    {Name: "pos", ID: 0, Kind: schema.KindStruct, Struct: vec3},
//	    {Name: "hp", ID: 2, Kind: schema.KindInt16, Default: 100},
//	    {Name: "name", ID: 3, Kind: schema.KindString, Required: true},
//	})
//	s, _ := schema.New(
//	    schema.WithNamespace("MyGame.Sample"),
//	    schema.WithStructs(vec3),
//	    schema.WithTables(monster),
//	    schema.WithRoot("Monster"),
//	)
//
//	_ = monster.Start(b)
//	_ = monster.Add(b, "hp", 300)
//	_ = monster.Add(b, "name", nameOffset)
//	root, _ := monster.End(b)
//
// # Required Fields
//
// Required fields are not enforced while building. CheckRequired validates a
// finished table against its descriptor.
//
// # JSON Schema
//
// Schema.JSONSchema exports the descriptors as a draft-04 JSON Schema
// document, one definition per numeric kind, enum, struct and table.
package schema
