// Package schema implements the tagged-variant schema model: object,
// list, set, and map schemas, their wire deserialization, and the
// filter-driven projection used when an object type is only partially
// populated.
package schema

import (
	"github.com/iamNilotpal/hollow/pkg/filter"
	"github.com/iamNilotpal/hollow/pkg/varint"
)

// Kind enumerates the four schema shapes the wire format supports.
type Kind uint8

const (
	KindObject Kind = iota
	KindList
	KindSet
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "OBJECT"
	case KindList:
		return "LIST"
	case KindSet:
		return "SET"
	case KindMap:
		return "MAP"
	default:
		return "UNKNOWN"
	}
}

// FieldType enumerates an object field's primitive wire representation.
// REFERENCE fields additionally carry a referenced type name.
type FieldType uint8

const (
	FieldBoolean FieldType = iota
	FieldInt
	FieldLong
	FieldFloat
	FieldDouble
	FieldString
	FieldBytes
	FieldReference
)

// Field is one entry of an ObjectSchema's ordered field list.
type Field struct {
	Name string
	Type FieldType
	// RefType names the referenced type, populated only when Type ==
	// FieldReference.
	RefType string
}

// Schema is satisfied by every concrete schema kind. TypeName and
// SchemaKind let callers dispatch without a type switch; an object
// schema's filtered projection is produced by FilterObject.
type Schema interface {
	TypeName() string
	SchemaKind() Kind
}

// byteReaderAt is the minimal reader every schema-parsing routine needs:
// a single byte at a time (VarInt, tag bytes) and raw runs (vstrings).
type byteReaderAt interface {
	ReadByte() (byte, error)
	Read(p []byte) (int, error)
}

// ReadSchema parses one SchemaRecord: kind tag, vstring name, then a
// kind-specific body.
func ReadSchema(r byteReaderAt) (Schema, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return nil, malformed(err, "failed to read schema kind tag")
	}

	name, err := varint.ReadString(r)
	if err != nil {
		return nil, malformed(err, "failed to read schema name")
	}

	switch Kind(kindByte) {
	case KindObject:
		return readObjectBody(r, name)
	case KindList:
		return readListBody(r, name)
	case KindSet:
		return readSetBody(r, name)
	case KindMap:
		return readMapBody(r, name)
	default:
		return nil, malformed(nil, "unrecognized schema kind tag")
	}
}

func readObjectBody(r byteReaderAt, name string) (*ObjectSchema, error) {
	fieldCount, err := varint.ReadUint32(r)
	if err != nil {
		return nil, malformed(err, "failed to read object field count")
	}

	fields := make([]Field, 0, fieldCount)
	for i := uint32(0); i < fieldCount; i++ {
		fieldName, err := varint.ReadString(r)
		if err != nil {
			return nil, malformed(err, "failed to read field name")
		}
		typeByte, err := r.ReadByte()
		if err != nil {
			return nil, malformed(err, "failed to read field type tag")
		}

		f := Field{Name: fieldName, Type: FieldType(typeByte)}
		if f.Type == FieldReference {
			refType, err := varint.ReadString(r)
			if err != nil {
				return nil, malformed(err, "failed to read field reference type")
			}
			f.RefType = refType
		}
		fields = append(fields, f)
	}

	hasPrimaryKey, err := r.ReadByte()
	if err != nil {
		return nil, malformed(err, "failed to read primary-key presence flag")
	}

	var primaryKey []string
	if hasPrimaryKey != 0 {
		pkCount, err := varint.ReadUint32(r)
		if err != nil {
			return nil, malformed(err, "failed to read primary-key path length")
		}
		primaryKey = make([]string, 0, pkCount)
		for i := uint32(0); i < pkCount; i++ {
			segment, err := varint.ReadString(r)
			if err != nil {
				return nil, malformed(err, "failed to read primary-key path segment")
			}
			primaryKey = append(primaryKey, segment)
		}
	}

	return &ObjectSchema{name: name, fields: fields, primaryKeyPath: primaryKey}, nil
}

func readListBody(r byteReaderAt, name string) (*ListSchema, error) {
	elementType, err := varint.ReadString(r)
	if err != nil {
		return nil, malformed(err, "failed to read list element type")
	}
	return &ListSchema{name: name, elementType: elementType}, nil
}

func readSetBody(r byteReaderAt, name string) (*SetSchema, error) {
	elementType, err := varint.ReadString(r)
	if err != nil {
		return nil, malformed(err, "failed to read set element type")
	}
	hashKeys, err := readHashKeyPaths(r)
	if err != nil {
		return nil, err
	}
	return &SetSchema{name: name, elementType: elementType, hashKeyPaths: hashKeys}, nil
}

func readMapBody(r byteReaderAt, name string) (*MapSchema, error) {
	keyType, err := varint.ReadString(r)
	if err != nil {
		return nil, malformed(err, "failed to read map key type")
	}
	valueType, err := varint.ReadString(r)
	if err != nil {
		return nil, malformed(err, "failed to read map value type")
	}
	hashKeys, err := readHashKeyPaths(r)
	if err != nil {
		return nil, err
	}
	return &MapSchema{name: name, keyType: keyType, valueType: valueType, hashKeyPaths: hashKeys}, nil
}

func readHashKeyPaths(r byteReaderAt) ([]string, error) {
	count, err := varint.ReadUint32(r)
	if err != nil {
		return nil, malformed(err, "failed to read hash-key path count")
	}
	paths := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		p, err := varint.ReadString(r)
		if err != nil {
			return nil, malformed(err, "failed to read hash-key path segment")
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Equals reports structural equality between two schemas, used to
// validate that a delta's schema matches the resident snapshot schema for
// the same type name before the delta is applied. Schemas of different
// kinds, or whose concrete types don't match b's after a kind match,
// are never equal.
func Equals(a, b Schema) bool {
	if a.SchemaKind() != b.SchemaKind() {
		return false
	}
	switch av := a.(type) {
	case *ObjectSchema:
		bv, ok := b.(*ObjectSchema)
		return ok && av.Equals(bv)
	case *ListSchema:
		bv, ok := b.(*ListSchema)
		return ok && av.Equals(bv)
	case *SetSchema:
		bv, ok := b.(*SetSchema)
		return ok && av.Equals(bv)
	case *MapSchema:
		bv, ok := b.(*MapSchema)
		return ok && av.Equals(bv)
	default:
		return false
	}
}

// FilterObject projects an ObjectSchema down to only the fields filter
// includes for this type, retaining each kept field's original index
// into the stored schema so population can still walk fields in
// stored-schema order and skip the gaps.
func FilterObject(s *ObjectSchema, f *filter.Config) *FilteredObjectSchema {
	kept := make([]FilteredField, 0, len(s.fields))
	for i, field := range s.fields {
		if f.DoesIncludeField(s.name, field.Name) {
			kept = append(kept, FilteredField{Field: field, StoredIndex: i})
		}
	}
	return &FilteredObjectSchema{ObjectSchema: s, Fields: kept}
}
