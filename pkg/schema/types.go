package schema

import hollowerrors "github.com/iamNilotpal/hollow/pkg/errors"

// ObjectSchema describes a record type: an ordered list of fields and an
// optional primary-key field path.
type ObjectSchema struct {
	name           string
	fields         []Field
	primaryKeyPath []string
}

func (s *ObjectSchema) TypeName() string   { return s.name }
func (s *ObjectSchema) SchemaKind() Kind   { return KindObject }
func (s *ObjectSchema) Fields() []Field    { return s.fields }
func (s *ObjectSchema) NumFields() int     { return len(s.fields) }
func (s *ObjectSchema) HasPrimaryKey() bool { return len(s.primaryKeyPath) > 0 }
func (s *ObjectSchema) PrimaryKeyPath() []string { return s.primaryKeyPath }

// FieldIndex returns the stored index of fieldName, or -1 if absent.
func (s *ObjectSchema) FieldIndex(fieldName string) int {
	for i, f := range s.fields {
		if f.Name == fieldName {
			return i
		}
	}
	return -1
}

// Equals reports structural equality with another object schema: same
// name, same fields in the same order. Used to validate that a delta's
// schema matches the resident snapshot schema for the same type name.
func (s *ObjectSchema) Equals(other *ObjectSchema) bool {
	if other == nil || s.name != other.name || len(s.fields) != len(other.fields) {
		return false
	}
	for i, f := range s.fields {
		o := other.fields[i]
		if f.Name != o.Name || f.Type != o.Type || f.RefType != o.RefType {
			return false
		}
	}
	return true
}

// FilteredField pairs a kept Field with its index in the fully stored
// (unfiltered) schema, needed so population can skip excluded fields
// while still advancing field-by-field in wire order.
type FilteredField struct {
	Field
	StoredIndex int
}

// FilteredObjectSchema is the projection of an ObjectSchema produced by
// FilterObject: only the fields a filter.Config includes, in original
// relative order, each annotated with its stored-schema position.
type FilteredObjectSchema struct {
	*ObjectSchema
	Fields []FilteredField
}

// ListSchema describes an ordered collection type.
type ListSchema struct {
	name        string
	elementType string
}

func (s *ListSchema) TypeName() string    { return s.name }
func (s *ListSchema) SchemaKind() Kind    { return KindList }
func (s *ListSchema) ElementType() string { return s.elementType }

// Equals reports structural equality with another list schema: same
// name, same element type.
func (s *ListSchema) Equals(other *ListSchema) bool {
	return other != nil && s.name == other.name && s.elementType == other.elementType
}

// SetSchema describes an unordered, deduplicated collection type keyed
// by a set of hash-key field paths into its element type.
type SetSchema struct {
	name         string
	elementType  string
	hashKeyPaths []string
}

func (s *SetSchema) TypeName() string      { return s.name }
func (s *SetSchema) SchemaKind() Kind      { return KindSet }
func (s *SetSchema) ElementType() string   { return s.elementType }
func (s *SetSchema) HashKeyPaths() []string { return s.hashKeyPaths }

// Equals reports structural equality with another set schema: same name,
// element type, and hash-key paths in the same order.
func (s *SetSchema) Equals(other *SetSchema) bool {
	if other == nil || s.name != other.name || s.elementType != other.elementType {
		return false
	}
	return stringSlicesEqual(s.hashKeyPaths, other.hashKeyPaths)
}

// MapSchema describes a key/value collection type.
type MapSchema struct {
	name         string
	keyType      string
	valueType    string
	hashKeyPaths []string
}

func (s *MapSchema) TypeName() string       { return s.name }
func (s *MapSchema) SchemaKind() Kind       { return KindMap }
func (s *MapSchema) KeyType() string        { return s.keyType }
func (s *MapSchema) ValueType() string      { return s.valueType }
func (s *MapSchema) HashKeyPaths() []string { return s.hashKeyPaths }

// Equals reports structural equality with another map schema: same name,
// key/value types, and hash-key paths in the same order.
func (s *MapSchema) Equals(other *MapSchema) bool {
	if other == nil || s.name != other.name || s.keyType != other.keyType || s.valueType != other.valueType {
		return false
	}
	return stringSlicesEqual(s.hashKeyPaths, other.hashKeyPaths)
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if b[i] != v {
			return false
		}
	}
	return true
}

func malformed(cause error, msg string) *hollowerrors.BlobError {
	return hollowerrors.NewMalformedBlobError(cause, msg)
}
