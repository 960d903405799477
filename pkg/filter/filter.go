// Package filter implements the declarative include/exclude tree that
// schema and type-state population consult to decide which types and
// object fields to populate versus skip during a blob read.
package filter

// Config is a declarative include/exclude tree over type names and, for
// object types, their field names. A Config with no explicit entries
// includes everything, matching the "default all-include" posture.
type Config struct {
	defaultInclude bool

	// typeOverrides records an explicit true/false decision for a type
	// name, overriding defaultInclude.
	typeOverrides map[string]bool

	// fieldOverrides records, per type name, explicit true/false
	// decisions for individual field names, overriding the type's own
	// default (true unless the type itself is excluded).
	fieldOverrides map[string]map[string]bool
}

// New returns a Config whose default is to include every type and field
// not otherwise mentioned. This is the filter every engine uses unless
// the embedder supplies a narrower one.
func New() *Config {
	return &Config{
		defaultInclude: true,
		typeOverrides:  make(map[string]bool),
		fieldOverrides: make(map[string]map[string]bool),
	}
}

// ExcludeType marks typeName as entirely excluded: discardSnapshot and
// discardDelta are used for it instead of construction.
func (c *Config) ExcludeType(typeName string) *Config {
	c.typeOverrides[typeName] = false
	return c
}

// IncludeType marks typeName as explicitly included, overriding a
// defaultInclude of false.
func (c *Config) IncludeType(typeName string) *Config {
	c.typeOverrides[typeName] = true
	return c
}

// ExcludeField marks a single field of an object type as excluded: its
// wire data is read and dropped rather than wired into the type state.
func (c *Config) ExcludeField(typeName, fieldName string) *Config {
	fields, ok := c.fieldOverrides[typeName]
	if !ok {
		fields = make(map[string]bool)
		c.fieldOverrides[typeName] = fields
	}
	fields[fieldName] = false
	return c
}

// IncludeField marks a single field of an object type as explicitly
// included, overriding a defaultInclude of false.
func (c *Config) IncludeField(typeName, fieldName string) *Config {
	fields, ok := c.fieldOverrides[typeName]
	if !ok {
		fields = make(map[string]bool)
		c.fieldOverrides[typeName] = fields
	}
	fields[fieldName] = true
	return c
}

// DoesIncludeType reports whether typeName should be fully populated
// (true) or discarded (false).
func (c *Config) DoesIncludeType(typeName string) bool {
	if v, ok := c.typeOverrides[typeName]; ok {
		return v
	}
	return c.defaultInclude
}

// DoesIncludeField reports whether fieldName of typeName should be wired
// into the type's read state. A field of an excluded type is always
// excluded regardless of field-level overrides.
func (c *Config) DoesIncludeField(typeName, fieldName string) bool {
	if !c.DoesIncludeType(typeName) {
		return false
	}
	if fields, ok := c.fieldOverrides[typeName]; ok {
		if v, ok := fields[fieldName]; ok {
			return v
		}
	}
	return c.defaultInclude
}
