package shroud

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Reserved document keys.
const (
	// KindKey carries the record kind in every emitted document.
	KindKey = "$kind"

	// MarkerField carries the idempotence marker in every emitted document.
	MarkerField = "Transformed"
)

// FieldDecl declares one field of a record kind: how to read and write it,
// and which transforms are available for it. Build with Field or Computed.
type FieldDecl struct {
	// Name is the field name and its key in the emitted document.
	Name string

	// DisplayName is an optional human-readable label for selection UIs.
	DisplayName string

	// DeclaredBy names the base kind that declares the field, when the
	// field is shared across kinds. Empty means the schema kind itself.
	DeclaredBy Kind

	// Transforms lists the selectable transforms in display order.
	// "None" is implicit and never listed.
	Transforms []Transform

	get    func(Record) any
	set    func(Record, any) error
	decode func(Codec, any) (any, error)
}

// Field declares a stored field of records of type R holding values of type V.
// R may be a concrete record type or an interface shared by several kinds.
func Field[R Record, V any](name string, get func(R) V, set func(R, V), transforms ...Transform) FieldDecl {
	d := FieldDecl{
		Name:       name,
		Transforms: transforms,
		get: func(r Record) any {
			return get(r.(R))
		},
		decode: func(c Codec, raw any) (any, error) {
			var box struct {
				V V `json:"v" yaml:"v" msgpack:"v" bson:"v"`
			}
			data, err := c.Marshal(map[string]any{"v": raw})
			if err != nil {
				return nil, err
			}
			if err := c.Unmarshal(data, &box); err != nil {
				return nil, err
			}
			return box.V, nil
		},
	}
	if set != nil {
		d.set = func(r Record, v any) error {
			val, ok := v.(V)
			if !ok {
				return fmt.Errorf("%w: field %s wants %T, got %T", ErrUnsupportedValue, name, *new(V), v)
			}
			set(r.(R), val)
			return nil
		}
	}
	return d
}

// Computed declares a read-only field derived from other state. Computed
// fields are never emitted and never transformed.
func Computed[R Record, V any](name string, get func(R) V) FieldDecl {
	return Field[R, V](name, get, nil)
}

// Display returns a copy of d with a display name.
func (d FieldDecl) Display(name string) FieldDecl {
	d.DisplayName = name
	return d
}

// DeclaredIn returns a copy of d marked as declared by a base kind.
func (d FieldDecl) DeclaredIn(kind Kind) FieldDecl {
	d.DeclaredBy = kind
	return d
}

// Settable reports whether the field has a setter. Only settable fields
// take part in interception.
func (d FieldDecl) Settable() bool {
	return d.set != nil
}

// Label returns the display name, falling back to the field name.
func (d FieldDecl) Label() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

// Schema is the static definition of one record kind.
type Schema struct {
	Kind   Kind
	New    func() Record
	Fields []FieldDecl
}

type schemaEntry struct {
	schema Schema
	byName map[string]int
}

// Catalog holds the static, per-kind field declarations.
//
// Schemas are registered once at startup. Catalogs are safe for concurrent
// use; lookups after registration take only a read lock.
type Catalog struct {
	mu      sync.RWMutex
	schemas map[Kind]*schemaEntry

	// canonical caches field name -> FieldRef per kind, built on first use.
	canonMu   sync.RWMutex
	canonical map[Kind]map[string]FieldRef
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		schemas:   make(map[Kind]*schemaEntry),
		canonical: make(map[Kind]map[string]FieldRef),
	}
}

// Register adds a schema. It fails with ErrInvalidSchema when the schema is
// malformed or its kind is already registered.
func (c *Catalog) Register(s Schema) error {
	if s.Kind == "" {
		return fmt.Errorf("%w: empty kind", ErrInvalidSchema)
	}
	if s.New == nil {
		return fmt.Errorf("%w: kind %s has no constructor", ErrInvalidSchema, s.Kind)
	}

	byName := make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		switch {
		case f.Name == "":
			return fmt.Errorf("%w: kind %s field %d has no name", ErrInvalidSchema, s.Kind, i)
		case f.Name == MarkerField || f.Name == KindKey:
			return fmt.Errorf("%w: kind %s field %s uses a reserved name", ErrInvalidSchema, s.Kind, f.Name)
		case f.get == nil:
			return fmt.Errorf("%w: kind %s field %s has no getter", ErrInvalidSchema, s.Kind, f.Name)
		}
		if _, dup := byName[f.Name]; dup {
			return fmt.Errorf("%w: kind %s declares field %s twice", ErrInvalidSchema, s.Kind, f.Name)
		}
		if !f.Settable() && len(f.Transforms) > 0 {
			return fmt.Errorf("%w: computed field %s-%s declares transforms", ErrInvalidSchema, s.Kind, f.Name)
		}
		names := lo.Map(f.Transforms, func(t Transform, _ int) string { return t.Name() })
		if dups := lo.FindDuplicates(names); len(dups) > 0 {
			return fmt.Errorf("%w: field %s-%s declares transform %s twice", ErrInvalidSchema, s.Kind, f.Name, dups[0])
		}
		byName[f.Name] = i
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.schemas[s.Kind]; exists {
		return fmt.Errorf("%w: kind %s already registered", ErrInvalidSchema, s.Kind)
	}
	c.schemas[s.Kind] = &schemaEntry{schema: s, byName: byName}
	return nil
}

// MustRegister is Register that panics on error, for static tables.
func (c *Catalog) MustRegister(schemas ...Schema) *Catalog {
	for _, s := range schemas {
		if err := c.Register(s); err != nil {
			panic(err)
		}
	}
	return c
}

// Kinds returns the registered kinds in sorted order.
func (c *Catalog) Kinds() []Kind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	kinds := lo.Keys(c.schemas)
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Schema returns the schema for kind.
func (c *Catalog) Schema(kind Kind) (Schema, bool) {
	e, ok := c.entry(kind)
	if !ok {
		return Schema{}, false
	}
	return e.schema, true
}

func (c *Catalog) entry(kind Kind) (*schemaEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.schemas[kind]
	return e, ok
}

// Field returns the declaration behind ref.
func (c *Catalog) Field(ref FieldRef) (FieldDecl, error) {
	e, ok := c.entry(ref.Kind)
	if !ok {
		return FieldDecl{}, newConfigError(ErrUnknownKind, "", ref.String())
	}
	i, ok := e.byName[ref.Field]
	if !ok {
		return FieldDecl{}, newConfigError(ErrUnknownField, "", ref.String())
	}
	return e.schema.Fields[i], nil
}

// Canonical returns the registry key for field on records of kind. The
// result always names kind itself, even for fields declared by a shared
// base, so sibling kinds carry independent assignments.
func (c *Catalog) Canonical(kind Kind, field string) (FieldRef, error) {
	idx, err := c.canonicalIndex(kind)
	if err != nil {
		return FieldRef{}, err
	}
	ref, ok := idx[field]
	if !ok {
		return FieldRef{}, newConfigError(ErrUnknownField, "", Ref(kind, field).String())
	}
	return ref, nil
}

// canonicalIndex returns the cached name -> ref map for kind, building it
// on first use.
func (c *Catalog) canonicalIndex(kind Kind) (map[string]FieldRef, error) {
	c.canonMu.RLock()
	if idx, ok := c.canonical[kind]; ok {
		c.canonMu.RUnlock()
		return idx, nil
	}
	c.canonMu.RUnlock()

	e, ok := c.entry(kind)
	if !ok {
		return nil, newConfigError(ErrUnknownKind, "", string(kind))
	}

	c.canonMu.Lock()
	defer c.canonMu.Unlock()

	if idx, ok := c.canonical[kind]; ok {
		return idx, nil
	}

	idx := make(map[string]FieldRef, len(e.schema.Fields))
	for _, f := range e.schema.Fields {
		if !f.Settable() {
			continue
		}
		idx[f.Name] = Ref(kind, f.Name)
	}
	c.canonical[kind] = idx
	return idx, nil
}

// DerivedRefs returns the canonical refs of every registered kind whose
// field named field is declared by base. The result is sorted by kind.
func (c *Catalog) DerivedRefs(base Kind, field string) []FieldRef {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var refs []FieldRef
	for kind, e := range c.schemas {
		i, ok := e.byName[field]
		if !ok {
			continue
		}
		f := e.schema.Fields[i]
		if f.DeclaredBy == base && f.Settable() {
			refs = append(refs, Ref(kind, field))
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Kind < refs[j].Kind })
	return refs
}

// Declared returns the transforms selectable for ref, in declaration order.
func (c *Catalog) Declared(ref FieldRef) ([]Transform, error) {
	f, err := c.Field(ref)
	if err != nil {
		return nil, err
	}
	return f.Transforms, nil
}

// Resolve finds the declared transform named name on ref.
func (c *Catalog) Resolve(ref FieldRef, name string) (Transform, bool) {
	f, err := c.Field(ref)
	if err != nil {
		return nil, false
	}
	return lo.Find(f.Transforms, func(t Transform) bool { return t.Name() == name })
}

// IsBase reports whether kind is named as the declaring kind of a field in
// any registered schema.
func (c *Catalog) IsBase(kind Kind) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.schemas {
		for _, f := range e.schema.Fields {
			if f.DeclaredBy == kind {
				return true
			}
		}
	}
	return false
}
