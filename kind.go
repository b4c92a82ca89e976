package shroud

import (
	"fmt"
	"strings"
)

// Kind names a concrete record type, e.g. "GpsDatum".
type Kind string

// String returns the kind name.
func (k Kind) String() string { return string(k) }

// FieldRef identifies one field of one record kind.
//
// Refs stored in a Registry are canonical: Kind is always the most-derived
// kind of the record being processed, never the base kind that declared the
// field. Use Catalog.Canonical to obtain one.
type FieldRef struct {
	Kind  Kind
	Field string
}

// Ref is shorthand for FieldRef{Kind: kind, Field: field}.
func Ref(kind Kind, field string) FieldRef {
	return FieldRef{Kind: kind, Field: field}
}

// String returns the "Kind-Field" form used in diagnostics and the legacy encoding.
func (r FieldRef) String() string {
	return string(r.Kind) + "-" + r.Field
}

// ParseRef parses the "Kind-Field" form. The kind is everything before the
// last '-', so namespaced kinds such as "Probes.GpsDatum" parse intact.
func ParseRef(s string) (FieldRef, error) {
	sep := strings.LastIndex(s, "-")
	if sep <= 0 || sep == len(s)-1 {
		return FieldRef{}, fmt.Errorf("invalid field reference %q: expected Kind-Field", s)
	}
	return Ref(Kind(s[:sep]), s[sep+1:]), nil
}
