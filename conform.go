package shroud

import (
	"fmt"
	"reflect"

	"github.com/zoobzio/sentinel"
)

// Conform checks a schema against the Go struct T backing its records:
// the kind must equal the struct's type name, and every stored field must
// exist on the struct, directly or promoted from an embedded struct.
//
// Conform uses reflection and is meant for startup checks and tests. The
// serialization path itself never reflects over record types.
func Conform[T any](s Schema) error {
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		return fmt.Errorf("%w: kind %s backed by non-struct %s", ErrInvalidSchema, s.Kind, rt)
	}

	meta := sentinel.Scan[T]()
	if Kind(meta.TypeName) != s.Kind {
		return fmt.Errorf("%w: kind %s backed by type %s", ErrInvalidSchema, s.Kind, meta.TypeName)
	}

	names := make(map[string]bool, len(meta.Fields))
	for _, f := range meta.Fields {
		names[f.Name] = true
	}
	// Promoted fields of embedded base structs.
	for _, f := range reflect.VisibleFields(rt) {
		if f.IsExported() && len(f.Index) > 1 {
			names[f.Name] = true
		}
	}

	for _, f := range s.Fields {
		if !f.Settable() {
			continue
		}
		if !names[f.Name] {
			return fmt.Errorf("%w: field %s-%s not found on type %s", ErrInvalidSchema, s.Kind, f.Name, meta.TypeName)
		}
	}
	return nil
}
