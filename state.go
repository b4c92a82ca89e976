package shroud

import (
	"context"
)

// StateVersion is the current persisted state layout.
const StateVersion = 2

// State is the persisted form of a Registry.
//
// Assignments is the structured layout. Legacy holds entries of the older
// "Kind-Field:TransformName" string encoding; it is read once on restore
// and never written back.
type State struct {
	Version     int          `json:"version" yaml:"version" msgpack:"version" bson:"version"`
	Assignments []StateEntry `json:"assignments,omitempty" yaml:"assignments,omitempty" msgpack:"assignments,omitempty" bson:"assignments,omitempty"`
	Legacy      []string     `json:"legacy,omitempty" yaml:"legacy,omitempty" msgpack:"legacy,omitempty" bson:"legacy,omitempty"`
}

// StateEntry is one persisted (kind, field, transform) triple. An empty
// Transform means none.
type StateEntry struct {
	Kind      string `json:"kind" yaml:"kind" msgpack:"kind" bson:"kind"`
	Field     string `json:"field" yaml:"field" msgpack:"field" bson:"field"`
	Transform string `json:"transform,omitempty" yaml:"transform,omitempty" msgpack:"transform,omitempty" bson:"transform,omitempty"`
}

// SaveState captures reg in the current layout. Explicit none choices are
// written as entries with an empty Transform.
func SaveState(reg *Registry) State {
	snap := reg.Choices()
	st := State{
		Version:     StateVersion,
		Assignments: make([]StateEntry, 0, len(snap)),
	}
	for _, a := range snap {
		st.Assignments = append(st.Assignments, StateEntry{
			Kind:      string(a.Ref.Kind),
			Field:     a.Ref.Field,
			Transform: transformName(a.Transform),
		})
	}
	return st
}

// RestoreState rebuilds a Registry from st, resolving transform names
// against cat. Entries with no transform restore as explicit none. Entries
// that no longer resolve are also treated as explicit none and reported as
// diagnostics. Legacy entries are migrated afterwards and never override
// structured ones.
func RestoreState(ctx context.Context, cat *Catalog, st State) (*Registry, []error) {
	reg := NewRegistry()
	var diags []error

	restored := make([]Assignment, 0, len(st.Assignments))
	for _, e := range st.Assignments {
		ref, err := cat.Canonical(Kind(e.Kind), e.Field)
		if err != nil {
			diags = append(diags, err)
			continue
		}
		if e.Transform == "" {
			restored = append(restored, Assignment{Ref: ref})
			continue
		}
		t, ok := cat.Resolve(ref, e.Transform)
		if !ok {
			emitTransformMissing(ctx, ref, e.Transform)
			diags = append(diags, newConfigError(ErrMissingTransform, e.Transform, ref.String()))
			restored = append(restored, Assignment{Ref: ref})
			continue
		}
		restored = append(restored, Assignment{Ref: ref, Transform: t})
	}
	reg.restore(restored)

	if len(st.Legacy) > 0 {
		_, legacyDiags := MigrateLegacy(ctx, cat, reg, st.Legacy)
		diags = append(diags, legacyDiags...)
	}
	return reg, diags
}

// MarshalState encodes the state of reg with c.
func MarshalState(c Codec, reg *Registry) ([]byte, error) {
	data, err := c.Marshal(SaveState(reg))
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return data, nil
}

// UnmarshalState decodes state written by MarshalState, or by older
// versions carrying only legacy entries, and restores it against cat.
// The error result covers undecodable input only; per-entry problems are
// returned as diagnostics.
func UnmarshalState(ctx context.Context, c Codec, cat *Catalog, data []byte) (*Registry, []error, error) {
	var st State
	if err := c.Unmarshal(data, &st); err != nil {
		return nil, nil, newCodecError(ErrUnmarshal, err)
	}
	reg, diags := RestoreState(ctx, cat, st)
	return reg, diags, nil
}
