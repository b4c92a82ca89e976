package shroud

import (
	"context"
	"strings"
)

// ParseLegacy converts entries of the legacy string encoding into
// assignments. Each entry has the form
//
//	Kind-Field[:TransformName]
//
// where a missing TransformName means none. Kind and TransformName may carry
// a dotted namespace prefix, which is ignored when the full name does not
// resolve. A Kind that names a shared base resolves to every registered kind
// inheriting that field.
//
// ParseLegacy does not touch any registry. Malformed entries are returned as
// *LegacyError values, one per entry, and parsing continues past them.
func ParseLegacy(cat *Catalog, entries []string) ([]Assignment, []error) {
	var (
		out   []Assignment
		diags []error
	)

	for _, entry := range entries {
		assignments, err := parseLegacyEntry(cat, entry)
		if err != nil {
			diags = append(diags, err)
			continue
		}
		out = append(out, assignments...)
	}
	return out, diags
}

func parseLegacyEntry(cat *Catalog, entry string) ([]Assignment, error) {
	target, transformName, _ := strings.Cut(strings.TrimSpace(entry), ":")

	parsed, err := ParseRef(target)
	if err != nil {
		return nil, &LegacyError{Entry: entry, Reason: "expected Kind-Field"}
	}

	refs, err := resolveLegacyRefs(cat, entry, string(parsed.Kind), parsed.Field)
	if err != nil {
		return nil, err
	}

	out := make([]Assignment, 0, len(refs))
	for _, ref := range refs {
		if transformName == "" {
			out = append(out, Assignment{Ref: ref})
			continue
		}
		t, ok := resolveLegacyTransform(cat, ref, transformName)
		if !ok {
			return nil, &LegacyError{Entry: entry, Reason: "unknown transform " + transformName + " for " + ref.String()}
		}
		out = append(out, Assignment{Ref: ref, Transform: t})
	}
	return out, nil
}

// resolveLegacyRefs maps a legacy kind/field pair onto canonical refs.
func resolveLegacyRefs(cat *Catalog, entry, kindName, field string) ([]FieldRef, error) {
	for _, candidate := range namespaceCandidates(kindName) {
		kind := Kind(candidate)
		if _, ok := cat.Schema(kind); ok {
			ref, err := cat.Canonical(kind, field)
			if err != nil {
				return nil, &LegacyError{Entry: entry, Reason: "unknown field " + field + " on " + candidate}
			}
			return []FieldRef{ref}, nil
		}
		if cat.IsBase(kind) {
			refs := cat.DerivedRefs(kind, field)
			if len(refs) == 0 {
				return nil, &LegacyError{Entry: entry, Reason: "unknown field " + field + " on " + candidate}
			}
			return refs, nil
		}
	}
	return nil, &LegacyError{Entry: entry, Reason: "unknown kind " + kindName}
}

func resolveLegacyTransform(cat *Catalog, ref FieldRef, name string) (Transform, bool) {
	for _, candidate := range namespaceCandidates(name) {
		if t, ok := cat.Resolve(ref, candidate); ok {
			return t, true
		}
	}
	return nil, false
}

// namespaceCandidates returns name and, if dotted, its last segment.
func namespaceCandidates(name string) []string {
	if i := strings.LastIndex(name, "."); i >= 0 && i < len(name)-1 {
		return []string{name, name[i+1:]}
	}
	return []string{name}
}

// MigrateLegacy folds legacy entries into reg. An entry is applied only
// when reg has no assignment for its ref, so running the migration again,
// or after the user has changed assignments, never overwrites anything.
// Returns the number of assignments inserted and one diagnostic per
// rejected entry.
func MigrateLegacy(ctx context.Context, cat *Catalog, reg *Registry, entries []string) (int, []error) {
	assignments, diags := ParseLegacy(cat, entries)
	for _, d := range diags {
		entry := ""
		if le, ok := d.(*LegacyError); ok {
			entry = le.Entry
		}
		emitMigrateEntry(ctx, entry, d)
	}

	applied := reg.Merge(assignments)
	emitMigrateComplete(ctx, applied, len(diags))
	return applied, diags
}
