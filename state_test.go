package shroud

import (
	"context"
	"errors"
	"testing"
)

func TestSaveState(t *testing.T) {
	reg := NewRegistry()
	reg.Assign(Ref(kindGps, "Location"), RoundTenths())
	reg.Assign(Ref(kindAccel, "X"), RoundOnes())

	st := SaveState(reg)
	if st.Version != StateVersion {
		t.Errorf("Version = %d, want %d", st.Version, StateVersion)
	}
	want := []StateEntry{
		{Kind: "AccelDatum", Field: "X", Transform: NameRoundOnes},
		{Kind: "GpsDatum", Field: "Location", Transform: NameRoundTenths},
	}
	if len(st.Assignments) != len(want) {
		t.Fatalf("Assignments = %v", st.Assignments)
	}
	for i := range want {
		if st.Assignments[i] != want[i] {
			t.Errorf("Assignments[%d] = %+v, want %+v", i, st.Assignments[i], want[i])
		}
	}
	if len(st.Legacy) != 0 {
		t.Error("SaveState() must not write legacy entries")
	}
}

func TestSaveState_ExplicitNone(t *testing.T) {
	reg := NewRegistry()
	reg.Assign(Ref(kindGps, "Location"), nil)
	reg.Assign(Ref(kindGps, "Label"), MaskName())

	st := SaveState(reg)
	want := []StateEntry{
		{Kind: "GpsDatum", Field: "Label", Transform: NameMaskName},
		{Kind: "GpsDatum", Field: "Location"},
	}
	if len(st.Assignments) != len(want) {
		t.Fatalf("Assignments = %v", st.Assignments)
	}
	for i := range want {
		if st.Assignments[i] != want[i] {
			t.Errorf("Assignments[%d] = %+v, want %+v", i, st.Assignments[i], want[i])
		}
	}
}

func TestRestoreState_ExplicitNoneBlocksLegacy(t *testing.T) {
	cat := testCatalog(t)
	st := State{
		Version: StateVersion,
		Assignments: []StateEntry{
			{Kind: "GpsDatum", Field: "Location"},
		},
		Legacy: []string{"GpsDatum-Location:RoundToNearestCity"},
	}

	reg, diags := RestoreState(context.Background(), cat, st)
	if len(diags) != 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	ref := Ref(kindGps, "Location")
	if !reg.Decided(ref) {
		t.Error("empty transform should restore as an explicit none")
	}
	if got := reg.Lookup(ref); got != nil {
		t.Errorf("Lookup() = %s, legacy entry must not override a stored none", got.Name())
	}
}

func TestRestoreState(t *testing.T) {
	cat := testCatalog(t)
	st := State{
		Version: StateVersion,
		Assignments: []StateEntry{
			{Kind: "GpsDatum", Field: "Location", Transform: NameRoundTenths},
			{Kind: "GpsDatum", Field: "Label"},
		},
	}

	reg, diags := RestoreState(context.Background(), cat, st)
	if len(diags) != 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
	if !reg.Decided(Ref(kindGps, "Label")) {
		t.Error("Label should restore as an explicit none")
	}
	if got := reg.Lookup(Ref(kindGps, "Location")); got == nil || got.Name() != NameRoundTenths {
		t.Errorf("Lookup() = %v", got)
	}
}

func TestRestoreState_MissingTransform(t *testing.T) {
	cat := testCatalog(t)
	st := State{
		Version: StateVersion,
		Assignments: []StateEntry{
			{Kind: "GpsDatum", Field: "Location", Transform: "Removed"},
			{Kind: "GpsDatum", Field: "Gone", Transform: NameRoundTenths},
			{Kind: "GpsDatum", Field: "Label", Transform: NameMaskName},
		},
	}

	reg, diags := RestoreState(context.Background(), cat, st)
	if len(diags) != 2 {
		t.Fatalf("diagnostics = %v, want 2", diags)
	}
	if !errors.Is(diags[0], ErrMissingTransform) {
		t.Errorf("diags[0] = %v, want ErrMissingTransform", diags[0])
	}
	if !errors.Is(diags[1], ErrUnknownField) {
		t.Errorf("diags[1] = %v, want ErrUnknownField", diags[1])
	}
	if reg.Has(Ref(kindGps, "Location")) {
		t.Error("unresolvable transform should restore as none")
	}
	if !reg.Has(Ref(kindGps, "Label")) {
		t.Error("valid entries should still restore")
	}
}

func TestRestoreState_LegacyDoesNotOverride(t *testing.T) {
	cat := testCatalog(t)
	st := State{
		Assignments: []StateEntry{
			{Kind: "GpsDatum", Field: "Location", Transform: NameRoundTenths},
		},
		Legacy: []string{
			"GpsDatum-Location:RoundToNearestCity",
			"GpsDatum-Label:MaskName",
		},
	}

	reg, diags := RestoreState(context.Background(), cat, st)
	if len(diags) != 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	if got := reg.Lookup(Ref(kindGps, "Location")); got.Name() != NameRoundTenths {
		t.Errorf("Location = %s, structured entry should win", got.Name())
	}
	if got := reg.Lookup(Ref(kindGps, "Label")); got == nil || got.Name() != NameMaskName {
		t.Errorf("Label = %v, want migrated MaskName", got)
	}
}

func TestMarshalState_RoundTrip(t *testing.T) {
	cat := testCatalog(t)
	codec := &testCodec{}

	reg := NewRegistry()
	reg.Assign(Ref(kindGps, "Location"), RoundToNearestCity())
	reg.Assign(Ref(kindAccel, "DeviceId"), MaskUUID())

	data, err := MarshalState(codec, reg)
	if err != nil {
		t.Fatalf("MarshalState() error: %v", err)
	}

	restored, diags, err := UnmarshalState(context.Background(), codec, cat, data)
	if err != nil {
		t.Fatalf("UnmarshalState() error: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	if got, want := SaveState(restored), SaveState(reg); len(got.Assignments) != len(want.Assignments) ||
		got.Assignments[0] != want.Assignments[0] || got.Assignments[1] != want.Assignments[1] {
		t.Errorf("restored = %+v, want %+v", got, want)
	}
}

func TestUnmarshalState_LegacyOnly(t *testing.T) {
	cat := testCatalog(t)

	reg, diags, err := UnmarshalState(context.Background(), &testCodec{}, cat,
		[]byte(`{"version":1,"legacy":["GpsDatum-Label:MaskName","Bogus"]}`))
	if err != nil {
		t.Fatalf("UnmarshalState() error: %v", err)
	}
	if len(diags) != 1 {
		t.Errorf("diagnostics = %v, want 1", diags)
	}
	if !reg.Has(Ref(kindGps, "Label")) {
		t.Error("legacy entry should be migrated")
	}
}

func TestUnmarshalState_Invalid(t *testing.T) {
	_, _, err := UnmarshalState(context.Background(), &testCodec{}, testCatalog(t), []byte("{"))
	if !errors.Is(err, ErrUnmarshal) {
		t.Errorf("UnmarshalState() error = %v, want ErrUnmarshal", err)
	}
}
