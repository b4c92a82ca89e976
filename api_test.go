package shroud_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/shroud"
	"github.com/zoobzio/shroud/datum"
	"github.com/zoobzio/shroud/json"
)

func newProcessor(t *testing.T) *shroud.Processor {
	t.Helper()
	session, err := shroud.NewSession(shroud.WithSessionID("study-1"), shroud.WithSecret([]byte("api test secret")))
	if err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}
	proc, err := shroud.NewProcessor(json.New(), datum.Catalog(), shroud.WithSession(session))
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}
	return proc
}

func TestAPI_StoreNearestCity(t *testing.T) {
	proc := newProcessor(t)
	ref := shroud.Ref(datum.KindGps, "Location")

	if err := proc.SelectByName(ref, shroud.NameRoundToNearestCity); err != nil {
		t.Fatalf("SelectByName() error: %v", err)
	}

	gps := &datum.GpsDatum{Location: shroud.Coordinate{Lat: 38.03, Lon: -78.48}}
	gps.Id = "fix-1"

	data, err := proc.Store(context.Background(), gps)
	if err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	doc, err := proc.Document(context.Background(), &datum.GpsDatum{Location: gps.Location})
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}
	if v, _ := doc.Get("Location"); v != "Charlottesville, VA" {
		t.Errorf("Location = %v, want Charlottesville, VA", v)
	}
	if !gps.Transformed() {
		t.Error("record should be marked")
	}
	if len(data) == 0 {
		t.Error("Store() returned no data")
	}
}

func TestAPI_SelectionSurface(t *testing.T) {
	proc := newProcessor(t)
	ref := shroud.Ref(datum.KindAccelerometer, "X")

	opts, err := proc.Options(ref)
	if err != nil {
		t.Fatalf("Options() error: %v", err)
	}
	if opts[0] != shroud.NoneOption || len(opts) != 3 {
		t.Errorf("Options() = %v", opts)
	}

	if err := proc.Select(ref, 1); err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if idx, _ := proc.CurrentIndex(ref); idx != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", idx)
	}

	// Sibling kinds sharing the base field keep independent assignments.
	if err := proc.SelectByName(shroud.Ref(datum.KindGps, "DeviceId"), shroud.NameMaskUUID); err != nil {
		t.Fatalf("SelectByName() error: %v", err)
	}
	if proc.Registry().Has(shroud.Ref(datum.KindBattery, "DeviceId")) {
		t.Error("assignment leaked to a sibling kind")
	}

	if err := proc.Select(shroud.Ref(datum.KindAccelerometer, "Magnitude"), 0); !errors.Is(err, shroud.ErrNotSettable) {
		t.Errorf("Select(Magnitude) error = %v, want ErrNotSettable", err)
	}
}

func TestAPI_RoundTripMarker(t *testing.T) {
	proc := newProcessor(t)
	_ = proc.SelectByName(shroud.Ref(datum.KindBattery, "Level"), shroud.NameRoundTens)
	_ = proc.SelectByName(shroud.Ref(datum.KindBattery, "Timestamp"), shroud.NameTimeOffset)

	ts := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	in := &datum.BatteryDatum{Level: 87}
	in.Timestamp = ts

	first, err := proc.Store(context.Background(), in)
	if err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	rec, err := proc.Load(context.Background(), first)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	out, ok := rec.(*datum.BatteryDatum)
	if !ok {
		t.Fatalf("Load() = %T", rec)
	}
	if out.Level != 90 {
		t.Errorf("Level = %v, want 90", out.Level)
	}
	if out.Timestamp.Equal(ts) {
		t.Error("Timestamp should be shifted")
	}
	if !out.Transformed() {
		t.Error("loaded record should be marked")
	}

	second, err := proc.Store(context.Background(), out)
	if err != nil {
		t.Fatalf("second Store() error: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("re-store changed payload:\n%s\n%s", first, second)
	}
}

func TestAPI_PersistAndMigrate(t *testing.T) {
	proc := newProcessor(t)
	cat := proc.Catalog()
	_ = proc.SelectByName(shroud.Ref(datum.KindGps, "Location"), shroud.NameRoundHundredths)

	data, err := shroud.MarshalState(json.New(), proc.Registry())
	if err != nil {
		t.Fatalf("MarshalState() error: %v", err)
	}

	reg, diags, err := shroud.UnmarshalState(context.Background(), json.New(), cat, data)
	if err != nil || len(diags) != 0 {
		t.Fatalf("UnmarshalState() = %v, %v", diags, err)
	}

	n, diags := shroud.MigrateLegacy(context.Background(), cat, reg, []string{
		"GpsDatum-Location:RoundToNearestCity",
		"Datum-DeviceId:Sha256Hash",
		"ScriptDatum-Response:Unknown",
	})
	if len(diags) != 1 {
		t.Errorf("diagnostics = %v, want 1", diags)
	}
	// DeviceId fans out to all four kinds; Location is already set.
	if n != 4 {
		t.Errorf("MigrateLegacy() = %d, want 4", n)
	}
	if got := reg.Lookup(shroud.Ref(datum.KindGps, "Location")); got.Name() != shroud.NameRoundHundredths {
		t.Errorf("Location = %s, migration must not overwrite", got.Name())
	}
}
