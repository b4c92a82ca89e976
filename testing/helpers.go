// Package testing provides test utilities for shroud.
package testing

import (
	"testing"
	"time"

	"github.com/zoobzio/shroud"
	"github.com/zoobzio/shroud/datum"
)

// TestSecret returns a fixed 32-byte session secret for testing.
func TestSecret() []byte {
	return []byte("32-byte-secret-for-test-sessions")
}

// TestSession returns a session with a fixed id and secret, so keyed
// hashes and offsets are reproducible across runs.
func TestSession(t testing.TB) *shroud.Session {
	t.Helper()
	s, err := shroud.NewSession(shroud.WithSessionID("test-session"), shroud.WithSecret(TestSecret()))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

// TestProcessor returns a processor over the standard datum catalog.
func TestProcessor(t testing.TB, c shroud.Codec) *shroud.Processor {
	t.Helper()
	p, err := shroud.NewProcessor(c, datum.Catalog(), shroud.WithSession(TestSession(t)))
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	return p
}

// Assign selects transforms by name, failing the test on any error.
// Pairs are (ref, transform name).
func Assign(t testing.TB, p *shroud.Processor, pairs map[shroud.FieldRef]string) {
	t.Helper()
	for ref, name := range pairs {
		if err := p.SelectByName(ref, name); err != nil {
			t.Fatalf("SelectByName(%s, %s): %v", ref, name, err)
		}
	}
}

// SampleTime is the fixed timestamp of the sample records.
var SampleTime = time.Date(2024, 4, 15, 14, 30, 0, 0, time.UTC)

// SampleGps returns a GPS fix near Charlottesville, VA.
func SampleGps() *datum.GpsDatum {
	d := &datum.GpsDatum{
		Location: shroud.Coordinate{Lat: 38.0336, Lon: -78.5080},
		Accuracy: 12.4,
		Altitude: 183.7,
	}
	d.Id = "gps-1"
	d.DeviceId = "550e8400-e29b-41d4-a716-446655440000"
	d.Timestamp = SampleTime
	return d
}

// SampleAccelerometer returns an accelerometer sample at rest.
func SampleAccelerometer() *datum.AccelerometerDatum {
	d := &datum.AccelerometerDatum{X: 0.12, Y: -0.31, Z: 9.79}
	d.Id = "acc-1"
	d.DeviceId = "550e8400-e29b-41d4-a716-446655440000"
	d.Timestamp = SampleTime
	return d
}

// SampleScript returns a survey response.
func SampleScript() *datum.ScriptDatum {
	d := &datum.ScriptDatum{
		ScriptId: "daily-mood",
		RunId:    "run-42",
		Response: "Jane Roe",
	}
	d.Id = "script-1"
	d.DeviceId = "550e8400-e29b-41d4-a716-446655440000"
	d.Timestamp = SampleTime
	return d
}
