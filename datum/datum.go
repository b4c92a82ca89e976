// Package datum defines the standard sensed-data record kinds and their
// anonymization catalog.
package datum

import (
	"math"
	"time"

	"github.com/zoobzio/shroud"
)

// Kinds of the standard records.
const (
	KindDatum         shroud.Kind = "Datum"
	KindGps           shroud.Kind = "GpsDatum"
	KindAccelerometer shroud.Kind = "AccelerometerDatum"
	KindBattery       shroud.Kind = "BatteryDatum"
	KindScript        shroud.Kind = "ScriptDatum"
)

// TimestampOffsetLimit bounds the session shift applied by TimeOffset.
const TimestampOffsetLimit = 365 * 24 * time.Hour

// Datum holds the fields shared by every record kind. It is embedded, never
// serialized on its own.
type Datum struct {
	shroud.Marker
	Id        string
	DeviceId  string
	Timestamp time.Time
}

// Base returns the shared part of a record.
func (d *Datum) Base() *Datum { return d }

// Age is how long ago the datum was sensed. It is derived, not stored.
func (d *Datum) Age() time.Duration {
	if d.Timestamp.IsZero() {
		return 0
	}
	return time.Since(d.Timestamp)
}

// Based is implemented by every record embedding Datum.
type Based interface {
	shroud.Record
	Base() *Datum
}

// baseFields declares the Datum fields. Each kind registers its own copy,
// so assignments made for one kind never leak into a sibling.
func baseFields() []shroud.FieldDecl {
	return []shroud.FieldDecl{
		shroud.Field("Id",
			func(d Based) string { return d.Base().Id },
			func(d Based, v string) { d.Base().Id = v },
		).DeclaredIn(KindDatum),
		shroud.Field("DeviceId",
			func(d Based) string { return d.Base().DeviceId },
			func(d Based, v string) { d.Base().DeviceId = v },
			shroud.Sha256Hash(), shroud.MaskUUID(),
		).DeclaredIn(KindDatum).Display("Device"),
		shroud.Field("Timestamp",
			func(d Based) time.Time { return d.Base().Timestamp },
			func(d Based, v time.Time) { d.Base().Timestamp = v },
			shroud.TimeOffset(TimestampOffsetLimit),
		).DeclaredIn(KindDatum),
		shroud.Computed("Age",
			func(d Based) time.Duration { return d.Base().Age() },
		).DeclaredIn(KindDatum),
	}
}

// GpsDatum is a location fix.
type GpsDatum struct {
	Datum
	Location shroud.Coordinate
	Accuracy float64
	Altitude float64
}

// Kind implements shroud.Record.
func (*GpsDatum) Kind() shroud.Kind { return KindGps }

// AccelerometerDatum is one accelerometer sample in m/s².
type AccelerometerDatum struct {
	Datum
	X float64
	Y float64
	Z float64
}

// Kind implements shroud.Record.
func (*AccelerometerDatum) Kind() shroud.Kind { return KindAccelerometer }

// Magnitude is the length of the acceleration vector.
func (d *AccelerometerDatum) Magnitude() float64 {
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// BatteryDatum is a battery level reading in percent.
type BatteryDatum struct {
	Datum
	Level float64
}

// Kind implements shroud.Record.
func (*BatteryDatum) Kind() shroud.Kind { return KindBattery }

// ScriptDatum is one response to a survey script.
type ScriptDatum struct {
	Datum
	ScriptId string
	RunId    string
	Response string
	// Location is where the response was given, if known.
	Location *shroud.Coordinate
}

// Kind implements shroud.Record.
func (*ScriptDatum) Kind() shroud.Kind { return KindScript }
